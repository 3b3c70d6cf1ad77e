package cli

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/deskctl/deskctl/pkg/setup"
)

func newSetupCmd() *cobra.Command {
	var (
		force     bool
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Run the one-time remote desktop add-on setup",
		Long: `Offer to run the privileged setup script for the remote desktop
add-on. The answer is recorded, so the question is asked at most once;
use --force to ask again. Intended to be called from a login profile
snippet: non-interactive shells are skipped silently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			res, err := setup.Run(cmd.Context(), setup.Options{
				Script:      cfg.Setup.Script,
				MarkerPath:  p.SetupMarkerPath(),
				Force:       force,
				AssumeYes:   assumeYes,
				Interactive: isatty.IsTerminal(os.Stdin.Fd()),
				Out:         cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}

			switch res.State {
			case setup.StateAlreadyDone:
				if res.Prior != nil && res.Prior.Outcome != "" {
					cmd.Printf("Setup already answered (%s); use --force to run again.\n", res.Prior.Outcome)
				} else {
					cmd.Println("Setup already answered; use --force to run again.")
				}
			case setup.StateSkipped:
				// Quiet by design: login snippets must not spam
				// non-interactive shells.
			case setup.StateAccepted:
				cmd.Println("Setup completed.")
			case setup.StateDeclined:
				cmd.Println("Setup declined; run 'deskctl setup --force' if you change your mind.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Ask again even if already answered")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Run the setup script without prompting")
	return cmd
}
