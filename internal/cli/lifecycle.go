package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/deskctl/deskctl/pkg/display"
	"github.com/deskctl/deskctl/pkg/session"
	"github.com/deskctl/deskctl/pkg/supervisor"
)

// newSupervisor builds the session supervisor from the merged config.
func newSupervisor(cmd *cobra.Command) (*supervisor.Supervisor, error) {
	cfg, p, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return supervisor.New(session.FromConfig(cfg), p, cfg.Server.Timeout()), nil
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the remote desktop server",
		Long: `Start the configured remote desktop server for the session user.
Fails when a server is already running on the configured display.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := newSupervisor(cmd)
			if err != nil {
				return err
			}

			st, err := sup.Start(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Started desktop session %s (pid %d)\n", st.Display, st.PID)
			return nil
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the remote desktop server",
		Long: `Stop the remote desktop server for the configured display. Stopping
a session that is not running is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := newSupervisor(cmd)
			if err != nil {
				return err
			}

			if err := sup.Stop(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Stopped")
			return nil
		},
	}
}

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the remote desktop server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := newSupervisor(cmd)
			if err != nil {
				return err
			}

			st, err := sup.Restart(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Restarted desktop session %s (pid %d)\n", st.Display, st.PID)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session's status",
		Long:  `Report whether the remote desktop server is running, with PID, uptime and resource usage.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := display.ParseFormat(formatName)
			if err != nil {
				return err
			}

			sup, err := newSupervisor(cmd)
			if err != nil {
				return err
			}

			st, err := sup.Status(cmd.Context())
			if err != nil {
				return err
			}

			out, err := display.RenderStatus(st, format, display.ShouldColor(os.Stdout))
			if err != nil {
				return err
			}
			cmd.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "text", "Output format: text, json or yaml")
	return cmd
}
