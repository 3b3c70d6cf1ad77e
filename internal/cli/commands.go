// Package cli builds the deskctl command tree.
package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/deskctl/deskctl/internal/version"
	"github.com/deskctl/deskctl/pkg/config"
	"github.com/deskctl/deskctl/pkg/logging"
	"github.com/deskctl/deskctl/pkg/paths"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		envFile   string
	)

	rootCmd := &cobra.Command{
		Use:   "deskctl",
		Short: "Manage a per-user remote desktop session",
		Long: `deskctl supervises a remote desktop server (vncserver-style) for a
configured user: it starts and stops the server, reports its status, and
runs the one-time setup for the remote desktop add-on.

Configuration layers, later ones winning: built-in defaults, system and
user TOML files, an init-style environment file (/etc/default/deskctl),
and DESKCTL_* environment variables.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file to read (default /etc/default/deskctl)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newRestartCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newGenconfigCmd())

	return rootCmd
}

// loadConfig resolves paths and merges all configuration layers for a
// command invocation.
func loadConfig(cmd *cobra.Command) (*config.Config, *paths.Paths, error) {
	envFile, _ := cmd.Root().PersistentFlags().GetString("env-file")

	p := paths.New()
	cfg, err := config.Load(config.LoadOptions{Paths: p, EnvFile: envFile})
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("deskctl version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}

func newGenconfigCmd() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: "Print configuration as TOML",
		Long: `Print the effective configuration (all layers merged) as TOML on
stdout. With --defaults, print the built-in defaults file instead,
comments included, as a starting point for /etc/deskctl/deskctl.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				cmd.Print(string(config.DefaultTOML()))
				return nil
			}

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := cfg.MarshalTOML()
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "Print built-in defaults instead of the effective config")
	return cmd
}
