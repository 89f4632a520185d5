package cli

import (
	"log"

	"skill-swap/internal/config"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the hooks commands use to reach the
// environment.
type RootOptions struct {
	Verbose bool

	LoadConfig func() (config.Config, error)
	Logger     *log.Logger
}

// NewRootCommand creates the swapctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{LoadConfig: config.Load}

	cmd := &cobra.Command{
		Use:   "swapctl",
		Short: "Operate a Skill Swap deployment",
		Long:  "Administrative commands for Skill Swap: schema migrations, demo seed data and access tokens.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags := log.LstdFlags
			if opts.Verbose {
				flags |= log.Lmicroseconds
			}
			opts.Logger = log.New(cmd.ErrOrStderr(), "", flags)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
