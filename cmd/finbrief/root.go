package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags rootFlags

	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "finbrief",
		Short:         "Financial news digest and video summary mailer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Configuration file path (default $FINBRIEF_CONFIG or config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Print messages to stdout instead of sending email")
	rootCmd.PersistentFlags().StringVar(&flags.lockPath, "lock", "", "Lock file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newNewsCommand(ctx))
	rootCmd.AddCommand(newShowsCommand(ctx))
	rootCmd.AddCommand(newCheckConfigCommand(ctx))

	return rootCmd
}
