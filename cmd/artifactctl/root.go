package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/learnhub-backend/internal/app"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext(app.New)
	// Finalizers also run when a command fails, so the app is always closed.
	cobra.OnFinalize(ctx.close)

	rootCmd := &cobra.Command{
		Use:           "artifactctl",
		Short:         "Inspect and drive derived-artifact generation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonOutput, "json", false, "Print machine-readable JSON")

	rootCmd.AddCommand(newRequestCommand(ctx))
	rootCmd.AddCommand(newGetCommand(ctx))
	rootCmd.AddCommand(newJobsCommand(ctx))
	rootCmd.AddCommand(newDrainCommand(ctx))
	rootCmd.AddCommand(newBrailleCommand(ctx))

	return rootCmd
}
