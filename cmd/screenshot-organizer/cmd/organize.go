package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var organizeCmd = &cobra.Command{
	Use:   "organize <dir>",
	Short: "Classify and rename the screenshots in a directory once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		processor, cleanup, err := newProcessor(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := processor.Run(ctx, args[0])
		if err != nil {
			return err
		}

		printSummary(summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(organizeCmd)
}
