package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kno2gether/screenshot-organizer/internal/watcher"
)

var flagInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Keep organizing a directory until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		processor, cleanup, err := newProcessor(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		interval := settings.PollInterval()
		if flagInterval > 0 {
			interval = flagInterval
		}

		service := watcher.NewService(processor, args[0], interval, logger)
		return service.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&flagInterval, "interval", 0, "time between scans (default from settings)")
	rootCmd.AddCommand(watchCmd)
}
