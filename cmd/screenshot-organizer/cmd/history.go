package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kno2gether/screenshot-organizer/internal/history"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent rename outcomes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if settings.HistoryDB == "" {
			return fmt.Errorf("no history database configured")
		}
		store, err := history.Open(settings.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Recent(flagLimit)
		if err != nil {
			return err
		}

		for _, r := range records {
			switch r.Outcome {
			case "renamed", "degraded":
				fmt.Printf("%s  %-8s %s -> %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.Outcome, r.OldName, r.NewName)
			default:
				fmt.Printf("%s  %-8s %s (%s)\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.Outcome, r.OldName, r.Reason)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum number of records to show")
	rootCmd.AddCommand(historyCmd)
}
