package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/kno2gether/screenshot-organizer/internal/classifier"
	"github.com/kno2gether/screenshot-organizer/internal/config"
	"github.com/kno2gether/screenshot-organizer/internal/history"
	"github.com/kno2gether/screenshot-organizer/internal/organizer"
)

var (
	flagProvider string
	flagModel    string
	flagBaseURL  string
	flagAPIKey   string
	flagLogLevel string

	settings config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "screenshot-organizer",
	Short: "Organize screenshots with a vision model",
	Long: `screenshot-organizer watches a folder of screenshots, sends each image to a
vision model (Together AI or a local ollama server), and renames the file
after the category the model returns.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		config.LoadEnvFile()

		var err error
		settings, err = config.Load()
		if err != nil {
			return err
		}
		applyFlags(&settings)
		if err := settings.Validate(); err != nil {
			return err
		}

		logger = newLogger(settings.LogLevel)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "vision backend: together or ollama")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model name")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "backend base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key for the hosted backend")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn or error")
}

func applyFlags(s *config.Settings) {
	if flagProvider != "" {
		s.Provider = flagProvider
		// Re-derive model and base URL defaults for the chosen provider
		// unless they were overridden too.
		if flagModel == "" {
			s.Model = ""
		}
		if flagBaseURL == "" {
			s.BaseURL = ""
		}
	}
	if flagModel != "" {
		s.Model = flagModel
	}
	if flagBaseURL != "" {
		s.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		s.APIKey = flagAPIKey
	}
	if flagLogLevel != "" {
		s.LogLevel = flagLogLevel
	}
	s.ApplyDefaults()
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	return slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: "15:04:05",
		}),
	)
}

func newClassifier(ctx context.Context) (classifier.Classifier, error) {
	switch settings.Provider {
	case config.ProviderOllama:
		c, err := classifier.NewOllamaClassifier(ctx, logger, settings.BaseURL, settings.Model)
		if err != nil {
			return nil, err
		}
		if err := c.Ping(ctx); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return classifier.NewTogetherClassifier(settings.APIKey, settings.BaseURL, settings.Model)
	}
}

func newProcessor(ctx context.Context) (*organizer.Processor, func(), error) {
	cl, err := newClassifier(ctx)
	if err != nil {
		return nil, nil, err
	}

	var sink organizer.HistorySink
	cleanup := func() {}
	if settings.HistoryDB != "" {
		store, err := history.Open(settings.HistoryDB)
		if err != nil {
			logger.Warn("history disabled", "err", err)
		} else {
			sink = store
			cleanup = func() { store.Close() }
		}
	}

	return organizer.NewProcessor(cl, sink, logger), cleanup, nil
}

func printSummary(summary *organizer.Summary) {
	for _, o := range summary.Outcomes {
		switch {
		case o.Skipped:
			fmt.Printf("skipped  %s (already organized)\n", o.File)
		case o.NewName == "":
			fmt.Printf("failed   %s (%s: %v)\n", o.File, o.Stage, o.Err)
		case o.Degraded:
			fmt.Printf("degraded %s -> %s (%v)\n", o.File, o.NewName, o.Err)
		default:
			fmt.Printf("renamed  %s -> %s\n", o.File, o.NewName)
		}
	}
	fmt.Printf("%d renamed, %d degraded, %d failed, %d skipped\n",
		summary.Renamed, summary.Degraded, summary.Failed, summary.Skipped)
}
