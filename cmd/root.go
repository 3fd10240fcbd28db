package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/goalfinch/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagConfig  string
	flagAsOf    string
	flagQuiet   bool
	flagVerbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "goalfinch",
	Short: "Monthly goal progress tracker",
	Long:  "Track cumulative monthly progress toward goals against a linear pace.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if flagConfig != "" {
			config.SetPath(flagConfig)
		}

		// The dashboard owns the terminal; log lines would tear it.
		if cmd.Name() == dashboardCmd.Name() {
			return nil
		}

		cfg := zap.NewProductionConfig()
		switch {
		case flagVerbose:
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		case flagQuiet:
			cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	RunE: runStatus,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (TOML or YAML)")
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "Evaluate the month containing this date (YYYY-MM-DD or M/D/YYYY)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// loadConfig loads the config, honoring --config.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	logger.Debug("config loaded", zap.String("path", config.Path()), zap.Int("goals", len(cfg.Goals)))
	return cfg, nil
}

// refDate resolves --as-of. Zero means the current month.
func refDate() (time.Time, error) {
	if flagAsOf == "" {
		return time.Time{}, nil
	}
	t, err := config.ParseDate(flagAsOf)
	if err != nil {
		return t, fmt.Errorf("--as-of: %w", err)
	}
	return t, nil
}

// fetchContext bounds a command's remote fetches.
func fetchContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func progressf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
