// Package cli implements the tradeMetrics command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tradeMetrics/config"
	"tradeMetrics/internal/adapters/logger"
	"tradeMetrics/internal/adapters/sqlite"
	"tradeMetrics/internal/ports"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradeMetrics",
	Short: "Trading performance analytics",
	Long: `tradeMetrics analyzes closed trades: performance, behavior, timing,
fees and risk.

Trades are read from a CSV file or from the local SQLite store, which is
filled with the import command.

Examples:
  tradeMetrics report --csv trades.csv
  tradeMetrics report --symbol BTCUSDT --format json
  tradeMetrics import --from csv --file trades.csv
  tradeMetrics import --from binance --symbol BTCUSDT --since 720h
  tradeMetrics symbols`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file overlaid on the environment (default is .env only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads the environment configuration and, when --config is set, the YAML overlay.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFromFile(configFile)
	}
	return config.LoadConfig()
}

func newLogger(cfg *config.Config) ports.Logger {
	level := cfg.LogLevel
	if verbose {
		level = logger.LevelDebug
	}
	return logger.New(level, cfg.LogFormat)
}

// openRepository opens the SQLite store at dbPath, falling back to the configured path.
func openRepository(ctx context.Context, cfg *config.Config, log ports.Logger, dbPath string) (*sqlite.Repository, error) {
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath:   dbPath,
		Logger:   log,
		Location: cfg.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open trade store: %w", err)
	}
	log.Debug(ctx, "Trade store opened", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func closeRepository(ctx context.Context, log ports.Logger, repo *sqlite.Repository) {
	if err := repo.Close(); err != nil {
		log.Error(ctx, err, "Error closing trade store")
	}
}
