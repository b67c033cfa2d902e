package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradeMetrics/config"
	"tradeMetrics/internal/adapters/binanceclient"
	"tradeMetrics/internal/adapters/csvsource"
	"tradeMetrics/internal/app"
	"tradeMetrics/internal/ports"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import closed trades into the SQLite store",
	Long: `Fetches closed trades from a CSV file or from the Binance USDⓈ-M futures
account history, validates them and stores them. Trades are keyed by id, so
importing the same data twice replaces rather than duplicates it.

Binance imports need BINANCE_API_KEY and BINANCE_API_SECRET.

Example:
  tradeMetrics import --from csv --file trades.csv
  tradeMetrics import --from binance --symbol BTCUSDT --symbol ETHUSDT --since 168h`,
	RunE: runImport,
}

var (
	// Import flags
	importFrom    string
	importFile    string
	importDB      string
	importSymbols []string
	importSince   time.Duration
	importUntil   string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFrom, "from", "csv", "trade source (csv|binance)")
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file (default TRADES_CSV)")
	importCmd.Flags().StringVar(&importDB, "db", "", "SQLite store (default DB_PATH)")
	importCmd.Flags().StringSliceVar(&importSymbols, "symbol", nil, "Binance symbols (default BINANCE_SYMBOLS)")
	importCmd.Flags().DurationVar(&importSince, "since", 30*24*time.Hour, "Binance history to fetch, counted back from --until")
	importCmd.Flags().StringVar(&importUntil, "until", "", "end of the Binance range (RFC3339, default now)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	source, err := newTradeSource(cfg, log)
	if err != nil {
		return err
	}

	repo, err := openRepository(ctx, cfg, log, importDB)
	if err != nil {
		return err
	}
	defer closeRepository(ctx, log, repo)

	svc, err := app.NewAnalyticsService(cfg, log, repo)
	if err != nil {
		return err
	}
	result, err := svc.Import(ctx, source)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported from %s: fetched %d, saved %d, skipped %d\n",
		result.Source, result.Fetched, result.Saved, result.Skipped)
	return nil
}

func newTradeSource(cfg *config.Config, log ports.Logger) (ports.TradeSource, error) {
	switch strings.ToLower(importFrom) {
	case "csv":
		path := importFile
		if path == "" {
			path = cfg.TradesCSV
		}
		return csvsource.New(csvsource.Config{Path: path, Location: cfg.Location, Logger: log})
	case "binance":
		client, err := binanceclient.New(binanceclient.Config{
			APIKey:     cfg.APIKey,
			SecretKey:  cfg.SecretKey,
			UseTestnet: cfg.IsTestnet,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}

		until := cfg.Now()
		if importUntil != "" {
			if until, err = time.Parse(time.RFC3339, importUntil); err != nil {
				return nil, fmt.Errorf("invalid --until (want RFC3339): %w", err)
			}
		}
		symbols := cfg.Symbols
		if len(importSymbols) > 0 {
			symbols = make([]string, len(importSymbols))
			for i, s := range importSymbols {
				symbols[i] = strings.ToUpper(strings.TrimSpace(s))
			}
		}
		return binanceclient.NewTradeSource(client, binanceclient.TradeSourceConfig{
			Symbols:  symbols,
			Since:    until.Add(-importSince),
			Until:    until,
			Location: cfg.Location,
		})
	default:
		return nil, fmt.Errorf("unknown trade source %q (want csv or binance): %w", importFrom, ports.ErrInvalidRequest)
	}
}
