package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradeMetrics/internal/adapters/csvsource"
	"tradeMetrics/internal/app"
	"tradeMetrics/internal/domain"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the analytics report",
	Long: `Runs every analytics engine over one snapshot of trades and prints the
result.

Trades come from --csv (or TRADES_CSV) when set, otherwise from the SQLite
store at --db (or DB_PATH).

Example:
  tradeMetrics report --csv trades.csv --format yaml
  tradeMetrics report --symbol ETHUSDT --as-of 2024-06-30T23:59:59Z`,
	RunE: runReport,
}

var (
	// Report flags
	reportCSV    string
	reportDB     string
	reportSymbol string
	reportFormat string
	reportAsOf   string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "read trades from this CSV file")
	reportCmd.Flags().StringVar(&reportDB, "db", "", "read trades from this SQLite store")
	reportCmd.Flags().StringVar(&reportSymbol, "symbol", "", "only analyze this symbol")
	reportCmd.Flags().StringVar(&reportFormat, "format", FormatText, "output format (text|json|yaml)")
	reportCmd.Flags().StringVar(&reportAsOf, "as-of", "", "reference time for recent-window metrics (RFC3339)")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := parseOutputFormat(reportFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reportAsOf != "" {
		asOf, err := time.Parse(time.RFC3339, reportAsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of (want RFC3339): %w", err)
		}
		cfg.ReferenceTime = asOf.In(cfg.Location)
	}
	log := newLogger(cfg)
	symbol := strings.ToUpper(strings.TrimSpace(reportSymbol))

	csvPath := reportCSV
	if csvPath == "" && reportDB == "" {
		csvPath = cfg.TradesCSV
	}

	var report *app.Report
	if csvPath != "" {
		svc, err := app.NewAnalyticsService(cfg, log, nil)
		if err != nil {
			return err
		}
		source, err := csvsource.New(csvsource.Config{Path: csvPath, Location: cfg.Location, Logger: log})
		if err != nil {
			return err
		}
		trades, err := source.FetchTrades(ctx)
		if err != nil {
			return err
		}
		trades = filterSymbol(svc.Prepare(ctx, trades), symbol)

		report, err = svc.BuildReport(ctx, trades)
		if err != nil {
			return err
		}
		report.Symbol = symbol
	} else {
		repo, err := openRepository(ctx, cfg, log, reportDB)
		if err != nil {
			return err
		}
		defer closeRepository(ctx, log, repo)

		svc, err := app.NewAnalyticsService(cfg, log, repo)
		if err != nil {
			return err
		}
		report, err = svc.AnalyzeStored(ctx, symbol)
		if err != nil {
			return err
		}
	}

	return renderReport(cmd.OutOrStdout(), report, format)
}

func filterSymbol(trades []domain.Trade, symbol string) []domain.Trade {
	if symbol == "" {
		return trades
	}
	out := trades[:0]
	for _, t := range trades {
		if t.Symbol == symbol {
			out = append(out, t)
		}
	}
	return out
}
