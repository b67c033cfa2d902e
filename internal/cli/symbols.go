package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tradeMetrics/internal/app"
)

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List stored symbols with their trade counts",
	RunE:  runSymbols,
}

var (
	symbolsDB     string
	symbolsFormat string
)

func init() {
	rootCmd.AddCommand(symbolsCmd)

	symbolsCmd.Flags().StringVar(&symbolsDB, "db", "", "SQLite store (default DB_PATH)")
	symbolsCmd.Flags().StringVar(&symbolsFormat, "format", FormatText, "output format (text|json|yaml)")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := parseOutputFormat(symbolsFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	repo, err := openRepository(ctx, cfg, log, symbolsDB)
	if err != nil {
		return err
	}
	defer closeRepository(ctx, log, repo)

	svc, err := app.NewAnalyticsService(cfg, log, repo)
	if err != nil {
		return err
	}
	symbols, err := svc.Symbols(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format != FormatText {
		return encode(out, symbols, format)
	}
	if len(symbols) == 0 {
		fmt.Fprintln(out, "No trades stored.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Symbol\tTrades")
	for _, s := range symbols {
		fmt.Fprintf(w, "%s\t%d\n", s.Symbol, s.Trades)
	}
	return w.Flush()
}
