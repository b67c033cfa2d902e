package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"tradeMetrics/internal/app"
)

// Output formats of the report and symbols commands.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func parseOutputFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, v interface{}, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q cannot encode structured output", format)
	}
}

func renderReport(w io.Writer, r *app.Report, format string) error {
	if format != FormatText {
		return encode(w, r, format)
	}
	return writeText(w, r)
}

func writeText(out io.Writer, r *app.Report) error {
	symbol := r.Symbol
	if symbol == "" {
		symbol = "all symbols"
	}
	fmt.Fprintf(out, "tradeMetrics report for %s, %d trades, as of %s\n",
		symbol, r.TradeCount, r.ReferenceTime.Format(time.RFC3339))

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	p := r.Performance
	section(w, "PERFORMANCE")
	row(w, "Total PnL", money(p.TotalPnL))
	row(w, "Net PnL", money(p.TotalNetPnL))
	row(w, "Final equity", money(p.FinalEquity))
	row(w, "ROI", percent(p.ROI))
	row(w, "Win rate", percent(p.WinRate))
	row(w, "Profit factor", ratio(p.ProfitFactor))
	row(w, "Expectancy", money(p.Expectancy))
	row(w, "Max drawdown", fmt.Sprintf("%s (%s)", money(p.MaxDrawdown), percent(p.MaxDrawdownPercent)))
	row(w, "Current drawdown", percent(p.CurrentDrawdownPercent))
	row(w, "Sharpe ratio", fmt.Sprintf("%.2f", p.SharpeRatio))

	if len(r.MonthlyReturns) > 0 {
		section(w, "MONTHLY RETURNS")
		fmt.Fprintln(w, "Month\tReturn\tTrades")
		for _, m := range r.MonthlyReturns {
			fmt.Fprintf(w, "%s\t%s\t%d\n", m.Month, money(m.Return), m.Trades)
		}
	}

	b := r.Behavior
	section(w, "BEHAVIOR")
	row(w, "Average win", money(b.Summary.AverageWin))
	row(w, "Average loss", money(b.Summary.AverageLoss))
	row(w, "Largest gain", money(b.Summary.LargestGain))
	row(w, "Largest loss", money(b.Summary.LargestLoss))
	row(w, "Current streak", fmt.Sprintf("%d %s", b.Streaks.Current, b.Streaks.CurrentType))
	row(w, "Longest win / loss streak", fmt.Sprintf("%d / %d", b.Streaks.LongestWin, b.Streaks.LongestLoss))
	row(w, "Long share (all / 30d / 7d)", fmt.Sprintf("%s / %s / %s",
		percent(b.DirectionalBias.LongPercent),
		percent(b.DirectionalBias.Last30DaysLongPercent),
		percent(b.DirectionalBias.Last7DaysLongPercent)))

	if len(b.BySymbol) > 0 {
		section(w, "BY SYMBOL")
		fmt.Fprintln(w, "Symbol\tTrades\tWin rate\tTotal PnL\tNet PnL\tVolume")
		for _, s := range b.BySymbol {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
				s.Symbol, s.Trades, percent(s.WinRate), money(s.TotalPnL), money(s.NetPnL), money(s.Volume))
		}
	}

	section(w, "BY SIDE")
	fmt.Fprintln(w, "Side\tTrades\tWin rate\tTotal PnL\tAverage PnL")
	for _, s := range b.BySide {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", s.Side, s.Trades, percent(s.WinRate), money(s.TotalPnL), money(s.AveragePnL))
	}

	t := r.Timing
	section(w, "TIMING")
	row(w, "Average / median hold", fmt.Sprintf("%s / %s", t.Durations.Average, t.Durations.Median))
	row(w, "Shortest / longest hold", fmt.Sprintf("%s / %s", t.Durations.Shortest, t.Durations.Longest))
	row(w, "Trades per day / week / month", fmt.Sprintf("%.2f / %.2f / %.2f", t.Frequency.PerDay, t.Frequency.PerWeek, t.Frequency.PerMonth))
	row(w, "Trades last 7 / 30 days", fmt.Sprintf("%d / %d", t.Frequency.TradesLast7Days, t.Frequency.TradesLast30Days))
	if t.Frequency.HasActiveDays {
		row(w, "Most / least active day", fmt.Sprintf("%s / %s", t.Frequency.MostActiveDay, t.Frequency.LeastActiveDay))
	}
	fmt.Fprintln(w, "Session\tTrades\tWin rate\tPnL")
	for _, s := range t.Sessions {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Session, s.Trades, percent(s.WinRate), money(s.PnL))
	}

	f := r.Fees
	section(w, "FEES")
	row(w, "Total fees", money(f.TotalFees))
	row(w, "Total volume", money(f.TotalVolume))
	row(w, "Fee to profit", percent(f.FeeToProfitRatio))
	row(w, "Maker / taker", fmt.Sprintf("%s / %s", percent(f.Composition.MakerPercent), percent(f.Composition.TakerPercent)))
	row(w, "Potential maker savings", fmt.Sprintf("%s (%s)", money(f.Savings.PotentialSavings), percent(f.Savings.SavingsPercent)))

	k := r.Risk
	section(w, "RISK")
	row(w, "Risk score", fmt.Sprintf("%.1f / 100", k.RiskScore))
	row(w, "Consecutive losses (current / max)", fmt.Sprintf("%d / %d", k.CurrentConsecutiveLosses, k.MaxConsecutiveLosses))
	row(w, "Overtrading", fmt.Sprintf("%t", k.Overtrading))
	row(w, "Volatility", percent(k.Volatility))
	row(w, "Consistency", percent(k.ConsistencyScore))
	row(w, "Average daily trades", fmt.Sprintf("%.2f", k.AverageDailyTrades))
	if len(k.Clusters) > 0 {
		fmt.Fprintln(w, "Cluster start\tTrades\tTotal PnL\tPattern")
		for _, c := range k.Clusters {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", c.StartTime.Format("2006-01-02 15:04"), c.TradeCount, money(c.TotalPnL), c.Pattern)
		}
	}

	return w.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\t\n", title)
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s\t%s\n", label, value)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func ratio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}
