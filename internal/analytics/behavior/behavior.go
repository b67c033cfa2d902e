// Package behavior computes trade-level behavioral statistics: win rate,
// expectancy, streaks and per-symbol / per-side breakdowns.
package behavior

import (
	"encoding/json"
	"sort"
	"time"

	"tradeMetrics/internal/analytics/ordered"
	"tradeMetrics/internal/analytics/stats"
	"tradeMetrics/internal/domain"
)

// Summary bundles the behavior-only aggregates.
type Summary struct {
	TotalTrades  int     `json:"total_trades" yaml:"total_trades"`
	WinRate      float64 `json:"win_rate" yaml:"win_rate"`
	AverageWin   float64 `json:"average_win" yaml:"average_win"`
	AverageLoss  float64 `json:"average_loss" yaml:"average_loss"`
	ProfitFactor float64 `json:"profit_factor" yaml:"profit_factor"`
	Expectancy   float64 `json:"expectancy" yaml:"expectancy"`
	LargestGain  float64 `json:"largest_gain" yaml:"largest_gain"`
	LargestLoss  float64 `json:"largest_loss" yaml:"largest_loss"`
}

// MarshalJSON encodes an unbounded profit factor as a string.
func (s Summary) MarshalJSON() ([]byte, error) {
	type alias Summary
	return json.Marshal(struct {
		alias
		ProfitFactor interface{} `json:"profit_factor"`
	}{alias: alias(s), ProfitFactor: stats.JSONFloat(s.ProfitFactor)})
}

// SymbolPerformance aggregates all trades of one symbol.
type SymbolPerformance struct {
	Symbol        string  `json:"symbol" yaml:"symbol"`
	Trades        int     `json:"trades" yaml:"trades"`
	WinningTrades int     `json:"winning_trades" yaml:"winning_trades"`
	WinRate       float64 `json:"win_rate" yaml:"win_rate"`
	TotalPnL      float64 `json:"total_pnl" yaml:"total_pnl"`
	AveragePnL    float64 `json:"average_pnl" yaml:"average_pnl"`
	NetPnL        float64 `json:"net_pnl" yaml:"net_pnl"`
	Volume        float64 `json:"volume" yaml:"volume"`
}

// SideBreakdown aggregates all trades of one direction.
type SideBreakdown struct {
	Side       domain.Side `json:"side" yaml:"side"`
	Trades     int         `json:"trades" yaml:"trades"`
	WinRate    float64     `json:"win_rate" yaml:"win_rate"`
	TotalPnL   float64     `json:"total_pnl" yaml:"total_pnl"`
	AveragePnL float64     `json:"average_pnl" yaml:"average_pnl"`
}

// DirectionalBias is the share of long trades overall and over recent windows.
type DirectionalBias struct {
	LongPercent           float64 `json:"long_percent" yaml:"long_percent"`
	ShortPercent          float64 `json:"short_percent" yaml:"short_percent"`
	Last30DaysLongPercent float64 `json:"last_30_days_long_percent" yaml:"last_30_days_long_percent"`
	Last7DaysLongPercent  float64 `json:"last_7_days_long_percent" yaml:"last_7_days_long_percent"`
	Last30DaysTrades      int     `json:"last_30_days_trades" yaml:"last_30_days_trades"`
	Last7DaysTrades       int     `json:"last_7_days_trades" yaml:"last_7_days_trades"`
}

// Analyze computes the Summary for trades.
func Analyze(trades []domain.Trade) Summary {
	return Summary{
		TotalTrades:  len(trades),
		WinRate:      WinRate(trades),
		AverageWin:   AverageWin(trades),
		AverageLoss:  AverageLoss(trades),
		ProfitFactor: ProfitFactor(trades),
		Expectancy:   Expectancy(trades),
		LargestGain:  LargestGain(trades),
		LargestLoss:  LargestLoss(trades),
	}
}

// WinRate returns the percentage of winning trades, 0 for no trades.
func WinRate(trades []domain.Trade) float64 {
	wins := 0
	for _, t := range trades {
		if t.IsWin() {
			wins++
		}
	}
	return stats.Percent(float64(wins), float64(len(trades)))
}

// AverageWin returns the mean PnL of the winning trades.
func AverageWin(trades []domain.Trade) float64 {
	var sum float64
	n := 0
	for _, t := range trades {
		if t.IsWin() {
			sum += t.PnL
			n++
		}
	}
	return stats.SafeDiv(sum, float64(n))
}

// AverageLoss returns the mean loss magnitude of the losing trades.
func AverageLoss(trades []domain.Trade) float64 {
	var sum float64
	n := 0
	for _, t := range trades {
		if !t.IsWin() {
			sum += -t.PnL
			n++
		}
	}
	return stats.SafeDiv(sum, float64(n))
}

// ProfitFactor is gross profit over gross loss, see stats.ProfitFactor.
func ProfitFactor(trades []domain.Trade) float64 {
	var grossProfit, grossLoss float64
	for _, t := range trades {
		if t.IsWin() {
			grossProfit += t.PnL
		} else {
			grossLoss += -t.PnL
		}
	}
	return stats.ProfitFactor(grossProfit, grossLoss)
}

// Expectancy is the probability-weighted average PnL per trade.
func Expectancy(trades []domain.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	winRate := WinRate(trades) / 100
	return winRate*AverageWin(trades) - (1-winRate)*AverageLoss(trades)
}

// LargestGain returns the biggest winning PnL, 0 without wins.
func LargestGain(trades []domain.Trade) float64 {
	var largest float64
	for _, t := range trades {
		if t.IsWin() && t.PnL > largest {
			largest = t.PnL
		}
	}
	return largest
}

// LargestLoss returns the biggest loss magnitude, 0 without losses.
func LargestLoss(trades []domain.Trade) float64 {
	var largest float64
	for _, t := range trades {
		if !t.IsWin() && -t.PnL > largest {
			largest = -t.PnL
		}
	}
	return largest
}

// AnalyzeBySymbol groups trades by symbol. Groups are accumulated in order of
// first occurrence and returned sorted by TotalPnL descending; equal totals keep
// first-occurrence order.
func AnalyzeBySymbol(trades []domain.Trade) []SymbolPerformance {
	groups := ordered.New[string, SymbolPerformance]()
	for _, t := range trades {
		groups.Update(t.Symbol, func(sp SymbolPerformance) SymbolPerformance {
			sp.Symbol = t.Symbol
			sp.Trades++
			if t.IsWin() {
				sp.WinningTrades++
			}
			sp.TotalPnL += t.PnL
			sp.NetPnL += t.NetPnL
			sp.Volume += t.Volume
			return sp
		})
	}

	result := make([]SymbolPerformance, 0, groups.Len())
	groups.Each(func(_ string, sp SymbolPerformance) {
		sp.WinRate = stats.Percent(float64(sp.WinningTrades), float64(sp.Trades))
		sp.AveragePnL = stats.SafeDiv(sp.TotalPnL, float64(sp.Trades))
		result = append(result, sp)
	})

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalPnL > result[j].TotalPnL
	})
	return result
}

// AnalyzeBySide returns the long and short breakdowns, in that order.
func AnalyzeBySide(trades []domain.Trade) []SideBreakdown {
	sides := []domain.Side{domain.Long, domain.Short}
	out := make([]SideBreakdown, 0, len(sides))
	for _, side := range sides {
		var subset []domain.Trade
		for _, t := range trades {
			if t.Side == side {
				subset = append(subset, t)
			}
		}
		b := SideBreakdown{Side: side, Trades: len(subset), WinRate: WinRate(subset)}
		for _, t := range subset {
			b.TotalPnL += t.PnL
		}
		b.AveragePnL = stats.SafeDiv(b.TotalPnL, float64(b.Trades))
		out = append(out, b)
	}
	return out
}

// AnalyzeDirectionalBias returns the long share of all trades and of the trades
// within the 30 and 7 days up to now. Trades after now are only counted overall.
func AnalyzeDirectionalBias(trades []domain.Trade, now time.Time) DirectionalBias {
	var bias DirectionalBias
	if len(trades) == 0 {
		return bias
	}

	cutoff30 := now.AddDate(0, 0, -30)
	cutoff7 := now.AddDate(0, 0, -7)

	var longs, longs30, longs7 int
	for _, t := range trades {
		isLong := t.Side == domain.Long
		if isLong {
			longs++
		}
		if t.Timestamp.After(now) {
			continue
		}
		if !t.Timestamp.Before(cutoff30) {
			bias.Last30DaysTrades++
			if isLong {
				longs30++
			}
		}
		if !t.Timestamp.Before(cutoff7) {
			bias.Last7DaysTrades++
			if isLong {
				longs7++
			}
		}
	}

	bias.LongPercent = stats.Percent(float64(longs), float64(len(trades)))
	bias.ShortPercent = 100 - bias.LongPercent
	bias.Last30DaysLongPercent = stats.Percent(float64(longs30), float64(bias.Last30DaysTrades))
	bias.Last7DaysLongPercent = stats.Percent(float64(longs7), float64(bias.Last7DaysTrades))
	return bias
}
