// Package performance computes equity, drawdown, return and Sharpe metrics
// from a snapshot of closed trades.
package performance

import (
	"encoding/json"
	"time"

	"tradeMetrics/internal/analytics/ordered"
	"tradeMetrics/internal/analytics/stats"
	"tradeMetrics/internal/domain"
)

// DefaultRiskFreeRate is the annualized risk-free rate used for the Sharpe ratio.
const DefaultRiskFreeRate = 0.02

// Metrics holds aggregate performance metrics for a set of trades.
// Percentages (WinRate, ROI, drawdown) are expressed in the 0-100 range.
type Metrics struct {
	// Basic Metrics
	TotalTrades   int     `json:"total_trades" yaml:"total_trades"`
	WinningTrades int     `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades  int     `json:"losing_trades" yaml:"losing_trades"`
	WinRate       float64 `json:"win_rate" yaml:"win_rate"`
	TotalPnL      float64 `json:"total_pnl" yaml:"total_pnl"`
	TotalFees     float64 `json:"total_fees" yaml:"total_fees"`
	TotalNetPnL   float64 `json:"total_net_pnl" yaml:"total_net_pnl"`
	GrossProfit   float64 `json:"gross_profit" yaml:"gross_profit"`
	GrossLoss     float64 `json:"gross_loss" yaml:"gross_loss"`

	// Trade distribution (losses are magnitudes)
	AverageWin      float64 `json:"average_win" yaml:"average_win"`
	AverageLoss     float64 `json:"average_loss" yaml:"average_loss"`
	LargestWin      float64 `json:"largest_win" yaml:"largest_win"`
	LargestLoss     float64 `json:"largest_loss" yaml:"largest_loss"`
	AverageTradePnL float64 `json:"average_trade_pnl" yaml:"average_trade_pnl"`
	ProfitFactor    float64 `json:"profit_factor" yaml:"profit_factor"`
	Expectancy      float64 `json:"expectancy" yaml:"expectancy"`

	// Account level
	ROI                    float64 `json:"roi" yaml:"roi"`
	FinalEquity            float64 `json:"final_equity" yaml:"final_equity"`
	MaxDrawdown            float64 `json:"max_drawdown" yaml:"max_drawdown"`
	MaxDrawdownPercent     float64 `json:"max_drawdown_percent" yaml:"max_drawdown_percent"`
	CurrentDrawdownPercent float64 `json:"current_drawdown_percent" yaml:"current_drawdown_percent"`
	SharpeRatio            float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
}

// MarshalJSON encodes an unbounded profit factor as a string.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias Metrics
	return json.Marshal(struct {
		alias
		ProfitFactor interface{} `json:"profit_factor"`
	}{alias: alias(m), ProfitFactor: stats.JSONFloat(m.ProfitFactor)})
}

// MonthlyReturn is the net PnL realized in one calendar month.
type MonthlyReturn struct {
	Month  string  `json:"month" yaml:"month"` // 2006-01
	Return float64 `json:"return" yaml:"return"`
	Trades int     `json:"trades" yaml:"trades"`
}

// ComputeMetrics calculates the aggregate metrics for trades against initialCapital.
// An empty trade set yields a zero-valued bundle whose FinalEquity is initialCapital.
func ComputeMetrics(trades []domain.Trade, initialCapital, riskFreeRate float64) Metrics {
	metrics := Metrics{FinalEquity: initialCapital}
	if len(trades) == 0 {
		return metrics
	}

	sorted := domain.SortedByTime(trades)

	for _, trade := range sorted {
		metrics.TotalTrades++
		metrics.TotalPnL += trade.PnL
		metrics.TotalFees += trade.Fees
		metrics.TotalNetPnL += trade.NetPnL

		if trade.IsWin() {
			metrics.WinningTrades++
			metrics.GrossProfit += trade.PnL
			if trade.PnL > metrics.LargestWin {
				metrics.LargestWin = trade.PnL
			}
		} else {
			metrics.LosingTrades++
			loss := -trade.PnL
			metrics.GrossLoss += loss
			if loss > metrics.LargestLoss {
				metrics.LargestLoss = loss
			}
		}
	}

	n := float64(metrics.TotalTrades)
	metrics.WinRate = float64(metrics.WinningTrades) / n * 100
	metrics.AverageTradePnL = metrics.TotalPnL / n
	if metrics.WinningTrades > 0 {
		metrics.AverageWin = metrics.GrossProfit / float64(metrics.WinningTrades)
	}
	if metrics.LosingTrades > 0 {
		metrics.AverageLoss = metrics.GrossLoss / float64(metrics.LosingTrades)
	}
	metrics.ProfitFactor = stats.ProfitFactor(metrics.GrossProfit, metrics.GrossLoss)

	winRate := float64(metrics.WinningTrades) / n
	lossRate := float64(metrics.LosingTrades) / n
	metrics.Expectancy = winRate*metrics.AverageWin - lossRate*metrics.AverageLoss

	metrics.FinalEquity = initialCapital + metrics.TotalNetPnL
	metrics.ROI = stats.Percent(metrics.TotalNetPnL, initialCapital)

	curve := BuildEquityCurve(sorted, initialCapital, time.Time{})
	dd := ComputeDrawdown(curve.Equity)
	metrics.MaxDrawdown = dd.MaxAbsolute
	metrics.MaxDrawdownPercent = dd.MaxPercent
	metrics.CurrentDrawdownPercent = dd.CurrentPercent

	metrics.SharpeRatio = ComputeSharpe(sorted, initialCapital, riskFreeRate)

	return metrics
}

// MonthlyReturns groups net PnL by calendar month in chronological order.
func MonthlyReturns(trades []domain.Trade) []MonthlyReturn {
	months := ordered.New[string, MonthlyReturn]()
	for _, trade := range domain.SortedByTime(trades) {
		key := trade.Timestamp.Format("2006-01")
		months.Update(key, func(m MonthlyReturn) MonthlyReturn {
			m.Month = key
			m.Return += trade.NetPnL
			m.Trades++
			return m
		})
	}

	returns := make([]MonthlyReturn, 0, months.Len())
	months.Each(func(_ string, m MonthlyReturn) {
		returns = append(returns, m)
	})
	return returns
}
