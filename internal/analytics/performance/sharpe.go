package performance

import (
	"math"

	"tradeMetrics/internal/analytics/ordered"
	"tradeMetrics/internal/analytics/stats"
	"tradeMetrics/internal/domain"
)

const tradingDaysPerYear = 252

// ComputeSharpe returns the annualized Sharpe ratio of daily returns.
// Net PnL is bucketed by the trade's local calendar date and expressed as a
// percentage of initialCapital; the annual riskFreeRate is converted to the same
// daily percentage units before being subtracted.
func ComputeSharpe(trades []domain.Trade, initialCapital, riskFreeRate float64) float64 {
	if initialCapital <= 0 {
		return 0
	}

	daily := ordered.New[string, float64]()
	for _, trade := range trades {
		key := trade.Timestamp.Format("2006-01-02")
		daily.Update(key, func(v float64) float64 { return v + trade.NetPnL })
	}
	if daily.Len() == 0 {
		return 0
	}

	returns := make([]float64, 0, daily.Len())
	daily.Each(func(_ string, pnl float64) {
		returns = append(returns, pnl/initialCapital*100)
	})

	std := stats.PopulationStdDev(returns)
	if std == 0 {
		return 0
	}
	dailyRiskFree := riskFreeRate / tradingDaysPerYear * 100
	return (stats.Mean(returns) - dailyRiskFree) / std * math.Sqrt(tradingDaysPerYear)
}
