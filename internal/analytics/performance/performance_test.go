package performance

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"tradeMetrics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

func trade(id string, offset time.Duration, pnl, fees float64) domain.Trade {
	return domain.Trade{
		ID:         id,
		Timestamp:  base.Add(offset),
		Symbol:     "BTCUSDT",
		Side:       domain.Long,
		EntryPrice: 50000,
		ExitPrice:  50000,
		Quantity:   0.1,
		PnL:        pnl,
		Fees:       fees,
		Duration:   30 * time.Minute,
	}.Normalize()
}

func TestComputeMetrics(t *testing.T) {
	initialBalance := 10000.0
	trades := []domain.Trade{
		trade("1", 0, 500, 0),
		trade("2", time.Hour, -200, 0),
		trade("3", 2*time.Hour, 300, 0),
	}

	metrics := ComputeMetrics(trades, initialBalance, DefaultRiskFreeRate)

	if metrics.TotalTrades != 3 {
		t.Errorf("Expected 3 total trades, got %d", metrics.TotalTrades)
	}
	if metrics.WinningTrades != 2 {
		t.Errorf("Expected 2 winning trades, got %d", metrics.WinningTrades)
	}
	if metrics.TotalPnL != 600 {
		t.Errorf("Expected 600 total pnl, got %f", metrics.TotalPnL)
	}
	assert.InDelta(t, 6.0, metrics.ROI, 1e-9)
	assert.InDelta(t, 66.6667, metrics.WinRate, 1e-3)
	assert.Equal(t, 10600.0, metrics.FinalEquity)
	assert.Equal(t, 400.0, metrics.AverageWin)
	assert.Equal(t, 200.0, metrics.AverageLoss)
	assert.Equal(t, 500.0, metrics.LargestWin)
	assert.Equal(t, 200.0, metrics.LargestLoss)
	assert.Equal(t, 4.0, metrics.ProfitFactor)
	// 2/3*400 - 1/3*200
	assert.InDelta(t, 200.0, metrics.Expectancy, 1e-9)
	// Peak 10500, trough 10300
	assert.InDelta(t, 200.0, metrics.MaxDrawdown, 1e-9)
	assert.InDelta(t, 200.0/10500*100, metrics.MaxDrawdownPercent, 1e-9)
	assert.Equal(t, 0.0, metrics.CurrentDrawdownPercent)
	assert.Equal(t, metrics.WinningTrades+metrics.LosingTrades, metrics.TotalTrades)
}

func TestComputeMetricsEmptyTrades(t *testing.T) {
	metrics := ComputeMetrics(nil, 10000.0, DefaultRiskFreeRate)
	if metrics.TotalTrades != 0 {
		t.Errorf("Expected 0 total trades, got %d", metrics.TotalTrades)
	}
	if metrics.FinalEquity != 10000.0 {
		t.Errorf("Expected final equity of 10000.0, got %f", metrics.FinalEquity)
	}
	assert.Zero(t, metrics.WinRate)
	assert.Zero(t, metrics.ProfitFactor)
	assert.Zero(t, metrics.SharpeRatio)
	assert.Zero(t, metrics.ROI)
}

func TestComputeMetricsDoesNotMutateInput(t *testing.T) {
	trades := []domain.Trade{trade("late", 2*time.Hour, 10, 0), trade("early", 0, -5, 0)}
	ComputeMetrics(trades, 1000, DefaultRiskFreeRate)
	assert.Equal(t, "late", trades[0].ID)
}

func TestComputeMetricsUsesNetPnLForEquity(t *testing.T) {
	trades := []domain.Trade{trade("1", 0, 100, 10)}
	metrics := ComputeMetrics(trades, 1000, DefaultRiskFreeRate)
	assert.Equal(t, 100.0, metrics.TotalPnL)
	assert.Equal(t, 90.0, metrics.TotalNetPnL)
	assert.Equal(t, 1090.0, metrics.FinalEquity)
	assert.InDelta(t, 9.0, metrics.ROI, 1e-9)
}

func TestMetricsMarshalJSONWithInfiniteProfitFactor(t *testing.T) {
	metrics := ComputeMetrics([]domain.Trade{trade("1", 0, 100, 0)}, 1000, DefaultRiskFreeRate)
	require.True(t, math.IsInf(metrics.ProfitFactor, 1))

	data, err := json.Marshal(metrics)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Infinity", decoded["profit_factor"])
	assert.Equal(t, 1.0, decoded["total_trades"])
}

func TestMonthlyReturns(t *testing.T) {
	trades := []domain.Trade{
		trade("3", 40*24*time.Hour, 30, 0),
		trade("1", 0, 100, 5),
		trade("2", 24*time.Hour, -20, 0),
	}

	returns := MonthlyReturns(trades)

	require.Len(t, returns, 2)
	assert.Equal(t, "2024-05", returns[0].Month)
	assert.Equal(t, 75.0, returns[0].Return)
	assert.Equal(t, 2, returns[0].Trades)
	assert.Equal(t, "2024-06", returns[1].Month)
}
