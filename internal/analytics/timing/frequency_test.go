package timing

import (
	"testing"
	"time"

	"tradeMetrics/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeTradeFrequency(t *testing.T) {
	now := base.AddDate(0, 0, 10)
	trades := []domain.Trade{
		trade(base, 1, 0),                   // Monday
		trade(base.Add(2*time.Hour), 1, 0),  // Monday
		trade(base.AddDate(0, 0, 1), 1, 0),  // Tuesday
		trade(base.AddDate(0, 0, 4), 1, 0),  // Friday
		trade(base.AddDate(0, 0, 8), -1, 0), // Tuesday
	}

	f := AnalyzeTradeFrequency(trades, now)

	assert.InDelta(t, 5.0/8, f.PerDay, 1e-9)
	assert.InDelta(t, 5.0/8*7, f.PerWeek, 1e-9)
	assert.InDelta(t, 5.0/8*30, f.PerMonth, 1e-9)
	assert.True(t, f.HasActiveDays)
	// Monday and Tuesday both have two trades; Monday was seen first.
	assert.Equal(t, time.Monday, f.MostActiveDay)
	assert.Equal(t, time.Friday, f.LeastActiveDay)
	assert.Equal(t, 2, f.TradesLast7Days)
	assert.Equal(t, 5, f.TradesLast30Days)
}

func TestAnalyzeTradeFrequencyZeroSpan(t *testing.T) {
	trades := []domain.Trade{trade(base, 1, 0), trade(base, -1, 0), trade(base, 2, 0)}

	f := AnalyzeTradeFrequency(trades, base)

	assert.Equal(t, 3.0, f.PerDay)
	assert.Equal(t, 3.0, f.PerWeek)
	assert.Equal(t, 3.0, f.PerMonth)
	assert.Equal(t, time.Monday, f.MostActiveDay)
	assert.Equal(t, time.Monday, f.LeastActiveDay)
	assert.Equal(t, 3, f.TradesLast7Days)
}

func TestAnalyzeTradeFrequencyIgnoresFutureTradesInWindows(t *testing.T) {
	trades := []domain.Trade{trade(base, 1, 0), trade(base.AddDate(0, 0, 2), 1, 0)}

	f := AnalyzeTradeFrequency(trades, base.AddDate(0, 0, 1))

	assert.Equal(t, 1, f.TradesLast7Days)
	assert.Equal(t, 1, f.TradesLast30Days)
}

func TestAnalyzeTradeFrequencyEmpty(t *testing.T) {
	f := AnalyzeTradeFrequency(nil, base)
	assert.Equal(t, Frequency{}, f)
	assert.False(t, f.HasActiveDays)
}
