package fees

import (
	"testing"
	"time"

	"tradeMetrics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

func trade(offset time.Duration, pnl, fees float64, orderType domain.OrderType) domain.Trade {
	return domain.Trade{
		Timestamp:  base.Add(offset),
		Symbol:     "ETHUSDT",
		Side:       domain.Short,
		EntryPrice: 3000,
		Quantity:   0.5,
		PnL:        pnl,
		Fees:       fees,
		OrderType:  orderType,
	}.Normalize()
}

func TestTotals(t *testing.T) {
	trades := []domain.Trade{
		trade(0, 10, 0.1, domain.OrderTypeMarket),
		trade(time.Hour, -5, 0.2, domain.OrderTypeLimit),
	}

	assert.Equal(t, 0.3, TotalFees(trades), "decimal sum avoids 0.30000000000000004")
	assert.Equal(t, 3000.0, TotalVolume(trades))
	assert.Zero(t, TotalFees(nil))
	assert.Zero(t, TotalVolume(nil))
}

func TestComposition(t *testing.T) {
	split := trade(2*time.Hour, 1, 3, domain.OrderTypeMarket)
	split.FeeSplit = &domain.FeeSplit{Maker: 1, Taker: 2}

	trades := []domain.Trade{
		trade(0, 10, 4, domain.OrderTypeLimit),
		trade(time.Hour, -5, 2, domain.OrderTypeStop),
		split,
	}

	c := Composition(trades)

	assert.Equal(t, 9.0, c.Total)
	assert.Equal(t, 5.0, c.Maker)
	assert.Equal(t, 4.0, c.Taker)
	assert.InDelta(t, 55.5556, c.MakerPercent, 1e-3)
	assert.InDelta(t, 44.4444, c.TakerPercent, 1e-3)
}

func TestCompositionWithoutFees(t *testing.T) {
	c := Composition([]domain.Trade{trade(0, 10, 0, domain.OrderTypeMarket)})
	assert.Equal(t, FeeComposition{}, c)
}

func TestFeeToProfitRatio(t *testing.T) {
	tests := []struct {
		name   string
		trades []domain.Trade
		want   float64
	}{
		{name: "no trades", want: 0},
		{
			name:   "only losses",
			trades: []domain.Trade{trade(0, -10, 1, domain.OrderTypeMarket)},
			want:   0,
		},
		{
			name: "fees of every trade over winning profit",
			trades: []domain.Trade{
				trade(0, 200, 4, domain.OrderTypeMarket),
				trade(time.Hour, -50, 6, domain.OrderTypeMarket),
			},
			want: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FeeToProfitRatio(tt.trades))
		})
	}
}

func TestCumulativeFees(t *testing.T) {
	trades := []domain.Trade{
		trade(2*time.Hour, 0, 0.3, domain.OrderTypeMarket),
		trade(0, 0, 0.1, domain.OrderTypeMarket),
		trade(time.Hour, 0, 0.2, domain.OrderTypeMarket),
	}

	points := CumulativeFees(trades)

	require.Len(t, points, 3)
	assert.Equal(t, base, points[0].Timestamp)
	assert.Equal(t, 0.1, points[0].Cumulative)
	assert.Equal(t, 0.3, points[1].Cumulative)
	assert.Equal(t, 0.6, points[2].Cumulative)
	assert.Equal(t, 0.3, points[2].Fee)
	assert.Empty(t, CumulativeFees(nil))
}

func TestEstimateFeeSavings(t *testing.T) {
	trades := []domain.Trade{
		trade(0, 10, 6, domain.OrderTypeMarket),
		trade(time.Hour, 10, 2, domain.OrderTypeLimit),
	}

	s := EstimateFeeSavings(trades)

	assert.Equal(t, FeeSavings{ActualFees: 8, EstimatedMakerFees: 4, PotentialSavings: 4, SavingsPercent: 50}, s)
	assert.Equal(t, FeeSavings{}, EstimateFeeSavings(nil))
}

func TestAnalyze(t *testing.T) {
	trades := []domain.Trade{trade(0, 100, 1, domain.OrderTypeLimit)}

	s := Analyze(trades)

	assert.Equal(t, 1.0, s.TotalFees)
	assert.Equal(t, 1.0, s.FeeToProfitRatio)
	assert.Equal(t, 100.0, s.Composition.MakerPercent)
	assert.Len(t, s.Cumulative, 1)
}
