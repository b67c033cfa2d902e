// Package fees analyses trading costs: totals, maker/taker composition, the
// share of profits consumed by fees and a cumulative fee series.
//
// Sums are accumulated with shopspring/decimal so that long histories of small
// fee amounts do not drift.
package fees

import (
	"time"

	"github.com/shopspring/decimal"

	"tradeMetrics/internal/analytics/stats"
	"tradeMetrics/internal/domain"
)

// MakerFeeRatio is the assumed cost of maker execution relative to the fees
// actually paid. It is a flat approximation and ignores each trade's real fee split.
const MakerFeeRatio = 0.5

// FeeComposition splits total fees into maker and taker parts.
type FeeComposition struct {
	Total        float64 `json:"total" yaml:"total"`
	Maker        float64 `json:"maker" yaml:"maker"`
	Taker        float64 `json:"taker" yaml:"taker"`
	MakerPercent float64 `json:"maker_percent" yaml:"maker_percent"`
	TakerPercent float64 `json:"taker_percent" yaml:"taker_percent"`
}

// FeePoint is one step of the cumulative fee series.
type FeePoint struct {
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Fee        float64   `json:"fee" yaml:"fee"`
	Cumulative float64   `json:"cumulative" yaml:"cumulative"`
}

// FeeSavings compares actual fees with a hypothetical all-maker execution.
type FeeSavings struct {
	ActualFees         float64 `json:"actual_fees" yaml:"actual_fees"`
	EstimatedMakerFees float64 `json:"estimated_maker_fees" yaml:"estimated_maker_fees"`
	PotentialSavings   float64 `json:"potential_savings" yaml:"potential_savings"`
	SavingsPercent     float64 `json:"savings_percent" yaml:"savings_percent"`
}

// Summary bundles every fee aggregate.
type Summary struct {
	TotalFees        float64        `json:"total_fees" yaml:"total_fees"`
	TotalVolume      float64        `json:"total_volume" yaml:"total_volume"`
	FeeToProfitRatio float64        `json:"fee_to_profit_ratio" yaml:"fee_to_profit_ratio"`
	Composition      FeeComposition `json:"composition" yaml:"composition"`
	Savings          FeeSavings     `json:"savings" yaml:"savings"`
	Cumulative       []FeePoint     `json:"cumulative" yaml:"cumulative"`
}

// Analyze computes the fee Summary for trades.
func Analyze(trades []domain.Trade) Summary {
	return Summary{
		TotalFees:        TotalFees(trades),
		TotalVolume:      TotalVolume(trades),
		FeeToProfitRatio: FeeToProfitRatio(trades),
		Composition:      Composition(trades),
		Savings:          EstimateFeeSavings(trades),
		Cumulative:       CumulativeFees(trades),
	}
}

// TotalFees sums the fees of all trades.
func TotalFees(trades []domain.Trade) float64 {
	return sumFees(trades).InexactFloat64()
}

// TotalVolume sums the notional volume of all trades.
func TotalVolume(trades []domain.Trade) float64 {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.Volume))
	}
	return total.InexactFloat64()
}

// Composition splits fees into maker and taker totals. Trades without an
// explicit FeeSplit are attributed by order type: limit orders as maker,
// everything else as taker.
func Composition(trades []domain.Trade) FeeComposition {
	maker, taker := decimal.Zero, decimal.Zero
	for _, t := range trades {
		switch {
		case t.FeeSplit != nil:
			maker = maker.Add(decimal.NewFromFloat(t.FeeSplit.Maker))
			taker = taker.Add(decimal.NewFromFloat(t.FeeSplit.Taker))
		case t.OrderType == domain.OrderTypeLimit:
			maker = maker.Add(decimal.NewFromFloat(t.Fees))
		default:
			taker = taker.Add(decimal.NewFromFloat(t.Fees))
		}
	}

	total := maker.Add(taker)
	c := FeeComposition{
		Total: total.InexactFloat64(),
		Maker: maker.InexactFloat64(),
		Taker: taker.InexactFloat64(),
	}
	c.MakerPercent = stats.Percent(c.Maker, c.Total)
	c.TakerPercent = stats.Percent(c.Taker, c.Total)
	return c
}

// FeeToProfitRatio returns total fees as a percentage of the gross profit of
// winning trades, 0 when there is no gross profit.
func FeeToProfitRatio(trades []domain.Trade) float64 {
	grossProfit := decimal.Zero
	for _, t := range trades {
		if t.IsWin() {
			grossProfit = grossProfit.Add(decimal.NewFromFloat(t.PnL))
		}
	}
	if grossProfit.IsZero() {
		return 0
	}
	return sumFees(trades).Div(grossProfit).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// CumulativeFees returns the running fee total over chronologically sorted trades.
func CumulativeFees(trades []domain.Trade) []FeePoint {
	sorted := domain.SortedByTime(trades)
	points := make([]FeePoint, 0, len(sorted))
	running := decimal.Zero
	for _, t := range sorted {
		running = running.Add(decimal.NewFromFloat(t.Fees))
		points = append(points, FeePoint{
			Timestamp:  t.Timestamp,
			Fee:        t.Fees,
			Cumulative: running.InexactFloat64(),
		})
	}
	return points
}

// EstimateFeeSavings estimates what the fees would have been with maker-only
// execution, using the flat MakerFeeRatio.
func EstimateFeeSavings(trades []domain.Trade) FeeSavings {
	actual := sumFees(trades)
	estimated := actual.Mul(decimal.NewFromFloat(MakerFeeRatio))
	savings := actual.Sub(estimated)

	s := FeeSavings{
		ActualFees:         actual.InexactFloat64(),
		EstimatedMakerFees: estimated.InexactFloat64(),
		PotentialSavings:   savings.InexactFloat64(),
	}
	s.SavingsPercent = stats.Percent(s.PotentialSavings, s.ActualFees)
	return s
}

func sumFees(trades []domain.Trade) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.Fees))
	}
	return total
}
