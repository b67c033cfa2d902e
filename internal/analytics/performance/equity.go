package performance

import (
	"math"
	"time"

	"tradeMetrics/internal/domain"
)

// EquityPoint represents a point on the equity curve.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Equity    float64   `json:"equity" yaml:"equity"`
}

// DrawdownPoint is the percentage decline from the running peak at a curve point.
type DrawdownPoint struct {
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
	DrawdownPercent float64   `json:"drawdown_percent" yaml:"drawdown_percent"`
}

// EquityCurve holds parallel equity and drawdown series.
type EquityCurve struct {
	Equity   []EquityPoint   `json:"equity" yaml:"equity"`
	Drawdown []DrawdownPoint `json:"drawdown" yaml:"drawdown"`
}

// Drawdown summarises the drawdowns of an equity curve.
type Drawdown struct {
	MaxAbsolute    float64 `json:"max_absolute" yaml:"max_absolute"`
	MaxPercent     float64 `json:"max_percent" yaml:"max_percent"`
	CurrentPercent float64 `json:"current_percent" yaml:"current_percent"`
}

// BuildEquityCurve replays trades chronologically on top of initialCapital.
// The first point is synthetic: it sits at the first trade's timestamp (asOf when
// there are no trades) with the initial capital. Each later point adds one trade's
// net PnL.
func BuildEquityCurve(trades []domain.Trade, initialCapital float64, asOf time.Time) EquityCurve {
	sorted := domain.SortedByTime(trades)

	start := asOf
	if len(sorted) > 0 {
		start = sorted[0].Timestamp
	}

	curve := EquityCurve{
		Equity:   make([]EquityPoint, 0, len(sorted)+1),
		Drawdown: make([]DrawdownPoint, 0, len(sorted)+1),
	}
	curve.Equity = append(curve.Equity, EquityPoint{Timestamp: start, Equity: initialCapital})
	curve.Drawdown = append(curve.Drawdown, DrawdownPoint{Timestamp: start})

	balance := initialCapital
	peak := initialCapital
	for _, trade := range sorted {
		balance += trade.NetPnL
		if balance > peak {
			peak = balance
		}
		curve.Equity = append(curve.Equity, EquityPoint{Timestamp: trade.Timestamp, Equity: balance})
		curve.Drawdown = append(curve.Drawdown, DrawdownPoint{
			Timestamp:       trade.Timestamp,
			DrawdownPercent: drawdownPercent(peak, balance),
		})
	}

	return curve
}

// ComputeDrawdown scans an equity curve with a running peak.
// CurrentPercent compares the final point with the curve's global maximum.
func ComputeDrawdown(curve []EquityPoint) Drawdown {
	var dd Drawdown
	if len(curve) == 0 {
		return dd
	}

	peak := curve[0].Equity
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if abs := peak - p.Equity; abs > dd.MaxAbsolute {
			dd.MaxAbsolute = abs
		}
		if pct := drawdownPercent(peak, p.Equity); pct > dd.MaxPercent {
			dd.MaxPercent = pct
		}
	}

	globalMax := curve[0].Equity
	for _, p := range curve[1:] {
		globalMax = math.Max(globalMax, p.Equity)
	}
	dd.CurrentPercent = drawdownPercent(globalMax, curve[len(curve)-1].Equity)

	return dd
}

// drawdownPercent is clamped to [0,100]; a non-positive peak has no defined drawdown.
func drawdownPercent(peak, value float64) float64 {
	if peak <= 0 {
		return 0
	}
	pct := (peak - value) / peak * 100
	return math.Min(math.Max(pct, 0), 100)
}
