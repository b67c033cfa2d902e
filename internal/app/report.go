package app

import (
	"time"

	"tradeMetrics/internal/analytics/behavior"
	"tradeMetrics/internal/analytics/fees"
	"tradeMetrics/internal/analytics/performance"
	"tradeMetrics/internal/analytics/timing"
	"tradeMetrics/internal/risk"
)

// Report is the full analytics output for one trade snapshot.
type Report struct {
	GeneratedAt   time.Time `json:"generated_at" yaml:"generated_at"`
	ReferenceTime time.Time `json:"reference_time" yaml:"reference_time"`
	Symbol        string    `json:"symbol,omitempty" yaml:"symbol,omitempty"` // empty = all symbols
	TradeCount    int       `json:"trade_count" yaml:"trade_count"`

	Performance    performance.Metrics         `json:"performance" yaml:"performance"`
	MonthlyReturns []performance.MonthlyReturn `json:"monthly_returns" yaml:"monthly_returns"`
	EquityCurve    performance.EquityCurve     `json:"equity_curve" yaml:"equity_curve"`

	Behavior BehaviorReport `json:"behavior" yaml:"behavior"`
	Timing   TimingReport   `json:"timing" yaml:"timing"`
	Fees     fees.Summary   `json:"fees" yaml:"fees"`
	Risk     risk.Metrics   `json:"risk" yaml:"risk"`
}

// BehaviorReport groups the trade behavior sections.
type BehaviorReport struct {
	Summary         behavior.Summary             `json:"summary" yaml:"summary"`
	BySymbol        []behavior.SymbolPerformance `json:"by_symbol" yaml:"by_symbol"`
	BySide          []behavior.SideBreakdown     `json:"by_side" yaml:"by_side"`
	Streaks         behavior.Streaks             `json:"streaks" yaml:"streaks"`
	DirectionalBias behavior.DirectionalBias     `json:"directional_bias" yaml:"directional_bias"`
}

// TimingReport groups the time-of-trade sections.
type TimingReport struct {
	Daily     []timing.DailyPnL    `json:"daily" yaml:"daily"`
	Hourly    [24]timing.HourlyPnL `json:"hourly" yaml:"hourly"`
	Sessions  []timing.SessionPnL  `json:"sessions" yaml:"sessions"`
	Durations timing.Durations     `json:"durations" yaml:"durations"`
	Frequency timing.Frequency     `json:"frequency" yaml:"frequency"`
}

// ImportResult reports what an import did.
type ImportResult struct {
	Source  string `json:"source" yaml:"source"`
	Fetched int    `json:"fetched" yaml:"fetched"`
	Saved   int    `json:"saved" yaml:"saved"`
	Skipped int    `json:"skipped" yaml:"skipped"`
}

// SymbolCount is the number of stored trades for one symbol.
type SymbolCount struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Trades int    `json:"trades" yaml:"trades"`
}
