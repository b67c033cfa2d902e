// Package risk scores the behavioral risk of a trade history and detects
// overtrading and clusters of closely spaced trades.
package risk

import (
	"math"
	"time"

	"tradeMetrics/internal/analytics/behavior"
	"tradeMetrics/internal/analytics/ordered"
	"tradeMetrics/internal/analytics/performance"
	"tradeMetrics/internal/analytics/stats"
	"tradeMetrics/internal/domain"
)

// Component caps of the composite risk score. They add up to MaxScore.
const (
	MaxScore           = 100.0
	drawdownCap        = 30.0
	lossStreakCap      = 25.0
	volatilityCap      = 25.0
	overtradingPenalty = 20.0

	drawdownWeight   = 1.5
	lossStreakWeight = 5.0
	volatilityWeight = 2.5
)

// Config holds the thresholds used by the risk engine.
type Config struct {
	ClusterWindow       time.Duration // Maximum gap between consecutive trades of one cluster
	OvertradingLookback int           // Number of most recent trades examined for overtrading
	MinTrades           int           // Minimum trades required before overtrading can be flagged
	MaxAverageGap       time.Duration // Overtrading when the average gap is below this...
	MaxAverageHold      time.Duration // ...and the average holding time is below this
	ChoppyThreshold     float64       // Absolute average PnL below which a mixed cluster is choppy
	MinClusterSize      int           // Groups with fewer trades are not reported
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		ClusterWindow:       2 * time.Hour,
		OvertradingLookback: 30,
		MinTrades:           10,
		MaxAverageGap:       30 * time.Minute,
		MaxAverageHold:      time.Hour,
		ChoppyThreshold:     10,
		MinClusterSize:      3,
	}
}

// Engine implements the risk analytics. It holds configuration only and is safe
// for concurrent use.
type Engine struct {
	config Config
}

// NewEngine creates a risk engine. Zero-valued fields of config take their default.
func NewEngine(config Config) *Engine {
	def := DefaultConfig()
	if config.ClusterWindow <= 0 {
		config.ClusterWindow = def.ClusterWindow
	}
	if config.OvertradingLookback <= 0 {
		config.OvertradingLookback = def.OvertradingLookback
	}
	if config.MinTrades <= 0 {
		config.MinTrades = def.MinTrades
	}
	if config.MaxAverageGap <= 0 {
		config.MaxAverageGap = def.MaxAverageGap
	}
	if config.MaxAverageHold <= 0 {
		config.MaxAverageHold = def.MaxAverageHold
	}
	if config.ChoppyThreshold <= 0 {
		config.ChoppyThreshold = def.ChoppyThreshold
	}
	if config.MinClusterSize <= 0 {
		config.MinClusterSize = def.MinClusterSize
	}
	return &Engine{config: config}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.config
}

// ScoreInputs are the upstream values the composite score is built from.
type ScoreInputs struct {
	MaxDrawdownPercent   float64
	MaxConsecutiveLosses int
	PnLPercentStdDev     float64
	Overtrading          bool
}

// ScoreComponents is the breakdown of a risk score.
type ScoreComponents struct {
	Drawdown    float64 `json:"drawdown" yaml:"drawdown"`
	LossStreak  float64 `json:"loss_streak" yaml:"loss_streak"`
	Volatility  float64 `json:"volatility" yaml:"volatility"`
	Overtrading float64 `json:"overtrading" yaml:"overtrading"`
	Total       float64 `json:"total" yaml:"total"`
}

// ComposeScore weights and caps each component and clamps the sum to [0, MaxScore].
// Non-finite inputs saturate their component at its cap.
func ComposeScore(in ScoreInputs) ScoreComponents {
	c := ScoreComponents{
		Drawdown:   capped(in.MaxDrawdownPercent*drawdownWeight, drawdownCap),
		LossStreak: capped(float64(in.MaxConsecutiveLosses)*lossStreakWeight, lossStreakCap),
		Volatility: capped(in.PnLPercentStdDev*volatilityWeight, volatilityCap),
	}
	if in.Overtrading {
		c.Overtrading = overtradingPenalty
	}
	c.Total = math.Min(math.Max(c.Drawdown+c.LossStreak+c.Volatility+c.Overtrading, 0), MaxScore)
	return c
}

func capped(v, limit float64) float64 {
	switch {
	case math.IsNaN(v), v > limit:
		return limit
	case v < 0:
		return 0
	default:
		return v
	}
}

// Score returns the composite risk score in [0, 100]. The drawdown component is
// measured on an equity curve starting at totalEquity.
func (e *Engine) Score(trades []domain.Trade, totalEquity float64) float64 {
	return e.components(trades, totalEquity).Total
}

func (e *Engine) components(trades []domain.Trade, totalEquity float64) ScoreComponents {
	curve := performance.BuildEquityCurve(trades, totalEquity, time.Time{})
	return ComposeScore(ScoreInputs{
		MaxDrawdownPercent:   performance.ComputeDrawdown(curve.Equity).MaxPercent,
		MaxConsecutiveLosses: AnalyzeConsecutiveLosses(trades).Max,
		PnLPercentStdDev:     Volatility(trades),
		Overtrading:          e.DetectOvertrading(trades),
	})
}

// Volatility is the population standard deviation of the trades' PnL percentages.
func Volatility(trades []domain.Trade) float64 {
	values := make([]float64, len(trades))
	for i, t := range trades {
		values[i] = t.PnLPercentage
	}
	return stats.PopulationStdDev(values)
}

// DetectOvertrading flags a history whose most recent trades are both closely
// spaced and short-lived. It needs at least MinTrades trades overall and within
// the lookback window.
func (e *Engine) DetectOvertrading(trades []domain.Trade) bool {
	if len(trades) < e.config.MinTrades {
		return false
	}

	sorted := domain.SortedByTime(trades)
	recent := sorted
	if len(recent) > e.config.OvertradingLookback {
		recent = recent[len(recent)-e.config.OvertradingLookback:]
	}
	if len(recent) < e.config.MinTrades || len(recent) < 2 {
		return false
	}

	var gaps time.Duration
	holds := make([]time.Duration, len(recent))
	for i, t := range recent {
		holds[i] = t.Duration
		if i > 0 {
			gaps += t.Timestamp.Sub(recent[i-1].Timestamp)
		}
	}
	averageGap := gaps / time.Duration(len(recent)-1)
	averageHold := stats.MeanDuration(holds)

	return averageGap < e.config.MaxAverageGap && averageHold < e.config.MaxAverageHold
}

// ConsecutiveLosses holds the current and the longest run of losing trades.
// Current is 0 unless the most recent trade is a loss.
type ConsecutiveLosses struct {
	Current int `json:"current" yaml:"current"`
	Max     int `json:"max" yaml:"max"`
}

// AnalyzeConsecutiveLosses derives the loss runs from the trade streaks.
func AnalyzeConsecutiveLosses(trades []domain.Trade) ConsecutiveLosses {
	streaks := behavior.AnalyzeStreaks(trades)
	losses := ConsecutiveLosses{Max: streaks.LongestLoss}
	if streaks.CurrentType == behavior.StreakLoss {
		losses.Current = streaks.Current
	}
	return losses
}

// Metrics is the full risk assessment of a trade history.
type Metrics struct {
	RiskScore                float64         `json:"risk_score" yaml:"risk_score"`
	Components               ScoreComponents `json:"components" yaml:"components"`
	CurrentConsecutiveLosses int             `json:"current_consecutive_losses" yaml:"current_consecutive_losses"`
	MaxConsecutiveLosses     int             `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`
	Overtrading              bool            `json:"overtrading" yaml:"overtrading"`
	Volatility               float64         `json:"volatility" yaml:"volatility"`
	// ConsistencyScore is the percentage of trading days that closed with a positive net PnL.
	ConsistencyScore   float64        `json:"consistency_score" yaml:"consistency_score"`
	AverageDailyTrades float64        `json:"average_daily_trades" yaml:"average_daily_trades"`
	Clusters           []TradeCluster `json:"clusters" yaml:"clusters"`
}

// Assess runs every risk analysis on trades.
func (e *Engine) Assess(trades []domain.Trade, totalEquity float64) Metrics {
	components := e.components(trades, totalEquity)
	losses := AnalyzeConsecutiveLosses(trades)

	m := Metrics{
		RiskScore:                components.Total,
		Components:               components,
		CurrentConsecutiveLosses: losses.Current,
		MaxConsecutiveLosses:     losses.Max,
		Overtrading:              components.Overtrading > 0,
		Volatility:               Volatility(trades),
		Clusters:                 e.AnalyzeClusters(trades),
	}
	m.ConsistencyScore, m.AverageDailyTrades = dailyConsistency(trades)
	return m
}

func dailyConsistency(trades []domain.Trade) (consistency, averageDaily float64) {
	days := ordered.New[string, float64]()
	for _, t := range trades {
		days.Update(t.Timestamp.Format("2006-01-02"), func(pnl float64) float64 { return pnl + t.NetPnL })
	}
	if days.Len() == 0 {
		return 0, 0
	}

	positive := 0
	days.Each(func(_ string, pnl float64) {
		if pnl > 0 {
			positive++
		}
	})
	n := float64(days.Len())
	return stats.Percent(float64(positive), n), float64(len(trades)) / n
}
