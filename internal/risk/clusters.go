package risk

import (
	"math"
	"time"

	"tradeMetrics/internal/domain"
)

// ClusterPattern classifies a cluster by its outcome composition.
type ClusterPattern string

const (
	PatternWinningStreak ClusterPattern = "winning-streak"
	PatternLosingStreak  ClusterPattern = "losing-streak"
	PatternChoppy        ClusterPattern = "choppy"
	PatternNormal        ClusterPattern = "normal"
)

// streakShare is the share of wins (or losses) that makes a cluster a streak.
const streakShare = 0.7

// TradeCluster is a run of trades each closed within the cluster window of the previous one.
type TradeCluster struct {
	StartTime  time.Time      `json:"start_time" yaml:"start_time"`
	EndTime    time.Time      `json:"end_time" yaml:"end_time"`
	TradeCount int            `json:"trade_count" yaml:"trade_count"`
	Wins       int            `json:"wins" yaml:"wins"`
	TotalPnL   float64        `json:"total_pnl" yaml:"total_pnl"`
	AveragePnL float64        `json:"average_pnl" yaml:"average_pnl"`
	Pattern    ClusterPattern `json:"pattern" yaml:"pattern"`
}

// AnalyzeClusters groups chronologically consecutive trades whose gap to the
// previous trade is at most ClusterWindow. Groups smaller than MinClusterSize are dropped.
func (e *Engine) AnalyzeClusters(trades []domain.Trade) []TradeCluster {
	sorted := domain.SortedByTime(trades)
	var clusters []TradeCluster

	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Timestamp.Sub(sorted[i-1].Timestamp) <= e.config.ClusterWindow {
			continue
		}
		if group := sorted[start:i]; len(group) >= e.config.MinClusterSize {
			clusters = append(clusters, e.buildCluster(group))
		}
		start = i
	}
	return clusters
}

func (e *Engine) buildCluster(group []domain.Trade) TradeCluster {
	c := TradeCluster{
		StartTime:  group[0].Timestamp,
		EndTime:    group[len(group)-1].Timestamp,
		TradeCount: len(group),
	}
	for _, t := range group {
		c.TotalPnL += t.PnL
		if t.IsWin() {
			c.Wins++
		}
	}
	c.AveragePnL = c.TotalPnL / float64(c.TradeCount)
	c.Pattern = e.classify(c)
	return c
}

func (e *Engine) classify(c TradeCluster) ClusterPattern {
	n := float64(c.TradeCount)
	switch {
	case float64(c.Wins)/n >= streakShare:
		return PatternWinningStreak
	case float64(c.TradeCount-c.Wins)/n >= streakShare:
		return PatternLosingStreak
	case math.Abs(c.AveragePnL) < e.config.ChoppyThreshold:
		return PatternChoppy
	default:
		return PatternNormal
	}
}
