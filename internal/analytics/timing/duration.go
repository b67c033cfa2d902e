package timing

import (
	"encoding/json"
	"time"

	"tradeMetrics/internal/analytics/stats"
	"tradeMetrics/internal/domain"
)

// Durations summarizes holding times.
type Durations struct {
	Average     time.Duration `json:"-" yaml:"average"`
	Median      time.Duration `json:"-" yaml:"median"`
	Shortest    time.Duration `json:"-" yaml:"shortest"`
	Longest     time.Duration `json:"-" yaml:"longest"`
	AverageWin  time.Duration `json:"-" yaml:"average_win"`
	AverageLoss time.Duration `json:"-" yaml:"average_loss"`
}

// MarshalJSON writes the durations as Go duration strings.
func (d Durations) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"average":      d.Average.String(),
		"median":       d.Median.String(),
		"shortest":     d.Shortest.String(),
		"longest":      d.Longest.String(),
		"average_win":  d.AverageWin.String(),
		"average_loss": d.AverageLoss.String(),
	})
}

// DurationMetrics computes holding-time statistics. The median of an even
// number of trades is the mean of the two middle durations.
func DurationMetrics(trades []domain.Trade) Durations {
	var d Durations
	if len(trades) == 0 {
		return d
	}

	all := make([]time.Duration, 0, len(trades))
	var wins, losses []time.Duration
	d.Shortest = trades[0].Duration
	for _, t := range trades {
		all = append(all, t.Duration)
		if t.IsWin() {
			wins = append(wins, t.Duration)
		} else {
			losses = append(losses, t.Duration)
		}
		if t.Duration < d.Shortest {
			d.Shortest = t.Duration
		}
		if t.Duration > d.Longest {
			d.Longest = t.Duration
		}
	}

	d.Average = stats.MeanDuration(all)
	d.Median = stats.MedianDuration(all)
	d.AverageWin = stats.MeanDuration(wins)
	d.AverageLoss = stats.MeanDuration(losses)
	return d
}
