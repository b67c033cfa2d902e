package timing

import (
	"time"

	"tradeMetrics/internal/analytics/ordered"
	"tradeMetrics/internal/domain"
)

const day = 24 * time.Hour

// Frequency describes how often trades were taken.
type Frequency struct {
	PerDay   float64 `json:"per_day" yaml:"per_day"`
	PerWeek  float64 `json:"per_week" yaml:"per_week"`
	PerMonth float64 `json:"per_month" yaml:"per_month"`

	// Most and least active weekdays are only meaningful when HasActiveDays is set.
	MostActiveDay  time.Weekday `json:"most_active_day" yaml:"most_active_day"`
	LeastActiveDay time.Weekday `json:"least_active_day" yaml:"least_active_day"`
	HasActiveDays  bool         `json:"has_active_days" yaml:"has_active_days"`

	TradesLast7Days  int `json:"trades_last_7_days" yaml:"trades_last_7_days"`
	TradesLast30Days int `json:"trades_last_30_days" yaml:"trades_last_30_days"`
}

// AnalyzeTradeFrequency derives trade rates from the span between the first and
// the last trade. A zero span (one trade, or all at the same instant) reports the
// raw trade count for every rate. Recent-window counts cover [now-N days, now].
func AnalyzeTradeFrequency(trades []domain.Trade, now time.Time) Frequency {
	var f Frequency
	if len(trades) == 0 {
		return f
	}

	sorted := domain.SortedByTime(trades)
	n := float64(len(sorted))
	span := sorted[len(sorted)-1].Timestamp.Sub(sorted[0].Timestamp)
	if span <= 0 {
		f.PerDay, f.PerWeek, f.PerMonth = n, n, n
	} else {
		days := span.Hours() / 24
		f.PerDay = n / days
		f.PerWeek = f.PerDay * 7
		f.PerMonth = f.PerDay * 30
	}

	weekdays := ordered.New[time.Weekday, int]()
	cutoff7 := now.Add(-7 * day)
	cutoff30 := now.Add(-30 * day)
	for _, t := range sorted {
		weekdays.Update(t.Timestamp.Weekday(), func(c int) int { return c + 1 })
		if t.Timestamp.After(now) {
			continue
		}
		if !t.Timestamp.Before(cutoff7) {
			f.TradesLast7Days++
		}
		if !t.Timestamp.Before(cutoff30) {
			f.TradesLast30Days++
		}
	}

	f.MostActiveDay, f.LeastActiveDay = activeDays(weekdays)
	f.HasActiveDays = true
	return f
}

// activeDays walks weekdays in first-seen order; a later day only replaces the
// current pick on a strictly higher (or lower) count.
func activeDays(counts *ordered.Map[time.Weekday, int]) (most, least time.Weekday) {
	maxCount, minCount := -1, -1
	counts.Each(func(d time.Weekday, c int) {
		if c > maxCount {
			most, maxCount = d, c
		}
		if minCount < 0 || c < minCount {
			least, minCount = d, c
		}
	})
	return most, least
}
