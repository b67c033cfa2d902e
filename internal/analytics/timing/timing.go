// Package timing aggregates trades over calendar days, hours of the day and
// trading sessions, and derives holding-time and frequency statistics.
//
// All calendar bucketing uses each trade's own timestamp location; sources are
// expected to convert timestamps into the reporting time zone at ingestion.
package timing

import (
	"tradeMetrics/internal/analytics/ordered"
	"tradeMetrics/internal/analytics/stats"
	"tradeMetrics/internal/domain"
)

const dateLayout = "2006-01-02"

// DailyPnL is the realized PnL of one calendar date.
type DailyPnL struct {
	Date   string  `json:"date" yaml:"date"`
	PnL    float64 `json:"pnl" yaml:"pnl"`
	NetPnL float64 `json:"net_pnl" yaml:"net_pnl"`
	Trades int     `json:"trades" yaml:"trades"`
}

// HourlyPnL is the realized PnL of trades closed within one hour of the day.
type HourlyPnL struct {
	Hour   int     `json:"hour" yaml:"hour"`
	PnL    float64 `json:"pnl" yaml:"pnl"`
	Trades int     `json:"trades" yaml:"trades"`
}

// Session is a fixed intraday window.
type Session string

const (
	Morning   Session = "morning"   // [00:00, 12:00)
	Afternoon Session = "afternoon" // [12:00, 18:00)
	Evening   Session = "evening"   // [18:00, 24:00)
)

// Sessions lists every session in intraday order.
var Sessions = []Session{Morning, Afternoon, Evening}

// SessionFor returns the session containing hour (0-23).
func SessionFor(hour int) Session {
	switch {
	case hour < 12:
		return Morning
	case hour < 18:
		return Afternoon
	default:
		return Evening
	}
}

// SessionPnL is the realized PnL of one session.
type SessionPnL struct {
	Session Session `json:"session" yaml:"session"`
	PnL     float64 `json:"pnl" yaml:"pnl"`
	Trades  int     `json:"trades" yaml:"trades"`
	WinRate float64 `json:"win_rate" yaml:"win_rate"`
}

// AnalyzeDaily sums PnL per calendar date, in chronological order.
func AnalyzeDaily(trades []domain.Trade) []DailyPnL {
	days := ordered.New[string, DailyPnL]()
	for _, t := range domain.SortedByTime(trades) {
		date := t.Timestamp.Format(dateLayout)
		days.Update(date, func(d DailyPnL) DailyPnL {
			d.Date = date
			d.PnL += t.PnL
			d.NetPnL += t.NetPnL
			d.Trades++
			return d
		})
	}

	out := make([]DailyPnL, 0, days.Len())
	days.Each(func(_ string, d DailyPnL) {
		out = append(out, d)
	})
	return out
}

// AnalyzeHourly sums PnL per hour of the day. Every hour is present, hours
// without trades are zero.
func AnalyzeHourly(trades []domain.Trade) [24]HourlyPnL {
	var hours [24]HourlyPnL
	for h := range hours {
		hours[h].Hour = h
	}
	for _, t := range trades {
		h := t.Timestamp.Hour()
		hours[h].PnL += t.PnL
		hours[h].Trades++
	}
	return hours
}

// AnalyzeSession sums PnL per session, returned in intraday order.
func AnalyzeSession(trades []domain.Trade) []SessionPnL {
	out := make([]SessionPnL, len(Sessions))
	index := make(map[Session]int, len(Sessions))
	for i, s := range Sessions {
		out[i].Session = s
		index[s] = i
	}

	wins := make([]int, len(Sessions))
	for _, t := range trades {
		i := index[SessionFor(t.Timestamp.Hour())]
		out[i].PnL += t.PnL
		out[i].Trades++
		if t.IsWin() {
			wins[i]++
		}
	}
	for i := range out {
		out[i].WinRate = stats.Percent(float64(wins[i]), float64(out[i].Trades))
	}
	return out
}
