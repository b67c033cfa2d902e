package behavior

import "tradeMetrics/internal/domain"

// StreakType identifies the kind of the current streak.
type StreakType string

const (
	StreakNone StreakType = "none"
	StreakWin  StreakType = "win"
	StreakLoss StreakType = "loss"
)

// Streaks describes the current and the longest win/loss runs.
type Streaks struct {
	Current     int        `json:"current" yaml:"current"`
	CurrentType StreakType `json:"current_type" yaml:"current_type"`
	LongestWin  int        `json:"longest_win" yaml:"longest_win"`
	LongestLoss int        `json:"longest_loss" yaml:"longest_loss"`
}

// AnalyzeStreaks finds the current streak by walking back from the most recent
// trade until the outcome changes, and the longest streaks over the whole history.
func AnalyzeStreaks(trades []domain.Trade) Streaks {
	streaks := Streaks{CurrentType: StreakNone}
	if len(trades) == 0 {
		return streaks
	}

	sorted := domain.SortedByTime(trades)

	last := sorted[len(sorted)-1].IsWin()
	streaks.CurrentType = streakTypeOf(last)
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].IsWin() != last {
			break
		}
		streaks.Current++
	}

	var wins, losses int
	for _, t := range sorted {
		if t.IsWin() {
			wins++
			losses = 0
		} else {
			losses++
			wins = 0
		}
		if wins > streaks.LongestWin {
			streaks.LongestWin = wins
		}
		if losses > streaks.LongestLoss {
			streaks.LongestLoss = losses
		}
	}

	return streaks
}

func streakTypeOf(win bool) StreakType {
	if win {
		return StreakWin
	}
	return StreakLoss
}
