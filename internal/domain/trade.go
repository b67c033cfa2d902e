package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrInvalidTrade is wrapped by every error returned from Trade.Validate.
var ErrInvalidTrade = errors.New("invalid trade")

// netPnLTolerance absorbs float rounding when checking NetPnL == PnL - Fees.
const netPnLTolerance = 1e-6

// FeeSplit is the optional maker/taker decomposition of a trade's fees.
type FeeSplit struct {
	Maker float64
	Taker float64
}

// Trade represents a closed trade as supplied by a trade source.
// Analytics code treats it as immutable.
type Trade struct {
	ID            string        // Unique identifier (exchange id or generated ULID)
	Timestamp     time.Time     // Time the trade was closed
	Symbol        string        // Trading symbol (e.g., "BTCUSDT")
	Side          Side          // long or short
	EntryPrice    float64       // Price at which the position was entered
	ExitPrice     float64       // Price at which the position was exited
	Quantity      float64       // Size of the position
	Leverage      int           // Leverage used, 0 when unknown
	PnL           float64       // Realized profit and loss before fees
	PnLPercentage float64       // PnL relative to the position's margin, in percent
	Fees          float64       // Total fees paid
	NetPnL        float64       // PnL - Fees
	OrderType     OrderType     // Order type used to close the trade
	Duration      time.Duration // Holding time
	Outcome       Outcome       // win if PnL > 0, loss otherwise
	Volume        float64       // Notional volume (EntryPrice * Quantity)
	FeeSplit      *FeeSplit     // Maker/taker fee split, nil when unknown
	Notes         string
	Tags          []string
}

// Normalize returns a copy with the derived fields (NetPnL, Outcome, Volume) filled in.
// Volume is only derived when it was not supplied.
func (t Trade) Normalize() Trade {
	t.NetPnL = t.PnL - t.Fees
	t.Outcome = OutcomeFor(t.PnL)
	if t.Volume == 0 {
		t.Volume = t.EntryPrice * t.Quantity
	}
	if t.OrderType == "" {
		t.OrderType = OrderTypeMarket
	}
	return t
}

// IsWin reports whether the trade closed with a positive PnL.
func (t Trade) IsWin() bool {
	return t.PnL > 0
}

// Validate checks the preconditions the analytics engines rely on.
// The engines themselves perform no filtering, so sources must call this at ingestion.
func (t Trade) Validate() error {
	var errs []string

	if strings.TrimSpace(t.Symbol) == "" {
		errs = append(errs, "symbol must be set")
	}
	if t.Timestamp.IsZero() {
		errs = append(errs, "timestamp must be set")
	}
	if t.Side != Long && t.Side != Short {
		errs = append(errs, fmt.Sprintf("unknown side %q", t.Side))
	}
	if t.Quantity <= 0 {
		errs = append(errs, "quantity must be positive")
	}
	if t.EntryPrice < 0 || t.ExitPrice < 0 {
		errs = append(errs, "prices cannot be negative")
	}
	if t.Fees < 0 {
		errs = append(errs, "fees cannot be negative")
	}
	if t.Duration < 0 {
		errs = append(errs, "duration cannot be negative")
	}
	if t.Leverage < 0 {
		errs = append(errs, "leverage cannot be negative")
	}
	if math.Abs(t.NetPnL-(t.PnL-t.Fees)) > netPnLTolerance {
		errs = append(errs, "net pnl must equal pnl minus fees")
	}
	if t.Outcome != OutcomeFor(t.PnL) {
		errs = append(errs, "outcome does not match pnl sign")
	}
	if t.FeeSplit != nil && (t.FeeSplit.Maker < 0 || t.FeeSplit.Taker < 0) {
		errs = append(errs, "fee split cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w %s: %s", ErrInvalidTrade, t.ID, strings.Join(errs, "; "))
	}
	return nil
}

// SortedByTime returns a chronologically ordered copy of trades. The sort is stable:
// trades sharing a timestamp keep their input order, which callers should not depend on.
func SortedByTime(trades []Trade) []Trade {
	sorted := make([]Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}
