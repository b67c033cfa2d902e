package domain

import (
	"fmt"
	"strings"
)

// Side represents the direction of a trade (long or short).
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// ParseSide converts user or exchange input into a Side.
// BUY/SELL are accepted as aliases for long/short.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy":
		return Long, nil
	case "short", "sell":
		return Short, nil
	default:
		return "", fmt.Errorf("unknown side %q", s)
	}
}

// Outcome classifies a closed trade by the sign of its PnL.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// OutcomeFor returns win for a strictly positive PnL and loss otherwise.
// Break-even trades (PnL == 0) are counted as losses.
func OutcomeFor(pnl float64) Outcome {
	if pnl > 0 {
		return OutcomeWin
	}
	return OutcomeLoss
}

// OrderType is the order type used to close the trade.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"
)

// ParseOrderType converts input into an OrderType. An empty string maps to market.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "market":
		return OrderTypeMarket, nil
	case "limit":
		return OrderTypeLimit, nil
	case "stop", "stop_market", "stop-market":
		return OrderTypeStop, nil
	default:
		return "", fmt.Errorf("unknown order type %q", s)
	}
}
