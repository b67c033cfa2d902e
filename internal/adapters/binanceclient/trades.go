package binanceclient

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"tradeMetrics/internal/domain"
	"tradeMetrics/internal/ports"
)

// TradeSource implements ports.TradeSource over the account's futures fills.
// Every fill that realized PnL becomes one closed trade.
type TradeSource struct {
	client   *Client
	symbols  []string
	since    time.Time
	until    time.Time
	location *time.Location
}

// TradeSourceConfig selects which fills are imported.
type TradeSourceConfig struct {
	Symbols []string
	Since   time.Time
	Until   time.Time
	// Location is the zone trade timestamps are converted into. Defaults to UTC.
	Location *time.Location
}

// NewTradeSource creates a trade source reading fills through client.
func NewTradeSource(client *Client, cfg TradeSourceConfig) (*TradeSource, error) {
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required: %w", ports.ErrConfigurationError)
	}
	if !cfg.Since.Before(cfg.Until) {
		return nil, fmt.Errorf("import range %s..%s is empty: %w", cfg.Since, cfg.Until, ports.ErrConfigurationError)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &TradeSource{client: client, symbols: cfg.Symbols, since: cfg.Since, until: cfg.Until, location: loc}, nil
}

// Name identifies the source in logs.
func (s *TradeSource) Name() string {
	return "binance-futures"
}

// FetchTrades downloads and translates the fills of every configured symbol.
func (s *TradeSource) FetchTrades(ctx context.Context) ([]domain.Trade, error) {
	if err := s.client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrSourceUnavailable, err)
	}

	var trades []domain.Trade
	for _, symbol := range s.symbols {
		fills, err := s.client.ListAccountTrades(ctx, symbol, s.since, s.until)
		if err != nil {
			return nil, err
		}
		closed, err := TranslateAccountTrades(fills, s.location)
		if err != nil {
			return nil, fmt.Errorf("translate %s fills: %w", symbol, err)
		}
		s.client.logger.Info(ctx, "Binance fills translated", map[string]interface{}{
			"symbol": symbol, "fills": len(fills), "closedTrades": len(closed),
		})
		trades = append(trades, closed...)
	}
	return trades, nil
}

type openPosition struct {
	qty      decimal.Decimal // signed, positive for long
	openedAt time.Time
}

// TranslateAccountTrades turns one account's fills into closed trades.
// Fills with a non-zero realized PnL close (part of) a position; the entry price
// is derived from the PnL, and the holding time runs from the fill that opened
// the position. Break-even closes realize no PnL and are not reported.
func TranslateAccountTrades(fills []*futures.AccountTrade, loc *time.Location) ([]domain.Trade, error) {
	sorted := make([]*futures.AccountTrade, len(fills))
	copy(sorted, fills)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Time != sorted[j].Time {
			return sorted[i].Time < sorted[j].Time
		}
		return sorted[i].ID < sorted[j].ID
	})

	positions := make(map[string]*openPosition)
	var trades []domain.Trade
	for _, fill := range sorted {
		f, err := parseFill(fill)
		if err != nil {
			return nil, fmt.Errorf("fill %d: %w: %v", fill.ID, ports.ErrMalformedRecord, err)
		}
		at := time.UnixMilli(fill.Time).In(loc)

		key := fill.Symbol + "/" + string(fill.PositionSide)
		pos, ok := positions[key]
		if !ok {
			pos = &openPosition{}
			positions[key] = pos
		}
		if pos.qty.IsZero() {
			pos.openedAt = at
		}

		if !f.pnl.IsZero() {
			trades = append(trades, closedTrade(fill, f, at, at.Sub(pos.openedAt)))
		}

		signed := f.qty
		if fill.Side == futures.SideTypeSell {
			signed = signed.Neg()
		}
		next := pos.qty.Add(signed)
		if next.Sign() != 0 && next.Sign() != pos.qty.Sign() {
			pos.openedAt = at // flipped through flat
		}
		pos.qty = next
	}
	return trades, nil
}

type parsedFill struct {
	price, qty, pnl, fee decimal.Decimal
}

func parseFill(fill *futures.AccountTrade) (parsedFill, error) {
	var f parsedFill
	var err error
	if f.price, err = decimal.NewFromString(fill.Price); err != nil {
		return f, fmt.Errorf("price %q: %v", fill.Price, err)
	}
	if f.qty, err = decimal.NewFromString(fill.Quantity); err != nil {
		return f, fmt.Errorf("qty %q: %v", fill.Quantity, err)
	}
	if f.pnl, err = decimal.NewFromString(fill.RealizedPnl); err != nil {
		return f, fmt.Errorf("realizedPnl %q: %v", fill.RealizedPnl, err)
	}
	if f.fee, err = decimal.NewFromString(fill.Commission); err != nil {
		return f, fmt.Errorf("commission %q: %v", fill.Commission, err)
	}
	if !f.qty.IsPositive() {
		return f, fmt.Errorf("quantity must be positive, got %s", fill.Quantity)
	}
	return f, nil
}

func closedTrade(fill *futures.AccountTrade, f parsedFill, at time.Time, held time.Duration) domain.Trade {
	// Selling closes a long, buying closes a short, unless hedge mode says otherwise.
	side := domain.Long
	if fill.PositionSide == futures.PositionSideTypeShort ||
		(fill.PositionSide != futures.PositionSideTypeLong && fill.Side == futures.SideTypeBuy) {
		side = domain.Short
	}

	perUnit := f.pnl.Div(f.qty)
	entry := f.price.Sub(perUnit)
	if side == domain.Short {
		entry = f.price.Add(perUnit)
	}

	notional := entry.Mul(f.qty)
	var pnlPct decimal.Decimal
	if !notional.IsZero() {
		pnlPct = f.pnl.Div(notional).Mul(decimal.NewFromInt(100))
	}

	fee := f.fee.InexactFloat64()
	orderType := domain.OrderTypeMarket
	split := &domain.FeeSplit{Taker: fee}
	if fill.Maker {
		orderType = domain.OrderTypeLimit
		split = &domain.FeeSplit{Maker: fee}
	}

	return domain.Trade{
		ID:            "binance-" + fill.Symbol + "-" + strconv.FormatInt(fill.ID, 10),
		Timestamp:     at,
		Symbol:        fill.Symbol,
		Side:          side,
		EntryPrice:    entry.InexactFloat64(),
		ExitPrice:     f.price.InexactFloat64(),
		Quantity:      f.qty.InexactFloat64(),
		PnL:           f.pnl.InexactFloat64(),
		PnLPercentage: pnlPct.Round(6).InexactFloat64(),
		Fees:          fee,
		OrderType:     orderType,
		Duration:      held,
		FeeSplit:      split,
		Tags:          []string{"binance"},
	}.Normalize()
}
