package ports

import (
	"context"
	"time"

	"tradeMetrics/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving closed trades.
type TradeRepository interface {
	// SaveTrades inserts or replaces trades keyed by their ID and returns the number written.
	SaveTrades(ctx context.Context, trades []domain.Trade) (int, error)
	// FindAll retrieves every stored trade, ordered by timestamp ascending.
	FindAll(ctx context.Context) ([]domain.Trade, error)
	// FindBySymbol retrieves all trades for a symbol, ordered by timestamp ascending.
	FindBySymbol(ctx context.Context, symbol string) ([]domain.Trade, error)
	// FindBetween retrieves trades with from <= timestamp < to.
	FindBetween(ctx context.Context, from, to time.Time) ([]domain.Trade, error)
	// CountBySymbol returns the number of stored trades per symbol.
	CountBySymbol(ctx context.Context) (map[string]int, error)
}

// TradeSource supplies closed trades from an external origin (file, exchange).
// Returned trades are not guaranteed to be ordered or valid.
type TradeSource interface {
	// Name identifies the source in logs.
	Name() string
	// FetchTrades returns the trades currently available from the source.
	FetchTrades(ctx context.Context) ([]domain.Trade, error)
}
