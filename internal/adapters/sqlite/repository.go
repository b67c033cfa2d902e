package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradeMetrics/internal/domain"
	"tradeMetrics/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.TradeRepository interface using SQLite.
type Repository struct {
	db       *sql.DB
	logger   ports.Logger
	location *time.Location
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
	// Location is applied to timestamps read back from the store. Defaults to UTC.
	Location *time.Location
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trades.db" // Default path
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %v", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %v", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection serializes writers; SQLite locks the whole file anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger, location: loc}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// Timestamps are stored as Unix nanoseconds so range queries compare integers.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		closed_at INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		quantity REAL NOT NULL,
		leverage INTEGER NOT NULL DEFAULT 0,
		pnl REAL NOT NULL,
		pnl_percentage REAL NOT NULL DEFAULT 0,
		fees REAL NOT NULL DEFAULT 0,
		net_pnl REAL NOT NULL,
		order_type TEXT NOT NULL,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		volume REAL NOT NULL DEFAULT 0,
		maker_fee REAL NULL,
		taker_fee REAL NULL,
		notes TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol_closed_at ON trades (symbol, closed_at);
	CREATE INDEX IF NOT EXISTS idx_trades_closed_at ON trades (closed_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveTrades inserts or replaces trades in a single transaction.
func (r *Repository) SaveTrades(ctx context.Context, trades []domain.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	const query = `
	INSERT OR REPLACE INTO trades (id, closed_at, symbol, side, entry_price, exit_price, quantity,
	                               leverage, pnl, pnl_percentage, fees, net_pnl, order_type,
	                               duration_ns, outcome, volume, maker_fee, taker_fee, notes, tags)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w: %v", ports.ErrUpdateFailed, err)
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare trade insert: %w: %v", ports.ErrUpdateFailed, err)
	}
	defer stmt.Close()

	for _, t := range trades {
		if t.ID == "" {
			return 0, fmt.Errorf("trade for symbol %s has no id: %w", t.Symbol, ports.ErrInvalidRequest)
		}
		var maker, taker sql.NullFloat64
		if t.FeeSplit != nil {
			maker = sql.NullFloat64{Float64: t.FeeSplit.Maker, Valid: true}
			taker = sql.NullFloat64{Float64: t.FeeSplit.Taker, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			t.ID, t.Timestamp.UnixNano(), t.Symbol, string(t.Side), t.EntryPrice, t.ExitPrice, t.Quantity,
			t.Leverage, t.PnL, t.PnLPercentage, t.Fees, t.NetPnL, string(t.OrderType),
			int64(t.Duration), string(t.Outcome), t.Volume, maker, taker, t.Notes, strings.Join(t.Tags, ","))
		if err != nil {
			return 0, fmt.Errorf("failed to save trade %s: %w: %v", t.ID, ports.ErrUpdateFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit trades: %w: %v", ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Trades saved", map[string]interface{}{"count": len(trades)})
	return len(trades), nil
}

const selectTrades = `
	SELECT id, closed_at, symbol, side, entry_price, exit_price, quantity, leverage, pnl,
	       pnl_percentage, fees, net_pnl, order_type, duration_ns, outcome, volume,
	       maker_fee, taker_fee, notes, tags
	FROM trades`

// FindAll retrieves every stored trade, ordered by timestamp ascending.
func (r *Repository) FindAll(ctx context.Context) ([]domain.Trade, error) {
	return r.query(ctx, "FindAll", selectTrades+` ORDER BY closed_at, id`)
}

// FindBySymbol retrieves all trades for a symbol, ordered by timestamp ascending.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string) ([]domain.Trade, error) {
	return r.query(ctx, "FindBySymbol", selectTrades+` WHERE symbol = ? ORDER BY closed_at, id`, symbol)
}

// FindBetween retrieves trades with from <= timestamp < to.
func (r *Repository) FindBetween(ctx context.Context, from, to time.Time) ([]domain.Trade, error) {
	return r.query(ctx, "FindBetween",
		selectTrades+` WHERE closed_at >= ? AND closed_at < ? ORDER BY closed_at, id`,
		from.UnixNano(), to.UnixNano())
}

// CountBySymbol returns the number of stored trades per symbol.
func (r *Repository) CountBySymbol(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT symbol, COUNT(*) FROM trades GROUP BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to count trades by symbol: %w: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var symbol string
		var n int
		if err := rows.Scan(&symbol, &n); err != nil {
			return nil, fmt.Errorf("failed to scan trade count: %w: %v", ports.ErrQueryFailed, err)
		}
		counts[symbol] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade counts: %w: %v", ports.ErrQueryFailed, err)
	}
	return counts, nil
}

func (r *Repository) query(ctx context.Context, op, query string, args ...interface{}) ([]domain.Trade, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades (%s): %w: %v", op, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]domain.Trade, 0)
	for rows.Next() {
		trade, err := r.scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during %s: %w: %v", op, ports.ErrQueryFailed, err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w: %v", ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Trades loaded", map[string]interface{}{"op": op, "count": len(trades)})
	return trades, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func (r *Repository) scanTrade(s scanner) (domain.Trade, error) {
	var (
		t                  domain.Trade
		closedAt, duration int64
		side, orderType    string
		outcome, tags      string
		makerFee, takerFee sql.NullFloat64
	)
	err := s.Scan(
		&t.ID, &closedAt, &t.Symbol, &side, &t.EntryPrice, &t.ExitPrice, &t.Quantity, &t.Leverage, &t.PnL,
		&t.PnLPercentage, &t.Fees, &t.NetPnL, &orderType, &duration, &outcome, &t.Volume,
		&makerFee, &takerFee, &t.Notes, &tags)
	if err != nil {
		return domain.Trade{}, err
	}

	t.Timestamp = time.Unix(0, closedAt).In(r.location)
	t.Side = domain.Side(side)
	t.OrderType = domain.OrderType(orderType)
	t.Outcome = domain.Outcome(outcome)
	t.Duration = time.Duration(duration)
	if makerFee.Valid || takerFee.Valid {
		t.FeeSplit = &domain.FeeSplit{Maker: makerFee.Float64, Taker: takerFee.Float64}
	}
	if tags != "" {
		t.Tags = strings.Split(tags, ",")
	}
	return t, nil
}
