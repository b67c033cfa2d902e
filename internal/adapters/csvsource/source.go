// Package csvsource reads closed trades from CSV files with a header row.
//
// Recognised columns (case-insensitive, order free):
//
//	id, timestamp, symbol, side, entry_price, exit_price, quantity, leverage,
//	pnl, pnl_percentage, fees, order_type, duration, volume, maker_fee,
//	taker_fee, notes, tags
//
// timestamp, symbol, side, quantity and pnl are required. Timestamps are RFC3339
// or Unix milliseconds, durations are Go duration strings or seconds, and tags
// are separated by semicolons. Rows without an id get a ULID derived from the
// row content, so re-reading a file yields the same ids.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradeMetrics/internal/domain"
	"tradeMetrics/internal/id"
	"tradeMetrics/internal/ports"
)

var requiredColumns = []string{"timestamp", "symbol", "side", "quantity", "pnl"}

// Source implements ports.TradeSource for a CSV file.
type Source struct {
	path     string
	location *time.Location
	logger   ports.Logger
}

// Config holds configuration for the CSV source.
type Config struct {
	Path string
	// Location is the zone trade timestamps are converted into. Defaults to UTC.
	Location *time.Location
	Logger   ports.Logger
}

// New creates a CSV trade source.
func New(cfg Config) (*Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("csv path is required: %w", ports.ErrConfigurationError)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for CSV source")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Source{path: cfg.Path, location: loc, logger: cfg.Logger}, nil
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return "csv:" + s.path
}

// FetchTrades reads every row of the file.
func (s *Source) FetchTrades(ctx context.Context) ([]domain.Trade, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("csv file %s: %w", s.path, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open csv file %s: %w: %v", s.path, ports.ErrSourceUnavailable, err)
	}
	defer f.Close()

	trades, err := Read(ctx, f, s.location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.logger.Info(ctx, "Trades read from CSV", map[string]interface{}{"path": s.path, "count": len(trades)})
	return trades, nil
}

// Read parses trades from r, converting timestamps into loc. Parsed trades are
// normalized but not validated.
func Read(ctx context.Context, r io.Reader, loc *time.Location) ([]domain.Trade, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w: %v", ports.ErrMalformedRecord, err)
	}
	cols := indexColumns(header)
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q: %w", c, ports.ErrMalformedRecord)
		}
	}

	var trades []domain.Trade
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ports.ErrContextCanceled, err)
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, ports.ErrMalformedRecord, err)
		}
		if isBlank(row) {
			continue
		}
		trade, err := parseRow(record{cols: cols, row: row}, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, ports.ErrMalformedRecord, err)
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[name] = i
	}
	return cols
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type record struct {
	cols map[string]int
	row  []string
}

func (r record) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r record) float(name string) (float64, error) {
	v := r.get(name)
	if v == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("column %s: invalid number %q", name, v)
	}
	return d.InexactFloat64(), nil
}

func parseRow(r record, loc *time.Location) (domain.Trade, error) {
	var t domain.Trade
	var err error

	if t.Timestamp, err = parseTimestamp(r.get("timestamp"), loc); err != nil {
		return t, err
	}
	t.Timestamp = t.Timestamp.In(loc)

	t.Symbol = strings.ToUpper(r.get("symbol"))
	if t.Side, err = domain.ParseSide(r.get("side")); err != nil {
		return t, err
	}
	if t.OrderType, err = domain.ParseOrderType(r.get("order_type")); err != nil {
		return t, err
	}

	fields := []struct {
		name string
		dst  *float64
	}{
		{"entry_price", &t.EntryPrice},
		{"exit_price", &t.ExitPrice},
		{"quantity", &t.Quantity},
		{"pnl", &t.PnL},
		{"pnl_percentage", &t.PnLPercentage},
		{"fees", &t.Fees},
		{"volume", &t.Volume},
	}
	for _, f := range fields {
		if *f.dst, err = r.float(f.name); err != nil {
			return t, err
		}
	}

	if v := r.get("leverage"); v != "" {
		if t.Leverage, err = strconv.Atoi(v); err != nil {
			return t, fmt.Errorf("column leverage: invalid integer %q", v)
		}
	}
	if t.Duration, err = parseDuration(r.get("duration")); err != nil {
		return t, err
	}

	makerRaw, takerRaw := r.get("maker_fee"), r.get("taker_fee")
	if makerRaw != "" || takerRaw != "" {
		split := &domain.FeeSplit{}
		if split.Maker, err = r.float("maker_fee"); err != nil {
			return t, err
		}
		if split.Taker, err = r.float("taker_fee"); err != nil {
			return t, err
		}
		t.FeeSplit = split
	}

	t.Notes = r.get("notes")
	if tags := r.get("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ";") {
			if tag = strings.TrimSpace(tag); tag != "" {
				t.Tags = append(t.Tags, tag)
			}
		}
	}

	t.ID = r.get("id")
	if t.ID == "" {
		t.ID = id.Derive(t.Timestamp, strings.Join(r.row, ","))
	}
	return t.Normalize(), nil
}

// parseTimestamp reads layouts without a zone offset as local time in loc.
func parseTimestamp(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("column timestamp: empty")
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if ts, err := time.ParseInLocation(layout, v, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("column timestamp: unrecognised time %q", v)
}

func parseDuration(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	if secs, err := decimal.NewFromString(v); err == nil {
		return time.Duration(secs.Mul(decimal.NewFromInt(int64(time.Second))).IntPart()), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("column duration: invalid duration %q", v)
	}
	return d, nil
}
