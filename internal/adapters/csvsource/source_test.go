package csvsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tradeMetrics/internal/domain"
	"tradeMetrics/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

const sample = `id,timestamp,symbol,side,entry_price,exit_price,quantity,leverage,pnl,pnl_percentage,fees,order_type,duration,maker_fee,taker_fee,notes,tags
t1,2024-05-01T10:00:00Z,btcusdt,LONG,60000,60600,0.1,10,60,10,1.2,limit,1h30m,1.2,0,breakout,swing; momentum
,1714561200000,ETHUSDT,sell,3000,2970,1,,30,1,0.6,,600,,,,

t3,2024-05-01 18:45:00,SOLUSDT,short,150,152,10,3,-20,-4,0.3,market,0,,,,
`

func TestRead(t *testing.T) {
	trades, err := Read(context.Background(), strings.NewReader(sample), time.UTC)
	require.NoError(t, err)
	require.Len(t, trades, 3)

	first := trades[0]
	assert.Equal(t, "t1", first.ID)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, "BTCUSDT", first.Symbol)
	assert.Equal(t, domain.Long, first.Side)
	assert.Equal(t, 10, first.Leverage)
	assert.Equal(t, domain.OrderTypeLimit, first.OrderType)
	assert.Equal(t, 90*time.Minute, first.Duration)
	assert.Equal(t, 6000.0, first.Volume)
	assert.Equal(t, 58.8, first.NetPnL)
	assert.Equal(t, domain.OutcomeWin, first.Outcome)
	require.NotNil(t, first.FeeSplit)
	assert.Equal(t, 1.2, first.FeeSplit.Maker)
	assert.Equal(t, []string{"swing", "momentum"}, first.Tags)
	assert.Equal(t, "breakout", first.Notes)

	second := trades[1]
	assert.Len(t, second.ID, 26, "generated ULID")
	assert.Equal(t, time.UnixMilli(1714561200000).UTC(), second.Timestamp)
	assert.Equal(t, domain.Short, second.Side)
	assert.Equal(t, domain.OrderTypeMarket, second.OrderType)
	assert.Equal(t, 10*time.Minute, second.Duration)
	assert.Nil(t, second.FeeSplit)
	assert.Nil(t, second.Tags)

	third := trades[2]
	assert.Equal(t, domain.OutcomeLoss, third.Outcome)
	assert.Equal(t, 18, third.Timestamp.Hour())

	for _, tr := range trades {
		assert.NoError(t, tr.Validate())
	}
}

func TestReadGeneratesStableIDs(t *testing.T) {
	a, err := Read(context.Background(), strings.NewReader(sample), time.UTC)
	require.NoError(t, err)
	b, err := Read(context.Background(), strings.NewReader(sample), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, a[1].ID, b[1].ID)
}

func TestReadConvertsTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	const data = "timestamp,symbol,side,quantity,pnl\n2024-05-01T02:00:00Z,BTCUSDT,long,1,5\n2024-05-01 09:30:00,BTCUSDT,long,1,5\n"

	trades, err := Read(context.Background(), strings.NewReader(data), ny)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, ny, trades[0].Timestamp.Location())
	assert.Equal(t, 30, trades[0].Timestamp.Day(), "previous local day")
	assert.Equal(t, 22, trades[0].Timestamp.Hour())
	// Zone-less timestamps are read as local time.
	assert.Equal(t, 9, trades[1].Timestamp.Hour())
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing required column", data: "timestamp,symbol,side,quantity\n2024-05-01T00:00:00Z,BTCUSDT,long,1\n"},
		{name: "bad number", data: "timestamp,symbol,side,quantity,pnl\n2024-05-01T00:00:00Z,BTCUSDT,long,1,abc\n"},
		{name: "bad side", data: "timestamp,symbol,side,quantity,pnl\n2024-05-01T00:00:00Z,BTCUSDT,sideways,1,1\n"},
		{name: "bad timestamp", data: "timestamp,symbol,side,quantity,pnl\nyesterday,BTCUSDT,long,1,1\n"},
		{name: "bad duration", data: "timestamp,symbol,side,quantity,pnl,duration\n2024-05-01T00:00:00Z,BTCUSDT,long,1,1,soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(context.Background(), strings.NewReader(tt.data), time.UTC)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ports.ErrMalformedRecord), "got %v", err)
		})
	}
}

func TestReadEmpty(t *testing.T) {
	trades, err := Read(context.Background(), strings.NewReader(""), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestSourceFetchTrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	src, err := New(Config{Path: path, Logger: &mockLogger{}})
	require.NoError(t, err)
	assert.Equal(t, "csv:"+path, src.Name())

	trades, err := src.FetchTrades(context.Background())
	require.NoError(t, err)
	assert.Len(t, trades, 3)
}

func TestSourceMissingFile(t *testing.T) {
	src, err := New(Config{Path: filepath.Join(t.TempDir(), "nope.csv"), Logger: &mockLogger{}})
	require.NoError(t, err)

	_, err = src.FetchTrades(context.Background())
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Config{Logger: &mockLogger{}})
	assert.True(t, errors.Is(err, ports.ErrConfigurationError))
}
