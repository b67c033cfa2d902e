package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeMetrics/config"
	"tradeMetrics/internal/domain"
	"tradeMetrics/internal/ports"
)

// Mock implementations
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

type mockRepo struct {
	trades  map[string]domain.Trade
	saveErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{trades: make(map[string]domain.Trade)}
}

func (m *mockRepo) SaveTrades(ctx context.Context, trades []domain.Trade) (int, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	for _, t := range trades {
		m.trades[t.ID] = t
	}
	return len(trades), nil
}

func (m *mockRepo) FindAll(ctx context.Context) ([]domain.Trade, error) {
	out := make([]domain.Trade, 0, len(m.trades))
	for _, t := range m.trades {
		out = append(out, t)
	}
	return domain.SortedByTime(out), nil
}

func (m *mockRepo) FindBySymbol(ctx context.Context, symbol string) ([]domain.Trade, error) {
	var out []domain.Trade
	for _, t := range m.trades {
		if t.Symbol == symbol {
			out = append(out, t)
		}
	}
	return domain.SortedByTime(out), nil
}

func (m *mockRepo) FindBetween(ctx context.Context, from, to time.Time) ([]domain.Trade, error) {
	var out []domain.Trade
	for _, t := range m.trades {
		if !t.Timestamp.Before(from) && t.Timestamp.Before(to) {
			out = append(out, t)
		}
	}
	return domain.SortedByTime(out), nil
}

func (m *mockRepo) CountBySymbol(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, t := range m.trades {
		counts[t.Symbol]++
	}
	return counts, nil
}

type mockSource struct {
	trades []domain.Trade
	err    error
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) FetchTrades(ctx context.Context) ([]domain.Trade, error) {
	return m.trades, m.err
}

var (
	reference = time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	base      = time.Date(2024, 4, 8, 9, 0, 0, 0, time.UTC)
)

func testConfig() *config.Config {
	return &config.Config{
		InitialCapital:      10000,
		RiskFreeRate:        0.02,
		ClusterWindow:       2 * time.Hour,
		OvertradingLookback: 30,
		ReferenceTime:       reference,
		Location:            time.UTC,
		Timezone:            "UTC",
	}
}

func trade(id, symbol string, offset time.Duration, pnl float64) domain.Trade {
	return domain.Trade{
		ID:         id,
		Timestamp:  base.Add(offset),
		Symbol:     symbol,
		Side:       domain.Long,
		EntryPrice: 100,
		ExitPrice:  100 + pnl,
		Quantity:   1,
		PnL:        pnl,
		Fees:       0.5,
		OrderType:  domain.OrderTypeLimit,
		Duration:   20 * time.Minute,
	}.Normalize()
}

func sampleTrades() []domain.Trade {
	return []domain.Trade{
		trade("1", "BTCUSDT", 0, 50),
		trade("2", "ETHUSDT", time.Hour, -20),
		trade("3", "BTCUSDT", 26*time.Hour, 30),
	}
}

func newService(t *testing.T, repo ports.TradeRepository) (*AnalyticsService, *mockLogger) {
	t.Helper()
	log := &mockLogger{}
	svc, err := NewAnalyticsService(testConfig(), log, repo)
	require.NoError(t, err)
	return svc, log
}

func TestNewAnalyticsServiceValidation(t *testing.T) {
	_, err := NewAnalyticsService(nil, &mockLogger{}, nil)
	assert.Error(t, err)

	_, err = NewAnalyticsService(testConfig(), nil, nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.InitialCapital = 0
	_, err = NewAnalyticsService(cfg, &mockLogger{}, nil)
	assert.Error(t, err)
}

func TestBuildReport(t *testing.T) {
	svc, _ := newService(t, nil)
	trades := sampleTrades()

	report, err := svc.BuildReport(context.Background(), trades)
	require.NoError(t, err)

	assert.Equal(t, reference, report.ReferenceTime)
	assert.Equal(t, 3, report.TradeCount)
	assert.Equal(t, 3, report.Performance.TotalTrades)
	assert.Equal(t, 60.0, report.Performance.TotalPnL)
	assert.InDelta(t, 10058.5, report.Performance.FinalEquity, 1e-9)
	assert.Len(t, report.EquityCurve.Equity, 4)
	assert.Len(t, report.MonthlyReturns, 1)

	assert.Equal(t, 3, report.Behavior.Summary.TotalTrades)
	require.Len(t, report.Behavior.BySymbol, 2)
	assert.Equal(t, "BTCUSDT", report.Behavior.BySymbol[0].Symbol)
	assert.Equal(t, 1, report.Behavior.Streaks.Current)
	assert.Equal(t, 3, report.Behavior.DirectionalBias.Last7DaysTrades)

	assert.Len(t, report.Timing.Daily, 2)
	assert.Equal(t, 3, report.Timing.Frequency.TradesLast7Days)
	assert.Equal(t, 20*time.Minute, report.Timing.Durations.Median)

	assert.InDelta(t, 1.5, report.Fees.TotalFees, 1e-9)
	assert.InDelta(t, 1.5, report.Fees.Composition.Maker, 1e-9)

	assert.GreaterOrEqual(t, report.Risk.RiskScore, 0.0)
	assert.LessOrEqual(t, report.Risk.RiskScore, 100.0)
	assert.False(t, report.Risk.Overtrading)

	// Input left untouched
	assert.Equal(t, "1", trades[0].ID)
}

func TestBuildReportEmpty(t *testing.T) {
	svc, _ := newService(t, nil)

	report, err := svc.BuildReport(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, report.TradeCount)
	assert.Equal(t, 10000.0, report.Performance.FinalEquity)
	require.Len(t, report.EquityCurve.Equity, 1)
	assert.Equal(t, reference, report.EquityCurve.Equity[0].Timestamp)
	assert.Equal(t, 0.0, report.Risk.RiskScore)
	assert.Empty(t, report.Risk.Clusters)
}

func TestBuildReportUsesClockWithoutReferenceTime(t *testing.T) {
	cfg := testConfig()
	cfg.ReferenceTime = time.Time{}
	svc, err := NewAnalyticsService(cfg, &mockLogger{}, nil)
	require.NoError(t, err)
	svc.clock = func() time.Time { return reference.Add(time.Hour) }

	report, err := svc.BuildReport(context.Background(), sampleTrades())
	require.NoError(t, err)
	assert.Equal(t, reference.Add(time.Hour), report.ReferenceTime)
}

func TestBuildReportCanceled(t *testing.T) {
	svc, log := newService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.BuildReport(ctx, sampleTrades())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrContextCanceled))
	assert.NotEmpty(t, log.errorMsgs)
}

func TestImport(t *testing.T) {
	repo := newMockRepo()
	svc, log := newService(t, repo)

	valid := trade("", "BTCUSDT", 0, 10)
	invalid := trade("bad", "", time.Hour, 5)
	zeroQty := trade("zero", "ETHUSDT", 2*time.Hour, 5)
	zeroQty.Quantity = 0
	// Wrong derived fields are recomputed, not rejected
	stale := trade("stale", "ETHUSDT", 3*time.Hour, -5)
	stale.NetPnL = 123
	stale.Outcome = domain.OutcomeWin

	source := &mockSource{trades: []domain.Trade{valid, invalid, zeroQty, stale}}

	result, err := svc.Import(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, ImportResult{Source: "mock", Fetched: 4, Saved: 2, Skipped: 2}, result)
	assert.Len(t, log.warnMsgs, 2)
	require.Len(t, repo.trades, 2)

	assert.Equal(t, -5.5, repo.trades["stale"].NetPnL)
	assert.Equal(t, domain.OutcomeLoss, repo.trades["stale"].Outcome)
	for id, tr := range repo.trades {
		assert.NotEmpty(t, id)
		assert.Equal(t, time.UTC, tr.Timestamp.Location())
	}
}

func TestImportConvertsToConfiguredLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Location = loc
	repo := newMockRepo()
	svc, err := NewAnalyticsService(cfg, &mockLogger{}, repo)
	require.NoError(t, err)

	_, err = svc.Import(context.Background(), &mockSource{trades: []domain.Trade{trade("1", "BTCUSDT", 0, 1)}})
	require.NoError(t, err)
	assert.Equal(t, loc, repo.trades["1"].Timestamp.Location())
	assert.Equal(t, 18, repo.trades["1"].Timestamp.Hour())
}

func TestImportErrors(t *testing.T) {
	t.Run("no repository", func(t *testing.T) {
		svc, _ := newService(t, nil)
		_, err := svc.Import(context.Background(), &mockSource{})
		assert.True(t, errors.Is(err, ports.ErrConfigurationError))
	})

	t.Run("source failure", func(t *testing.T) {
		svc, _ := newService(t, newMockRepo())
		_, err := svc.Import(context.Background(), &mockSource{err: ports.ErrSourceUnavailable})
		assert.True(t, errors.Is(err, ports.ErrSourceUnavailable))
	})

	t.Run("save failure", func(t *testing.T) {
		repo := newMockRepo()
		repo.saveErr = ports.ErrUpdateFailed
		svc, _ := newService(t, repo)
		result, err := svc.Import(context.Background(), &mockSource{trades: sampleTrades()})
		assert.True(t, errors.Is(err, ports.ErrUpdateFailed))
		assert.Equal(t, 3, result.Fetched)
		assert.Zero(t, result.Saved)
	})
}

func TestAnalyzeStored(t *testing.T) {
	repo := newMockRepo()
	_, err := repo.SaveTrades(context.Background(), sampleTrades())
	require.NoError(t, err)
	svc, _ := newService(t, repo)

	all, err := svc.AnalyzeStored(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, all.TradeCount)
	assert.Empty(t, all.Symbol)

	btc, err := svc.AnalyzeStored(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", btc.Symbol)
	assert.Equal(t, 2, btc.TradeCount)
	assert.Equal(t, 80.0, btc.Performance.TotalPnL)
}

func TestAnalyzeStoredWithoutTradesWarns(t *testing.T) {
	svc, log := newService(t, newMockRepo())

	report, err := svc.AnalyzeStored(context.Background(), "XRPUSDT")
	require.NoError(t, err)
	assert.Zero(t, report.TradeCount)
	assert.Contains(t, log.warnMsgs, "No stored trades found")
}

func TestSymbols(t *testing.T) {
	repo := newMockRepo()
	_, err := repo.SaveTrades(context.Background(), sampleTrades())
	require.NoError(t, err)
	svc, _ := newService(t, repo)

	symbols, err := svc.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []SymbolCount{{Symbol: "BTCUSDT", Trades: 2}, {Symbol: "ETHUSDT", Trades: 1}}, symbols)
}
