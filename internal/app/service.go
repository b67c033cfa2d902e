package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"tradeMetrics/config"
	"tradeMetrics/internal/analytics/behavior"
	"tradeMetrics/internal/analytics/fees"
	"tradeMetrics/internal/analytics/performance"
	"tradeMetrics/internal/analytics/timing"
	"tradeMetrics/internal/domain"
	"tradeMetrics/internal/id"
	"tradeMetrics/internal/ports"
	"tradeMetrics/internal/risk"
)

// AnalyticsService orchestrates ingestion, storage and the analytics engines.
type AnalyticsService struct {
	cfg    *config.Config
	logger ports.Logger
	repo   ports.TradeRepository // nil when only in-memory analysis is needed
	risk   *risk.Engine
	clock  func() time.Time
}

// NewAnalyticsService creates a new application service instance.
// repo may be nil, in which case Import and the stored-trade queries fail.
func NewAnalyticsService(cfg *config.Config, logger ports.Logger, repo ports.TradeRepository) (*AnalyticsService, error) {
	// Validate dependencies
	if cfg == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for AnalyticsService")
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("configuration InitialCapital must be positive")
	}

	riskConfig := risk.DefaultConfig()
	riskConfig.ClusterWindow = cfg.ClusterWindow
	riskConfig.OvertradingLookback = cfg.OvertradingLookback

	return &AnalyticsService{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		risk:   risk.NewEngine(riskConfig),
		clock:  time.Now,
	}, nil
}

// referenceTime is the "now" handed to the engines for recent-window metrics.
func (s *AnalyticsService) referenceTime() time.Time {
	if !s.cfg.ReferenceTime.IsZero() {
		return s.cfg.ReferenceTime
	}
	now := s.clock()
	if s.cfg.Location != nil {
		now = now.In(s.cfg.Location)
	}
	return now
}

// BuildReport runs every engine over one snapshot of trades. The engines run
// concurrently; each writes only its own report section.
func (s *AnalyticsService) BuildReport(ctx context.Context, trades []domain.Trade) (*Report, error) {
	snapshot := make([]domain.Trade, len(trades))
	copy(snapshot, trades)

	now := s.referenceTime()
	report := &Report{
		GeneratedAt:   s.clock(),
		ReferenceTime: now,
		TradeCount:    len(snapshot),
	}

	g, gctx := errgroup.WithContext(ctx)
	run := func(section string, fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("%s: %w: %v", section, ports.ErrContextCanceled, err)
			}
			fn()
			return nil
		})
	}

	run("performance", func() {
		report.Performance = performance.ComputeMetrics(snapshot, s.cfg.InitialCapital, s.cfg.RiskFreeRate)
		report.MonthlyReturns = performance.MonthlyReturns(snapshot)
		report.EquityCurve = performance.BuildEquityCurve(snapshot, s.cfg.InitialCapital, now)
	})
	run("behavior", func() {
		report.Behavior = BehaviorReport{
			Summary:         behavior.Analyze(snapshot),
			BySymbol:        behavior.AnalyzeBySymbol(snapshot),
			BySide:          behavior.AnalyzeBySide(snapshot),
			Streaks:         behavior.AnalyzeStreaks(snapshot),
			DirectionalBias: behavior.AnalyzeDirectionalBias(snapshot, now),
		}
	})
	run("timing", func() {
		report.Timing = TimingReport{
			Daily:     timing.AnalyzeDaily(snapshot),
			Hourly:    timing.AnalyzeHourly(snapshot),
			Sessions:  timing.AnalyzeSession(snapshot),
			Durations: timing.DurationMetrics(snapshot),
			Frequency: timing.AnalyzeTradeFrequency(snapshot, now),
		}
	})
	run("fees", func() {
		report.Fees = fees.Analyze(snapshot)
	})
	run("risk", func() {
		report.Risk = s.risk.Assess(snapshot, s.cfg.InitialCapital)
	})

	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, err, "Report build aborted")
		return nil, err
	}

	s.logger.Debug(ctx, "Report built", map[string]interface{}{
		"trades":     report.TradeCount,
		"risk_score": report.Risk.RiskScore,
	})
	return report, nil
}

// AnalyzeStored builds a report from the repository, restricted to symbol when set.
func (s *AnalyticsService) AnalyzeStored(ctx context.Context, symbol string) (*Report, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no trade repository configured: %w", ports.ErrConfigurationError)
	}

	var trades []domain.Trade
	var err error
	if symbol == "" {
		trades, err = s.repo.FindAll(ctx)
	} else {
		trades, err = s.repo.FindBySymbol(ctx, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stored trades: %w", err)
	}
	if len(trades) == 0 {
		s.logger.Warn(ctx, "No stored trades found", map[string]interface{}{"symbol": symbol})
	}

	report, err := s.BuildReport(ctx, trades)
	if err != nil {
		return nil, err
	}
	report.Symbol = symbol
	return report, nil
}

// Import fetches trades from source, normalizes and validates them, and persists
// the valid ones. Invalid trades are logged and skipped; they never reach storage.
func (s *AnalyticsService) Import(ctx context.Context, source ports.TradeSource) (ImportResult, error) {
	result := ImportResult{Source: source.Name()}
	if s.repo == nil {
		return result, fmt.Errorf("no trade repository configured: %w", ports.ErrConfigurationError)
	}

	fetched, err := source.FetchTrades(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch trades from %s: %w", source.Name(), err)
	}
	result.Fetched = len(fetched)

	valid := s.Prepare(ctx, fetched)
	result.Skipped = result.Fetched - len(valid)

	if len(valid) > 0 {
		result.Saved, err = s.repo.SaveTrades(ctx, valid)
		if err != nil {
			return result, fmt.Errorf("failed to save imported trades: %w", err)
		}
	}

	s.logger.Info(ctx, "Trades imported", map[string]interface{}{
		"source":  result.Source,
		"fetched": result.Fetched,
		"saved":   result.Saved,
		"skipped": result.Skipped,
	})
	return result, nil
}

// Prepare normalizes trades into the configured location, assigns missing ids and
// drops trades that fail validation.
func (s *AnalyticsService) Prepare(ctx context.Context, trades []domain.Trade) []domain.Trade {
	valid := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		t = t.Normalize()
		if s.cfg.Location != nil && !t.Timestamp.IsZero() {
			t.Timestamp = t.Timestamp.In(s.cfg.Location)
		}
		if t.ID == "" && !t.Timestamp.IsZero() {
			t.ID = id.New(t.Timestamp)
		}
		if err := t.Validate(); err != nil {
			s.logger.Warn(ctx, "Skipping invalid trade", map[string]interface{}{
				"id":     t.ID,
				"symbol": t.Symbol,
				"error":  err.Error(),
			})
			continue
		}
		valid = append(valid, t)
	}
	return valid
}

// Symbols lists the stored symbols with their trade counts, sorted by symbol.
func (s *AnalyticsService) Symbols(ctx context.Context) ([]SymbolCount, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no trade repository configured: %w", ports.ErrConfigurationError)
	}
	counts, err := s.repo.CountBySymbol(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stored trades: %w", err)
	}

	out := make([]SymbolCount, 0, len(counts))
	for symbol, n := range counts {
		out = append(out, SymbolCount{Symbol: symbol, Trades: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}
