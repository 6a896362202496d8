// Package application orchestrates the pure domain package with logging,
// metrics, and event publication. The domain layer stays synchronous and
// side-effect free per its concurrency contract; this is the seam where
// that contract meets the ambient stack.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/wyfcoding/optionwheel/internal/backtest/domain"
	"github.com/wyfcoding/optionwheel/pkg/metrics"
)

// BacktestService is the single entry point a host process (UI backend,
// CLI, or batch job) calls into.
type BacktestService struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher domain.EventPublisher
}

// NewBacktestService wires a logger, a metrics registry, and an event
// publisher around the domain package. publisher may be
// domain.NoopEventPublisher{} when no downstream consumer is configured.
func NewBacktestService(logger *slog.Logger, m *metrics.Metrics, publisher domain.EventPublisher) *BacktestService {
	if publisher == nil {
		publisher = domain.NoopEventPublisher{}
	}
	return &BacktestService{logger: logger, metrics: m, publisher: publisher}
}

// RunMonteCarlo runs numRuns seeds through domain.RunMonteCarlo, logging
// start/end and the run's winner rate, recording the run's duration, and
// publishing a RunCompletedEvent.
func (s *BacktestService) RunMonteCarlo(ctx context.Context, params *domain.MarketParams, config *domain.StrategyConfig, numRuns int) (*domain.MonteCarloResult, error) {
	s.logger.Info("starting monte carlo run", "num_runs", numRuns, "model", params.Model)
	start := time.Now()

	result, err := domain.RunMonteCarlo(ctx, params, config, numRuns)
	if err != nil {
		s.logger.Error("monte carlo run failed", "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.MonteCarloRunsTotal.Inc()
		s.metrics.MonteCarloRunDuration.Observe(elapsed.Seconds())
		s.metrics.MonteCarloSeedsTotal.Add(float64(numRuns))
	}
	s.logger.Info("monte carlo run completed", "num_runs", numRuns, "winner_rate", result.WinnerRate, "elapsed_ms", elapsed.Milliseconds())

	if err := s.publisher.PublishRunCompleted(domain.RunCompletedEvent{
		NumRuns:    numRuns,
		ElapsedMs:  elapsed.Milliseconds(),
		WinnerRate: result.WinnerRate,
		OccurredOn: start,
	}); err != nil {
		s.logger.Warn("failed to publish run-completed event", "error", err)
	}

	return result, nil
}

// RerunSingle drills into one seed of a Monte Carlo run.
func (s *BacktestService) RerunSingle(params *domain.MarketParams, config *domain.StrategyConfig, seed uint64) (*domain.PricePath, *domain.SimulationResult) {
	s.logger.Debug("rerunning single seed", "seed", seed)
	return domain.RerunSingle(params, config, seed)
}

// GenerateInsights reduces mc into advisories, logging a warning whenever
// any negative-level insight fires, then publishing an
// InsightsGeneratedEvent with the per-level counts.
func (s *BacktestService) GenerateInsights(mc *domain.MonteCarloResult, config *domain.StrategyConfig) []domain.Insight {
	insights := domain.GenerateInsights(mc, config)

	counts := map[domain.InsightLevel]int{}
	negative := 0
	for _, ins := range insights {
		counts[ins.Level]++
		if ins.Level == domain.InsightNegative {
			negative++
			s.logger.Warn("negative insight generated", "title", ins.Title, "message", ins.Message)
		}
	}

	if s.metrics != nil {
		s.metrics.InsightsGeneratedTotal.Add(float64(len(insights)))
		s.metrics.NegativeInsightsTotal.Add(float64(negative))
	}

	if err := s.publisher.PublishInsightsGenerated(domain.InsightsGeneratedEvent{
		CountsByLevel: counts,
		OccurredOn:    time.Now(),
	}); err != nil {
		s.logger.Warn("failed to publish insights-generated event", "error", err)
	}

	return insights
}
