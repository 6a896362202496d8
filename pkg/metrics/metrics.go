// Package metrics exposes the Prometheus counters/histograms the
// application layer records against Monte Carlo runs and insight
// generation.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/optionwheel/pkg/logger"
)

// Metrics is the full set of counters and histograms the backtest
// application layer records.
type Metrics struct {
	MonteCarloRunsTotal    prometheus.Counter
	MonteCarloRunDuration  prometheus.Histogram
	MonteCarloSeedsTotal   prometheus.Counter
	InsightsGeneratedTotal prometheus.Counter
	NegativeInsightsTotal  prometheus.Counter
}

// New creates and wires up a Metrics instance under the given Prometheus
// subsystem name.
func New(subsystem string) *Metrics {
	return &Metrics{
		MonteCarloRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionwheel",
			Subsystem: subsystem,
			Name:      "monte_carlo_runs_total",
			Help:      "Total RunMonteCarlo invocations",
		}),
		MonteCarloRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "optionwheel",
			Subsystem: subsystem,
			Name:      "monte_carlo_run_duration_seconds",
			Help:      "Wall-clock duration of a RunMonteCarlo invocation",
			Buckets:   prometheus.DefBuckets,
		}),
		MonteCarloSeedsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionwheel",
			Subsystem: subsystem,
			Name:      "monte_carlo_seeds_total",
			Help:      "Total per-seed simulations run across all RunMonteCarlo calls",
		}),
		InsightsGeneratedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionwheel",
			Subsystem: subsystem,
			Name:      "insights_generated_total",
			Help:      "Total Insight values produced by GenerateInsights",
		}),
		NegativeInsightsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "optionwheel",
			Subsystem: subsystem,
			Name:      "negative_insights_total",
			Help:      "Total negative-level insights produced by GenerateInsights",
		}),
	}
}

// Register registers every metric with the default Prometheus registerer.
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.MonteCarloRunsTotal,
		m.MonteCarloRunDuration,
		m.MonteCarloSeedsTotal,
		m.InsightsGeneratedTotal,
		m.NegativeInsightsTotal,
	}
	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "failed to register metric", "error", err)
			return err
		}
	}
	logger.Info(context.Background(), "metrics registered")
	return nil
}

// StartHTTPServer serves /metrics (or path) on port in the background.
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}
	http.Handle(path, promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "starting prometheus http server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "prometheus http server stopped", "error", err)
		}
	}()
	return nil
}
