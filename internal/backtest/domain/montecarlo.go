package domain

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Regime is a coarse classification of a run's annualized underlying
// return.
type Regime string

const (
	RegimeBull     Regime = "bull"
	RegimeBear     Regime = "bear"
	RegimeSideways Regime = "sideways"
)

var allRegimes = []Regime{RegimeBull, RegimeBear, RegimeSideways}

// RunSummary is the per-seed metric bundle RunMonteCarlo aggregates.
type RunSummary struct {
	TotalPL          float64
	APR              float64
	MaxDrawdown      float64
	FullCycles       int
	Assignments      int
	SkippedCycles    int
	PremiumCollected float64

	BenchmarkPL     float64
	BenchmarkAPR    float64
	BenchmarkMaxDD  float64

	Sharpe           float64
	Sortino          float64
	BenchmarkSharpe  float64
	BenchmarkSortino float64

	UnderlyingReturn float64
	Regime           Regime
}

// RegimeStats summarizes every run falling into one regime.
type RegimeStats struct {
	Regime          Regime
	Count           int
	MeanAPR         float64
	MeanBenchAPR    float64
	MeanAlpha       float64
	MeanSharpe      float64
	WinRate         float64
	MeanMaxDrawdown float64
}

// MonteCarloResult is the aggregate, order-independent summary over every
// seed's RunSummary.
type MonteCarloResult struct {
	NumRuns int

	WinnerRate float64

	MeanAPR   float64
	MedianAPR float64
	P5APR     float64
	P25APR    float64
	P75APR    float64
	P95APR    float64

	MeanPL   float64
	MedianPL float64

	MeanMaxDrawdown float64

	MeanBenchmarkAPR   float64
	MedianBenchmarkAPR float64
	MeanBenchmarkPL    float64
	MeanBenchmarkMaxDD float64

	MeanSharpe          float64
	MeanSortino         float64
	MeanBenchmarkSharpe  float64
	MeanBenchmarkSortino float64

	MeanFullCycles  float64
	MeanAssignments float64

	RegimeBreakdown []RegimeStats
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return percentile(sorted, 0.5)
}

func maxDrawdown(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	peak := series[0]
	maxDD := 0.0
	for _, v := range series {
		if v > peak {
			peak = v
		}
		if dd := peak - v; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// sharpeSortino computes the annualized Sharpe and Sortino ratios for a
// daily return series r against a flat daily risk-free rate.
func sharpeSortino(returns []float64, rfDaily float64) (sharpe, sortino float64) {
	if len(returns) < 2 {
		return 0, 0
	}
	std := sampleStdDev(returns)
	if std > 0 {
		sharpe = (mean(returns) - rfDaily) / std * math.Sqrt(365)
	}

	var downsideSumSq float64
	for _, r := range returns {
		if r < rfDaily {
			d := r - rfDaily
			downsideSumSq += d * d
		}
	}
	downsideStd := math.Sqrt(downsideSumSq / float64(len(returns)-1))
	if downsideStd > 0 {
		sortino = (mean(returns) - rfDaily) / downsideStd * math.Sqrt(365)
	}
	return sharpe, sortino
}

func classifyRegime(underlyingReturn float64, days int) Regime {
	denom := float64(days - 1)
	if denom < 1 {
		denom = 1
	}
	annualized := underlyingReturn * 365 / denom
	switch {
	case annualized > 0.20:
		return RegimeBull
	case annualized < -0.20:
		return RegimeBear
	default:
		return RegimeSideways
	}
}

// computeRunSummary reduces one Simulate result (plus its price path) into
// a RunSummary, per spec.md section 4.9.
func computeRunSummary(prices []float64, sim *SimulationResult, config *StrategyConfig) RunSummary {
	days := len(prices)
	contracts := float64(config.Contracts)
	capitalAtRisk := prices[0] * contracts
	yearsElapsed := float64(days) / 365.0
	rfDaily := config.RiskFreeRate / 365.0

	last := sim.DailyStates[len(sim.DailyStates)-1]
	totalPL := last.CumulativePL + last.UnrealizedPL
	apr := 0.0
	if capitalAtRisk != 0 && yearsElapsed != 0 {
		apr = (last.CumulativePL / capitalAtRisk) / yearsElapsed * 100
	}

	totalPLSeries := make([]float64, len(sim.DailyStates))
	for i, ds := range sim.DailyStates {
		totalPLSeries[i] = ds.CumulativePL + ds.UnrealizedPL
	}
	maxDD := maxDrawdown(totalPLSeries)

	fullCycles := 0
	for _, entry := range sim.SignalLog {
		for _, ev := range entry.Events {
			if ev.Kind == EventOptionExpired && ev.OptionType == OptionCall && ev.Assigned {
				fullCycles++
			}
		}
	}

	var strategyReturns []float64
	if capitalAtRisk != 0 {
		strategyReturns = make([]float64, 0, len(totalPLSeries)-1)
		for i := 1; i < len(totalPLSeries); i++ {
			strategyReturns = append(strategyReturns, (totalPLSeries[i]-totalPLSeries[i-1])/capitalAtRisk)
		}
	}
	sharpe, sortino := sharpeSortino(strategyReturns, rfDaily)

	benchmarkPL := (prices[days-1] - prices[0]) * contracts
	benchmarkAPR := 0.0
	if capitalAtRisk != 0 && yearsElapsed != 0 {
		benchmarkAPR = (benchmarkPL / capitalAtRisk) / yearsElapsed * 100
	}
	benchSeries := make([]float64, days)
	for i, p := range prices {
		benchSeries[i] = (p - prices[0]) * contracts
	}
	benchMaxDD := maxDrawdown(benchSeries)

	benchReturns := make([]float64, 0, days-1)
	for i := 1; i < days; i++ {
		benchReturns = append(benchReturns, (prices[i]-prices[i-1])/prices[0])
	}
	benchSharpe, benchSortino := sharpeSortino(benchReturns, rfDaily)

	underlyingReturn := (prices[days-1] - prices[0]) / prices[0]

	return RunSummary{
		TotalPL:          totalPL,
		APR:              apr,
		MaxDrawdown:      maxDD,
		FullCycles:       fullCycles,
		Assignments:      sim.Summary.TotalAssignments,
		SkippedCycles:    sim.Summary.TotalSkippedCycles,
		PremiumCollected: sim.Summary.TotalPremiumCollected,

		BenchmarkPL:    benchmarkPL,
		BenchmarkAPR:   benchmarkAPR,
		BenchmarkMaxDD: benchMaxDD,

		Sharpe:           sharpe,
		Sortino:          sortino,
		BenchmarkSharpe:  benchSharpe,
		BenchmarkSortino: benchSortino,

		UnderlyingReturn: underlyingReturn,
		Regime:           classifyRegime(underlyingReturn, days),
	}
}

// RunMonteCarlo runs seeds 1..=numRuns under the default rule set and
// SimulatedExecutor, parallelizing the per-seed pipelines with errgroup
// (each seed owns its own Rng, portfolio, and logs exclusively) and then
// aggregating in ascending-seed order so the result is identical to a
// serial run regardless of goroutine completion order.
func RunMonteCarlo(ctx context.Context, params *MarketParams, config *StrategyConfig, numRuns int) (*MonteCarloResult, error) {
	if numRuns <= 0 {
		return nil, ErrInvalidNumRuns
	}

	runs := make([]RunSummary, numRuns)
	g, _ := errgroup.WithContext(ctx)
	rules := DefaultRules()
	executor := SimulatedExecutor{}

	for i := 0; i < numRuns; i++ {
		seed := uint64(i + 1)
		idx := i
		g.Go(func() error {
			path := GeneratePrices(params, seed)
			sim := Simulate(path.Prices, path.IVPath, rules, config, executor)
			runs[idx] = computeRunSummary(path.Prices, sim, config)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregate(runs), nil
}

// RerunSingle regenerates and re-simulates exactly one seed, for drilling
// into a Monte Carlo run's constituent path.
func RerunSingle(params *MarketParams, config *StrategyConfig, seed uint64) (*PricePath, *SimulationResult) {
	path := GeneratePrices(params, seed)
	sim := Simulate(path.Prices, path.IVPath, DefaultRules(), config, SimulatedExecutor{})
	return path, sim
}

func aggregate(runs []RunSummary) *MonteCarloResult {
	n := len(runs)
	aprs := make([]float64, n)
	pls := make([]float64, n)
	maxDDs := make([]float64, n)
	benchAPRs := make([]float64, n)
	benchPLs := make([]float64, n)
	benchMaxDDs := make([]float64, n)
	sharpes := make([]float64, n)
	sortinos := make([]float64, n)
	benchSharpes := make([]float64, n)
	benchSortinos := make([]float64, n)
	fullCycles := make([]float64, n)
	assignments := make([]float64, n)

	winners := 0
	for i, r := range runs {
		aprs[i] = r.APR
		pls[i] = r.TotalPL
		maxDDs[i] = r.MaxDrawdown
		benchAPRs[i] = r.BenchmarkAPR
		benchPLs[i] = r.BenchmarkPL
		benchMaxDDs[i] = r.BenchmarkMaxDD
		sharpes[i] = r.Sharpe
		sortinos[i] = r.Sortino
		benchSharpes[i] = r.BenchmarkSharpe
		benchSortinos[i] = r.BenchmarkSortino
		fullCycles[i] = float64(r.FullCycles)
		assignments[i] = float64(r.Assignments)
		if r.TotalPL > 0 {
			winners++
		}
	}

	sortedAPR := append([]float64(nil), aprs...)
	sort.Float64s(sortedAPR)

	regimeBreakdown := make([]RegimeStats, 0, len(allRegimes))
	for _, regime := range allRegimes {
		var inRegime []RunSummary
		for _, r := range runs {
			if r.Regime == regime {
				inRegime = append(inRegime, r)
			}
		}
		regimeBreakdown = append(regimeBreakdown, regimeStatsFor(regime, inRegime))
	}

	winnerRate := 0.0
	if n > 0 {
		winnerRate = float64(winners) / float64(n)
	}

	return &MonteCarloResult{
		NumRuns:    n,
		WinnerRate: winnerRate,

		MeanAPR:   mean(aprs),
		MedianAPR: median(aprs),
		P5APR:     percentile(sortedAPR, 0.05),
		P25APR:    percentile(sortedAPR, 0.25),
		P75APR:    percentile(sortedAPR, 0.75),
		P95APR:    percentile(sortedAPR, 0.95),

		MeanPL:   mean(pls),
		MedianPL: median(pls),

		MeanMaxDrawdown: mean(maxDDs),

		MeanBenchmarkAPR:   mean(benchAPRs),
		MedianBenchmarkAPR: median(benchAPRs),
		MeanBenchmarkPL:    mean(benchPLs),
		MeanBenchmarkMaxDD: mean(benchMaxDDs),

		MeanSharpe:           mean(sharpes),
		MeanSortino:          mean(sortinos),
		MeanBenchmarkSharpe:  mean(benchSharpes),
		MeanBenchmarkSortino: mean(benchSortinos),

		MeanFullCycles:  mean(fullCycles),
		MeanAssignments: mean(assignments),

		RegimeBreakdown: regimeBreakdown,
	}
}

func regimeStatsFor(regime Regime, runs []RunSummary) RegimeStats {
	if len(runs) == 0 {
		return RegimeStats{Regime: regime}
	}
	var aprs, benchAPRs, alphas, sharpes, maxDDs []float64
	winners := 0
	for _, r := range runs {
		aprs = append(aprs, r.APR)
		benchAPRs = append(benchAPRs, r.BenchmarkAPR)
		alphas = append(alphas, r.APR-r.BenchmarkAPR)
		sharpes = append(sharpes, r.Sharpe)
		maxDDs = append(maxDDs, r.MaxDrawdown)
		if r.TotalPL > 0 {
			winners++
		}
	}
	return RegimeStats{
		Regime:          regime,
		Count:           len(runs),
		MeanAPR:         mean(aprs),
		MeanBenchAPR:    mean(benchAPRs),
		MeanAlpha:       mean(alphas),
		MeanSharpe:      mean(sharpes),
		WinRate:         float64(winners) / float64(len(runs)),
		MeanMaxDrawdown: mean(maxDDs),
	}
}
