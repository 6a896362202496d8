package domain

import "math"

// SimulationResult is the full output of Simulate.
type SimulationResult struct {
	SignalLog   []SignalLogEntry
	DailyStates []DailyState
	Summary     PortfolioState
}

// computeRealizedVol annualizes the sample standard deviation of the
// `lookback` daily log returns ending at day, or returns nil when there is
// not yet enough history.
func computeRealizedVol(prices []float64, day, lookback int) *float64 {
	if day < lookback || lookback < 2 {
		return nil
	}
	returns := make([]float64, lookback)
	for i := 0; i < lookback; i++ {
		idx := day - lookback + 1 + i
		returns[i] = math.Log(prices[idx] / prices[idx-1])
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(lookback)

	var sumSq float64
	for _, r := range returns {
		d := r - mean
		sumSq += d * d
	}
	variance := sumSq / float64(lookback-1)
	vol := math.Sqrt(variance) * math.Sqrt(365)
	return &vol
}

func isDecisionPoint(portfolio PortfolioState, day int) bool {
	return portfolio.OpenOption == nil || day >= portfolio.OpenOption.ExpiryDay
}

func rollTriggered(portfolio PortfolioState, market MarketSnapshot, config *StrategyConfig) bool {
	if config.RollCall == nil || portfolio.Phase != PhaseShortCall || portfolio.OpenOption == nil {
		return false
	}
	return market.Spot >= portfolio.OpenOption.Strike*(1+config.RollCall.ItmThresholdPct)
}

// Simulate runs the strategy over prices (and, for vol-path models,
// ivPath) using rules and executor, producing a full signal log, daily
// snapshot series, and final portfolio summary. It reads randomness only
// indirectly through the already-generated price path: given identical
// inputs it produces a byte-identical result.
func Simulate(prices []float64, ivPath []float64, rules []Rule, config *StrategyConfig, executor Executor) *SimulationResult {
	portfolio := InitialPortfolio()
	var signalLog []SignalLogEntry
	dailyStates := make([]DailyState, 0, len(prices))

	var lookback int
	if config.IVRVSpread != nil {
		lookback = config.IVRVSpread.LookbackDays
	}

	for day := 0; day < len(prices); day++ {
		var realizedVol *float64
		if config.IVRVSpread != nil {
			realizedVol = computeRealizedVol(prices, day, lookback)
		}
		var iv *float64
		if ivPath != nil {
			v := ivPath[day]
			iv = &v
		}
		market := MarketSnapshot{Day: day, Spot: prices[day], IV: iv, RealizedVol: realizedVol}

		decision := isDecisionPoint(portfolio, day)
		roll := rollTriggered(portfolio, market, config)

		if decision || roll {
			if portfolio.OpenOption != nil && day >= portfolio.OpenOption.ExpiryDay {
				before := SnapshotPortfolio(portfolio)
				events := executor.ResolveExpiration(market, portfolio, config)
				portfolio = ApplyEvents(portfolio, events)
				signalLog = append(signalLog, SignalLogEntry{
					Day: day, Market: market, PortfolioBefore: before,
					Signal: Signal{Kind: SignalHold}, Events: events,
					PortfolioAfter: SnapshotPortfolio(portfolio),
				})
			}

			beforeSignal := SnapshotPortfolio(portfolio)
			signal := EvaluateRules(rules, market, portfolio, config)
			if signal.Kind != SignalHold {
				events := executor.Execute(signal, market, portfolio, config)
				portfolio = ApplyEvents(portfolio, events)
				signalLog = append(signalLog, SignalLogEntry{
					Day: day, Market: market, PortfolioBefore: beforeSignal,
					Signal: signal, Events: events,
					PortfolioAfter: SnapshotPortfolio(portfolio),
				})
			}
		}

		unrealized := 0.0
		holding := portfolio.Position != nil
		if holding {
			unrealized = (market.Spot - portfolio.Position.EntryPrice) * float64(portfolio.Position.Size)
		}
		dailyStates = append(dailyStates, DailyState{
			Day: day, Price: market.Spot, Phase: portfolio.Phase,
			CumulativePL: portfolio.RealizedPL, UnrealizedPL: unrealized, HoldingETH: holding,
		})
	}

	return &SimulationResult{SignalLog: signalLog, DailyStates: dailyStates, Summary: portfolio}
}
