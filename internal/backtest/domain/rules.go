package domain

import "math"

// Rule is a priority-ordered pure predicate: lower Priority runs first. A
// rule must gate on Phase and on the presence of any config block it needs,
// returning a nil *Signal otherwise. It must not mutate its arguments or
// consult any data source other than them.
type Rule struct {
	Name        string
	Description string
	Phase       Phase
	Priority    int
	Evaluate    func(market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) *Signal
}

func clampMax(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// effectiveVol returns the market's own IV when present, falling back to
// the configured implied vol.
func effectiveVol(market MarketSnapshot, config *StrategyConfig) float64 {
	if market.IV != nil {
		return *market.IV
	}
	return config.ImpliedVol
}

// ivRVMultiplier is the shared IV/RV adjustment applied to every delta-
// adjusting rule: 1.0 when iv_rv_spread is absent or realized_vol is
// missing/non-positive, else vol_eff/realized_vol clamped to the
// configured range.
func ivRVMultiplier(volEff float64, market MarketSnapshot, config *StrategyConfig) float64 {
	spread := config.IVRVSpread
	if spread == nil || market.RealizedVol == nil || *market.RealizedVol <= 0 {
		return 1.0
	}
	return clamp(volEff/(*market.RealizedVol), spread.MinMultiplier, spread.MaxMultiplier)
}

func cycleT(config *StrategyConfig) float64 {
	return float64(config.CycleLengthDays) / 365.0
}

// callCandidate computes the covered-call strike/delta/premium a cycle
// would sell right now, including the adaptive ladder, the IV/RV
// multiplier, and the at-cost strike clamp. AdaptiveCallRule and
// LowPremiumSkipRule share this logic so a skip decision is evaluated
// against exactly the call that would otherwise be sold.
func callCandidate(market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) (strike, delta, premium float64) {
	volEff := effectiveVol(market, config)
	t := cycleT(config)

	var baseDelta float64
	if config.AdaptiveCalls != nil && portfolio.Position != nil {
		ac := config.AdaptiveCalls
		pnlPct := (market.Spot - portfolio.Position.EntryPrice) / portfolio.Position.EntryPrice
		tt := clamp((pnlPct+1)/2, 0, 1)
		baseDelta = ac.MinDelta + (ac.MaxDelta-ac.MinDelta)*tt
	} else {
		baseDelta = config.TargetDelta
	}

	effDelta := clampMax(baseDelta*ivRVMultiplier(volEff, market, config), 0.50)
	strike = FindStrikeForDelta(effDelta, market.Spot, t, config.RiskFreeRate, volEff, OptionCall)

	if config.AdaptiveCalls != nil && config.AdaptiveCalls.MinStrikeAtCost && portfolio.Position != nil && strike < portfolio.Position.EntryPrice {
		strike = portfolio.Position.EntryPrice
	}

	delta = math.Abs(BSDelta(OptionCall, market.Spot, strike, t, config.RiskFreeRate, volEff))
	premium = BSPrice(OptionCall, market.Spot, strike, t, config.RiskFreeRate, volEff) * (1 - config.BidAskSpreadPct)
	return strike, delta, premium
}

// LowPremiumSkipRule emits SKIP when the candidate covered call's net
// premium fails to clear the configured fraction of the held position's
// value.
var LowPremiumSkipRule = Rule{
	Name:        "LowPremiumSkipRule",
	Description: "Skip selling a covered call when the premium on offer is not worth the assignment risk",
	Phase:       PhaseHoldingETH,
	Priority:    50,
	Evaluate: func(market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) *Signal {
		if portfolio.Phase != PhaseHoldingETH || config.AdaptiveCalls == nil || portfolio.Position == nil {
			return nil
		}
		_, _, premium := callCandidate(market, portfolio, config)
		contracts := float64(config.Contracts)
		netPremium := premium*contracts - config.FeePerTrade*contracts
		positionValue := portfolio.Position.EntryPrice * contracts

		if netPremium < config.AdaptiveCalls.SkipThresholdPct*positionValue {
			return &Signal{Kind: SignalSkip, Rule: "LowPremiumSkipRule", Reason: "candidate call premium below skip threshold"}
		}
		return nil
	},
}

// BasePutRule sells a cash-secured put at the configured target delta
// while the strategy is idle.
var BasePutRule = Rule{
	Name:        "BasePutRule",
	Description: "Sell a cash-secured put at the target delta",
	Phase:       PhaseIdleCash,
	Priority:    100,
	Evaluate: func(market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) *Signal {
		if portfolio.Phase != PhaseIdleCash {
			return nil
		}
		volEff := effectiveVol(market, config)
		t := cycleT(config)
		effDelta := clampMax(config.TargetDelta*ivRVMultiplier(volEff, market, config), 0.50)
		strike := FindStrikeForDelta(effDelta, market.Spot, t, config.RiskFreeRate, volEff, OptionPut)
		delta := math.Abs(BSDelta(OptionPut, market.Spot, strike, t, config.RiskFreeRate, volEff))
		premium := BSPrice(OptionPut, market.Spot, strike, t, config.RiskFreeRate, volEff) * (1 - config.BidAskSpreadPct)

		return &Signal{Kind: SignalSellPut, Strike: strike, Delta: delta, Premium: premium, Rule: "BasePutRule", Reason: "target-delta put sale"}
	},
}

// AdaptiveCallRule sells a covered call while holding the underlying,
// using either a fixed target delta or a P/L-conditioned ladder.
var AdaptiveCallRule = Rule{
	Name:        "AdaptiveCallRule",
	Description: "Sell a covered call, ladder delta by cost-basis P/L when adaptive_calls is configured",
	Phase:       PhaseHoldingETH,
	Priority:    100,
	Evaluate: func(market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) *Signal {
		if portfolio.Phase != PhaseHoldingETH || portfolio.Position == nil {
			return nil
		}
		strike, delta, premium := callCandidate(market, portfolio, config)
		return &Signal{Kind: SignalSellCall, Strike: strike, Delta: delta, Premium: premium, Rule: "AdaptiveCallRule", Reason: "covered call sale"}
	},
}

// RollCallRule closes a deep-ITM short call early and opens a fresh one at
// the target delta, active only when roll_call is configured.
var RollCallRule = Rule{
	Name:        "RollCallRule",
	Description: "Roll a deep-ITM short call to a fresh target-delta strike mid-cycle",
	Phase:       PhaseShortCall,
	Priority:    30,
	Evaluate: func(market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) *Signal {
		if portfolio.Phase != PhaseShortCall || config.RollCall == nil || portfolio.OpenOption == nil {
			return nil
		}
		oo := portfolio.OpenOption
		if market.Spot < oo.Strike*(1+config.RollCall.ItmThresholdPct) {
			return nil
		}

		volEff := effectiveVol(market, config)
		t := cycleT(config)
		effDelta := clampMax(config.TargetDelta*ivRVMultiplier(volEff, market, config), 0.50)
		newStrike := FindStrikeForDelta(effDelta, market.Spot, t, config.RiskFreeRate, volEff, OptionCall)
		newDelta := math.Abs(BSDelta(OptionCall, market.Spot, newStrike, t, config.RiskFreeRate, volEff))
		newPremium := BSPrice(OptionCall, market.Spot, newStrike, t, config.RiskFreeRate, volEff) * (1 - config.BidAskSpreadPct)
		rollCost := BSPrice(OptionCall, market.Spot, oo.Strike, t, config.RiskFreeRate, volEff)
		credit := newPremium - rollCost

		if config.RollCall.RequireNetCredit && credit <= 0 {
			return nil
		}

		return &Signal{
			Kind:       SignalRoll,
			NewStrike:  newStrike,
			NewDelta:   newDelta,
			RollCost:   rollCost,
			NewPremium: newPremium,
			Credit:     credit,
			Rule:       "RollCallRule",
			Reason:     "deep-ITM early roll",
		}
	},
}

// DefaultRules returns the rule set RunMonteCarlo and RerunSingle pass to
// Simulate: [LowPremiumSkipRule, BasePutRule,
// AdaptiveCallRule, RollCallRule]. RollCallRule gates on roll_call being
// configured, so it is harmless to include unconditionally.
func DefaultRules() []Rule {
	return []Rule{LowPremiumSkipRule, BasePutRule, AdaptiveCallRule, RollCallRule}
}
