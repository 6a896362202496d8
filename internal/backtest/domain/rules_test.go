package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func baseConfig(t *testing.T) *StrategyConfig {
	cfg, err := NewStrategyConfig(0.3, 0.8, 0.05, 7, 1, 0.01, 0.65, nil, nil, nil)
	require.NoError(t, err)
	return cfg
}

func TestBasePutRuleGatesOnPhase(t *testing.T) {
	cfg := baseConfig(t)
	portfolio := PortfolioState{Phase: PhaseHoldingETH}
	market := MarketSnapshot{Day: 0, Spot: 2500}
	require.Nil(t, BasePutRule.Evaluate(market, portfolio, cfg))
}

func TestBasePutRuleSellsAtTargetDelta(t *testing.T) {
	cfg := baseConfig(t)
	portfolio := InitialPortfolio()
	market := MarketSnapshot{Day: 0, Spot: 2500}
	sig := BasePutRule.Evaluate(market, portfolio, cfg)
	require.NotNil(t, sig)
	require.Equal(t, SignalSellPut, sig.Kind)
	require.InDelta(t, 0.3, sig.Delta, 1e-3)
	require.Greater(t, sig.Premium, 0.0)
}

func TestAdaptiveCallRuleGatesOnPositionPresence(t *testing.T) {
	cfg := baseConfig(t)
	portfolio := PortfolioState{Phase: PhaseHoldingETH, Position: nil}
	market := MarketSnapshot{Day: 0, Spot: 2500}
	require.Nil(t, AdaptiveCallRule.Evaluate(market, portfolio, cfg))
}

func TestAdaptiveCallLadderRespectsMinMaxDelta(t *testing.T) {
	ac := &AdaptiveCallsConfig{MinDelta: 0.15, MaxDelta: 0.45, SkipThresholdPct: 0.0, MinStrikeAtCost: false}
	cfg, err := NewStrategyConfig(0.3, 0.8, 0.05, 7, 1, 0.01, 0.65, ac, nil, nil)
	require.NoError(t, err)

	// 60% loss -> ladder position (-0.6+1)/2 = 0.2, delta 0.15 + 0.30*0.2 = 0.21
	lossPortfolio := PortfolioState{Phase: PhaseHoldingETH, Position: &Position{Size: 1, EntryPrice: 5000}}
	lossMarket := MarketSnapshot{Day: 0, Spot: 2000}
	lossSig := AdaptiveCallRule.Evaluate(lossMarket, lossPortfolio, cfg)
	require.NotNil(t, lossSig)
	require.InDelta(t, ac.MinDelta+(ac.MaxDelta-ac.MinDelta)*0.2, lossSig.Delta, 5e-3)

	// deep gain -> ladder ceiling
	gainPortfolio := PortfolioState{Phase: PhaseHoldingETH, Position: &Position{Size: 1, EntryPrice: 1000}}
	gainMarket := MarketSnapshot{Day: 0, Spot: 5000}
	gainSig := AdaptiveCallRule.Evaluate(gainMarket, gainPortfolio, cfg)
	require.NotNil(t, gainSig)
	require.InDelta(t, ac.MaxDelta, gainSig.Delta, 5e-3)
}

func TestAdaptiveCallAtCostClampRaisesStrikeAndRecomputesDelta(t *testing.T) {
	ac := &AdaptiveCallsConfig{MinDelta: 0.05, MaxDelta: 0.10, SkipThresholdPct: 0.0, MinStrikeAtCost: true}
	cfg, err := NewStrategyConfig(0.3, 0.8, 0.05, 7, 1, 0.0, 0.0, ac, nil, nil)
	require.NoError(t, err)

	portfolio := PortfolioState{Phase: PhaseHoldingETH, Position: &Position{Size: 1, EntryPrice: 2500}}
	market := MarketSnapshot{Day: 0, Spot: 2500}
	sig := AdaptiveCallRule.Evaluate(market, portfolio, cfg)
	require.NotNil(t, sig)
	require.GreaterOrEqual(t, sig.Strike, portfolio.Position.EntryPrice)

	volEff := effectiveVol(market, cfg)
	expectedDelta := math.Abs(BSDelta(OptionCall, market.Spot, sig.Strike, cycleT(cfg), cfg.RiskFreeRate, volEff))
	require.InDelta(t, expectedDelta, sig.Delta, 1e-9)
}

func TestIVRVMultiplierClampedToRange(t *testing.T) {
	spread := &IVRVSpreadConfig{LookbackDays: 20, MinMultiplier: 0.8, MaxMultiplier: 1.2}
	cfg, err := NewStrategyConfig(0.3, 0.8, 0.05, 7, 1, 0.0, 0.0, nil, spread, nil)
	require.NoError(t, err)

	highIV := 5.0
	lowRV := 0.1
	require.InDelta(t, spread.MaxMultiplier, ivRVMultiplier(highIV, MarketSnapshot{RealizedVol: &lowRV}, cfg), 1e-9)

	lowIV := 0.01
	highRV := 5.0
	require.InDelta(t, spread.MinMultiplier, ivRVMultiplier(lowIV, MarketSnapshot{RealizedVol: &highRV}, cfg), 1e-9)
}

func TestIVRVMultiplierDefaultsToOneWithoutSpreadConfig(t *testing.T) {
	cfg := baseConfig(t)
	rv := 0.5
	require.Equal(t, 1.0, ivRVMultiplier(0.8, MarketSnapshot{RealizedVol: &rv}, cfg))
}

func TestIVRVMultiplierDefaultsToOneWithoutRealizedVol(t *testing.T) {
	spread := &IVRVSpreadConfig{LookbackDays: 20, MinMultiplier: 0.8, MaxMultiplier: 1.2}
	cfg, err := NewStrategyConfig(0.3, 0.8, 0.05, 7, 1, 0.0, 0.0, nil, spread, nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, ivRVMultiplier(0.8, MarketSnapshot{}, cfg))
}

func TestLowPremiumSkipRuleGatesOnAdaptiveCallsAndPosition(t *testing.T) {
	cfg := baseConfig(t) // no AdaptiveCalls
	portfolio := PortfolioState{Phase: PhaseHoldingETH, Position: &Position{Size: 1, EntryPrice: 2500}}
	market := MarketSnapshot{Day: 0, Spot: 2500}
	require.Nil(t, LowPremiumSkipRule.Evaluate(market, portfolio, cfg))
}

func TestLowPremiumSkipRuleFiresBelowThreshold(t *testing.T) {
	ac := &AdaptiveCallsConfig{MinDelta: 0.05, MaxDelta: 0.10, SkipThresholdPct: 0.5, MinStrikeAtCost: false}
	cfg, err := NewStrategyConfig(0.3, 0.05, 0.0, 7, 1, 0.0, 100.0, ac, nil, nil)
	require.NoError(t, err)

	portfolio := PortfolioState{Phase: PhaseHoldingETH, Position: &Position{Size: 1, EntryPrice: 2500}}
	market := MarketSnapshot{Day: 0, Spot: 2500}
	sig := LowPremiumSkipRule.Evaluate(market, portfolio, cfg)
	require.NotNil(t, sig)
	require.Equal(t, SignalSkip, sig.Kind)
}

func TestLowPremiumSkipRuleSilentAboveThreshold(t *testing.T) {
	ac := &AdaptiveCallsConfig{MinDelta: 0.05, MaxDelta: 0.10, SkipThresholdPct: 0.0, MinStrikeAtCost: false}
	cfg, err := NewStrategyConfig(0.3, 0.8, 0.05, 7, 1, 0.0, 0.0, ac, nil, nil)
	require.NoError(t, err)

	portfolio := PortfolioState{Phase: PhaseHoldingETH, Position: &Position{Size: 1, EntryPrice: 2500}}
	market := MarketSnapshot{Day: 0, Spot: 2500}
	require.Nil(t, LowPremiumSkipRule.Evaluate(market, portfolio, cfg))
}

func TestRollCallRuleGatesOnConfigAndOpenOption(t *testing.T) {
	cfg := baseConfig(t) // no RollCall
	portfolio := PortfolioState{Phase: PhaseShortCall, OpenOption: &OpenOption{Type: OptionCall, Strike: 2600}}
	market := MarketSnapshot{Day: 0, Spot: 2700}
	require.Nil(t, RollCallRule.Evaluate(market, portfolio, cfg))
}

func TestRollCallRuleRequiresITMTrigger(t *testing.T) {
	roll := &RollCallConfig{ItmThresholdPct: 0.05, RequireNetCredit: false}
	cfg, err := NewStrategyConfig(0.3, 0.8, 0.05, 7, 1, 0.0, 0.0, nil, nil, roll)
	require.NoError(t, err)

	portfolio := PortfolioState{Phase: PhaseShortCall, OpenOption: &OpenOption{Type: OptionCall, Strike: 2600}}
	market := MarketSnapshot{Day: 0, Spot: 2610} // below 2600*1.05
	require.Nil(t, RollCallRule.Evaluate(market, portfolio, cfg))
}

func TestRollCallRuleSuppressedWithoutNetCredit(t *testing.T) {
	roll := &RollCallConfig{ItmThresholdPct: 0.0, RequireNetCredit: true}
	cfg, err := NewStrategyConfig(0.3, 0.8, 0.05, 7, 1, 0.0, 0.0, nil, nil, roll)
	require.NoError(t, err)

	// open option deep ITM and cheap to roll into makes the new premium less
	// than the cost to close the old one, forcing a negative-credit roll.
	portfolio := PortfolioState{Phase: PhaseShortCall, OpenOption: &OpenOption{Type: OptionCall, Strike: 1000}}
	market := MarketSnapshot{Day: 0, Spot: 5000}
	require.Nil(t, RollCallRule.Evaluate(market, portfolio, cfg))
}

func TestRollCallRuleFiresWhenCreditAllowed(t *testing.T) {
	roll := &RollCallConfig{ItmThresholdPct: 0.0, RequireNetCredit: false}
	cfg, err := NewStrategyConfig(0.3, 0.8, 0.05, 7, 1, 0.0, 0.0, nil, nil, roll)
	require.NoError(t, err)

	portfolio := PortfolioState{Phase: PhaseShortCall, OpenOption: &OpenOption{Type: OptionCall, Strike: 2600}}
	market := MarketSnapshot{Day: 0, Spot: 2700}
	sig := RollCallRule.Evaluate(market, portfolio, cfg)
	require.NotNil(t, sig)
	require.Equal(t, SignalRoll, sig.Kind)
}
