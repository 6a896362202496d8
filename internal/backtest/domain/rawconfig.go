package domain

import "github.com/shopspring/decimal"

// RawStrategyConfig is the decimal-typed boundary representation of
// StrategyConfig: the shape a config file, an HTTP payload, or any other
// external caller hands in. Money and percentage fields use
// decimal.Decimal, following the teacher's BlackScholesInput/
// MonteCarloInput convention, so the boundary never loses precision to
// binary-float rounding before validation runs. Build converts to float64
// exactly once; nothing below this boundary touches decimal.Decimal again
// — the simulation core stays IEEE-754 float64 throughout, per the core's
// bit-stability contract.
type RawStrategyConfig struct {
	TargetDelta     decimal.Decimal
	ImpliedVol      decimal.Decimal
	RiskFreeRate    decimal.Decimal
	CycleLengthDays int
	Contracts       int
	BidAskSpreadPct decimal.Decimal
	FeePerTrade     decimal.Decimal

	AdaptiveCalls *RawAdaptiveCallsConfig
	IVRVSpread    *RawIVRVSpreadConfig
	RollCall      *RawRollCallConfig
}

type RawAdaptiveCallsConfig struct {
	MinDelta         decimal.Decimal
	MaxDelta         decimal.Decimal
	SkipThresholdPct decimal.Decimal
	MinStrikeAtCost  bool
}

type RawIVRVSpreadConfig struct {
	LookbackDays  int
	MinMultiplier decimal.Decimal
	MaxMultiplier decimal.Decimal
}

type RawRollCallConfig struct {
	ItmThresholdPct  decimal.Decimal
	RequireNetCredit bool
}

// Build validates raw and converts it to the float64-based StrategyConfig
// the simulation pipeline consumes.
func (raw RawStrategyConfig) Build() (*StrategyConfig, error) {
	var adaptive *AdaptiveCallsConfig
	if raw.AdaptiveCalls != nil {
		adaptive = &AdaptiveCallsConfig{
			MinDelta:         toFloat(raw.AdaptiveCalls.MinDelta),
			MaxDelta:         toFloat(raw.AdaptiveCalls.MaxDelta),
			SkipThresholdPct: toFloat(raw.AdaptiveCalls.SkipThresholdPct),
			MinStrikeAtCost:  raw.AdaptiveCalls.MinStrikeAtCost,
		}
	}

	var ivrv *IVRVSpreadConfig
	if raw.IVRVSpread != nil {
		ivrv = &IVRVSpreadConfig{
			LookbackDays:  raw.IVRVSpread.LookbackDays,
			MinMultiplier: toFloat(raw.IVRVSpread.MinMultiplier),
			MaxMultiplier: toFloat(raw.IVRVSpread.MaxMultiplier),
		}
	}

	var roll *RollCallConfig
	if raw.RollCall != nil {
		roll = &RollCallConfig{
			ItmThresholdPct:  toFloat(raw.RollCall.ItmThresholdPct),
			RequireNetCredit: raw.RollCall.RequireNetCredit,
		}
	}

	return NewStrategyConfig(
		toFloat(raw.TargetDelta), toFloat(raw.ImpliedVol), toFloat(raw.RiskFreeRate),
		raw.CycleLengthDays, raw.Contracts,
		toFloat(raw.BidAskSpreadPct), toFloat(raw.FeePerTrade),
		adaptive, ivrv, roll,
	)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
