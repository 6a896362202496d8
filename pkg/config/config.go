// Package config loads a backtest RunRequest (market parameters plus a
// strategy configuration) from a TOML file, with environment-variable
// override, via viper. It is the integration seam a future CLI or service
// would use to materialize domain.MarketParams and domain.StrategyConfig
// from a config file; the core simulation package never touches the
// filesystem itself.
package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/wyfcoding/optionwheel/internal/backtest/domain"
)

// HestonParamsFile mirrors domain.HestonParams for TOML loading.
type HestonParamsFile struct {
	Kappa float64 `mapstructure:"kappa"`
	Theta float64 `mapstructure:"theta"`
	Xi    float64 `mapstructure:"xi"`
	Rho   float64 `mapstructure:"rho"`
	V0    float64 `mapstructure:"v0"`
}

// JumpParamsFile mirrors domain.JumpParams for TOML loading.
type JumpParamsFile struct {
	Lambda float64 `mapstructure:"lambda"`
	MuJ    float64 `mapstructure:"mu_j"`
	SigmaJ float64 `mapstructure:"sigma_j"`
}

// MarketParamsFile mirrors domain.MarketParams for TOML loading.
type MarketParamsFile struct {
	StartPrice float64           `mapstructure:"start_price"`
	Days       int               `mapstructure:"days"`
	AnnualMu   float64           `mapstructure:"annual_mu"`
	AnnualVol  float64           `mapstructure:"annual_vol"`
	Model      string            `mapstructure:"model"`
	Heston     *HestonParamsFile `mapstructure:"heston"`
	Jump       *JumpParamsFile   `mapstructure:"jump"`
}

// ToDomain validates and converts into domain.MarketParams.
func (f MarketParamsFile) ToDomain() (*domain.MarketParams, error) {
	var heston *domain.HestonParams
	if f.Heston != nil {
		heston = &domain.HestonParams{Kappa: f.Heston.Kappa, Theta: f.Heston.Theta, Xi: f.Heston.Xi, Rho: f.Heston.Rho, V0: f.Heston.V0}
	}
	var jump *domain.JumpParams
	if f.Jump != nil {
		jump = &domain.JumpParams{Lambda: f.Jump.Lambda, MuJ: f.Jump.MuJ, SigmaJ: f.Jump.SigmaJ}
	}
	return domain.NewMarketParams(f.StartPrice, f.Days, f.AnnualMu, f.AnnualVol, domain.PriceModel(f.Model), heston, jump)
}

// AdaptiveCallsFile mirrors domain.RawAdaptiveCallsConfig for TOML
// loading; money/percentage fields are strings so they round-trip through
// decimal.Decimal without binary-float rounding.
type AdaptiveCallsFile struct {
	MinDelta         string `mapstructure:"min_delta"`
	MaxDelta         string `mapstructure:"max_delta"`
	SkipThresholdPct string `mapstructure:"skip_threshold_pct"`
	MinStrikeAtCost  bool   `mapstructure:"min_strike_at_cost"`
}

// IVRVSpreadFile mirrors domain.RawIVRVSpreadConfig for TOML loading.
type IVRVSpreadFile struct {
	LookbackDays  int    `mapstructure:"lookback_days"`
	MinMultiplier string `mapstructure:"min_multiplier"`
	MaxMultiplier string `mapstructure:"max_multiplier"`
}

// RollCallFile mirrors domain.RawRollCallConfig for TOML loading.
type RollCallFile struct {
	ItmThresholdPct  string `mapstructure:"itm_threshold_pct"`
	RequireNetCredit bool   `mapstructure:"require_net_credit"`
}

// StrategyConfigFile mirrors domain.RawStrategyConfig for TOML loading.
type StrategyConfigFile struct {
	TargetDelta     string `mapstructure:"target_delta"`
	ImpliedVol      string `mapstructure:"implied_vol"`
	RiskFreeRate    string `mapstructure:"risk_free_rate"`
	CycleLengthDays int    `mapstructure:"cycle_length_days"`
	Contracts       int    `mapstructure:"contracts"`
	BidAskSpreadPct string `mapstructure:"bid_ask_spread_pct"`
	FeePerTrade     string `mapstructure:"fee_per_trade"`

	AdaptiveCalls *AdaptiveCallsFile `mapstructure:"adaptive_calls"`
	IVRVSpread    *IVRVSpreadFile    `mapstructure:"iv_rv_spread"`
	RollCall      *RollCallFile      `mapstructure:"roll_call"`
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

// ToRaw parses every decimal-typed field and returns the
// domain.RawStrategyConfig boundary value; call Build on the result to
// validate and obtain a domain.StrategyConfig.
func (f StrategyConfigFile) ToRaw() (domain.RawStrategyConfig, error) {
	targetDelta, err := parseDecimal("target_delta", f.TargetDelta)
	if err != nil {
		return domain.RawStrategyConfig{}, err
	}
	impliedVol, err := parseDecimal("implied_vol", f.ImpliedVol)
	if err != nil {
		return domain.RawStrategyConfig{}, err
	}
	riskFreeRate, err := parseDecimal("risk_free_rate", f.RiskFreeRate)
	if err != nil {
		return domain.RawStrategyConfig{}, err
	}
	bidAsk, err := parseDecimal("bid_ask_spread_pct", f.BidAskSpreadPct)
	if err != nil {
		return domain.RawStrategyConfig{}, err
	}
	fee, err := parseDecimal("fee_per_trade", f.FeePerTrade)
	if err != nil {
		return domain.RawStrategyConfig{}, err
	}

	raw := domain.RawStrategyConfig{
		TargetDelta:     targetDelta,
		ImpliedVol:      impliedVol,
		RiskFreeRate:    riskFreeRate,
		CycleLengthDays: f.CycleLengthDays,
		Contracts:       f.Contracts,
		BidAskSpreadPct: bidAsk,
		FeePerTrade:     fee,
	}

	if f.AdaptiveCalls != nil {
		minDelta, err := parseDecimal("adaptive_calls.min_delta", f.AdaptiveCalls.MinDelta)
		if err != nil {
			return domain.RawStrategyConfig{}, err
		}
		maxDelta, err := parseDecimal("adaptive_calls.max_delta", f.AdaptiveCalls.MaxDelta)
		if err != nil {
			return domain.RawStrategyConfig{}, err
		}
		skip, err := parseDecimal("adaptive_calls.skip_threshold_pct", f.AdaptiveCalls.SkipThresholdPct)
		if err != nil {
			return domain.RawStrategyConfig{}, err
		}
		raw.AdaptiveCalls = &domain.RawAdaptiveCallsConfig{
			MinDelta: minDelta, MaxDelta: maxDelta, SkipThresholdPct: skip,
			MinStrikeAtCost: f.AdaptiveCalls.MinStrikeAtCost,
		}
	}

	if f.IVRVSpread != nil {
		minMult, err := parseDecimal("iv_rv_spread.min_multiplier", f.IVRVSpread.MinMultiplier)
		if err != nil {
			return domain.RawStrategyConfig{}, err
		}
		maxMult, err := parseDecimal("iv_rv_spread.max_multiplier", f.IVRVSpread.MaxMultiplier)
		if err != nil {
			return domain.RawStrategyConfig{}, err
		}
		raw.IVRVSpread = &domain.RawIVRVSpreadConfig{
			LookbackDays: f.IVRVSpread.LookbackDays, MinMultiplier: minMult, MaxMultiplier: maxMult,
		}
	}

	if f.RollCall != nil {
		itm, err := parseDecimal("roll_call.itm_threshold_pct", f.RollCall.ItmThresholdPct)
		if err != nil {
			return domain.RawStrategyConfig{}, err
		}
		raw.RollCall = &domain.RawRollCallConfig{ItmThresholdPct: itm, RequireNetCredit: f.RollCall.RequireNetCredit}
	}

	return raw, nil
}

// RunRequestFile is the top-level TOML document: [market] and [strategy]
// tables.
type RunRequestFile struct {
	Market   MarketParamsFile   `mapstructure:"market"`
	Strategy StrategyConfigFile `mapstructure:"strategy"`
	NumRuns  int                `mapstructure:"num_runs"`
}

// Load reads configPath as TOML, allowing any field present in the file to
// be overridden by an OPTIONWHEEL_-prefixed environment variable (dots
// replaced with underscores, per viper's convention). A field absent from
// the file is not picked up from the environment.
func Load(configPath string) (*RunRequestFile, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	v.SetEnvPrefix("OPTIONWHEEL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var req RunRequestFile
	if err := v.Unmarshal(&req); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if req.NumRuns <= 0 {
		req.NumRuns = 1
	}
	return &req, nil
}
