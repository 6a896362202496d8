package domain

import "errors"

// Sentinel errors surfaced by the validating config constructors. The
// simulation functions below the config boundary never return an error:
// a *StrategyConfig or *MarketParams reaching them is assumed valid.
var (
	ErrInvalidContracts       = errors.New("contracts must be a positive integer")
	ErrInvalidCycleLength     = errors.New("cycle_length_days must be a positive integer")
	ErrInvalidSpread          = errors.New("bid_ask_spread_pct must be in [0, 1)")
	ErrInvalidDeltaRange      = errors.New("adaptive_calls.min_delta must be <= max_delta")
	ErrInvalidMultiplierRange = errors.New("iv_rv_spread.min_multiplier must be <= max_multiplier")
	ErrInvalidLookback        = errors.New("iv_rv_spread.lookback_days must be a positive integer")
	ErrInvalidTargetDelta     = errors.New("target_delta must be in (0, 0.5]")
	ErrEmptyPrices            = errors.New("prices must be non-empty")
	ErrNonPositiveStartPrice  = errors.New("start_price must be positive")
	ErrTooFewDays             = errors.New("days must be >= 1")
	ErrInvalidNumRuns         = errors.New("num_runs must be a positive integer")
	ErrMissingHestonParams    = errors.New("heston parameters are required when model is heston or heston_jump")
	ErrMissingJumpParams      = errors.New("jump parameters are required when model is jump or heston_jump")
)
