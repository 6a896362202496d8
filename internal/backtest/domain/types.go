// Package domain holds the pure, side-effect free core of the wheel-strategy
// backtester: the PRNG, price-path generator, Black-Scholes pricing, the
// rule set, the executor, the state reducer, the simulation and Monte Carlo
// drivers, and the insight generator. Nothing in this package touches a
// clock, a logger, a network socket, or the filesystem.
package domain

// Phase is the discrete state of the strategy's position in the wheel.
type Phase string

const (
	PhaseIdleCash   Phase = "idle_cash"
	PhaseShortPut   Phase = "short_put"
	PhaseHoldingETH Phase = "holding_eth"
	PhaseShortCall  Phase = "short_call"
)

// OptionType distinguishes the two option legs the strategy trades.
type OptionType string

const (
	OptionPut  OptionType = "put"
	OptionCall OptionType = "call"
)

// Position is present only while the strategy holds the underlying.
type Position struct {
	Size       int
	EntryPrice float64
}

// OpenOption is present only while a short option is live.
type OpenOption struct {
	Type      OptionType
	Strike    float64
	Delta     float64
	Premium   float64
	OpenDay   int
	ExpiryDay int
}

// PortfolioState is the strategy's accounting state. It is created once by
// InitialPortfolio, mutated only through ApplyEvents, and never shared
// concurrently between runs.
type PortfolioState struct {
	Phase                 Phase
	Position              *Position
	OpenOption            *OpenOption
	RealizedPL            float64
	TotalPremiumCollected float64
	TotalAssignments      int
	TotalSkippedCycles    int
}

// InitialPortfolio returns the portfolio state at the start of a simulation.
func InitialPortfolio() PortfolioState {
	return PortfolioState{Phase: PhaseIdleCash}
}

// SnapshotPortfolio returns an independent deep copy: mutating the result
// never changes state, and mutating state never changes the result.
func SnapshotPortfolio(state PortfolioState) PortfolioState {
	out := state
	if state.Position != nil {
		p := *state.Position
		out.Position = &p
	}
	if state.OpenOption != nil {
		o := *state.OpenOption
		out.OpenOption = &o
	}
	return out
}

// MarketSnapshot is a read-only observation passed to rules and the executor.
type MarketSnapshot struct {
	Day         int
	Spot        float64
	IV          *float64
	RealizedVol *float64
}

// SignalKind enumerates the strategy-intent variants a rule may produce.
type SignalKind string

const (
	SignalHold          SignalKind = "HOLD"
	SignalSellPut       SignalKind = "SELL_PUT"
	SignalSellCall      SignalKind = "SELL_CALL"
	SignalSkip          SignalKind = "SKIP"
	SignalClosePosition SignalKind = "CLOSE_POSITION"
	SignalRoll          SignalKind = "ROLL"
)

// Signal is the tagged-union payload a rule emits. Only the fields relevant
// to Kind are meaningful; the rest are zero.
type Signal struct {
	Kind SignalKind

	Strike  float64
	Delta   float64
	Premium float64

	NewStrike  float64
	NewDelta   float64
	RollCost   float64
	NewPremium float64
	Credit     float64

	Rule   string
	Reason string
}

// EventKind enumerates the execution facts the executor and the reducer
// exchange.
type EventKind string

const (
	EventOptionSold       EventKind = "OPTION_SOLD"
	EventOptionExpired    EventKind = "OPTION_EXPIRED"
	EventETHBought        EventKind = "ETH_BOUGHT"
	EventETHSold          EventKind = "ETH_SOLD"
	EventPremiumCollected EventKind = "PREMIUM_COLLECTED"
	EventCycleSkipped     EventKind = "CYCLE_SKIPPED"
	EventPositionClosed   EventKind = "POSITION_CLOSED"
	EventOptionRolled     EventKind = "OPTION_ROLLED"
)

// Event is the tagged-union execution fact produced by the executor and
// consumed by the reducer.
type Event struct {
	Kind EventKind

	OptionType OptionType
	Strike     float64
	Delta      float64
	Premium    float64
	OpenDay    int
	ExpiryDay  int
	Assigned   bool

	Price float64
	Size  int
	PL    float64

	Gross float64
	Fees  float64
	Net   float64

	OldStrike       float64
	NewStrike       float64
	NewDelta        float64
	OriginalPremium float64
	RollCost        float64
	NewPremium      float64
}

// SignalLogEntry frames the effect of a single signal (or expiry
// resolution) on one day. PortfolioBefore/PortfolioAfter are independent
// snapshots so later mutation of live state cannot change logged history.
type SignalLogEntry struct {
	Day             int
	Market          MarketSnapshot
	PortfolioBefore PortfolioState
	Signal          Signal
	Events          []Event
	PortfolioAfter  PortfolioState
}

// DailyState is one per-day portfolio snapshot.
type DailyState struct {
	Day          int
	Price        float64
	Phase        Phase
	CumulativePL float64
	UnrealizedPL float64
	HoldingETH   bool
}

// AdaptiveCallsConfig enables the ladder-based covered-call delta and the
// low-premium skip rule.
type AdaptiveCallsConfig struct {
	MinDelta          float64
	MaxDelta          float64
	SkipThresholdPct  float64
	MinStrikeAtCost   bool
}

// IVRVSpreadConfig enables the IV/RV multiplier applied to every delta-
// adjusting rule.
type IVRVSpreadConfig struct {
	LookbackDays  int
	MinMultiplier float64
	MaxMultiplier float64
}

// RollCallConfig enables RollCallRule.
type RollCallConfig struct {
	ItmThresholdPct  float64
	RequireNetCredit bool
}

// StrategyConfig is the validated configuration consumed by the rules,
// executor, and drivers. Construct with NewStrategyConfig; the zero value
// is not a valid config.
type StrategyConfig struct {
	TargetDelta     float64
	ImpliedVol      float64
	RiskFreeRate    float64
	CycleLengthDays int
	Contracts       int
	BidAskSpreadPct float64
	FeePerTrade     float64

	AdaptiveCalls *AdaptiveCallsConfig
	IVRVSpread    *IVRVSpreadConfig
	RollCall      *RollCallConfig
}

// NewStrategyConfig validates and constructs a StrategyConfig from raw
// float64 inputs. See RawStrategyConfig for the decimal-based boundary
// constructor used when loading configuration from an external source.
func NewStrategyConfig(
	targetDelta, impliedVol, riskFreeRate float64,
	cycleLengthDays, contracts int,
	bidAskSpreadPct, feePerTrade float64,
	adaptiveCalls *AdaptiveCallsConfig,
	ivRVSpread *IVRVSpreadConfig,
	rollCall *RollCallConfig,
) (*StrategyConfig, error) {
	if contracts <= 0 {
		return nil, ErrInvalidContracts
	}
	if cycleLengthDays <= 0 {
		return nil, ErrInvalidCycleLength
	}
	if bidAskSpreadPct < 0 || bidAskSpreadPct >= 1 {
		return nil, ErrInvalidSpread
	}
	if targetDelta <= 0 || targetDelta > 0.5 {
		return nil, ErrInvalidTargetDelta
	}
	if adaptiveCalls != nil && adaptiveCalls.MinDelta > adaptiveCalls.MaxDelta {
		return nil, ErrInvalidDeltaRange
	}
	if ivRVSpread != nil {
		if ivRVSpread.LookbackDays <= 0 {
			return nil, ErrInvalidLookback
		}
		if ivRVSpread.MinMultiplier > ivRVSpread.MaxMultiplier {
			return nil, ErrInvalidMultiplierRange
		}
	}
	return &StrategyConfig{
		TargetDelta:     targetDelta,
		ImpliedVol:      impliedVol,
		RiskFreeRate:    riskFreeRate,
		CycleLengthDays: cycleLengthDays,
		Contracts:       contracts,
		BidAskSpreadPct: bidAskSpreadPct,
		FeePerTrade:     feePerTrade,
		AdaptiveCalls:   adaptiveCalls,
		IVRVSpread:      ivRVSpread,
		RollCall:        rollCall,
	}, nil
}

// PriceModel selects the price-path generator's diffusion.
type PriceModel string

const (
	ModelGBM        PriceModel = "gbm"
	ModelHeston     PriceModel = "heston"
	ModelJump       PriceModel = "jump"
	ModelHestonJump PriceModel = "heston_jump"
)

// HestonParams configures the Andersen quadratic-exponential variance
// process used by ModelHeston and ModelHestonJump.
type HestonParams struct {
	Kappa float64 // mean-reversion speed
	Theta float64 // long-run variance
	Xi    float64 // vol of vol
	Rho   float64 // spot/vol correlation
	V0    float64 // initial variance
}

// JumpParams configures the Merton compound-Poisson jump component used by
// ModelJump and ModelHestonJump.
type JumpParams struct {
	Lambda float64 // jump intensity, per year
	MuJ    float64 // mean log-jump size
	SigmaJ float64 // log-jump size std dev
}

// MarketParams is the validated input to GeneratePrices and RunMonteCarlo.
type MarketParams struct {
	StartPrice float64
	Days       int
	AnnualMu   float64
	AnnualVol  float64
	Model      PriceModel
	Heston     *HestonParams
	Jump       *JumpParams
}

// NewMarketParams validates and constructs MarketParams.
func NewMarketParams(startPrice float64, days int, annualMu, annualVol float64, model PriceModel, heston *HestonParams, jump *JumpParams) (*MarketParams, error) {
	if startPrice <= 0 {
		return nil, ErrNonPositiveStartPrice
	}
	if days < 1 {
		return nil, ErrTooFewDays
	}
	if (model == ModelHeston || model == ModelHestonJump) && heston == nil {
		return nil, ErrMissingHestonParams
	}
	if (model == ModelJump || model == ModelHestonJump) && jump == nil {
		return nil, ErrMissingJumpParams
	}
	return &MarketParams{
		StartPrice: startPrice,
		Days:       days,
		AnnualMu:   annualMu,
		AnnualVol:  annualVol,
		Model:      model,
		Heston:     heston,
		Jump:       jump,
	}, nil
}
