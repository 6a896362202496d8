package domain

// Executor translates a signal, or an expired option, into a deterministic
// sequence of events. It has exactly two methods and no dynamic dispatch
// beyond the interface itself: the simulated implementation below is one
// value, a future live-exchange implementation would be another.
type Executor interface {
	ResolveExpiration(market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) []Event
	Execute(signal Signal, market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) []Event
}

// SimulatedExecutor is the default, no-slippage-beyond-the-haircut
// executor driving Simulate and RunMonteCarlo.
type SimulatedExecutor struct{}

// ResolveExpiration emits exactly one OPTION_EXPIRED when an open option's
// expiry has been reached, with the assignment fact computed
// deterministically from spot vs. strike, plus the forced underlying
// purchase or sale it implies. It never emits PREMIUM_COLLECTED: premium
// is booked at sale, not at assignment.
func (SimulatedExecutor) ResolveExpiration(market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) []Event {
	oo := portfolio.OpenOption
	if oo == nil {
		return nil
	}

	var assigned bool
	if oo.Type == OptionPut {
		assigned = market.Spot < oo.Strike
	} else {
		assigned = market.Spot >= oo.Strike
	}

	events := []Event{{Kind: EventOptionExpired, OptionType: oo.Type, Assigned: assigned}}
	if !assigned {
		return events
	}

	if oo.Type == OptionPut {
		events = append(events, Event{Kind: EventETHBought, Price: oo.Strike, Size: config.Contracts})
	} else {
		pl := (oo.Strike - portfolio.Position.EntryPrice) * float64(config.Contracts)
		events = append(events, Event{Kind: EventETHSold, Price: oo.Strike, Size: config.Contracts, PL: pl})
	}
	return events
}

// Execute translates a non-HOLD signal into its execution events.
func (SimulatedExecutor) Execute(signal Signal, market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) []Event {
	contracts := float64(config.Contracts)
	fees := config.FeePerTrade * contracts

	switch signal.Kind {
	case SignalSellPut, SignalSellCall:
		optType := OptionCall
		if signal.Kind == SignalSellPut {
			optType = OptionPut
		}
		gross := signal.Premium * contracts
		net := gross - fees
		sold := Event{
			Kind: EventOptionSold, OptionType: optType,
			Strike: signal.Strike, Delta: signal.Delta, Premium: signal.Premium,
			OpenDay: market.Day, ExpiryDay: market.Day + config.CycleLengthDays, Fees: fees,
		}
		collected := Event{Kind: EventPremiumCollected, Gross: gross, Fees: fees, Net: net}
		return []Event{sold, collected}

	case SignalSkip:
		return []Event{{Kind: EventCycleSkipped}}

	case SignalClosePosition:
		if portfolio.Position == nil {
			return nil
		}
		size := portfolio.Position.Size
		pl := (market.Spot - portfolio.Position.EntryPrice) * float64(size)
		return []Event{{Kind: EventPositionClosed, Price: market.Spot, Size: size, PL: pl}}

	case SignalRoll:
		if portfolio.OpenOption == nil {
			return nil
		}
		return []Event{{
			Kind:            EventOptionRolled,
			OldStrike:       portfolio.OpenOption.Strike,
			NewStrike:       signal.NewStrike,
			NewDelta:        signal.NewDelta,
			OriginalPremium: portfolio.OpenOption.Premium,
			RollCost:        signal.RollCost,
			NewPremium:      signal.NewPremium,
			Fees:            2 * fees,
			OpenDay:         market.Day,
			ExpiryDay:       market.Day + config.CycleLengthDays,
		}}

	default: // SignalHold
		return nil
	}
}
