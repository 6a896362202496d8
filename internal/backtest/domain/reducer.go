package domain

// ApplyEvents folds events left-to-right into state and returns a new
// state; it never mutates state or any value events references.
func ApplyEvents(state PortfolioState, events []Event) PortfolioState {
	next := SnapshotPortfolio(state)
	for _, ev := range events {
		next = applyEvent(next, ev)
	}
	return next
}

func applyEvent(state PortfolioState, ev Event) PortfolioState {
	switch ev.Kind {
	case EventOptionSold:
		state.OpenOption = &OpenOption{
			Type:      ev.OptionType,
			Strike:    ev.Strike,
			Delta:     ev.Delta,
			Premium:   ev.Premium,
			OpenDay:   ev.OpenDay,
			ExpiryDay: ev.ExpiryDay,
		}
		if ev.OptionType == OptionPut {
			state.Phase = PhaseShortPut
		} else {
			state.Phase = PhaseShortCall
		}

	case EventOptionExpired:
		state.OpenOption = nil
		if ev.Assigned {
			state.TotalAssignments++
			if ev.OptionType == OptionPut {
				state.Phase = PhaseHoldingETH
			} else {
				state.Phase = PhaseIdleCash
			}
		} else {
			if state.Position != nil {
				state.Phase = PhaseHoldingETH
			} else {
				state.Phase = PhaseIdleCash
			}
		}

	case EventETHBought:
		state.Position = &Position{Size: ev.Size, EntryPrice: ev.Price}

	case EventETHSold:
		state.Position = nil
		state.RealizedPL += ev.PL

	case EventPremiumCollected:
		state.TotalPremiumCollected += ev.Gross
		state.RealizedPL += ev.Net

	case EventCycleSkipped:
		state.TotalSkippedCycles++

	case EventPositionClosed:
		state.Position = nil
		state.RealizedPL += ev.PL
		state.Phase = PhaseIdleCash

	case EventOptionRolled:
		state.TotalPremiumCollected += ev.NewPremium
		state.RealizedPL += ev.NewPremium - ev.RollCost - ev.Fees
		state.OpenOption = &OpenOption{
			Type:      OptionCall,
			Strike:    ev.NewStrike,
			Delta:     ev.NewDelta,
			Premium:   ev.NewPremium,
			OpenDay:   ev.OpenDay,
			ExpiryDay: ev.ExpiryDay,
		}
		state.Phase = PhaseShortCall
	}
	return state
}
