package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyEventsEmptyIsIdentity(t *testing.T) {
	state := InitialPortfolio()
	state.RealizedPL = 42
	require.Equal(t, state, ApplyEvents(state, nil))
}

func TestApplyEventsAssociative(t *testing.T) {
	state := InitialPortfolio()
	a := []Event{{Kind: EventOptionSold, OptionType: OptionPut, Strike: 2300, Delta: 0.3, Premium: 50, OpenDay: 0, ExpiryDay: 7}}
	b := []Event{{Kind: EventPremiumCollected, Gross: 50, Fees: 0.5, Net: 49.5}}

	left := ApplyEvents(ApplyEvents(state, a), b)
	right := ApplyEvents(state, append(append([]Event{}, a...), b...))
	require.Equal(t, right, left)
}

func TestApplyEventsDoesNotMutateInput(t *testing.T) {
	state := InitialPortfolio()
	before := SnapshotPortfolio(state)
	ApplyEvents(state, []Event{{Kind: EventCycleSkipped}})
	require.Equal(t, before, state)
}

func TestSnapshotPortfolioIndependence(t *testing.T) {
	state := PortfolioState{Phase: PhaseHoldingETH, Position: &Position{Size: 1, EntryPrice: 2500}}
	snap := SnapshotPortfolio(state)
	snap.Position.EntryPrice = 9999
	require.Equal(t, 2500.0, state.Position.EntryPrice)
}

func TestOptionSoldSetsPhaseAndOpenOption(t *testing.T) {
	state := InitialPortfolio()
	next := ApplyEvents(state, []Event{{Kind: EventOptionSold, OptionType: OptionPut, Strike: 2300, Delta: 0.3, Premium: 50, OpenDay: 0, ExpiryDay: 7}})
	require.Equal(t, PhaseShortPut, next.Phase)
	require.NotNil(t, next.OpenOption)
	require.Equal(t, 2300.0, next.OpenOption.Strike)
}

func TestOptionExpiredAssignedPut(t *testing.T) {
	state := PortfolioState{Phase: PhaseShortPut, OpenOption: &OpenOption{Type: OptionPut, Strike: 2300}}
	next := ApplyEvents(state, []Event{
		{Kind: EventOptionExpired, OptionType: OptionPut, Assigned: true},
		{Kind: EventETHBought, Price: 2300, Size: 1},
	})
	require.Equal(t, PhaseHoldingETH, next.Phase)
	require.Equal(t, 1, next.TotalAssignments)
	require.NotNil(t, next.Position)
	require.Equal(t, 2300.0, next.Position.EntryPrice)
	require.Nil(t, next.OpenOption)
}

func TestOptionExpiredUnassignedPutReturnsIdle(t *testing.T) {
	state := PortfolioState{Phase: PhaseShortPut, OpenOption: &OpenOption{Type: OptionPut, Strike: 2300}}
	next := ApplyEvents(state, []Event{{Kind: EventOptionExpired, OptionType: OptionPut, Assigned: false}})
	require.Equal(t, PhaseIdleCash, next.Phase)
	require.Equal(t, 0, next.TotalAssignments)
}

func TestOptionExpiredUnassignedCallReturnsHolding(t *testing.T) {
	state := PortfolioState{
		Phase:      PhaseShortCall,
		Position:   &Position{Size: 1, EntryPrice: 2300},
		OpenOption: &OpenOption{Type: OptionCall, Strike: 2600},
	}
	next := ApplyEvents(state, []Event{{Kind: EventOptionExpired, OptionType: OptionCall, Assigned: false}})
	require.Equal(t, PhaseHoldingETH, next.Phase)
}

func TestOptionRolledReplacesOpenOption(t *testing.T) {
	state := PortfolioState{
		Phase:      PhaseShortCall,
		Position:   &Position{Size: 1, EntryPrice: 2300},
		OpenOption: &OpenOption{Type: OptionCall, Strike: 2600, Premium: 40, OpenDay: 5, ExpiryDay: 12},
	}
	next := ApplyEvents(state, []Event{{
		Kind: EventOptionRolled, OldStrike: 2600, NewStrike: 2700, NewDelta: 0.25,
		OriginalPremium: 40, RollCost: 30, NewPremium: 45, Fees: 1, OpenDay: 8, ExpiryDay: 15,
	}})
	require.Equal(t, PhaseShortCall, next.Phase)
	require.Equal(t, 2700.0, next.OpenOption.Strike)
	require.InDelta(t, 45.0, next.TotalPremiumCollected, 1e-9)
	require.InDelta(t, 45-30-1, next.RealizedPL, 1e-9)
}

func TestPremiumBookedOnceNotAtExpiry(t *testing.T) {
	state := PortfolioState{Phase: PhaseShortPut, OpenOption: &OpenOption{Type: OptionPut, Strike: 2300}}
	next := ApplyEvents(state, []Event{
		{Kind: EventOptionExpired, OptionType: OptionPut, Assigned: false},
	})
	require.Equal(t, 0.0, next.TotalPremiumCollected)
}
