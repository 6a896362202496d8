package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeRealizedVolNilWithoutHistory(t *testing.T) {
	prices := []float64{2500, 2510, 2520}
	require.Nil(t, computeRealizedVol(prices, 1, 20))
}

func TestComputeRealizedVolNilWithSubTwoLookback(t *testing.T) {
	prices := []float64{2500, 2510, 2520}
	require.Nil(t, computeRealizedVol(prices, 2, 1))
}

func TestComputeRealizedVolZeroForConstantPrices(t *testing.T) {
	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 2500
	}
	vol := computeRealizedVol(prices, 24, 20)
	require.NotNil(t, vol)
	require.InDelta(t, 0.0, *vol, 1e-12)
}

func TestComputeRealizedVolPositiveForVaryingPrices(t *testing.T) {
	params := gbmParams()
	path := GeneratePrices(params, 5)
	vol := computeRealizedVol(path.Prices, 25, 20)
	require.NotNil(t, vol)
	require.Greater(t, *vol, 0.0)
}

func TestSimulateDeterministic(t *testing.T) {
	params := gbmParams()
	path := GeneratePrices(params, 11)
	cfg := baseConfig(t)
	exec := SimulatedExecutor{}

	a := Simulate(path.Prices, path.IVPath, DefaultRules(), cfg, exec)
	b := Simulate(path.Prices, path.IVPath, DefaultRules(), cfg, exec)
	require.Equal(t, a.DailyStates, b.DailyStates)
	require.Equal(t, a.Summary, b.Summary)
}

func TestSimulateDailyStatesCoverEveryDay(t *testing.T) {
	params := gbmParams()
	path := GeneratePrices(params, 3)
	cfg := baseConfig(t)
	result := Simulate(path.Prices, path.IVPath, DefaultRules(), cfg, SimulatedExecutor{})
	require.Len(t, result.DailyStates, len(path.Prices))
	for i, ds := range result.DailyStates {
		require.Equal(t, i, ds.Day)
	}
}

func TestSimulateHoldingFlagMatchesPosition(t *testing.T) {
	params := gbmParams()
	path := GeneratePrices(params, 21)
	cfg := baseConfig(t)
	result := Simulate(path.Prices, path.IVPath, DefaultRules(), cfg, SimulatedExecutor{})
	for _, ds := range result.DailyStates {
		if ds.HoldingETH {
			require.Contains(t, []Phase{PhaseHoldingETH, PhaseShortCall}, ds.Phase)
		}
	}
}

func TestSimulateAssignmentCounterMonotonicAcrossSignalLog(t *testing.T) {
	params := gbmParams()
	path := GeneratePrices(params, 99)
	cfg := baseConfig(t)
	result := Simulate(path.Prices, path.IVPath, DefaultRules(), cfg, SimulatedExecutor{})
	require.GreaterOrEqual(t, result.Summary.TotalAssignments, 0)
	prev := 0
	for _, entry := range result.SignalLog {
		require.GreaterOrEqual(t, entry.PortfolioBefore.TotalAssignments, prev)
		require.GreaterOrEqual(t, entry.PortfolioAfter.TotalAssignments, entry.PortfolioBefore.TotalAssignments)
		prev = entry.PortfolioAfter.TotalAssignments
	}
}

func TestRollTriggeredFalseWithoutRollCallConfig(t *testing.T) {
	cfg := baseConfig(t)
	portfolio := PortfolioState{Phase: PhaseShortCall, OpenOption: &OpenOption{Type: OptionCall, Strike: 2000}}
	require.False(t, rollTriggered(portfolio, MarketSnapshot{Spot: 5000}, cfg))
}

func TestIsDecisionPointTrueWithoutOpenOption(t *testing.T) {
	require.True(t, isDecisionPoint(InitialPortfolio(), 0))
}

func TestIsDecisionPointTrueAtOrPastExpiry(t *testing.T) {
	portfolio := PortfolioState{OpenOption: &OpenOption{ExpiryDay: 7}}
	require.False(t, isDecisionPoint(portfolio, 5))
	require.True(t, isDecisionPoint(portfolio, 7))
	require.True(t, isDecisionPoint(portfolio, 8))
}
