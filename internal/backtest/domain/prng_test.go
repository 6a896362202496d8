package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRngDeterministic(t *testing.T) {
	a := NewRng(42)
	b := NewRng(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.NextUniform(), b.NextUniform())
	}
}

func TestRngSeedIndependence(t *testing.T) {
	a := NewRng(1)
	b := NewRng(2)
	same := true
	for i := 0; i < 20; i++ {
		if a.NextUniform() != b.NextUniform() {
			same = false
		}
	}
	require.False(t, same, "distinct seeds must not produce an identical stream")
}

func TestRngUniformRange(t *testing.T) {
	r := NewRng(7)
	for i := 0; i < 10000; i++ {
		u := r.NextUniform()
		require.GreaterOrEqual(t, u, 1e-10)
		require.Less(t, u, 1.0)
	}
}

func TestRngNormalStatistics(t *testing.T) {
	r := NewRng(1234)
	n := 50000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		z := r.NextNormal()
		require.False(t, math.IsNaN(z))
		require.False(t, math.IsInf(z, 0))
		sum += z
		sumSq += z * z
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	require.InDelta(t, 0.0, mean, 0.05)
	require.InDelta(t, 1.0, variance, 0.1)
}

func TestRngNormalSpareCaching(t *testing.T) {
	r := NewRng(99)
	first := r.NextNormal()
	require.True(t, r.hasSpare)
	second := r.NextNormal()
	require.False(t, r.hasSpare)
	require.NotEqual(t, first, second)
}
