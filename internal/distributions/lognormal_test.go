package distributions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLognormalRejectsInvalidInputs(t *testing.T) {
	_, err := NewLognormal(0, 100)
	require.Error(t, err)

	_, err = NewLognormal(100, 100)
	require.Error(t, err)

	_, err = NewLognormal(200, 100)
	require.Error(t, err)
}

func TestLognormalQuantileMedianIsExpMu(t *testing.T) {
	ln, err := NewLognormal(1_000, 50_000)
	require.NoError(t, err)

	median := ln.Quantile(0.5)
	require.InDelta(t, math.Exp(ln.mu), median, 1e-9)
}

func TestLognormalQuantileIsMonotonic(t *testing.T) {
	ln, err := NewLognormal(1_000, 50_000)
	require.NoError(t, err)

	prev := ln.Quantile(0.01)
	for _, u := range []float64{0.1, 0.25, 0.5, 0.75, 0.9, 0.99} {
		cur := ln.Quantile(u)
		require.Greater(t, cur, prev)
		prev = cur
	}
}

func TestLognormalDeterministic(t *testing.T) {
	ln, err := NewLognormal(1_000, 50_000)
	require.NoError(t, err)

	require.Equal(t, ln.Quantile(0.37), ln.Quantile(0.37))
}
