package distributions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMetalogValidation(t *testing.T) {
	percentiles := []float64{0.1, 0.5, 0.9}
	quantiles := []float64{10, 50, 90}

	_, err := NewMetalog([]float64{0.5, 0.1, 0.9}, quantiles, 3, nil, nil)
	require.ErrorIs(t, err, ErrPercentilesNotSorted)

	_, err = NewMetalog(percentiles, []float64{10, 50}, 3, nil, nil)
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewMetalog(percentiles, quantiles, 4, nil, nil)
	require.ErrorIs(t, err, ErrTermsExceedPoints)

	_, err = NewMetalog(percentiles, quantiles, 1, nil, nil)
	require.ErrorIs(t, err, ErrTermsTooFew)

	lower, upper := 100.0, 50.0
	_, err = NewMetalog(percentiles, quantiles, 3, &lower, &upper)
	require.ErrorIs(t, err, ErrBoundsInverted)
}

func TestMetalogFitsGivenPoints(t *testing.T) {
	percentiles := []float64{0.1, 0.5, 0.9}
	quantiles := []float64{1_000, 5_000, 20_000}

	m, err := NewMetalog(percentiles, quantiles, 3, nil, nil)
	require.NoError(t, err)

	for i, p := range percentiles {
		require.InDelta(t, quantiles[i], m.Quantile(p), 1e-6)
	}
}

func TestMetalogBoundedFitsGivenPoints(t *testing.T) {
	percentiles := []float64{0.1, 0.5, 0.9}
	quantiles := []float64{1_000, 5_000, 20_000}
	lower, upper := 0.0, 100_000.0

	m, err := NewMetalog(percentiles, quantiles, 3, &lower, &upper)
	require.NoError(t, err)

	for i, p := range percentiles {
		require.InDelta(t, quantiles[i], m.Quantile(p), 1e-3)
	}
}

func TestMetalogDeterministic(t *testing.T) {
	percentiles := []float64{0.1, 0.5, 0.9}
	quantiles := []float64{1_000, 5_000, 20_000}

	m, err := NewMetalog(percentiles, quantiles, 3, nil, nil)
	require.NoError(t, err)

	require.Equal(t, m.Quantile(0.42), m.Quantile(0.42))
}
