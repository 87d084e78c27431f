package lec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskmesh/simcore/internal/lossvector"
)

func TestDeriveOnEmptyVectorIsEmptyCurve(t *testing.T) {
	v := lossvector.New(1_000)
	curve := Derive(v, 0)

	require.Empty(t, curve.Points)
	require.Equal(t, Quantiles{}, curve.Quantiles)
}

func TestDeriveSinglePositiveValueYieldsSinglePoint(t *testing.T) {
	v := lossvector.New(10)
	for trial := 0; trial < 5; trial++ {
		v.Set(trial, 100)
	}

	curve := Derive(v, 20)
	require.Len(t, curve.Points, 1)
	require.Equal(t, uint64(100), curve.Points[0].Threshold)
	require.InDelta(t, 0.0, curve.Points[0].Probability, 1e-9)
}

func TestDeriveCurveIsMonotonicallyNonIncreasing(t *testing.T) {
	v := lossvector.New(1_000)
	for trial := 0; trial < 1_000; trial++ {
		if trial%3 == 0 {
			v.Set(trial, uint64(trial+1))
		}
	}

	curve := Derive(v, 50)
	for i := 1; i < len(curve.Points); i++ {
		require.LessOrEqual(t, curve.Points[i].Probability, curve.Points[i-1].Probability)
	}
}

func TestDeriveQuantilesAccountForZeroMass(t *testing.T) {
	// 900 trials at 0, 100 trials at 500: P50 must be 0 since the 50th
	// percentile rank falls inside the zero-loss mass.
	v := lossvector.New(1_000)
	for trial := 0; trial < 100; trial++ {
		v.Set(trial, 500)
	}

	curve := Derive(v, 10)
	require.Equal(t, uint64(0), curve.Quantiles.P50)
	require.Equal(t, uint64(500), curve.Quantiles.P95)
	require.Equal(t, uint64(500), curve.Quantiles.P99)
}

func TestDeriveQuantilesAtExactIntegerRankBoundary(t *testing.T) {
	// N=20: 10 zero trials plus positives {10,20,...,100}. p*N is an
	// exact integer (0.50*20=10), which previously landed one element
	// past the correct boundary; P50 must still be 0 since F(0)=10/20=0.5>=0.5.
	v := lossvector.New(20)
	for trial := 0; trial < 10; trial++ {
		v.Set(trial, uint64(trial+1)*10)
	}

	curve := Derive(v, 10)
	require.Equal(t, uint64(0), curve.Quantiles.P50)
}

func TestProbOfExceedanceIsWithinBounds(t *testing.T) {
	v := lossvector.New(200)
	for trial := 0; trial < 50; trial++ {
		v.Set(trial, uint64(trial+1)*10)
	}

	curve := Derive(v, 30)
	for _, p := range curve.Points {
		require.GreaterOrEqual(t, p.Probability, 0.0)
		require.LessOrEqual(t, p.Probability, 1.0)
	}
}

func TestDeriveWithSinglePointDoesNotDivideByZero(t *testing.T) {
	v := lossvector.New(10)
	v.Set(0, 100)
	v.Set(1, 200)

	curve := Derive(v, 1)
	require.Len(t, curve.Points, 1)
	require.Equal(t, uint64(100), curve.Points[0].Threshold)
}

func TestDeriveSharedUsesOneCommonThresholdDomain(t *testing.T) {
	a := lossvector.New(100)
	a.Set(0, 10)
	a.Set(1, 1_000)

	b := lossvector.New(100)
	b.Set(0, 50)

	curves := DeriveShared([]*lossvector.SparseLossVector{a, b}, 10)
	require.Len(t, curves, 2)
	require.Equal(t, len(curves[0].Points), len(curves[1].Points))
	for i := range curves[0].Points {
		require.Equal(t, curves[0].Points[i].Threshold, curves[1].Points[i].Threshold)
	}
}
