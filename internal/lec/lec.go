// Package lec derives Loss Exceedance Curves and summary quantiles
// from a SparseLossVector: the (threshold, P(Loss>threshold)) points a
// caller plots, and the P50/P90/P95/P99 loss quantiles computed over
// all trials — including the zero-loss mass the sparse vector omits.
package lec

import (
	"math"

	"github.com/riskmesh/simcore/internal/lossvector"
)

// Point is one (threshold, exceedance probability) sample of a curve.
type Point struct {
	Threshold   uint64
	Probability float64
}

// Quantiles holds the standard summary quantiles reported alongside a
// curve.
type Quantiles struct {
	P50 uint64
	P90 uint64
	P95 uint64
	P99 uint64
}

// Curve is a derived Loss Exceedance Curve: a monotonically
// non-increasing sequence of Points plus its summary Quantiles.
type Curve struct {
	Points    []Point
	Quantiles Quantiles
}

// DefaultCurvePoints is the number of threshold samples Derive takes
// across the positive-loss domain when the caller doesn't request a
// specific count.
const DefaultCurvePoints = 100

// Derive builds v's Loss Exceedance Curve using numPoints evenly spaced
// thresholds across v's positive-loss domain (numPoints<=0 uses
// DefaultCurvePoints). A vector with no non-zero trials derives an
// empty curve and all-zero quantiles; a vector whose only positive loss
// value is a single constant derives a single-point curve.
func Derive(v *lossvector.SparseLossVector, numPoints int) Curve {
	if numPoints <= 0 {
		numPoints = DefaultCurvePoints
	}

	sorted := collectSorted(v)
	if len(sorted) == 0 {
		return Curve{}
	}

	minLoss, maxLoss := sorted[0], sorted[len(sorted)-1]
	thresholds := buildThresholds(minLoss, maxLoss, numPoints)

	points := make([]Point, 0, len(thresholds))
	for _, threshold := range thresholds {
		points = append(points, Point{
			Threshold:   threshold,
			Probability: v.ProbOfExceedance(threshold),
		})
	}

	return Curve{
		Points:    points,
		Quantiles: quantilesOf(v, sorted),
	}
}

// DeriveShared builds one Curve per vector in vs, all sampled at the
// same shared set of thresholds — the union of each vector's own
// positive-loss domain — so the resulting curves are directly
// comparable point-for-point on one chart. A vector with no non-zero
// trials gets an empty Curve (no points, all-zero quantiles).
func DeriveShared(vs []*lossvector.SparseLossVector, numPoints int) []Curve {
	if numPoints <= 0 {
		numPoints = DefaultCurvePoints
	}

	var globalMin, globalMax uint64
	haveAny := false
	sortedByVector := make([][]uint64, len(vs))

	for i, v := range vs {
		sorted := collectSorted(v)
		sortedByVector[i] = sorted
		if len(sorted) == 0 {
			continue
		}
		if !haveAny || sorted[0] < globalMin {
			globalMin = sorted[0]
		}
		if !haveAny || sorted[len(sorted)-1] > globalMax {
			globalMax = sorted[len(sorted)-1]
		}
		haveAny = true
	}

	curves := make([]Curve, len(vs))
	if !haveAny {
		return curves
	}
	thresholds := buildThresholds(globalMin, globalMax, numPoints)

	for i, v := range vs {
		if len(sortedByVector[i]) == 0 {
			curves[i] = Curve{}
			continue
		}
		points := make([]Point, 0, len(thresholds))
		for _, threshold := range thresholds {
			points = append(points, Point{
				Threshold:   threshold,
				Probability: v.ProbOfExceedance(threshold),
			})
		}
		curves[i] = Curve{
			Points:    points,
			Quantiles: quantilesOf(v, sortedByVector[i]),
		}
	}
	return curves
}

func collectSorted(v *lossvector.SparseLossVector) []uint64 {
	sorted := make([]uint64, 0, v.NonZeroCount())
	for loss := range v.SortedPositiveLosses() {
		sorted = append(sorted, loss)
	}
	return sorted
}

func buildThresholds(minLoss, maxLoss uint64, numPoints int) []uint64 {
	if minLoss == maxLoss || numPoints <= 1 {
		return []uint64{minLoss}
	}
	thresholds := make([]uint64, numPoints)
	span := float64(maxLoss - minLoss)
	for i := 0; i < numPoints; i++ {
		frac := float64(i) / float64(numPoints-1)
		thresholds[i] = minLoss + uint64(frac*span)
	}
	return thresholds
}

// quantilesOf computes the P50/P90/P95/P99 loss quantiles over all N
// trials (not just the non-zero ones): the rank of the target
// percentile is taken against the full trial count, and any rank
// falling in the implicit zero-loss mass reports 0.
func quantilesOf(v *lossvector.SparseLossVector, sortedPositive []uint64) Quantiles {
	return Quantiles{
		P50: quantileAt(v.TrialCount(), sortedPositive, 0.50),
		P90: quantileAt(v.TrialCount(), sortedPositive, 0.90),
		P95: quantileAt(v.TrialCount(), sortedPositive, 0.95),
		P99: quantileAt(v.TrialCount(), sortedPositive, 0.99),
	}
}

func quantileAt(nTotal int, sortedPositive []uint64, p float64) uint64 {
	if nTotal == 0 {
		return 0
	}
	zeroCount := nTotal - len(sortedPositive)

	// rank is the 0-indexed position of the smallest x such that
	// P(Loss<=x) >= p, among all N trials sorted ascending (zero-loss
	// trials sort first): ceil(p*N) - 1, not the truncated p*N, which
	// is off by one whenever p*N lands on an exact integer.
	rank := int(math.Ceil(p*float64(nTotal))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= nTotal {
		rank = nTotal - 1
	}

	if rank < zeroCount {
		return 0
	}
	idx := rank - zeroCount
	if idx >= len(sortedPositive) {
		idx = len(sortedPositive) - 1
	}
	return sortedPositive[idx]
}
