// Package lossvector implements SparseLossVector: a per-trial loss
// container that stores only non-zero outcomes, with a combine
// operation that is associative, commutative, and has the empty
// vector as its identity — the law the parallel tree reducer and
// parallel trial-range reducer both rely on.
package lossvector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/riskmesh/simcore/internal/safemath"
)

// ErrTrialCountMismatch is returned by Combine when the two operands
// were built for a different number of trials. This is a programmer
// error — it is never expected to occur in a correctly wired
// evaluator and is not meant to be recovered from.
var ErrTrialCountMismatch = errors.New("cannot combine sparse loss vectors with different trial counts")

// SparseLossVector maps a subset of [0, N) trial indices to strictly
// positive losses. Every key not present implicitly maps to 0.
type SparseLossVector struct {
	n         int
	losses    map[int]uint64
	saturated bool
}

// New returns an empty SparseLossVector over n trials — the identity
// element for Combine.
func New(n int) *SparseLossVector {
	return &SparseLossVector{n: n, losses: make(map[int]uint64)}
}

// NewWithCapacity is New but pre-sizes the backing map, useful when
// the caller knows roughly how many non-zero trials to expect.
func NewWithCapacity(n, capacityHint int) *SparseLossVector {
	return &SparseLossVector{n: n, losses: make(map[int]uint64, capacityHint)}
}

// TrialCount returns N.
func (v *SparseLossVector) TrialCount() int { return v.n }

// NonZeroCount returns the number of stored (positive-loss) entries.
func (v *SparseLossVector) NonZeroCount() int { return len(v.losses) }

// Saturated reports whether any 64-bit sum folded into this vector
// (directly, or in an earlier merge that produced one of its operands)
// overflowed and was clamped to safemath.MaxLoss.
func (v *SparseLossVector) Saturated() bool { return v.saturated }

// Get returns the loss recorded for trial t, or 0 if none.
func (v *SparseLossVector) Get(t int) uint64 {
	return v.losses[t]
}

// Set records a strictly positive loss for trial t. It panics on an
// out-of-range trial index or a non-positive loss — both are
// programmer errors, not a runtime condition a caller can recover
// from, since only the evaluator's own sampling loop calls Set and it
// always computes t and loss itself.
func (v *SparseLossVector) Set(t int, loss uint64) {
	if t < 0 || t >= v.n {
		panic(fmt.Sprintf("lossvector: trial index %d out of range [0,%d)", t, v.n))
	}
	if loss == 0 {
		panic("lossvector: Set called with a zero loss; zero trials must be omitted")
	}
	v.losses[t] = loss
}

// Combine returns a new vector whose value at every trial is the sum
// of v's and other's values there, omitting any trial whose sum is
// zero. Combine is associative and commutative, and New(n) is its
// identity. Combining vectors with different trial counts is a
// programmer error and returns ErrTrialCountMismatch rather than
// silently truncating.
//
// A merge conceptually consumes both operands; callers should not
// reuse v or other for further mutation after calling Combine
// (construction-time Set calls only happen before a vector is first
// combined, so this is a documentation note, not an enforced lock).
func (v *SparseLossVector) Combine(other *SparseLossVector) (*SparseLossVector, error) {
	if v.n != other.n {
		return nil, ErrTrialCountMismatch
	}

	small, large := v, other
	if len(small.losses) > len(large.losses) {
		small, large = large, small
	}

	result := NewWithCapacity(v.n, len(large.losses))
	result.saturated = v.saturated || other.saturated

	for t, loss := range large.losses {
		result.losses[t] = loss
	}
	for t, loss := range small.losses {
		sum, saturated := safemath.SaturatingAdd64(result.losses[t], loss)
		if saturated {
			result.saturated = true
		}
		if sum == 0 {
			delete(result.losses, t)
		} else {
			result.losses[t] = sum
		}
	}

	return result, nil
}

// SortedPositiveLosses returns a channel yielding every stored loss in
// ascending order, then closes. It is a one-shot, forward-only
// sequence: ranging over it twice yields nothing the second time.
func (v *SparseLossVector) SortedPositiveLosses() <-chan uint64 {
	sorted := make([]uint64, 0, len(v.losses))
	for _, loss := range v.losses {
		sorted = append(sorted, loss)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make(chan uint64)
	go func() {
		defer close(out)
		for _, loss := range sorted {
			out <- loss
		}
	}()
	return out
}

// ProbOfExceedance returns P(Loss > threshold) = (count of trials
// whose stored loss is strictly greater than threshold) / N.
func (v *SparseLossVector) ProbOfExceedance(threshold uint64) float64 {
	if v.n == 0 {
		return 0
	}
	count := 0
	for _, loss := range v.losses {
		if loss > threshold {
			count++
		}
	}
	return float64(count) / float64(v.n)
}
