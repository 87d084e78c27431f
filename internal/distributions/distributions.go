// Package distributions implements the two severity-distribution
// quantile functions the core supports: Metalog (fit from percentile/
// quantile pairs) and Lognormal (fit from a 90% confidence interval).
// Both are immutable after construction and safe for concurrent,
// read-only use — quantile evaluation is the only sampling primitive,
// which is what makes determinism (given a fixed u) trivial.
package distributions

import (
	"errors"
	"fmt"
)

// Distribution exposes the inverse-CDF (quantile) function a
// RiskSampler draws from. u must be in [0, 1).
type Distribution interface {
	Quantile(u float64) float64
}

// Construction errors. These are returned (never panicked) from the
// constructors; a failure here is fatal for the request, and
// identifying the offending node is the caller's job (internal/
// evaluator wraps these with a node id via DistributionError).
var (
	ErrPercentilesNotSorted  = errors.New("percentiles must be strictly increasing and in (0,1)")
	ErrLengthMismatch        = errors.New("percentiles and quantiles must have the same length")
	ErrTooFewPoints          = errors.New("at least 2 percentile/quantile pairs are required")
	ErrTermsExceedPoints     = errors.New("terms must not exceed the number of percentile/quantile pairs")
	ErrTermsTooFew           = errors.New("terms must be at least 2")
	ErrBoundsInverted        = errors.New("lower bound must be strictly less than upper bound")
	ErrNonPositiveConfidence = errors.New("minLoss and maxLoss must be positive with minLoss < maxLoss")
)

// wrapConstructionErr gives a uniform error shape for both
// distribution kinds.
func wrapConstructionErr(kind string, err error) error {
	return fmt.Errorf("distribution construction failed (%s): %w", kind, err)
}
