// Package safemath provides the small set of overflow-aware integer
// operations the loss-vector merge needs: the per-trial loss sum must
// saturate at the maximum representable loss rather than wrap.
package safemath

import "math"

// MaxLoss is the largest representable loss value (monetary units).
// Losses that would sum past this value saturate here instead of
// wrapping.
const MaxLoss uint64 = math.MaxInt64

// SaturatingAdd64 returns a+b, or MaxLoss with saturated=true if the
// sum would overflow MaxLoss.
func SaturatingAdd64(a, b uint64) (sum uint64, saturated bool) {
	if a > MaxLoss-b {
		return MaxLoss, true
	}
	return a + b, false
}

// Min returns the smaller of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
