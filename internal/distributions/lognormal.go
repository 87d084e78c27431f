package distributions

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ci90ZScore ≈ 2*Φ⁻¹(0.95), used to convert a 90%-confidence interval
// into a lognormal σ.
const ci90ZScore = 3.29

// Lognormal is parameterized by a 90%-confidence interval
// [minLoss, maxLoss] and evaluates its quantile function via the
// standard-normal inverse CDF.
type Lognormal struct {
	mu    float64
	sigma float64
}

// NewLognormal fits μ and σ from the 90% CI [minLoss, maxLoss]:
//
//	μ = (ln(maxLoss) + ln(minLoss)) / 2
//	σ = (ln(maxLoss) - ln(minLoss)) / 3.29
func NewLognormal(minLoss, maxLoss float64) (*Lognormal, error) {
	if !(minLoss > 0 && minLoss < maxLoss) {
		return nil, wrapConstructionErr("lognormal", ErrNonPositiveConfidence)
	}

	lnMin := math.Log(minLoss)
	lnMax := math.Log(maxLoss)

	return &Lognormal{
		mu:    (lnMax + lnMin) / 2,
		sigma: (lnMax - lnMin) / ci90ZScore,
	}, nil
}

// Quantile returns exp(μ + σ·Φ⁻¹(u)). Φ⁻¹ is gonum's standard normal
// inverse CDF, used instead of a hand-rolled approximation so results
// are pinned to a single, documented numeric library.
func (l *Lognormal) Quantile(u float64) float64 {
	z := distuv.UnitNormal.Quantile(u)
	return math.Exp(l.mu + l.sigma*z)
}
