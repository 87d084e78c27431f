package distributions

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Metalog is a quantile-parameterized distribution fit from a set of
// (percentile, quantile) pairs, per Keelin's metalog family. It
// optionally clamps its underlying quantile function to a lower
// and/or upper bound using the log/logit transforms of the bounded
// metalog variants.
type Metalog struct {
	coeffs []float64
	lower  *float64
	upper  *float64
}

// NewMetalog fits a Metalog distribution with the given number of
// terms from sorted percentiles/matching quantiles, with optional
// bounds. Fitting is a one-shot linear (least-squares, when
// terms < len(percentiles)) solve; failures here are leaf-construction
// errors.
func NewMetalog(percentiles, quantiles []float64, terms int, lower, upper *float64) (*Metalog, error) {
	k := len(percentiles)
	if k != len(quantiles) {
		return nil, wrapConstructionErr("metalog", ErrLengthMismatch)
	}
	if k < 2 {
		return nil, wrapConstructionErr("metalog", ErrTooFewPoints)
	}
	for i, p := range percentiles {
		if p <= 0 || p >= 1 {
			return nil, wrapConstructionErr("metalog", ErrPercentilesNotSorted)
		}
		if i > 0 && percentiles[i-1] >= p {
			return nil, wrapConstructionErr("metalog", ErrPercentilesNotSorted)
		}
	}
	if terms < 2 {
		return nil, wrapConstructionErr("metalog", ErrTermsTooFew)
	}
	if terms > k {
		return nil, wrapConstructionErr("metalog", ErrTermsExceedPoints)
	}
	if lower != nil && upper != nil && *lower >= *upper {
		return nil, wrapConstructionErr("metalog", ErrBoundsInverted)
	}

	// Transform quantiles into "unbounded" space before fitting, per
	// Keelin's semi-bounded/bounded metalog construction: the basis
	// fit always happens in the unbounded y-space, and the bound
	// transform is applied at evaluation time, not fit time.
	targets := make([]float64, k)
	for i, q := range quantiles {
		targets[i] = toUnboundedSpace(q, lower, upper)
	}

	basis := mat.NewDense(k, terms, nil)
	for i, p := range percentiles {
		row := metalogBasisRow(p, terms)
		basis.SetRow(i, row)
	}
	targetVec := mat.NewVecDense(k, targets)

	var coeffVec mat.VecDense
	if err := coeffVec.SolveVec(basis, targetVec); err != nil {
		return nil, wrapConstructionErr("metalog", err)
	}

	return &Metalog{
		coeffs: append([]float64(nil), coeffVec.RawVector().Data...),
		lower:  lower,
		upper:  upper,
	}, nil
}

// metalogBasisRow evaluates the first `terms` Keelin basis functions
// m_1(y)..m_terms(y) at y = p.
func metalogBasisRow(p float64, terms int) []float64 {
	row := make([]float64, terms)
	logit := math.Log(p / (1 - p))
	centered := p - 0.5

	for j := 1; j <= terms; j++ {
		switch {
		case j == 1:
			row[j-1] = 1
		case j == 2:
			row[j-1] = logit
		case j == 3:
			row[j-1] = centered * logit
		case j == 4:
			row[j-1] = centered
		case j%2 == 1: // odd j >= 5
			power := float64((j - 1) / 2)
			row[j-1] = math.Pow(centered, power)
		default: // even j >= 6
			power := float64(j/2 - 1)
			row[j-1] = math.Pow(centered, power) * logit
		}
	}
	return row
}

// toUnboundedSpace inverts the bound transform so the fit operates on
// the unbounded quantile function's values.
func toUnboundedSpace(q float64, lower, upper *float64) float64 {
	switch {
	case lower != nil && upper != nil:
		// q = (L + U*exp(y)) / (1 + exp(y))  =>  y = ln((q-L)/(U-q))
		return math.Log((q - *lower) / (*upper - q))
	case lower != nil:
		// q = L + exp(y)  =>  y = ln(q - L)
		return math.Log(q - *lower)
	case upper != nil:
		// q = U - exp(-y)  =>  y = -ln(U - q)
		return -math.Log(*upper - q)
	default:
		return q
	}
}

// Quantile evaluates the fitted metalog quantile function at u,
// applying whichever bound transform was configured at construction.
func (m *Metalog) Quantile(u float64) float64 {
	y := m.evalUnbounded(u)

	switch {
	case m.lower != nil && m.upper != nil:
		e := math.Exp(y)
		return (*m.lower + *m.upper*e) / (1 + e)
	case m.lower != nil:
		return *m.lower + math.Exp(y)
	case m.upper != nil:
		return *m.upper - math.Exp(-y)
	default:
		return y
	}
}

func (m *Metalog) evalUnbounded(u float64) float64 {
	row := metalogBasisRow(u, len(m.coeffs))
	var sum float64
	for i, c := range m.coeffs {
		sum += c * row[i]
	}
	return sum
}
