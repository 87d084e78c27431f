// Package sampler implements RiskSampler: the per-leaf trial loop that
// turns a leaf's occurrence probability and severity distribution into
// a SparseLossVector over a range of trials, using only the addressed
// seed.Draw function — never a stateful RNG — so the result is
// independent of how the trial range was chunked or scheduled.
package sampler

import (
	"fmt"
	"math"

	"github.com/riskmesh/simcore/internal/distributions"
	"github.com/riskmesh/simcore/internal/lossvector"
	"github.com/riskmesh/simcore/internal/seed"
	"github.com/riskmesh/simcore/internal/tree"
)

// BuildDistribution constructs the Distribution a leaf's severity spec
// describes. It is the only place a DistributionSpec's parameters are
// turned into a fittable/sampleable curve, so every construction error
// surfaces here with the leaf's configuration attached.
func BuildDistribution(spec *tree.DistributionSpec) (distributions.Distribution, error) {
	switch spec.Kind {
	case tree.DistributionLognormal:
		return distributions.NewLognormal(spec.MinLoss, spec.MaxLoss)
	case tree.DistributionExpert:
		return distributions.NewMetalog(spec.Percentiles, spec.Quantiles, spec.Terms, spec.Lower, spec.Upper)
	default:
		return nil, fmt.Errorf("sampler: unknown distribution kind %v", spec.Kind)
	}
}

// RiskSampler draws a leaf's occurrence and severity outcome for any
// trial index, addressed rather than iterated — SampleRange may be
// called with disjoint, reordered, or re-partitioned ranges and always
// produces the same per-trial losses.
type RiskSampler struct {
	entityID uint64
	occVar   uint64
	sevVar   uint64
	p        float64
	dist     distributions.Distribution
	s3, s4   uint64
}

// NewRiskSampler builds a sampler for a leaf identified by leafID, with
// occurrence probability p, severity distribution dist, and the run's
// fixed salt coordinates (s3, s4). s3 and s4 are required, not
// defaulted: two runs of the same tree with different salts must
// deliberately opt into different trial outcomes, never accidentally.
func NewRiskSampler(leafID string, p float64, dist distributions.Distribution, s3, s4 uint64) *RiskSampler {
	entityID := seed.EntityID(leafID)
	return &RiskSampler{
		entityID: entityID,
		occVar:   seed.OccurrenceVar(entityID),
		sevVar:   seed.SeverityVar(entityID),
		p:        p,
		dist:     dist,
		s3:       s3,
		s4:       s4,
	}
}

// SampleRange draws trials [start, start+count) out of nTotal total
// trials and returns them as a SparseLossVector sized for nTotal.
// Trial t "occurs" when draw(t, entityId, occVar, s3, s4) < p; an
// occurring trial's loss is round-half-to-even(max(0,
// dist.Quantile(draw(t, entityId, sevVar, s3, s4)))). A loss of exactly
// zero after rounding is indistinguishable from "did not occur" and is
// omitted from the vector either way.
func (s *RiskSampler) SampleRange(nTotal, start, count int) *lossvector.SparseLossVector {
	out := lossvector.NewWithCapacity(nTotal, count)

	for t := start; t < start+count; t++ {
		uOcc := seed.Draw(uint64(t), s.entityID, s.occVar, s.s3, s.s4)
		if uOcc >= s.p {
			continue
		}

		uSev := seed.Draw(uint64(t), s.entityID, s.sevVar, s.s3, s.s4)
		q := s.dist.Quantile(uSev)
		if q < 0 {
			q = 0
		}

		loss := math.RoundToEven(q)
		if loss <= 0 {
			continue
		}
		out.Set(t, uint64(loss))
	}

	return out
}
