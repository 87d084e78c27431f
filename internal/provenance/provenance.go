// Package provenance captures exactly the inputs a node's simulated
// result depends on, so that result can be reproduced bit-identically
// later without re-running the whole tree: a leaf's entity/variable
// addressing plus its distribution parameters and trial count, or a
// portfolio's child id list.
package provenance

import (
	"github.com/riskmesh/simcore/internal/lossvector"
	"github.com/riskmesh/simcore/internal/sampler"
	"github.com/riskmesh/simcore/internal/seed"
	"github.com/riskmesh/simcore/internal/tree"
)

// Leaf captures every input a leaf's sampling loop reads.
type Leaf struct {
	LeafID                string
	EntityID              uint64
	OccurrenceVariableID  uint64
	SeverityVariableID    uint64
	OccurrenceProbability float64
	Severity              *tree.DistributionSpec
	S3, S4                uint64
	NTrials               int
}

// Portfolio captures a portfolio's identity and the ordered list of its
// children's ids — enough, together with each child's own provenance,
// to reconstruct the whole subtree's result.
type Portfolio struct {
	PortfolioID string
	ChildIDs    []string
}

// CaptureLeaf builds a Leaf record for n, which must be a leaf node.
func CaptureLeaf(n *tree.Node, s3, s4 uint64, nTrials int) Leaf {
	entityID := seed.EntityID(n.ID)
	return Leaf{
		LeafID:                n.ID,
		EntityID:              entityID,
		OccurrenceVariableID:  seed.OccurrenceVar(entityID),
		SeverityVariableID:    seed.SeverityVar(entityID),
		OccurrenceProbability: n.OccurrenceProbability,
		Severity:              n.Severity,
		S3:                    s3,
		S4:                    s4,
		NTrials:               nTrials,
	}
}

// CapturePortfolio builds a Portfolio record for n, which must be a
// portfolio node.
func CapturePortfolio(n *tree.Node) Portfolio {
	ids := make([]string, len(n.Children))
	for i, c := range n.Children {
		ids[i] = c.ID
	}
	return Portfolio{PortfolioID: n.ID, ChildIDs: ids}
}

// Reproduce re-derives the sampler a Leaf record describes and
// re-samples its full trial range, deterministically reconstructing
// the original SparseLossVector without needing the original Node or
// evaluator state.
func (l Leaf) Reproduce() (*lossvector.SparseLossVector, error) {
	dist, err := sampler.BuildDistribution(l.Severity)
	if err != nil {
		return nil, err
	}
	rs := sampler.NewRiskSampler(l.LeafID, l.OccurrenceProbability, dist, l.S3, l.S4)
	return rs.SampleRange(l.NTrials, 0, l.NTrials), nil
}
