package provenance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskmesh/simcore/internal/sampler"
	"github.com/riskmesh/simcore/internal/tree"
)

func TestCaptureLeafReproducesOriginalResult(t *testing.T) {
	n := &tree.Node{
		ID:                    "cyber",
		Kind:                  tree.KindLeaf,
		OccurrenceProbability: 0.35,
		Severity: &tree.DistributionSpec{
			Kind:    tree.DistributionLognormal,
			MinLoss: 1_000,
			MaxLoss: 50_000,
		},
	}

	dist, err := sampler.BuildDistribution(n.Severity)
	require.NoError(t, err)
	original := sampler.NewRiskSampler(n.ID, n.OccurrenceProbability, dist, 9, 3).SampleRange(2_000, 0, 2_000)

	captured := CaptureLeaf(n, 9, 3, 2_000)
	reproduced, err := captured.Reproduce()
	require.NoError(t, err)

	for trial := 0; trial < 2_000; trial++ {
		require.Equal(t, original.Get(trial), reproduced.Get(trial))
	}
}

func TestCapturePortfolioRecordsChildOrder(t *testing.T) {
	root := &tree.Node{
		ID:   "portfolio",
		Kind: tree.KindPortfolio,
		Children: []*tree.Node{
			{ID: "a", Kind: tree.KindLeaf},
			{ID: "b", Kind: tree.KindLeaf},
		},
	}

	p := CapturePortfolio(root)
	require.Equal(t, "portfolio", p.PortfolioID)
	require.Equal(t, []string{"a", "b"}, p.ChildIDs)
}

func TestCaptureLeafDerivesDistinctVariableIDs(t *testing.T) {
	n := &tree.Node{ID: "x", OccurrenceProbability: 0.1, Severity: &tree.DistributionSpec{
		Kind: tree.DistributionLognormal, MinLoss: 1, MaxLoss: 2,
	}}
	captured := CaptureLeaf(n, 1, 1, 100)
	require.NotEqual(t, captured.OccurrenceVariableID, captured.SeverityVariableID)
}
