package simcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskmesh/simcore/config"
	"github.com/riskmesh/simcore/internal/tree"
)

func deepPortfolio(depth int) *tree.Node {
	node := lognormalLeaf("leaf", 0.3)
	for i := 0; i < depth-1; i++ {
		node = &tree.Node{
			ID:       "p" + string(rune('a'+i)),
			Kind:     tree.KindPortfolio,
			Children: []*tree.Node{node},
		}
	}
	return node
}

func TestDeriveLECClampsToMaxDepth(t *testing.T) {
	svc, err := NewService(config.DevelopmentConfig(), nil, nil, nil)
	require.NoError(t, err)

	// A five-level tree derived with a three-level ceiling: levels 4 and
	// 5 lie beyond the clamp and must be left without quantiles.
	root := deepPortfolio(5)
	result, _, err := svc.SimulateTree(context.Background(), root, SimulateOptions{
		NTrials: 500, Parallelism: 2, S3: 1, S4: 1,
	})
	require.NoError(t, err)

	const maxDepth = 3
	DeriveLEC(result, 99, maxDepth, 0)

	levels := 0
	n := result
	for n != nil {
		levels++
		if levels <= maxDepth {
			require.NotNil(t, n.Quantiles, "level %d should have quantiles attached", levels)
		} else {
			require.Nil(t, n.Quantiles, "level %d is beyond the clamp", levels)
		}
		if len(n.Children) == 0 {
			break
		}
		n = n.Children[0]
	}
	require.Equal(t, 5, levels)
}

func TestDeriveLECOnSingleLeafComputesQuantiles(t *testing.T) {
	svc, err := NewService(config.DevelopmentConfig(), nil, nil, nil)
	require.NoError(t, err)

	root := lognormalLeaf("cyber", 0.25)
	result, _, err := svc.SimulateTree(context.Background(), root, SimulateOptions{
		NTrials: 10_000, Parallelism: 4, S3: 0, S4: 0,
	})
	require.NoError(t, err)

	DeriveLEC(result, 1, DefaultMaxTreeDepth, 0)
	require.NotNil(t, result.Quantiles)
	require.Equal(t, uint64(0), result.Quantiles.P50)
	require.LessOrEqual(t, result.Quantiles.P50, result.Quantiles.P90)
	require.LessOrEqual(t, result.Quantiles.P90, result.Quantiles.P95)
	require.LessOrEqual(t, result.Quantiles.P95, result.Quantiles.P99)
}

func TestDeriveLECSharedUsesCommonThresholds(t *testing.T) {
	svc, err := NewService(config.DevelopmentConfig(), nil, nil, nil)
	require.NoError(t, err)

	root := &tree.Node{
		ID:   "portfolio",
		Kind: tree.KindPortfolio,
		Children: []*tree.Node{
			lognormalLeaf("cyber", 0.3),
			lognormalLeaf("fire", 0.15),
		},
	}
	result, _, err := svc.SimulateTree(context.Background(), root, SimulateOptions{
		NTrials: 2_000, Parallelism: 2, S3: 4, S4: 4,
	})
	require.NoError(t, err)

	DeriveLECShared(result, 2, DefaultMaxTreeDepth, 20)

	require.Equal(t, len(result.CurvePoints), len(result.Children[0].CurvePoints))
	for i := range result.CurvePoints {
		require.Equal(t, result.CurvePoints[i].Threshold, result.Children[0].CurvePoints[i].Threshold)
	}
}
