package simcore

import (
	"github.com/riskmesh/simcore/internal/lec"
	"github.com/riskmesh/simcore/internal/lossvector"
)

// Quantiles holds the P50/P90/P95/P99 loss quantiles of a node,
// computed over all trials including the implicit zero-loss mass.
type Quantiles = lec.Quantiles

// CurvePoint is one (threshold, exceedance probability) sample of a
// node's Loss Exceedance Curve.
type CurvePoint = lec.Point

// DefaultCurvePoints is the curve-point count DeriveLEC uses when
// numCurvePoints <= 0.
const DefaultCurvePoints = lec.DefaultCurvePoints

// DeriveLEC attaches Quantiles and CurvePoints to every node of root
// within depth levels (root counts as level 1), clamped silently to
// maxDepth — the service's configured policy ceiling — so a caller
// requesting an unbounded depth never gets more than policy allows.
// numCurvePoints <= 0 uses DefaultCurvePoints. root must already carry
// simulated Loss vectors (the output of Service.SimulateTree).
func DeriveLEC(root *ResultNode, depth, maxDepth, numCurvePoints int) {
	effectiveDepth := clampDepth(depth, maxDepth)

	var walk func(n *ResultNode, level int)
	walk = func(n *ResultNode, level int) {
		if n == nil || level > effectiveDepth {
			return
		}
		curve := lec.Derive(n.Loss, numCurvePoints)
		q := curve.Quantiles
		n.Quantiles = &q
		n.CurvePoints = curve.Points

		for _, c := range n.Children {
			walk(c, level+1)
		}
	}
	walk(root, 1)
}

// DeriveLECShared is DeriveLEC, but every node within depth is sampled
// at one shared set of thresholds (the union of their positive-loss
// domains) instead of each picking its own — the layout a caller needs
// when rendering several nodes' curves on one chart. A node with no
// non-zero trials gets no curve points and all-zero quantiles.
func DeriveLECShared(root *ResultNode, depth, maxDepth, numCurvePoints int) {
	effectiveDepth := clampDepth(depth, maxDepth)

	var nodes []*ResultNode
	var collect func(n *ResultNode, level int)
	collect = func(n *ResultNode, level int) {
		if n == nil || level > effectiveDepth {
			return
		}
		nodes = append(nodes, n)
		for _, c := range n.Children {
			collect(c, level+1)
		}
	}
	collect(root, 1)
	if len(nodes) == 0 {
		return
	}

	losses := make([]*lossvector.SparseLossVector, len(nodes))
	for i, n := range nodes {
		losses[i] = n.Loss
	}
	curves := lec.DeriveShared(losses, numCurvePoints)
	for i, n := range nodes {
		q := curves[i].Quantiles
		n.Quantiles = &q
		n.CurvePoints = curves[i].Points
	}
}

// DeriveLEC is the Service-bound form of the package-level DeriveLEC:
// it clamps depth to the service's configured MaxTreeDepth and reports
// the call to the service's telemetry observer.
func (s *Service) DeriveLEC(root *ResultNode, depth, numCurvePoints int) {
	handle := s.observer.StartDeriveLEC(root.ID, depth)
	DeriveLEC(root, depth, s.cfg.MaxTreeDepth, numCurvePoints)
	s.observer.EndDeriveLEC(handle, nil)
}

// DeriveLECShared is the Service-bound form of the package-level
// DeriveLECShared.
func (s *Service) DeriveLECShared(root *ResultNode, depth, numCurvePoints int) {
	handle := s.observer.StartDeriveLEC(root.ID, depth)
	DeriveLECShared(root, depth, s.cfg.MaxTreeDepth, numCurvePoints)
	s.observer.EndDeriveLEC(handle, nil)
}

func clampDepth(depth, maxDepth int) int {
	if maxDepth < 1 {
		maxDepth = DefaultMaxTreeDepth
	}
	if depth <= 0 || depth > maxDepth {
		return maxDepth
	}
	return depth
}

// DefaultMaxTreeDepth is the policy ceiling used when a caller doesn't
// supply one explicitly.
const DefaultMaxTreeDepth = 5
