// Package tree defines the risk-tree input data model: leaves (an
// occurrence probability plus a severity distribution spec) and
// portfolios (an ordered, non-empty list of children), and the
// structural validation pass that must pass before a tree is handed
// to the evaluator.
package tree

import (
	"fmt"

	"github.com/riskmesh/simcore/internal/errs"
)

// Kind distinguishes a Leaf node from a Portfolio node.
type Kind int

const (
	KindLeaf Kind = iota
	KindPortfolio
)

// DistributionKind tags which severity distribution a leaf uses.
type DistributionKind int

const (
	DistributionExpert DistributionKind = iota
	DistributionLognormal
)

// DistributionSpec carries the parameters of a leaf's severity
// distribution. Only the fields for the tagged Kind are meaningful.
type DistributionSpec struct {
	Kind DistributionKind

	// Expert (Metalog) fields.
	Percentiles []float64
	Quantiles   []float64
	Terms       int
	Lower       *float64
	Upper       *float64

	// Lognormal fields: a 90%-confidence interval.
	MinLoss float64
	MaxLoss float64
}

// Node is a risk-tree node: either a Leaf (OccurrenceProbability +
// Severity set, Children empty) or a Portfolio (Children non-empty,
// the other leaf-only fields zero).
type Node struct {
	ID   string
	Name string
	Kind Kind

	// Leaf fields.
	OccurrenceProbability float64
	Severity              *DistributionSpec

	// Portfolio fields.
	Children []*Node
}

// IsLeaf reports whether n is a leaf node.
func (n *Node) IsLeaf() bool { return n.Kind == KindLeaf }

// Validation errors.
type ValidationError struct {
	// NodeErrors maps an offending node id to the problem found on it.
	NodeErrors map[string]error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tree validation failed on %d node(s)", len(e.NodeErrors))
}

// Validate walks tree from root, checking its structural invariants:
// non-empty/locally-unique ids, non-empty children lists, depth within
// maxDepth, and a well-formed severity spec on every leaf. It
// accumulates every failure it finds (via errs.Errs) rather
// than stopping at the first one, then returns a single
// *ValidationError naming every offending node — a DTO/request
// validation layer lives outside the core, but the tree's own
// structural shape is the core's responsibility since SimulateTree
// must refuse to start sampling a malformed tree.
func Validate(root *Node, maxDepth int) error {
	var collected errs.Errs
	nodeErrs := make(map[string]error)
	seenIDs := make(map[string]bool)

	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if n == nil {
			return
		}
		if n.ID == "" {
			collected.Add(fmt.Errorf("node at depth %d has an empty id", depth))
		} else if seenIDs[n.ID] {
			err := fmt.Errorf("duplicate node id %q", n.ID)
			collected.Add(err)
			nodeErrs[n.ID] = err
		} else {
			seenIDs[n.ID] = true
		}

		if depth > maxDepth {
			err := fmt.Errorf("node %q exceeds max tree depth %d", n.ID, maxDepth)
			collected.Add(err)
			nodeErrs[n.ID] = err
			return
		}

		switch n.Kind {
		case KindLeaf:
			if err := validateLeaf(n); err != nil {
				collected.Add(err)
				nodeErrs[n.ID] = err
			}
		case KindPortfolio:
			if len(n.Children) == 0 {
				err := fmt.Errorf("portfolio %q has no children", n.ID)
				collected.Add(err)
				nodeErrs[n.ID] = err
				return
			}
			for _, c := range n.Children {
				walk(c, depth+1)
			}
		}
	}

	walk(root, 1)

	if collected.Errored() {
		return &ValidationError{NodeErrors: nodeErrs}
	}
	return nil
}

func validateLeaf(n *Node) error {
	if n.OccurrenceProbability <= 0 || n.OccurrenceProbability >= 1 {
		return fmt.Errorf("leaf %q occurrence probability %v not in (0,1)", n.ID, n.OccurrenceProbability)
	}
	if n.Severity == nil {
		return fmt.Errorf("leaf %q has no severity distribution", n.ID)
	}
	switch n.Severity.Kind {
	case DistributionExpert:
		if len(n.Severity.Percentiles) < 2 {
			return fmt.Errorf("leaf %q expert distribution needs at least 2 percentile points", n.ID)
		}
	case DistributionLognormal:
		if !(n.Severity.MinLoss > 0 && n.Severity.MinLoss < n.Severity.MaxLoss) {
			return fmt.Errorf("leaf %q lognormal bounds invalid: min=%v max=%v", n.ID, n.Severity.MinLoss, n.Severity.MaxLoss)
		}
	}
	return nil
}

// Depth returns the tree's maximum depth (root counts as depth 1).
func Depth(root *Node) int {
	if root == nil {
		return 0
	}
	if root.Kind == KindLeaf {
		return 1
	}
	max := 0
	for _, c := range root.Children {
		if d := Depth(c); d > max {
			max = d
		}
	}
	return 1 + max
}
