// Package simcore is the public surface of the Monte Carlo risk
// simulation core: SimulateTree walks a validated risk tree and
// produces a result tree of per-node loss distributions, DeriveLEC
// attaches Loss Exceedance Curves and quantiles to that result up to a
// policy-bounded depth, and Admit runs caller-supplied work under the
// same bounded-concurrency gate that SimulateTree takes a permit from.
// DeriveLEC does not take a permit of its own.
//
// The package intentionally knows nothing about HTTP, persistence, or
// wire formats — those are adapters that sit in front of a Service.
package simcore

import (
	"context"
	"errors"

	"github.com/riskmesh/simcore/config"
	"github.com/riskmesh/simcore/internal/evaluator"
	"github.com/riskmesh/simcore/internal/gate"
	"github.com/riskmesh/simcore/internal/lossvector"
	"github.com/riskmesh/simcore/internal/provenance"
	"github.com/riskmesh/simcore/internal/tree"
	"github.com/riskmesh/simcore/log"
	"github.com/riskmesh/simcore/metrics"
	"github.com/riskmesh/simcore/telemetry"
)

// DistributionError reports that a leaf's severity spec could not be
// built into a sampleable distribution; it names the offending node.
type DistributionError = evaluator.DistributionError

// CancelledError wraps a context cancellation/deadline error observed
// while a simulation was in flight.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string { return "simcore: cancelled: " + e.Err.Error() }
func (e *CancelledError) Unwrap() error { return e.Err }

// ResultNode mirrors an input tree.Node, carrying its simulated loss
// vector and — once DeriveLEC has run — its quantiles and curve
// points. Provenance is populated only when the originating
// SimulateOptions requested it.
type ResultNode struct {
	ID   string
	Name string
	Kind tree.Kind

	Loss      *lossvector.SparseLossVector
	Saturated bool

	// LeafProvenance is set on leaf nodes, PortfolioProvenance on
	// portfolio nodes, when CaptureProvenance was requested. Exactly one
	// of the two is non-nil on any given node.
	LeafProvenance      *provenance.Leaf
	PortfolioProvenance *provenance.Portfolio

	Quantiles   *Quantiles
	CurvePoints []CurvePoint

	Children []*ResultNode
}

// Diagnostics reports non-fatal conditions observed during a
// simulation — currently just which nodes saturated their 64-bit loss
// sum — so a caller can decide whether to warn without that condition
// failing the request.
type Diagnostics struct {
	SaturatedNodeIDs []string
}

// SimulateOptions are the per-call parameters SimulateTree needs.
// S3 and S4 are the global seed pair and have no substitute default:
// SimulateTree passes them through exactly as given, so fields left
// unset run with the seed pair (0, 0). No error is raised for an unset
// pair; (0, 0) is treated as the caller's choice.
type SimulateOptions struct {
	NTrials           int
	Parallelism       int
	ChunkSize         int
	S3, S4            uint64
	CaptureProvenance bool
}

// Service wires a configured TreeEvaluator, ConcurrencyGate, logger,
// metrics, and telemetry observer into the core's public operations.
type Service struct {
	cfg       config.Config
	log       log.Logger
	observer  telemetry.Observer
	evaluator *evaluator.TreeEvaluator
	gate      *gate.ConcurrencyGate
}

// NewService validates cfg and builds a Service. A nil logger, m, or
// observer is treated as a no-op.
func NewService(cfg config.Config, logger log.Logger, m *metrics.SimMetrics, observer telemetry.Observer) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNoOp()
	}
	if observer == nil {
		observer = telemetry.NewNoOp()
	}
	return &Service{
		cfg:       cfg,
		log:       logger,
		observer:  observer,
		evaluator: evaluator.NewTreeEvaluator(logger, m, observer),
		gate:      gate.New(cfg.MaxConcurrentSimulations, m),
	}, nil
}

// Admit runs fn under the service's ConcurrencyGate: it blocks until a
// permit is free (or ctx is cancelled), runs fn while holding it, and
// always releases the permit before returning. SimulateTree already
// admits itself; Admit exists for callers that want to bound a
// SimulateTree+DeriveLEC pipeline (or any other core operation) as one
// admitted unit of work.
func (s *Service) Admit(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.gate.WithPermit(ctx, fn)
}

// SimulateTree validates root against the service's tree-depth policy,
// evaluates every trial under admission control, and returns a result
// tree with one ResultNode per input node plus a Diagnostics summary.
// A zero NTrials/Parallelism in opts falls back to the service's
// configured defaults.
func (s *Service) SimulateTree(ctx context.Context, root *tree.Node, opts SimulateOptions) (*ResultNode, *Diagnostics, error) {
	if opts.NTrials <= 0 {
		opts.NTrials = s.cfg.DefaultNTrials
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = s.cfg.DefaultParallelism
	}
	if err := tree.Validate(root, s.cfg.MaxTreeDepth); err != nil {
		return nil, nil, err
	}

	var (
		result *ResultNode
		diag   *Diagnostics
	)

	admitErr := s.gate.WithPermit(ctx, func(ctx context.Context) error {
		req := evaluator.Request{
			NTrials:     opts.NTrials,
			Parallelism: opts.Parallelism,
			ChunkSize:   opts.ChunkSize,
			S3:          opts.S3,
			S4:          opts.S4,
		}
		_, perNode, err := s.evaluator.EvaluateAll(ctx, root, req)
		if err != nil {
			return err
		}

		result = buildResultTree(root, perNode, opts)
		diag = collectDiagnostics(result)
		return nil
	})

	if admitErr != nil {
		if errors.Is(admitErr, context.Canceled) || errors.Is(admitErr, context.DeadlineExceeded) {
			return nil, nil, &CancelledError{Err: admitErr}
		}
		return nil, nil, admitErr
	}
	return result, diag, nil
}

func buildResultTree(n *tree.Node, perNode map[string]*lossvector.SparseLossVector, opts SimulateOptions) *ResultNode {
	loss := perNode[n.ID]
	result := &ResultNode{
		ID:        n.ID,
		Name:      n.Name,
		Kind:      n.Kind,
		Loss:      loss,
		Saturated: loss != nil && loss.Saturated(),
	}

	if opts.CaptureProvenance {
		if n.IsLeaf() {
			leafProv := provenance.CaptureLeaf(n, opts.S3, opts.S4, opts.NTrials)
			result.LeafProvenance = &leafProv
		} else {
			portfolioProv := provenance.CapturePortfolio(n)
			result.PortfolioProvenance = &portfolioProv
		}
	}

	if !n.IsLeaf() {
		result.Children = make([]*ResultNode, len(n.Children))
		for i, c := range n.Children {
			result.Children[i] = buildResultTree(c, perNode, opts)
		}
	}
	return result
}

func collectDiagnostics(root *ResultNode) *Diagnostics {
	diag := &Diagnostics{}
	var walk func(n *ResultNode)
	walk = func(n *ResultNode) {
		if n == nil {
			return
		}
		if n.Saturated {
			diag.SaturatedNodeIDs = append(diag.SaturatedNodeIDs, n.ID)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return diag
}
