// Package evaluator implements TreeEvaluator: the bottom-up recursive
// walk that turns a risk tree into a single SparseLossVector. Leaf
// trial ranges and sibling portfolio children are both candidates for
// concurrent execution, bounded by one shared worker budget for the
// whole request, but the result is bit-identical no matter how that
// budget is spent — SparseLossVector.Combine is exactly associative
// and commutative, so folding order never affects the sum.
package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/riskmesh/simcore/internal/lossvector"
	"github.com/riskmesh/simcore/internal/safemath"
	"github.com/riskmesh/simcore/internal/sampler"
	"github.com/riskmesh/simcore/internal/tree"
	"github.com/riskmesh/simcore/log"
	"github.com/riskmesh/simcore/metrics"
	"github.com/riskmesh/simcore/telemetry"
)

// defaultChunkSize is the intra-leaf trial-range granularity used when
// a Request doesn't specify one.
const defaultChunkSize = 2_000

// DistributionError reports that a leaf's severity spec failed to
// build into a sampleable distribution. It names the offending node so
// a caller with a large tree doesn't have to search for it.
type DistributionError struct {
	NodeID string
	Err    error
}

func (e *DistributionError) Error() string {
	return fmt.Sprintf("evaluator: leaf %q: %v", e.NodeID, e.Err)
}

func (e *DistributionError) Unwrap() error { return e.Err }

// Request carries the per-call parameters an evaluation needs: how
// many trials to run, how much concurrency to spend, the intra-leaf
// chunk granularity, and the run's salt coordinates. S3 and S4 are
// never replaced by a default: they are passed to every sampler as
// given, so fields left unset run with the salt (0, 0), exactly as if
// (0, 0) had been chosen.
type Request struct {
	NTrials     int
	Parallelism int
	ChunkSize   int
	S3, S4      uint64
}

// TreeEvaluator evaluates risk trees against a configured logger,
// metrics sink, and telemetry observer. Build one with
// NewTreeEvaluator, which accepts nil for any of the three; the zero
// value has a nil logger and observer and panics when evaluating.
type TreeEvaluator struct {
	log      log.Logger
	metrics  *metrics.SimMetrics
	observer telemetry.Observer
}

// NewTreeEvaluator builds a TreeEvaluator. Any of logger, m, or
// observer may be nil; nil metrics/observer are simply skipped, and a
// nil logger is treated as log.NewNoOp().
func NewTreeEvaluator(logger log.Logger, m *metrics.SimMetrics, observer telemetry.Observer) *TreeEvaluator {
	if logger == nil {
		logger = log.NewNoOp()
	}
	if observer == nil {
		observer = telemetry.NewNoOp()
	}
	return &TreeEvaluator{log: logger, metrics: m, observer: observer}
}

// EvaluateTree runs every trial of root and returns the tree's
// aggregate loss vector. The caller must have already run tree.Validate
// on root; EvaluateTree does not re-validate structure.
func (e *TreeEvaluator) EvaluateTree(ctx context.Context, root *tree.Node, req Request) (*lossvector.SparseLossVector, error) {
	parallelism := req.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	sem := semaphore.NewWeighted(int64(parallelism))

	handle := e.observer.StartSimulateTree(root.ID, req.NTrials, parallelism)
	result, err := e.evaluateNode(ctx, root, req, sem, nil)
	e.observer.EndSimulateTree(handle, err)
	return result, err
}

// EvaluateAll is EvaluateTree but additionally returns every node's own
// vector, keyed by node id — the per-node results DeriveLEC needs for a
// portfolio's descendants, not just its root.
func (e *TreeEvaluator) EvaluateAll(ctx context.Context, root *tree.Node, req Request) (*lossvector.SparseLossVector, map[string]*lossvector.SparseLossVector, error) {
	parallelism := req.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	sem := semaphore.NewWeighted(int64(parallelism))

	var recorder sync.Map
	handle := e.observer.StartSimulateTree(root.ID, req.NTrials, parallelism)
	result, err := e.evaluateNode(ctx, root, req, sem, &recorder)
	e.observer.EndSimulateTree(handle, err)
	if err != nil {
		return nil, nil, err
	}

	perNode := make(map[string]*lossvector.SparseLossVector)
	recorder.Range(func(key, value any) bool {
		perNode[key.(string)] = value.(*lossvector.SparseLossVector)
		return true
	})
	return result, perNode, nil
}

func (e *TreeEvaluator) evaluateNode(ctx context.Context, n *tree.Node, req Request, sem *semaphore.Weighted, recorder *sync.Map) (*lossvector.SparseLossVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		result *lossvector.SparseLossVector
		err    error
	)
	if n.IsLeaf() {
		result, err = e.evaluateLeaf(ctx, n, req, sem)
	} else {
		result, err = e.evaluatePortfolio(ctx, n, req, sem, recorder)
	}
	if err != nil {
		return nil, err
	}
	if recorder != nil {
		recorder.Store(n.ID, result)
	}
	return result, nil
}

func (e *TreeEvaluator) evaluateLeaf(ctx context.Context, n *tree.Node, req Request, sem *semaphore.Weighted) (*lossvector.SparseLossVector, error) {
	start := time.Now()

	dist, err := sampler.BuildDistribution(n.Severity)
	if err != nil {
		return nil, &DistributionError{NodeID: n.ID, Err: err}
	}
	rs := sampler.NewRiskSampler(n.ID, n.OccurrenceProbability, dist, req.S3, req.S4)

	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	nChunks := (req.NTrials + chunkSize - 1) / chunkSize
	if nChunks < 1 {
		nChunks = 1
	}

	vectors, err := mapParallel(ctx, sem, nChunks, func(ctx context.Context, i int) (*lossvector.SparseLossVector, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunkStart := i * chunkSize
		count := safemath.Min(chunkSize, req.NTrials-chunkStart)
		return rs.SampleRange(req.NTrials, chunkStart, count), nil
	})
	if err != nil {
		return nil, err
	}

	result, err := foldVectors(req.NTrials, vectors)
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.LeafLatencyMS.Observe(float64(time.Since(start).Milliseconds()))
		e.metrics.TrialsEvaluated.Add(int64(req.NTrials))
		if result.Saturated() {
			e.metrics.SaturatedNodes.Inc()
		}
	}
	e.log.Debug("leaf evaluated",
		zap.String("node_id", n.ID),
		zap.Int("non_zero_trials", result.NonZeroCount()),
		zap.Bool("saturated", result.Saturated()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (e *TreeEvaluator) evaluatePortfolio(ctx context.Context, n *tree.Node, req Request, sem *semaphore.Weighted, recorder *sync.Map) (*lossvector.SparseLossVector, error) {
	start := time.Now()

	vectors, err := mapParallel(ctx, sem, len(n.Children), func(ctx context.Context, i int) (*lossvector.SparseLossVector, error) {
		return e.evaluateNode(ctx, n.Children[i], req, sem, recorder)
	})
	if err != nil {
		return nil, err
	}

	result, err := foldVectors(req.NTrials, vectors)
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.PortfolioMergeMS.Observe(float64(time.Since(start).Milliseconds()))
		if result.Saturated() {
			e.metrics.SaturatedNodes.Inc()
		}
	}
	e.log.Debug("portfolio merged",
		zap.String("node_id", n.ID),
		zap.Int("children", len(n.Children)),
		zap.Bool("saturated", result.Saturated()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// mapParallel runs fn(i) for i in [0, items) and returns the results in
// order. Each unit of work first tries to take a permit from sem: if
// one is free, the unit runs on its own goroutine and the permit is
// released when it finishes; otherwise the unit runs inline on the
// calling goroutine. This bounds the number of goroutines outstanding
// across the *entire* recursive evaluation to sem's weight, without the
// deadlock a blocking Acquire would risk once leaf and portfolio fan-out
// both draw from the same budget.
//
// The dispatch loop checks gctx.Err() before handing out each item, so a
// cancellation stops new chunks from being spawned within a bounded
// number of already-dispatched ones rather than running every remaining
// chunk to completion.
func mapParallel(ctx context.Context, sem *semaphore.Weighted, items int, fn func(ctx context.Context, i int) (*lossvector.SparseLossVector, error)) ([]*lossvector.SparseLossVector, error) {
	results := make([]*lossvector.SparseLossVector, items)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < items; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		i := i
		if sem.TryAcquire(1) {
			g.Go(func() error {
				defer sem.Release(1)
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := fn(gctx, i)
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
			continue
		}
		if err := gctx.Err(); err != nil {
			break
		}
		res, err := fn(gctx, i)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func foldVectors(nTotal int, vectors []*lossvector.SparseLossVector) (*lossvector.SparseLossVector, error) {
	acc := lossvector.New(nTotal)
	for _, v := range vectors {
		merged, err := acc.Combine(v)
		if err != nil {
			return nil, err
		}
		acc = merged
	}
	return acc, nil
}
