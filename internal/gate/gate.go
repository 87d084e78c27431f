// Package gate implements ConcurrencyGate: the process-wide admission
// control that SimulateTree and Service.Admit acquire a permit from
// (DeriveLEC does not take one of its own). A fixed number of
// permits are handed out FIFO; requests beyond that queue until one
// frees up. The permit count is fixed at construction — there is no
// dynamic resize.
package gate

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/riskmesh/simcore/metrics"
)

// ConcurrencyGate bounds the number of simulation requests running at
// once. golang.org/x/sync/semaphore.Weighted already queues blocked
// Acquire calls in FIFO order, so no separate queue bookkeeping is
// needed here.
type ConcurrencyGate struct {
	sem     *semaphore.Weighted
	metrics *metrics.SimMetrics
}

// New builds a ConcurrencyGate admitting at most maxConcurrent requests
// at a time. maxConcurrent must be >= 1.
func New(maxConcurrent int, m *metrics.SimMetrics) *ConcurrencyGate {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &ConcurrencyGate{sem: semaphore.NewWeighted(int64(maxConcurrent)), metrics: m}
}

// WithPermit blocks until a permit is available (or ctx is cancelled),
// then runs fn while holding it. The permit is released before
// WithPermit returns, regardless of how fn completes.
func (g *ConcurrencyGate) WithPermit(ctx context.Context, fn func(ctx context.Context) error) error {
	queuedAt := time.Now()
	if g.metrics != nil {
		g.metrics.GateQueueDepth.Add(1)
		defer g.metrics.GateQueueDepth.Add(-1)
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	if g.metrics != nil {
		g.metrics.GateWaitMS.Observe(float64(time.Since(queuedAt).Milliseconds()))
	}
	return fn(ctx)
}
