package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/riskmesh/simcore/internal/errs"
)

// SimMetrics groups the averagers, counters, and gauge a single
// Evaluator/Gate pair reports to. Only the averagers are registered
// with the prometheus registry; the counters and the gauge are
// in-process values, read through their Read methods.
type SimMetrics struct {
	LeafLatencyMS      Averager
	PortfolioMergeMS   Averager
	TrialsEvaluated    Counter
	SaturatedNodes     Counter
	GateQueueDepth     Gauge
	GateWaitMS         Averager
}

// NewSimMetrics builds a SimMetrics, registering its namespace-prefixed
// averagers against reg. Any individual registration failure is
// collected rather than aborting the whole set, matching the
// best-effort style of NewAveragerWithErrs.
func NewSimMetrics(namespace string, reg prometheus.Registerer) (*SimMetrics, error) {
	var collected errs.Errs

	m := &SimMetrics{
		LeafLatencyMS:    NewAveragerWithErrs(namespace+"_leaf_latency_ms", "leaf evaluation latency in ms", reg, &collected),
		PortfolioMergeMS: NewAveragerWithErrs(namespace+"_portfolio_merge_ms", "portfolio merge latency in ms", reg, &collected),
		TrialsEvaluated:  NewCounter(),
		SaturatedNodes:   NewCounter(),
		GateQueueDepth:   NewGauge(),
		GateWaitMS:       NewAveragerWithErrs(namespace+"_gate_wait_ms", "time spent queued at the admission gate in ms", reg, &collected),
	}

	return m, collected.Err()
}
