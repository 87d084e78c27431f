// Package telemetry defines the optional observer hook the core calls
// around SimulateTree and DeriveLEC. The core never depends on a
// concrete tracer; callers that want spans/metrics implement Observer
// and pass it in.
package telemetry

// Observer receives start/end notifications for the two top-level
// operations the core exposes. Start returns an opaque handle passed
// back to the matching End call (e.g. a span, or nil).
type Observer interface {
	StartSimulateTree(treeID string, nTrials int, parallelism int) any
	EndSimulateTree(handle any, err error)

	StartDeriveLEC(treeID string, depth int) any
	EndDeriveLEC(handle any, err error)
}

type noOpObserver struct{}

// NewNoOp returns an Observer that does nothing. This is the default
// used when a caller doesn't configure telemetry.
func NewNoOp() Observer { return noOpObserver{} }

func (noOpObserver) StartSimulateTree(string, int, int) any { return nil }
func (noOpObserver) EndSimulateTree(any, error)             {}
func (noOpObserver) StartDeriveLEC(string, int) any         { return nil }
func (noOpObserver) EndDeriveLEC(any, error)                {}
