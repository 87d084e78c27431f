// Package errs provides a small multi-error accumulator used while
// checking several independent preconditions before returning a single
// wrapped failure to the caller.
package errs

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Errs collects zero or more errors observed while validating a batch
// of independent preconditions.
type Errs struct {
	mu   sync.Mutex
	errs []error
}

// Add appends err to the collection. A nil err is a no-op.
func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

// Errored reports whether any error has been added.
func (e *Errs) Errored() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs) > 0
}

// Len returns the number of accumulated errors.
func (e *Errs) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs)
}

// Err collapses the accumulated errors into a single error: nil if
// none were added, the sole error if exactly one was added, or a
// combined message listing all of them.
func (e *Errs) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d errors occurred:", len(e.errs))
		for _, err := range e.errs {
			sb.WriteString("\n\t* ")
			sb.WriteString(err.Error())
		}
		return errors.New(sb.String())
	}
}
