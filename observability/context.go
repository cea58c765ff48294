package observability

import (
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/apokryfos/Enumerable/errors"
	"github.com/apokryfos/Enumerable/observer"
)

// operation is a terminal in flight, between its opening and closing event.
type operation struct {
	start time.Time
	span  trace.Span
}

type operationKey struct {
	pipelineID string
	name       string
}

// inflight tracks open operations by pipeline and terminal. Nested
// terminals of the same name stack.
type inflight struct {
	mu  sync.Mutex
	ops map[operationKey][]*operation
}

func newInflight() *inflight {
	return &inflight{ops: make(map[operationKey][]*operation)}
}

func (f *inflight) begin(e observer.Event, span trace.Span) {
	key := operationKey{e.PipelineID, e.Operation}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops[key] = append(f.ops[key], &operation{start: e.Time, span: span})
}

// end removes and returns the innermost open operation for e, or nil.
func (f *inflight) end(e observer.Event) *operation {
	key := operationKey{e.PipelineID, e.Operation}
	f.mu.Lock()
	defer f.mu.Unlock()
	stack := f.ops[key]
	if len(stack) == 0 {
		return nil
	}
	op := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(f.ops, key)
	} else {
		f.ops[key] = stack[:len(stack)-1]
	}
	return op
}

// Len returns the number of open operations.
func (f *inflight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, stack := range f.ops {
		n += len(stack)
	}
	return n
}

// outcome returns the status and error code of a finished event.
func outcome(e observer.Event) (status, code string) {
	if e.Err == nil {
		return StatusOK, ""
	}
	return StatusError, string(errors.CodeOf(e.Err))
}
