package observer

import (
	"context"
	"time"
)

// Name identifies a lifecycle event.
type Name string

// Lifecycle events.
const (
	Closing Name = "closing"
	Closed  Name = "closed"
	Caching Name = "caching"
	Cached  Name = "cached"
)

// Names lists every lifecycle event in emission order.
var Names = []Name{Closing, Closed, Caching, Cached}

// Event describes one lifecycle transition of a pipeline.
type Event struct {
	Name       Name
	PipelineID string
	// Operation is the terminal that triggered the event, e.g. "sum".
	Operation string
	// Count is the number of elements pulled, or -1 before the terminal ran.
	Count int
	// Err is the error the terminal ended with.
	Err error
	// Duration is set on Closed and Cached.
	Duration time.Duration
	Time     time.Time
}

// Finished reports whether the event ends a terminal.
func (e Event) Finished() bool {
	return e.Name == Closed || e.Name == Cached
}

// Observer receives lifecycle events.
type Observer interface {
	Notify(ctx context.Context, e Event)
}

// Func adapts a function to an Observer.
type Func func(ctx context.Context, e Event)

// Notify calls f.
func (f Func) Notify(ctx context.Context, e Event) { f(ctx, e) }

type nop struct{}

func (nop) Notify(context.Context, Event) {}

// Nop is an Observer that ignores every event.
var Nop Observer = nop{}

// Multi fans events out to several observers in order.
type Multi []Observer

// Notify forwards e to every observer.
func (m Multi) Notify(ctx context.Context, e Event) {
	for _, o := range m {
		o.Notify(ctx, e)
	}
}

// Join combines observers, dropping nils. It returns Nop when none remain.
func Join(observers ...Observer) Observer {
	var out Multi
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return Nop
	case 1:
		return out[0]
	}
	return out
}
