package observer

import (
	"context"
	"sync"
)

type listener struct {
	fn func(ctx context.Context, e Event)
}

// Emitter dispatches events to listeners registered per event name.
// Listeners run synchronously in registration order.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[Name][]*listener
}

// NewEmitter returns an Emitter with no listeners.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[Name][]*listener)}
}

// On registers fn for events named name and returns a function that
// removes it. Calling the returned function more than once is harmless.
func (e *Emitter) On(name Name, fn func(ctx context.Context, e Event)) (unsubscribe func()) {
	l := &listener{fn: fn}
	e.mu.Lock()
	if e.listeners == nil {
		e.listeners = make(map[Name][]*listener)
	}
	e.listeners[name] = append(e.listeners[name], l)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			ls := e.listeners[name]
			for i, candidate := range ls {
				if candidate == l {
					e.listeners[name] = append(ls[:i:i], ls[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit notifies the listeners of ev.Name. Listeners added or removed while
// Emit runs take effect from the next Emit.
func (e *Emitter) Emit(ctx context.Context, ev Event) {
	e.mu.RLock()
	ls := append([]*listener(nil), e.listeners[ev.Name]...)
	e.mu.RUnlock()
	for _, l := range ls {
		l.fn(ctx, ev)
	}
}

// Notify implements Observer.
func (e *Emitter) Notify(ctx context.Context, ev Event) { e.Emit(ctx, ev) }

// Len returns the number of listeners for name.
func (e *Emitter) Len(name Name) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[name])
}
