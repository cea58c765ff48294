package pipeline

import "context"

// Lazy memoizes the result of a computation that runs on first use.
// Lazy is not safe for concurrent use.
type Lazy[T any] struct {
	fn   func(ctx context.Context) (T, error)
	val  T
	err  error
	done bool
}

// NewLazy wraps fn.
func NewLazy[T any](fn func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{fn: fn}
}

// Get runs the computation once and returns its result, error included,
// on every call.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if !l.done {
		l.val, l.err = l.fn(ctx)
		l.done = true
		l.fn = nil
	}
	return l.val, l.err
}

// Evaluated reports whether the computation has run.
func (l *Lazy[T]) Evaluated() bool { return l.done }
