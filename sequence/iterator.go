package sequence

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Pair is a single key/value element of a Sequence.
type Pair struct {
	Key   any
	Value any
}

// NewPair returns a Pair with a normalized key.
func NewPair(key, value any) Pair {
	return Pair{Key: NormalizeKey(key), Value: value}
}

// Sequence is a lazy, ordered stream of key/value pairs.
type Sequence = Iterator[Pair]

// Iterable is implemented by values that can hand over a Sequence of their
// elements. Implementations decide whether the handover moves or shares.
type Iterable interface {
	Iterate() Sequence
}

// --- Constructors ---

// Func adapts a next function to an Iterator. closer may be nil.
func Func[T any](next func(ctx context.Context) (T, bool, error), closer func() error) Iterator[T] {
	return &funcIter[T]{next: next, closer: closer}
}

// Empty returns an exhausted Iterator.
func Empty[T any]() Iterator[T] {
	return &sliceIter[T]{}
}

// FromSlice returns an Iterator over the items of a slice.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// FromPairs returns a Sequence over the given pairs, keys as given.
func FromPairs(pairs ...Pair) Sequence {
	return &sliceIter[Pair]{items: pairs}
}

// FromValues returns a Sequence over values keyed 0, 1, 2...
func FromValues(values ...any) Sequence {
	return Positional(FromSlice(values))
}

// Positional keys the values of an Iterator 0, 1, 2...
func Positional[T any](it Iterator[T]) Sequence {
	index := 0
	return Func(func(ctx context.Context) (Pair, bool, error) {
		v, ok, err := it.Next(ctx)
		if err != nil || !ok {
			return Pair{}, false, err
		}
		p := Pair{Key: index, Value: v}
		index++
		return p, true, nil
	}, it.Close)
}

// FromSeq returns a Sequence over a range-over-func iterator, keyed 0, 1, 2...
func FromSeq[T any](seq iter.Seq[T]) Sequence {
	next, stop := iter.Pull(seq)
	index := 0
	return Func(func(_ context.Context) (Pair, bool, error) {
		v, ok := next()
		if !ok {
			return Pair{}, false, nil
		}
		p := Pair{Key: index, Value: v}
		index++
		return p, true, nil
	}, func() error {
		stop()
		return nil
	})
}

// FromSeq2 returns a Sequence over a range-over-func key/value iterator.
func FromSeq2[K, V any](seq iter.Seq2[K, V]) Sequence {
	next, stop := iter.Pull2(seq)
	return Func(func(_ context.Context) (Pair, bool, error) {
		k, v, ok := next()
		if !ok {
			return Pair{}, false, nil
		}
		return NewPair(k, v), true, nil
	}, func() error {
		stop()
		return nil
	})
}

// Concat yields every element of each Sequence in turn.
func Concat(seqs ...Sequence) Sequence {
	return &concatIter{iters: seqs}
}

// --- Terminals ---

// Collect drains it and returns all values as a slice. It closes it.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer it.Close()
	var result []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// --- Internal iterators ---

type funcIter[T any] struct {
	next   func(ctx context.Context) (T, bool, error)
	closer func() error
	closed bool
}

func (it *funcIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.closed {
		var zero T
		return zero, false, nil
	}
	return it.next(ctx)
}

func (it *funcIter[T]) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	if it.closer != nil {
		return it.closer()
	}
	return nil
}

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type concatIter struct {
	iters []Sequence
	index int
}

func (it *concatIter) Next(ctx context.Context) (Pair, bool, error) {
	for it.index < len(it.iters) {
		val, ok, err := it.iters[it.index].Next(ctx)
		if err != nil {
			return val, false, err
		}
		if ok {
			return val, true, nil
		}
		it.index++
	}
	return Pair{}, false, nil
}

func (it *concatIter) Close() error {
	var firstErr error
	for _, iter := range it.iters {
		if err := iter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
