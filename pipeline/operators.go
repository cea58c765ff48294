package pipeline

import (
	"context"

	"github.com/apokryfos/Enumerable/errors"
	"github.com/apokryfos/Enumerable/selector"
	"github.com/apokryfos/Enumerable/sequence"
)

type (
	pair = sequence.Pair
	seq  = sequence.Sequence
)

// failing yields err on every pull.
func failing(src seq, err error) seq {
	return sequence.Func(func(context.Context) (pair, bool, error) {
		return pair{}, false, err
	}, src.Close)
}

// deferred builds its sequence on the first pull.
func deferred(src seq, build func(ctx context.Context) (seq, error)) seq {
	var built seq
	return sequence.Func(func(ctx context.Context) (pair, bool, error) {
		if built == nil {
			s, err := build(ctx)
			if err != nil {
				built = failing(src, err)
				return pair{}, false, err
			}
			built = s
		}
		return built.Next(ctx)
	}, func() error {
		if built != nil {
			_ = built.Close()
		}
		return src.Close()
	})
}

// collectOperands materializes operands, closing them.
func collectOperands(operands []seq) *Lazy[[][]pair] {
	return NewLazy(func(ctx context.Context) ([][]pair, error) {
		out := make([][]pair, len(operands))
		for i, o := range operands {
			pairs, err := sequence.Collect(ctx, o)
			if err != nil {
				return nil, err
			}
			out[i] = pairs
		}
		return out, nil
	})
}

func collectMap(operand seq) *Lazy[*sequence.Map] {
	return NewLazy(func(ctx context.Context) (*sequence.Map, error) {
		return sequence.CollectMap(ctx, operand)
	})
}

func closeAll(first seq, rest []seq) error {
	err := first.Close()
	for _, s := range rest {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// --- Iterator implementations ---

type skipIter struct {
	source  seq
	n       int
	skipped bool
}

func (it *skipIter) Next(ctx context.Context) (pair, bool, error) {
	if !it.skipped {
		it.skipped = true
		for i := 0; i < it.n; i++ {
			_, ok, err := it.source.Next(ctx)
			if err != nil || !ok {
				return pair{}, false, err
			}
		}
	}
	return it.source.Next(ctx)
}

func (it *skipIter) Close() error { return it.source.Close() }

type takeIter struct {
	source seq
	n      int
	taken  int
}

func (it *takeIter) Next(ctx context.Context) (pair, bool, error) {
	if it.taken >= it.n {
		return pair{}, false, nil
	}
	e, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return pair{}, false, err
	}
	it.taken++
	return e, true, nil
}

func (it *takeIter) Close() error { return it.source.Close() }

type filterIter struct {
	source seq
	pred   selector.Predicate
}

func (it *filterIter) Next(ctx context.Context) (pair, bool, error) {
	for {
		e, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return pair{}, false, err
		}
		if it.pred(e.Value, e.Key) {
			return e, true, nil
		}
	}
}

func (it *filterIter) Close() error { return it.source.Close() }

// mapIter rewrites each element; index counts elements from 0.
type mapIter struct {
	source seq
	fn     func(e pair, index int) pair
	index  int
}

func (it *mapIter) Next(ctx context.Context) (pair, bool, error) {
	e, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return pair{}, false, err
	}
	out := it.fn(e, it.index)
	it.index++
	return out, true, nil
}

func (it *mapIter) Close() error { return it.source.Close() }

// renumber assigns int keys 0, 1, 2... to elements with int keys, or to
// every element when all is set. String keys are otherwise kept.
func renumber(src seq, all bool) seq {
	next := 0
	return &mapIter{source: src, fn: func(e pair, _ int) pair {
		if all || sequence.IsIntKey(e.Key) {
			e.Key = next
			next++
		}
		return e
	}}
}

type chunkIter struct {
	source seq
	size   int
	index  int
	group  func(m *sequence.Map) any
}

func (it *chunkIter) Next(ctx context.Context) (pair, bool, error) {
	m := sequence.NewMap()
	pulled := 0
	for pulled < it.size {
		e, ok, err := it.source.Next(ctx)
		if err != nil {
			return pair{}, false, err
		}
		if !ok {
			break
		}
		m.Set(e.Key, e.Value)
		pulled++
	}
	if pulled == 0 {
		return pair{}, false, nil
	}
	out := pair{Key: it.index, Value: it.group(m)}
	it.index++
	return out, true, nil
}

func (it *chunkIter) Close() error { return it.source.Close() }

type combineIter struct {
	keys   seq
	values seq
	strict bool
	done   bool
}

func (it *combineIter) Next(ctx context.Context) (pair, bool, error) {
	if it.done {
		return pair{}, false, nil
	}
	k, ok, err := it.keys.Next(ctx)
	if err != nil {
		return pair{}, false, err
	}
	if !ok {
		it.done = true
		if it.strict {
			_, more, err := it.values.Next(ctx)
			if err != nil {
				return pair{}, false, err
			}
			if more {
				return pair{}, false, errors.CombineSizeMismatch("values")
			}
		}
		return pair{}, false, nil
	}
	v, ok, err := it.values.Next(ctx)
	if err != nil {
		return pair{}, false, err
	}
	if !ok {
		if it.strict {
			return pair{}, false, errors.CombineSizeMismatch("keys")
		}
		v.Value = nil
	}
	return sequence.NewPair(k.Value, v.Value), true, nil
}

func (it *combineIter) Close() error { return closeAll(it.keys, []seq{it.values}) }

// appendIter passes source through, then yields tail. tail receives the
// number of elements passed and the next free int key.
type appendIter struct {
	source  seq
	tail    func(count, nextInt int) []pair
	count   int
	nextInt int
	rest    []pair
	drained bool
}

func (it *appendIter) Next(ctx context.Context) (pair, bool, error) {
	if !it.drained {
		e, ok, err := it.source.Next(ctx)
		if err != nil {
			return pair{}, false, err
		}
		if ok {
			it.count++
			if k, isInt := e.Key.(int); isInt && k >= it.nextInt {
				it.nextInt = k + 1
			}
			return e, true, nil
		}
		it.drained = true
		it.rest = it.tail(it.count, it.nextInt)
	}
	if len(it.rest) == 0 {
		return pair{}, false, nil
	}
	e := it.rest[0]
	it.rest = it.rest[1:]
	return e, true, nil
}

func (it *appendIter) Close() error { return it.source.Close() }

type setIter struct {
	source    seq
	mode      selector.CombineMode
	operands  []seq
	sets      *Lazy[[][]pair]
	intersect bool
}

func (it *setIter) Next(ctx context.Context) (pair, bool, error) {
	sets, err := it.sets.Get(ctx)
	if err != nil {
		return pair{}, false, err
	}
	for {
		e, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return pair{}, false, err
		}
		if it.keep(e, sets) {
			return e, true, nil
		}
	}
}

func (it *setIter) keep(e pair, sets [][]pair) bool {
	for _, set := range sets {
		found := it.mode.MatchesAny(e, set)
		if it.intersect && !found {
			return false
		}
		if !it.intersect && found {
			return false
		}
	}
	return true
}

func (it *setIter) Close() error { return closeAll(it.source, it.operands) }

type crossJoinIter struct {
	source   seq
	operands []seq
	sets     *Lazy[[][]pair]
	current  any
	odometer []int
	active   bool
	index    int
}

func (it *crossJoinIter) Next(ctx context.Context) (pair, bool, error) {
	sets, err := it.sets.Get(ctx)
	if err != nil {
		return pair{}, false, err
	}
	for _, s := range sets {
		if len(s) == 0 {
			return pair{}, false, nil
		}
	}
	if !it.active {
		e, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return pair{}, false, err
		}
		it.current = e.Value
		it.odometer = make([]int, len(sets))
		it.active = true
	}
	tuple := make([]any, 0, len(sets)+1)
	tuple = append(tuple, it.current)
	for i, s := range sets {
		tuple = append(tuple, s[it.odometer[i]].Value)
	}
	it.advance(sets)
	out := pair{Key: it.index, Value: tuple}
	it.index++
	return out, true, nil
}

// advance moves the odometer, rightmost operand fastest.
func (it *crossJoinIter) advance(sets [][]pair) {
	for i := len(sets) - 1; i >= 0; i-- {
		it.odometer[i]++
		if it.odometer[i] < len(sets[i]) {
			return
		}
		it.odometer[i] = 0
	}
	it.active = false
}

func (it *crossJoinIter) Close() error { return closeAll(it.source, it.operands) }

type frame struct {
	seq   seq
	depth int
}

type flattenIter struct {
	stack    []frame
	levels   int
	keepKeys bool
	index    int
}

func (it *flattenIter) Next(ctx context.Context) (pair, bool, error) {
	for len(it.stack) > 0 {
		top := it.stack[len(it.stack)-1]
		e, ok, err := top.seq.Next(ctx)
		if err != nil {
			return pair{}, false, err
		}
		if !ok {
			_ = top.seq.Close()
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		if it.levels <= 0 || top.depth < it.levels {
			if inner, isIter := expandable(e.Value); isIter {
				it.stack = append(it.stack, frame{seq: inner, depth: top.depth + 1})
				continue
			}
		}
		if !it.keepKeys {
			e.Key = it.index
		}
		it.index++
		return e, true, nil
	}
	return pair{}, false, nil
}

func (it *flattenIter) Close() error {
	var err error
	for _, f := range it.stack {
		if cerr := f.seq.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	it.stack = nil
	return err
}

// expandable returns a Sequence over v when flatten should descend into it.
func expandable(v any) (seq, bool) {
	if _, isString := v.(string); isString {
		return nil, false
	}
	return sequence.Of(v)
}
