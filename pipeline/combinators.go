package pipeline

import (
	"context"
	"reflect"

	"github.com/apokryfos/Enumerable/errors"
	"github.com/apokryfos/Enumerable/selector"
	"github.com/apokryfos/Enumerable/sequence"
	"github.com/apokryfos/Enumerable/stats"
)

// operands resolves every argument, failing on the first non-iterable one.
func operands(op string, values []any) ([]seq, error) {
	out := make([]seq, 0, len(values))
	for _, v := range values {
		s, err := operand(op, v)
		if err != nil {
			for _, o := range out {
				_ = o.Close()
			}
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// keySet is a Sequence whose keys are keys and whose values are nil.
func keySet(keys []any) seq {
	pairs := make([]pair, len(keys))
	for i, k := range keys {
		pairs[i] = sequence.NewPair(k, nil)
	}
	return sequence.FromPairs(pairs...)
}

// isPositional peeks c and reports whether its first key is 0. An empty
// sequence counts as positional.
func isPositional(ctx context.Context, c *sequence.Cursor) (bool, error) {
	first, ok, err := c.Peek(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	k, isInt := first.Key.(int)
	return isInt && k == 0, nil
}

// --- Slicing ---

// Skip drops the first n elements.
func (p *Pipeline) Skip(n int) *Pipeline {
	if n <= 0 {
		return p
	}
	return p.rebind(func(src seq) seq { return &skipIter{source: src, n: n} })
}

// Take yields at most n elements. Take(0) yields nothing without pulling.
func (p *Pipeline) Take(n int) *Pipeline {
	if n < 0 {
		n = 0
	}
	return p.rebind(func(src seq) seq { return &takeIter{source: src, n: n} })
}

// Chunk groups consecutive elements into cached Pipelines of at most n
// elements, keyed 0, 1, 2... Each group keeps the original keys.
func (p *Pipeline) Chunk(n int) *Pipeline {
	if n <= 0 {
		return p.fail(errors.Arithmetic("chunk", "size must be positive"))
	}
	return p.rebind(func(src seq) seq {
		return &chunkIter{source: src, size: n, group: func(m *sequence.Map) any {
			return p.newCached(m)
		}}
	})
}

// Nth keeps every element whose 0-based position i satisfies i > 0 and
// i % n == 0. Keys are kept.
func (p *Pipeline) Nth(n int) *Pipeline {
	if n <= 0 {
		return p.fail(errors.Arithmetic("nth", "step must be positive"))
	}
	return p.rebind(func(src seq) seq {
		i := 0
		return &filterIter{source: src, pred: func(_, _ any) bool {
			keep := i > 0 && i%n == 0
			i++
			return keep
		}}
	})
}

// Slice skips from elements then yields at most size. A negative size
// yields the rest. Positional sequences are renumbered from 0.
func (p *Pipeline) Slice(from, size int) *Pipeline {
	return p.rebind(func(src seq) seq {
		return deferred(src, func(ctx context.Context) (seq, error) {
			c := sequence.NewCursor(src)
			positional, err := isPositional(ctx, c)
			if err != nil {
				return nil, err
			}
			if _, err := c.Advance(ctx, from); err != nil {
				return nil, err
			}
			var out seq = c
			if size >= 0 {
				out = &takeIter{source: c, n: size}
			}
			if positional {
				out = renumber(out, false)
			}
			return out, nil
		})
	})
}

// Splice yields the first from elements, then the replacement, then
// whatever follows the next size elements. A replacement that is not
// iterable is inserted as a single element; nil inserts nothing.
func (p *Pipeline) Splice(from, size int, replacement any) *Pipeline {
	var repl seq
	switch s, ok := sequence.Of(replacement); {
	case ok:
		repl = s
	case replacement == nil:
		repl = sequence.Empty[pair]()
	default:
		repl = sequence.FromValues(replacement)
	}
	return p.rebind(func(src seq) seq {
		return deferred(src, func(ctx context.Context) (seq, error) {
			c := sequence.NewCursor(src)
			positional, err := isPositional(ctx, c)
			if err != nil {
				return nil, err
			}
			out := sequence.Concat(
				&takeIter{source: c, n: from},
				repl,
				&skipIter{source: c, n: size},
			)
			if positional {
				out = renumber(out, false)
			}
			return out, nil
		})
	})
}

// --- Joining ---

// Combine keys the values of this sequence to the values of values,
// position by position. Unless strict, missing values are nil and extra
// values are ignored; when strict, any leftover fails with
// COMBINE_SIZE_MISMATCH.
func (p *Pipeline) Combine(values any, strict bool) *Pipeline {
	other, err := operand("combine", values)
	if err != nil {
		return p.fail(err)
	}
	return p.rebind(func(src seq) seq {
		return &combineIter{keys: src, values: other, strict: strict}
	})
}

// Merge appends values. Integer keys of both sides are renumbered from 0;
// string keys are kept and a later duplicate wins on materialization.
func (p *Pipeline) Merge(values any) *Pipeline {
	return p.concat("merge", values)
}

// Concat is an alias of Merge.
func (p *Pipeline) Concat(values any) *Pipeline {
	return p.concat("concat", values)
}

func (p *Pipeline) concat(op string, values any) *Pipeline {
	other, err := operand(op, values)
	if err != nil {
		return p.fail(err)
	}
	return p.rebind(func(src seq) seq {
		return renumber(sequence.Concat(src, other), false)
	})
}

// Push appends value under the next integer key.
func (p *Pipeline) Push(value any) *Pipeline {
	return p.rebind(func(src seq) seq {
		return &appendIter{source: src, tail: func(_, next int) []pair {
			return []pair{{Key: next, Value: value}}
		}}
	})
}

// Put appends value under key.
func (p *Pipeline) Put(key, value any) *Pipeline {
	return p.rebind(func(src seq) seq {
		return &appendIter{source: src, tail: func(int, int) []pair {
			return []pair{sequence.NewPair(key, value)}
		}}
	})
}

// Pad appends value under the next integer keys until there are n elements.
func (p *Pipeline) Pad(n int, value any) *Pipeline {
	return p.rebind(func(src seq) seq {
		return &appendIter{source: src, tail: func(count, next int) []pair {
			var out []pair
			for ; count < n; count++ {
				out = append(out, pair{Key: next, Value: value})
				next++
			}
			return out
		}}
	})
}

// Prepend puts items first, keyed 0, 1, 2... When the sequence is
// positional its integer keys are renumbered to follow them.
func (p *Pipeline) Prepend(items ...any) *Pipeline {
	return p.rebind(func(src seq) seq {
		return deferred(src, func(ctx context.Context) (seq, error) {
			c := sequence.NewCursor(src)
			positional, err := isPositional(ctx, c)
			if err != nil {
				return nil, err
			}
			out := sequence.Concat(sequence.FromValues(items...), c)
			if positional {
				out = renumber(out, false)
			}
			return out, nil
		})
	})
}

// CrossJoin yields every combination of an element with one element of
// each operand as a []any tuple, the last operand varying fastest.
// Without operands each value becomes a one-element tuple.
func (p *Pipeline) CrossJoin(values ...any) *Pipeline {
	others, err := operands("crossJoin", values)
	if err != nil {
		return p.fail(err)
	}
	return p.rebind(func(src seq) seq {
		return &crossJoinIter{source: src, operands: others, sets: collectOperands(others)}
	})
}

// Union yields every element, then the elements of other whose keys were
// not seen.
func (p *Pipeline) Union(other any) *Pipeline {
	o, err := operand("union", other)
	if err != nil {
		return p.fail(err)
	}
	return p.rebind(func(src seq) seq {
		residual := collectMap(o)
		var rest seq
		return sequence.Func(func(ctx context.Context) (pair, bool, error) {
			m, err := residual.Get(ctx)
			if err != nil {
				return pair{}, false, err
			}
			if rest == nil {
				e, ok, err := src.Next(ctx)
				if err != nil {
					return pair{}, false, err
				}
				if ok {
					m.Delete(e.Key)
					return e, true, nil
				}
				rest = m.Iterate()
			}
			return rest.Next(ctx)
		}, func() error { return closeAll(src, []seq{o}) })
	})
}

// Zip pairs each value with the value under the same key in other as
// []any{value, otherValue}. A key missing from other fails with MISMATCH
// unless ignoreMismatches, in which case the element is dropped.
func (p *Pipeline) Zip(other any, ignoreMismatches bool) *Pipeline {
	o, err := operand("zip", other)
	if err != nil {
		return p.fail(err)
	}
	return p.rebind(func(src seq) seq {
		lookup := collectMap(o)
		return sequence.Func(func(ctx context.Context) (pair, bool, error) {
			m, err := lookup.Get(ctx)
			if err != nil {
				return pair{}, false, err
			}
			for {
				e, ok, err := src.Next(ctx)
				if err != nil || !ok {
					return pair{}, false, err
				}
				v, found := m.Get(e.Key)
				if !found {
					if ignoreMismatches {
						continue
					}
					return pair{}, false, errors.Mismatch(e.Key)
				}
				return pair{Key: e.Key, Value: []any{e.Value, v}}, true, nil
			}
		}, func() error { return closeAll(src, []seq{o}) })
	})
}

// --- Set operations ---

func (p *Pipeline) setOp(op string, mode selector.CombineMode, intersect bool, values []any) *Pipeline {
	others, err := operands(op, values)
	if err != nil {
		return p.fail(err)
	}
	return p.rebind(func(src seq) seq {
		return &setIter{
			source:    src,
			mode:      mode,
			operands:  others,
			sets:      collectOperands(others),
			intersect: intersect,
		}
	})
}

// Diff keeps elements whose value is in none of values.
func (p *Pipeline) Diff(values ...any) *Pipeline {
	return p.setOp("diff", selector.OnlyValue, false, values)
}

// DiffAssoc keeps elements whose key and value pair is in none of values.
func (p *Pipeline) DiffAssoc(values ...any) *Pipeline {
	return p.setOp("diffAssoc", selector.Both, false, values)
}

// DiffKeys keeps elements whose key is in none of values.
func (p *Pipeline) DiffKeys(values ...any) *Pipeline {
	return p.setOp("diffKeys", selector.OnlyKey, false, values)
}

// Intersect keeps elements whose value is in every one of values.
func (p *Pipeline) Intersect(values ...any) *Pipeline {
	return p.setOp("intersect", selector.OnlyValue, true, values)
}

// IntersectByKeys keeps elements whose key is in every one of values.
func (p *Pipeline) IntersectByKeys(values ...any) *Pipeline {
	return p.setOp("intersectByKeys", selector.OnlyKey, true, values)
}

// IntersectAssoc keeps elements whose key and value pair is in every one
// of values.
func (p *Pipeline) IntersectAssoc(values ...any) *Pipeline {
	return p.setOp("intersectAssoc", selector.Both, true, values)
}

// Except drops the given keys.
func (p *Pipeline) Except(keys ...any) *Pipeline {
	return p.DiffKeys(keySet(keys))
}

// Only keeps the given keys.
func (p *Pipeline) Only(keys ...any) *Pipeline {
	return p.IntersectByKeys(keySet(keys))
}

// Forget drops key.
func (p *Pipeline) Forget(key any) *Pipeline {
	return p.Except(key)
}

// --- Filtering ---

// Filter keeps elements for which sel is truthy. A nil sel tests the value.
func (p *Pipeline) Filter(sel any) *Pipeline {
	return p.filter(selector.Truth(sel))
}

// Reject drops elements for which sel is truthy.
func (p *Pipeline) Reject(sel any) *Pipeline {
	return p.filter(selector.Not(selector.Truth(sel)))
}

// Where filters with selector.Where semantics: sel alone tests truthiness,
// sel and a value compare loosely, sel, an operator and a value compare
// with that operator.
func (p *Pipeline) Where(sel any, args ...any) *Pipeline {
	return p.filter(selector.Where(append([]any{sel}, args...)...))
}

// WhereStrict is Where with strict equality.
func (p *Pipeline) WhereStrict(sel any, args ...any) *Pipeline {
	return p.filter(selector.WhereStrict(append([]any{sel}, args...)...))
}

// WhereIn keeps elements whose selected value loosely equals one of values.
func (p *Pipeline) WhereIn(sel any, values []any) *Pipeline {
	return p.filter(selector.In(sel, values, false))
}

// WhereNotIn drops elements whose selected value loosely equals one of values.
func (p *Pipeline) WhereNotIn(sel any, values []any) *Pipeline {
	return p.filter(selector.Not(selector.In(sel, values, false)))
}

// WhereInStrict is WhereIn with strict equality.
func (p *Pipeline) WhereInStrict(sel any, values []any) *Pipeline {
	return p.filter(selector.In(sel, values, true))
}

// WhereNotInStrict is WhereNotIn with strict equality.
func (p *Pipeline) WhereNotInStrict(sel any, values []any) *Pipeline {
	return p.filter(selector.Not(selector.In(sel, values, true)))
}

// WhereInstanceOf keeps values of type t, or implementing t when t is an
// interface type.
func (p *Pipeline) WhereInstanceOf(t reflect.Type) *Pipeline {
	return p.filter(selector.InstanceOf(t))
}

func (p *Pipeline) filter(pred selector.Predicate) *Pipeline {
	return p.rebind(func(src seq) seq { return &filterIter{source: src, pred: pred} })
}

// --- Mapping ---

// Map replaces each value with sel applied to it, keyed 0, 1, 2...
func (p *Pipeline) Map(sel any) *Pipeline {
	f := selector.Of(sel)
	return p.mapPairs(func(e pair, i int) pair {
		return pair{Key: i, Value: f(e.Value, e.Key)}
	})
}

// MapWithKeys is Map keeping the keys.
func (p *Pipeline) MapWithKeys(sel any) *Pipeline {
	f := selector.Of(sel)
	return p.mapPairs(func(e pair, _ int) pair {
		return pair{Key: e.Key, Value: f(e.Value, e.Key)}
	})
}

// MapSpread calls fn with the elements of each value as arguments.
func (p *Pipeline) MapSpread(fn func(args ...any) any) *Pipeline {
	return p.Map(selector.Func(func(v, _ any) any { return fn(spread(v)...) }))
}

// MapInto selects constructor arguments with sel and maps each value to
// ctor called with them.
func (p *Pipeline) MapInto(ctor func(args ...any) any, sel any) *Pipeline {
	return p.Map(sel).MapSpread(ctor)
}

// Pluck is an alias of Map, usually given a field name.
func (p *Pipeline) Pluck(sel any) *Pipeline {
	return p.Map(sel)
}

// Flip swaps keys and values.
func (p *Pipeline) Flip() *Pipeline {
	return p.mapPairs(func(e pair, _ int) pair { return sequence.NewPair(e.Value, e.Key) })
}

// Keys yields the keys as values.
func (p *Pipeline) Keys() *Pipeline {
	return p.mapPairs(func(e pair, i int) pair { return pair{Key: i, Value: e.Key} })
}

// Values drops the keys, renumbering from 0.
func (p *Pipeline) Values() *Pipeline {
	return p.mapPairs(func(e pair, i int) pair { return pair{Key: i, Value: e.Value} })
}

// KeyBy keys each value by sel applied to it.
func (p *Pipeline) KeyBy(sel any) *Pipeline {
	f := selector.Of(sel)
	return p.mapPairs(func(e pair, _ int) pair { return sequence.NewPair(f(e.Value, e.Key), e.Value) })
}

func (p *Pipeline) mapPairs(fn func(e pair, i int) pair) *Pipeline {
	return p.rebind(func(src seq) seq { return &mapIter{source: src, fn: fn} })
}

// spread returns the elements of v as call arguments.
func spread(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case *sequence.Map:
		return t.Values()
	case *Pipeline:
		if t.snapshot != nil {
			return t.snapshot.Values()
		}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

// --- Nesting ---

// FlatMap maps with sel then flattens one level.
func (p *Pipeline) FlatMap(sel any) *Pipeline {
	return p.Map(sel).Flatten(1)
}

// Flatten expands iterable values up to levels deep, or fully when
// levels <= 0, renumbering from 0. Strings are not expanded.
func (p *Pipeline) Flatten(levels int) *Pipeline {
	return p.flatten(levels, false)
}

// FlattenWithKeys is Flatten keeping the inner keys.
func (p *Pipeline) FlattenWithKeys(levels int) *Pipeline {
	return p.flatten(levels, true)
}

// Collapse flattens fully.
func (p *Pipeline) Collapse() *Pipeline {
	return p.Flatten(0)
}

func (p *Pipeline) flatten(levels int, keepKeys bool) *Pipeline {
	return p.rebind(func(src seq) seq {
		return &flattenIter{stack: []frame{{seq: src}}, levels: levels, keepKeys: keepKeys}
	})
}

// --- Counting ---

// CountValues maps each distinct selected value to the number of times it
// occurs, in order of first occurrence. The source is read on first pull.
func (p *Pipeline) CountValues(sel any) *Pipeline {
	f := selector.Of(sel)
	return p.rebind(func(src seq) seq {
		return deferred(src, func(ctx context.Context) (seq, error) {
			freq := stats.NewFrequency()
			for {
				e, ok, err := src.Next(ctx)
				if err != nil {
					return nil, err
				}
				if !ok {
					break
				}
				freq.Add(f(e.Value, e.Key))
			}
			counts := freq.Counts()
			pairs := make([]pair, len(counts))
			for i, c := range counts {
				pairs[i] = sequence.NewPair(c.Value, c.N)
			}
			return sequence.FromPairs(pairs...), nil
		})
	})
}

// --- Callbacks ---

// Tap calls fn with the Pipeline.
func (p *Pipeline) Tap(fn func(*Pipeline)) *Pipeline {
	fn(p)
	return p
}

// When calls fn with the Pipeline if cond holds.
func (p *Pipeline) When(cond bool, fn func(*Pipeline)) *Pipeline {
	if cond {
		fn(p)
	}
	return p
}

// Unless calls fn with the Pipeline if cond does not hold.
func (p *Pipeline) Unless(cond bool, fn func(*Pipeline)) *Pipeline {
	return p.When(!cond, fn)
}
