package pipeline

import (
	"context"
	"iter"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/apokryfos/Enumerable/errors"
	"github.com/apokryfos/Enumerable/observer"
	"github.com/apokryfos/Enumerable/selector"
	"github.com/apokryfos/Enumerable/sequence"
)

// walk pulls every element of c into fn until fn stops or fails.
func walk(ctx context.Context, c *sequence.Cursor, fn func(e pair) (Control, error)) error {
	for {
		e, ok, err := pull(ctx, c)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		ctl, err := fn(e)
		if err != nil {
			return err
		}
		if ctl == Stop {
			return nil
		}
	}
}

// --- Materialization ---

// All materializes the sequence without descending into nested values and
// caches it. A cached Pipeline returns its snapshot.
func (p *Pipeline) All(ctx context.Context) (*sequence.Map, error) {
	if p.snapshot != nil {
		return p.snapshot, nil
	}
	return p.materialize(ctx, "all", func(_ context.Context, v any) (any, error) { return v, nil })
}

// ToArray materializes the sequence and every nested Pipeline, Map and
// iterator into nested Maps, and caches the result.
func (p *Pipeline) ToArray(ctx context.Context) (*sequence.Map, error) {
	return p.materialize(ctx, "toArray", deepValue)
}

// ToJSON encodes ToArray. Lists become arrays and other Maps objects with
// their key order kept.
func (p *Pipeline) ToJSON(ctx context.Context) ([]byte, error) {
	m, err := p.ToArray(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// Cache materializes the sequence in place.
func (p *Pipeline) Cache(ctx context.Context) error {
	_, err := p.All(ctx)
	return err
}

func (p *Pipeline) materialize(ctx context.Context, op string, convert func(context.Context, any) (any, error)) (*sequence.Map, error) {
	m := sequence.NewMap()
	var source *sequence.Cursor
	err := p.lifecycle(ctx, op, observer.Caching, observer.Cached, func(c *sequence.Cursor) error {
		source = c
		return walk(ctx, c, func(e pair) (Control, error) {
			v, err := convert(ctx, e.Value)
			if err != nil {
				return Stop, err
			}
			m.Set(e.Key, v)
			return Continue, nil
		})
	})
	if err != nil {
		return nil, err
	}
	if source == p.cur {
		_ = source.Close()
	}
	p.snapshot = m
	p.size = m.Len()
	p.cur = sequence.NewCursor(m.Iterate())
	return m, nil
}

func deepValue(ctx context.Context, v any) (any, error) {
	switch t := v.(type) {
	case nil, string:
		return v, nil
	case *Pipeline:
		return t.ToArray(ctx)
	case *sequence.Map:
		return deepMap(ctx, t)
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v, nil
	}
	s, ok := sequence.Of(v)
	if !ok {
		return v, nil
	}
	m, err := sequence.CollectMap(ctx, s)
	if err != nil {
		return nil, err
	}
	return deepMap(ctx, m)
}

func deepMap(ctx context.Context, m *sequence.Map) (*sequence.Map, error) {
	out := sequence.NewMap()
	for k, v := range m.All() {
		dv, err := deepValue(ctx, v)
		if err != nil {
			return nil, err
		}
		out.Set(k, dv)
	}
	return out, nil
}

// --- Iteration ---

// Stream returns the elements as a range-over-func iterator. Breaking out
// of the loop stops pulling. The terminal error is available from Err once
// the loop ends.
func (p *Pipeline) Stream(ctx context.Context) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		p.err = p.consume(ctx, "stream", func(c *sequence.Cursor) error {
			return forEach(ctx, c, func(e pair) Control {
				if !yield(e.Key, e.Value) {
					return Stop
				}
				return Continue
			})
		})
	}
}

// Err returns the error that ended the last Stream loop.
func (p *Pipeline) Err() error { return p.err }

// Each calls fn for every element until it returns Stop.
func (p *Pipeline) Each(ctx context.Context, fn func(value, key any) Control) error {
	return p.consume(ctx, "each", func(c *sequence.Cursor) error {
		return forEach(ctx, c, func(e pair) Control { return fn(e.Value, e.Key) })
	})
}

// EachSpread calls fn with the elements of every value as arguments until
// it returns Stop.
func (p *Pipeline) EachSpread(ctx context.Context, fn func(args ...any) Control) error {
	return p.consume(ctx, "eachSpread", func(c *sequence.Cursor) error {
		return forEach(ctx, c, func(e pair) Control { return fn(spread(e.Value)...) })
	})
}

// Every reports whether sel is truthy for every element. It stops at the
// first falsy one. An empty sequence yields true.
func (p *Pipeline) Every(ctx context.Context, sel any) (bool, error) {
	pred := selector.Truth(sel)
	result := true
	err := p.consume(ctx, "every", func(c *sequence.Cursor) error {
		return forEach(ctx, c, func(e pair) Control {
			if !pred(e.Value, e.Key) {
				result = false
				return Stop
			}
			return Continue
		})
	})
	if err != nil {
		return false, err
	}
	return result, nil
}

// Reduce folds fn over the elements, left to right.
func (p *Pipeline) Reduce(ctx context.Context, fn func(acc, value, key any) any, initial any) (any, error) {
	acc := initial
	err := p.consume(ctx, "reduce", func(c *sequence.Cursor) error {
		return forEach(ctx, c, func(e pair) Control {
			acc = fn(acc, e.Value, e.Key)
			return Continue
		})
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Implode joins the values as strings with sep between them.
func (p *Pipeline) Implode(ctx context.Context, sep string) (string, error) {
	var b strings.Builder
	first := true
	err := p.consume(ctx, "implode", func(c *sequence.Cursor) error {
		return forEach(ctx, c, func(e pair) Control {
			if !first {
				b.WriteString(sep)
			}
			first = false
			b.WriteString(stringify(e.Value))
			return Continue
		})
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func stringify(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "1"
		}
		return ""
	}
	return cast.ToString(v)
}

// --- Lookup ---

// Peek returns the next element without consuming it.
func (p *Pipeline) Peek(ctx context.Context) (sequence.Pair, bool, error) {
	if p.consumed {
		return pair{}, false, errors.SequenceConsumed()
	}
	return p.reader().Peek(ctx)
}

// IsEmpty reports whether there is no next element.
func (p *Pipeline) IsEmpty(ctx context.Context) (bool, error) {
	_, ok, err := p.Peek(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// IsNotEmpty reports whether there is a next element.
func (p *Pipeline) IsNotEmpty(ctx context.Context) (bool, error) {
	empty, err := p.IsEmpty(ctx)
	return !empty && err == nil, err
}

// NthElement returns the n-th element, counting from 1, that passes the
// optional Where condition.
func (p *Pipeline) NthElement(ctx context.Context, n int, where ...any) (sequence.Pair, bool, error) {
	if n <= 0 {
		return pair{}, false, nil
	}
	pred := condition(where)
	var found pair
	seen := 0
	err := p.consume(ctx, "nthElement", func(c *sequence.Cursor) error {
		return forEach(ctx, c, func(e pair) Control {
			if !pred(e.Value, e.Key) {
				return Continue
			}
			seen++
			if seen == n {
				found = e
				return Stop
			}
			return Continue
		})
	})
	if err != nil {
		return pair{}, false, err
	}
	return found, seen == n, nil
}

// First returns the first value passing the optional Where condition.
func (p *Pipeline) First(ctx context.Context, where ...any) (any, bool, error) {
	e, ok, err := p.NthElement(ctx, 1, where...)
	return e.Value, ok, err
}

// FirstWhere is First with a mandatory selector.
func (p *Pipeline) FirstWhere(ctx context.Context, sel any, args ...any) (any, bool, error) {
	return p.First(ctx, append([]any{sel}, args...)...)
}

// Last returns the last value passing the optional Where condition.
func (p *Pipeline) Last(ctx context.Context, where ...any) (any, bool, error) {
	pred := condition(where)
	var last any
	found := false
	err := p.consume(ctx, "last", func(c *sequence.Cursor) error {
		return forEach(ctx, c, func(e pair) Control {
			if pred(e.Value, e.Key) {
				last, found = e.Value, true
			}
			return Continue
		})
	})
	if err != nil {
		return nil, false, err
	}
	return last, found, nil
}

func condition(where []any) selector.Predicate {
	if len(where) == 0 {
		return func(_, _ any) bool { return true }
	}
	return selector.Where(where...)
}

// Get returns the value of the first element keyed key.
func (p *Pipeline) Get(ctx context.Context, key any) (any, bool, error) {
	var value any
	found := false
	err := p.findKey(ctx, "get", key, func(e pair) bool {
		value, found = e.Value, true
		return true
	})
	return value, found, err
}

// Has reports whether key is present. Unless allowNil, a nil value under
// key does not count.
func (p *Pipeline) Has(ctx context.Context, key any, allowNil bool) (bool, error) {
	found := false
	err := p.findKey(ctx, "has", key, func(e pair) bool {
		found = allowNil || e.Value != nil
		return found
	})
	return found, err
}

// findKey calls match on elements keyed key until it returns true.
func (p *Pipeline) findKey(ctx context.Context, op string, key any, match func(e pair) bool) error {
	want := sequence.NormalizeKey(key)
	return p.consume(ctx, op, func(c *sequence.Cursor) error {
		return forEach(ctx, c, func(e pair) Control {
			if sequence.NormalizeKey(e.Key) == want && match(e) {
				return Stop
			}
			return Continue
		})
	})
}

// Count returns the number of elements.
func (p *Pipeline) Count(ctx context.Context) (int, error) {
	if p.snapshot != nil {
		return p.snapshot.Len(), nil
	}
	n := 0
	err := p.consume(ctx, "count", func(c *sequence.Cursor) error {
		return forEach(ctx, c, func(pair) Control {
			n++
			return Continue
		})
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Shift removes and returns the first element. A cached Pipeline stops
// being cached. When the removed key is 0 the rest is renumbered from 0.
func (p *Pipeline) Shift(ctx context.Context) (sequence.Pair, bool, error) {
	if p.consumed {
		return pair{}, false, errors.SequenceConsumed()
	}
	c := p.detach()
	p.cur = c
	e, ok, err := pull(ctx, c)
	if err != nil {
		c.Fail(err)
		return pair{}, false, err
	}
	if !ok {
		return pair{}, false, nil
	}
	if k, isInt := e.Key.(int); isInt && k == 0 {
		p.cur = sequence.NewCursor(renumber(c, false))
	}
	return e, true, nil
}
