package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/apokryfos/Enumerable/errors"
	"github.com/apokryfos/Enumerable/logger"
	"github.com/apokryfos/Enumerable/observer"
	"github.com/apokryfos/Enumerable/sequence"
)

// Control tells an Each callback's pull loop whether to go on.
type Control int

const (
	// Continue pulls the next element.
	Continue Control = iota
	// Stop ends the loop without pulling further.
	Stop
)

// Pipeline is a lazy key/value sequence with fluent combinators.
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	cur      *sequence.Cursor
	snapshot *sequence.Map
	size     int
	consumed bool
	err      error

	id  string
	obs observer.Observer
	log *logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver sets the Observer notified of lifecycle events.
func WithObserver(o observer.Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.obs = o
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithID sets the pipeline ID carried by events instead of a random UUID.
func WithID(id string) Option {
	return func(p *Pipeline) { p.id = id }
}

// --- Constructors ---

// New creates a Pipeline over initial.
//
// Slices, arrays, Go maps, *sequence.Map, sequence iterators, iter.Seq and
// iter.Seq2 values and other Pipelines are accepted; see sequence.Of. Any
// other value, nil included, yields an empty Pipeline.
func New(initial any, opts ...Option) *Pipeline {
	p := &Pipeline{size: -1, obs: observer.Nop, log: logger.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	size := knownSize(initial)
	seq, ok := sequence.Of(initial)
	if !ok {
		if initial != nil {
			p.log.Debug("initial value is not iterable, using an empty sequence",
				logger.Fields(logger.FieldType, fmt.Sprintf("%T", initial)))
		}
		seq = sequence.Empty[sequence.Pair]()
		p.size = 0
	} else {
		p.size = size
	}
	p.cur = sequence.NewCursor(seq)
	return p
}

// Wrap is an alias of New.
func Wrap(v any, opts ...Option) *Pipeline {
	return New(v, opts...)
}

// Make returns an empty Pipeline.
func Make(opts ...Option) *Pipeline {
	return New(nil, opts...)
}

// FromIterator creates a Pipeline over an iterator of any element type.
func FromIterator[T any](it sequence.Iterator[T], opts ...Option) *Pipeline {
	return New(it, opts...)
}

// Times yields fn(0), fn(1) ... fn(n-1), lazily.
func Times(n int, fn func(i int) any, opts ...Option) *Pipeline {
	i := 0
	return New(sequence.Func(func(_ context.Context) (sequence.Pair, bool, error) {
		if i >= n {
			return sequence.Pair{}, false, nil
		}
		p := sequence.Pair{Key: i, Value: fn(i)}
		i++
		return p, true, nil
	}, nil), opts...)
}

// Unwrap materializes v without recursion.
func Unwrap(ctx context.Context, v any) (*sequence.Map, error) {
	if m, ok := v.(*sequence.Map); ok {
		return m, nil
	}
	return Wrap(v).All(ctx)
}

// newCached returns a Pipeline replaying m, sharing p's logger.
func (p *Pipeline) newCached(m *sequence.Map) *Pipeline {
	child := &Pipeline{size: m.Len(), obs: observer.Nop, log: p.log, snapshot: m}
	child.cur = sequence.NewCursor(m.Iterate())
	return child
}

func knownSize(v any) int {
	switch t := v.(type) {
	case *sequence.Map:
		return t.Len()
	case *Pipeline:
		return t.Size()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	}
	return -1
}

// --- State ---

// ID returns the pipeline ID carried by lifecycle events.
func (p *Pipeline) ID() string {
	if p.id == "" {
		p.id = uuid.NewString()
	}
	return p.id
}

// Size returns the number of elements when known without pulling, or -1.
func (p *Pipeline) Size() int {
	if p.snapshot != nil {
		return p.snapshot.Len()
	}
	return p.size
}

// Cached reports whether the Pipeline replays a snapshot.
func (p *Pipeline) Cached() bool { return p.snapshot != nil }

// Consumed reports whether the sequence was moved into another Pipeline.
func (p *Pipeline) Consumed() bool { return p.consumed }

// Iterate hands the sequence over. A cached Pipeline shares its snapshot;
// otherwise the sequence moves and p is left consumed.
func (p *Pipeline) Iterate() sequence.Sequence {
	if p.snapshot != nil {
		return p.snapshot.Iterate()
	}
	if p.consumed {
		return sequence.Empty[sequence.Pair]()
	}
	seq := p.cur
	p.cur = sequence.NewCursor(sequence.Empty[sequence.Pair]())
	p.consumed = true
	p.size = 0
	return seq
}

// --- Internal plumbing ---

// reader returns the cursor a terminal pulls from: a fresh replay when
// cached, the live cursor otherwise.
func (p *Pipeline) reader() *sequence.Cursor {
	if p.snapshot != nil {
		return sequence.NewCursor(p.snapshot.Iterate())
	}
	return p.cur
}

// detach drops the snapshot and returns the cursor combinators build on.
func (p *Pipeline) detach() *sequence.Cursor {
	c := p.reader()
	p.snapshot = nil
	p.size = -1
	return c
}

// rebind replaces the sequence with build(current).
func (p *Pipeline) rebind(build func(src sequence.Sequence) sequence.Sequence) *Pipeline {
	p.cur = sequence.NewCursor(build(p.detach()))
	return p
}

// fail replaces the sequence with one that fails with err on first pull.
func (p *Pipeline) fail(err error) *Pipeline {
	return p.rebind(func(src sequence.Sequence) sequence.Sequence {
		return failing(src, err)
	})
}

func (p *Pipeline) emit(ctx context.Context, name observer.Name, op string, count int, err error, d time.Duration) {
	p.obs.Notify(ctx, observer.Event{
		Name:       name,
		PipelineID: p.ID(),
		Operation:  op,
		Count:      count,
		Err:        err,
		Duration:   d,
		Time:       time.Now(),
	})
}

// consume runs a consuming terminal between Closing and Closed events.
// A failed terminal leaves the Pipeline exhausted.
func (p *Pipeline) consume(ctx context.Context, op string, run func(c *sequence.Cursor) error) error {
	return p.lifecycle(ctx, op, observer.Closing, observer.Closed, run)
}

func (p *Pipeline) lifecycle(ctx context.Context, op string, before, after observer.Name, run func(c *sequence.Cursor) error) error {
	if p.consumed {
		return errors.SequenceConsumed()
	}
	ctx = logger.ContextWithPipelineID(ctx, p.ID())
	start := time.Now()
	p.emit(ctx, before, op, -1, nil, 0)

	c := p.reader()
	from := c.Pos()
	if p.snapshot == nil {
		p.size = -1
	}
	err := run(c)
	count := c.Pos() - from
	if err != nil && c == p.cur {
		c.Fail(err)
	}

	p.emit(ctx, after, op, count, err, time.Since(start))
	if err != nil {
		p.log.WithContext(ctx).WithError(err).Debug("terminal failed", logger.Fields(
			logger.FieldOperation, op,
			logger.FieldErrorCode, string(errors.CodeOf(err)),
		))
	}
	return err
}

// pull checks ctx before pulling from c.
func pull(ctx context.Context, c *sequence.Cursor) (sequence.Pair, bool, error) {
	if err := ctx.Err(); err != nil {
		return sequence.Pair{}, false, err
	}
	return c.Next(ctx)
}

// forEach pulls every element of c into fn until fn returns Stop.
func forEach(ctx context.Context, c *sequence.Cursor, fn func(sequence.Pair) Control) error {
	for {
		e, ok, err := pull(ctx, c)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if fn(e) == Stop {
			return nil
		}
	}
}

// operand resolves a combinator argument into a Sequence.
func operand(op string, v any) (sequence.Sequence, error) {
	seq, ok := sequence.Of(v)
	if !ok {
		return nil, errors.NotAnIterator(op, v)
	}
	return seq, nil
}
