package pipeline

import (
	"context"
	"fmt"

	"github.com/apokryfos/Enumerable/errors"
	"github.com/apokryfos/Enumerable/selector"
)

// Kinds accepted by HigherOrder.
const (
	KindAverage = "average"
	KindAvg     = "avg"
	KindEach    = "each"
	KindEvery   = "every"
	KindFilter  = "filter"
	KindFirst   = "first"
	KindFlatMap = "flatMap"
	KindKeyBy   = "keyBy"
	KindMap     = "map"
	KindMax     = "max"
	KindMin     = "min"
	KindMedian  = "median"
	KindReject  = "reject"
	KindSum     = "sum"
)

var proxyKinds = map[string]bool{
	KindAverage: true, KindAvg: true, KindEach: true, KindEvery: true,
	KindFilter: true, KindFirst: true, KindFlatMap: true, KindKeyBy: true,
	KindMap: true, KindMax: true, KindMin: true, KindMedian: true,
	KindReject: true, KindSum: true,
}

// Proxy runs a combinator or terminal with a selector that calls a method
// on every element. Elements must implement selector.Receiver.
//
//	avg, err := p.HigherOrder(pipeline.KindAverage)
//	result, err := avg.Call("Score").Apply(ctx)
type Proxy struct {
	p      *Pipeline
	kind   string
	method string
	args   []any
	called bool
}

// HigherOrder returns a Proxy for kind. Unknown kinds fail with
// BAD_METHOD_CALL.
func (p *Pipeline) HigherOrder(kind string) (*Proxy, error) {
	if !proxyKinds[kind] {
		return nil, errors.BadMethodCall(fmt.Sprintf("higher order %q", kind))
	}
	return &Proxy{p: p, kind: kind}, nil
}

// Kind returns the combinator the Proxy runs.
func (x *Proxy) Kind() string { return x.kind }

// Call sets the method invoked on every element and its arguments.
func (x *Proxy) Call(method string, args ...any) *Proxy {
	x.method = method
	x.args = args
	x.called = true
	return x
}

// gate holds the first error raised by a selector.
type gate struct{ err error }

func (g *gate) set(err error) {
	if g.err == nil {
		g.err = err
	}
}

// gateIter fails as soon as the gate holds an error, including on the pull
// whose element raised it.
type gateIter struct {
	source seq
	gate   *gate
}

func (it *gateIter) Next(ctx context.Context) (pair, bool, error) {
	if it.gate.err != nil {
		return pair{}, false, it.gate.err
	}
	e, ok, err := it.source.Next(ctx)
	if err != nil {
		return pair{}, false, err
	}
	if it.gate.err != nil {
		return pair{}, false, it.gate.err
	}
	return e, ok, nil
}

func (it *gateIter) Close() error { return it.source.Close() }

// invoker returns a selector calling the method on each value.
func (x *Proxy) invoker(g *gate) selector.Func {
	return func(v, _ any) any {
		r, ok := v.(selector.Receiver)
		if !ok {
			g.set(errors.BadMethodCall(fmt.Sprintf("%s on %T", x.method, v)))
			return nil
		}
		out, err := r.Invoke(x.method, x.args...)
		if err != nil {
			g.set(err)
			return nil
		}
		return out
	}
}

// Apply runs the combinator. Combinators return the Pipeline, which fails
// on pull once a call fails; terminals return their result.
func (x *Proxy) Apply(ctx context.Context) (any, error) {
	if !x.called {
		return nil, errors.BadMethodCall("proxy method before Call")
	}
	g := &gate{}
	sel := x.invoker(g)
	guard := func(p *Pipeline) *Pipeline {
		return p.rebind(func(src seq) seq { return &gateIter{source: src, gate: g} })
	}

	// The inner gate stops pulling upstream once a call failed; the outer
	// one fails the pull that produced the failing element.
	switch x.kind {
	case KindFilter:
		return guard(guard(x.p).Filter(sel)), nil
	case KindReject:
		return guard(guard(x.p).Reject(sel)), nil
	case KindMap:
		return guard(guard(x.p).Map(sel)), nil
	case KindFlatMap:
		return guard(guard(x.p).FlatMap(sel)), nil
	case KindKeyBy:
		return guard(guard(x.p).KeyBy(sel)), nil
	}

	var result any
	var err error
	p := guard(x.p)
	switch x.kind {
	case KindAverage, KindAvg:
		result, err = p.Average(ctx, sel)
	case KindSum:
		result, err = p.Sum(ctx, sel)
	case KindMax:
		result, err = p.Max(ctx, sel)
	case KindMin:
		result, err = p.Min(ctx, sel)
	case KindMedian:
		result, err = p.Median(ctx, sel)
	case KindEvery:
		result, err = p.Every(ctx, sel)
	case KindFirst:
		result, _, err = p.First(ctx, sel)
	case KindEach:
		err = p.Each(ctx, func(v, k any) Control {
			sel(v, k)
			if g.err != nil {
				return Stop
			}
			return Continue
		})
	}
	if err == nil {
		err = g.err
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
