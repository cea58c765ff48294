package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/apokryfos/Enumerable/errors"
)

type player struct {
	Name  string
	Score int
}

func (p player) Invoke(method string, args ...any) (any, error) {
	switch method {
	case "Score":
		return p.Score, nil
	case "ScaledScore":
		return p.Score * args[0].(int), nil
	case "IsActive":
		return p.Score > 0, nil
	case "Tags":
		return []string{p.Name, "player"}, nil
	case "Name":
		return p.Name, nil
	}
	return nil, fmt.Errorf("player has no method %s", method)
}

func players() []player {
	return []player{{"ann", 3}, {"bob", 0}, {"cyd", 6}}
}

func apply(t *testing.T, kind, method string, args ...any) (any, error) {
	t.Helper()
	proxy, err := New(players()).HigherOrder(kind)
	if err != nil {
		t.Fatalf("HigherOrder(%s): %v", kind, err)
	}
	if proxy.Kind() != kind {
		t.Errorf("got kind %s, want %s", proxy.Kind(), kind)
	}
	return proxy.Call(method, args...).Apply(context.Background())
}

func TestProxy_Terminals(t *testing.T) {
	tests := []struct {
		kind   string
		method string
		args   []any
		want   any
	}{
		{KindSum, "Score", nil, int64(9)},
		{KindAverage, "Score", nil, 3.0},
		{KindAvg, "ScaledScore", []any{2}, 6.0},
		{KindMax, "Score", nil, 6},
		{KindMin, "Name", nil, "ann"},
		{KindMedian, "Score", nil, 3.0},
		{KindEvery, "IsActive", nil, false},
		{KindFirst, "IsActive", nil, player{"ann", 3}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := apply(t, tt.kind, tt.method, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestProxy_Combinators(t *testing.T) {
	tests := []struct {
		kind   string
		method string
		want   []any
	}{
		{KindFilter, "IsActive", []any{player{"ann", 3}, player{"cyd", 6}}},
		{KindReject, "IsActive", []any{player{"bob", 0}}},
		{KindMap, "Name", []any{"ann", "bob", "cyd"}},
		{KindFlatMap, "Tags", []any{"ann", "player", "bob", "player", "cyd", "player"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := apply(t, tt.kind, tt.method)
			if err != nil {
				t.Fatal(err)
			}
			p, ok := got.(*Pipeline)
			if !ok {
				t.Fatalf("got %T, want *Pipeline", got)
			}
			if vals := valuesOf(t, p); !reflect.DeepEqual(vals, tt.want) {
				t.Errorf("got %v, want %v", vals, tt.want)
			}
		})
	}
}

func TestProxy_KeyBy(t *testing.T) {
	got, err := apply(t, KindKeyBy, "Name")
	if err != nil {
		t.Fatal(err)
	}
	keys := mustAll(t, got.(*Pipeline)).Keys()
	if want := []any{"ann", "bob", "cyd"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("got %v, want %v", keys, want)
	}
}

func TestProxy_Each(t *testing.T) {
	got, err := apply(t, KindEach, "Score")
	if err != nil || got != nil {
		t.Errorf("got %v %v, want nil nil", got, err)
	}
}

func TestProxy_UnknownKind(t *testing.T) {
	_, err := New(players()).HigherOrder("groupBy")
	if !stderrors.Is(err, errors.ErrBadMethodCall) {
		t.Errorf("got %v, want BAD_METHOD_CALL", err)
	}
}

func TestProxy_ApplyWithoutCall(t *testing.T) {
	proxy, _ := New(players()).HigherOrder(KindSum)
	if _, err := proxy.Apply(context.Background()); !stderrors.Is(err, errors.ErrBadMethodCall) {
		t.Errorf("got %v, want BAD_METHOD_CALL", err)
	}
}

func TestProxy_NotReceiver(t *testing.T) {
	ctx := context.Background()
	proxy, _ := New([]int{1, 2}).HigherOrder(KindSum)
	if _, err := proxy.Call("Score").Apply(ctx); !stderrors.Is(err, errors.ErrBadMethodCall) {
		t.Errorf("terminal: got %v, want BAD_METHOD_CALL", err)
	}

	proxy, _ = New([]int{1, 2}).HigherOrder(KindMap)
	got, err := proxy.Call("Score").Apply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := got.(*Pipeline).All(ctx); !stderrors.Is(err, errors.ErrBadMethodCall) {
		t.Errorf("combinator: got %v, want BAD_METHOD_CALL", err)
	}
}

func TestProxy_MethodError(t *testing.T) {
	_, err := apply(t, KindSum, "Missing")
	if err == nil || err.Error() != "player has no method Missing" {
		t.Errorf("got %v", err)
	}
}

func TestProxy_CombinatorFailsOnFailingElement(t *testing.T) {
	ctx := context.Background()
	mixed := func() []any { return []any{player{"ann", 3}, 42, player{"cyd", 6}} }

	tests := []struct {
		name string
		kind string
		run  func(p *Pipeline) error
	}{
		{"map skip take", KindMap, func(p *Pipeline) error {
			_, err := p.Skip(1).Take(1).All(ctx)
			return err
		}},
		{"keyBy skip take", KindKeyBy, func(p *Pipeline) error {
			_, err := p.Skip(1).Take(1).All(ctx)
			return err
		}},
		{"flatMap nth element", KindFlatMap, func(p *Pipeline) error {
			_, _, err := p.NthElement(ctx, 3)
			return err
		}},
		{"filter take", KindFilter, func(p *Pipeline) error {
			_, err := p.Skip(1).Take(1).All(ctx)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := "Name"
			switch tt.kind {
			case KindFlatMap:
				method = "Tags"
			case KindFilter:
				method = "IsActive"
			}
			proxy, _ := New(mixed()).HigherOrder(tt.kind)
			got, err := proxy.Call(method).Apply(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.run(got.(*Pipeline)); !stderrors.Is(err, errors.ErrBadMethodCall) {
				t.Errorf("got %v, want BAD_METHOD_CALL", err)
			}
		})
	}
}

func TestProxy_MapFirstOnNonReceiver(t *testing.T) {
	ctx := context.Background()
	proxy, _ := New([]any{42}).HigherOrder(KindMap)
	got, err := proxy.Call("Score").Apply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	v, ok, err := got.(*Pipeline).First(ctx)
	if !stderrors.Is(err, errors.ErrBadMethodCall) {
		t.Errorf("got %v %v %v, want BAD_METHOD_CALL", v, ok, err)
	}
}

func TestProxy_FilterStopsPullingAfterFailure(t *testing.T) {
	ctx := context.Background()
	endless, pulls := naturals()
	proxy, _ := New(endless).HigherOrder(KindFilter)
	got, err := proxy.Call("IsActive").Apply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := got.(*Pipeline).Take(1).All(ctx); !stderrors.Is(err, errors.ErrBadMethodCall) {
		t.Errorf("got %v, want BAD_METHOD_CALL", err)
	}
	if *pulls != 1 {
		t.Errorf("pulled %d elements, want 1", *pulls)
	}
}
