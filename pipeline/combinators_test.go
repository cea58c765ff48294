package pipeline

import (
	"context"
	stderrors "errors"
	"reflect"
	"slices"
	"testing"

	"github.com/apokryfos/Enumerable/errors"
	"github.com/apokryfos/Enumerable/selector"
	"github.com/apokryfos/Enumerable/sequence"
)

func TestTakeSkip_Partition(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		data := randomInts(seed, int(seed)*7, 50)
		for k := 0; k <= len(data)+1; k++ {
			head := valuesOf(t, New(data).Take(k))
			tail := valuesOf(t, New(data).Skip(k))
			if got := append(head, tail...); !reflect.DeepEqual(got, anys(data)) {
				t.Fatalf("seed %d, k %d: got %v, want %v", seed, k, got, data)
			}
		}
	}
}

func TestTake_ZeroDoesNotPull(t *testing.T) {
	pulled := false
	src := sequence.Func(func(context.Context) (sequence.Pair, bool, error) {
		pulled = true
		return sequence.Pair{Key: 0, Value: 1}, true, nil
	}, nil)
	if got := valuesOf(t, New(src).Take(0)); len(got) != 0 {
		t.Errorf("got %v, want nothing", got)
	}
	if pulled {
		t.Error("Take(0) pulled from the source")
	}
}

func TestSkip_KeepsKeys(t *testing.T) {
	want := []sequence.Pair{{Key: 2, Value: "c"}}
	if got := pairsOf(t, New([]string{"a", "b", "c"}).Skip(2)); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestChunk(t *testing.T) {
	ctx := context.Background()
	p := New([]int{1, 2, 3, 4, 5}).Chunk(2)
	m, err := p.ToArray(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 3 {
		t.Fatalf("got %d chunks, want 3", m.Len())
	}
	want := [][]sequence.Pair{
		{{Key: 0, Value: 1}, {Key: 1, Value: 2}},
		{{Key: 2, Value: 3}, {Key: 3, Value: 4}},
		{{Key: 4, Value: 5}},
	}
	for i, w := range want {
		v, _ := m.Get(i)
		chunk, ok := v.(*sequence.Map)
		if !ok {
			t.Fatalf("chunk %d: got %T, want *sequence.Map", i, v)
		}
		if got := chunk.Pairs(); !reflect.DeepEqual(got, w) {
			t.Errorf("chunk %d: got %v, want %v", i, got, w)
		}
	}
}

func TestChunk_GroupsAreReiterable(t *testing.T) {
	ctx := context.Background()
	m := mustAll(t, New([]int{1, 2, 3}).Chunk(3))
	v, _ := m.Get(0)
	group := v.(*Pipeline)
	for i := 0; i < 2; i++ {
		if n, err := group.Count(ctx); err != nil || n != 3 {
			t.Errorf("pass %d: got %d %v, want 3", i, n, err)
		}
	}
}

func TestChunk_InvalidSize(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := New([]int{1}).Chunk(n).All(context.Background())
		if !stderrors.Is(err, errors.ErrArithmetic) {
			t.Errorf("Chunk(%d): got %v, want ARITHMETIC_ERROR", n, err)
		}
	}
}

func TestFlattenChunk_Identity(t *testing.T) {
	for seed := uint64(1); seed <= 4; seed++ {
		data := randomInts(seed, 20+int(seed), 1000)
		for size := 1; size <= 6; size++ {
			got := valuesOf(t, New(data).Chunk(size).Flatten(1))
			if !reflect.DeepEqual(got, anys(data)) {
				t.Fatalf("seed %d, size %d: got %v, want %v", seed, size, got, data)
			}
		}
	}
}

func TestFlatten(t *testing.T) {
	nested := func() []any { return []any{1, []any{2, []any{3, []int{4}}}, "ab"} }
	tests := []struct {
		levels int
		want   []any
	}{
		{1, []any{1, 2, []any{3, []int{4}}, "ab"}},
		{2, []any{1, 2, 3, []int{4}, "ab"}},
		{0, []any{1, 2, 3, 4, "ab"}},
	}
	for _, tt := range tests {
		got := pairsOf(t, New(nested()).Flatten(tt.levels))
		for i, e := range got {
			if e.Key != i {
				t.Errorf("Flatten(%d): key %v at position %d", tt.levels, e.Key, i)
			}
		}
		if vals := valuesOf(t, New(nested()).Flatten(tt.levels)); !reflect.DeepEqual(vals, tt.want) {
			t.Errorf("Flatten(%d): got %v, want %v", tt.levels, vals, tt.want)
		}
	}
}

func TestFlattenWithKeys(t *testing.T) {
	p := New([]any{map[string]any{"a": 1}, map[string]any{"b": 2}}).FlattenWithKeys(1)
	want := []sequence.Pair{{Key: "a", Value: 1}, {Key: "b", Value: 2}}
	if got := pairsOf(t, p); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCollapse(t *testing.T) {
	got := valuesOf(t, New([]any{[]int{1, 2}, []any{[]int{3}}}).Collapse())
	if want := []any{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCombine(t *testing.T) {
	got := pairsOf(t, New([]string{"a", "b"}).Combine([]int{1}, false))
	want := []sequence.Pair{{Key: "a", Value: 1}, {Key: "b", Value: nil}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCombine_Strict(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		values  []int
		wantErr bool
	}{
		{"equal", []string{"a", "b"}, []int{1, 2}, false},
		{"more values", []string{"a"}, []int{1, 2}, true},
		{"more keys", []string{"a", "b"}, []int{1}, true},
		{"both empty", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.keys).Combine(tt.values, true).All(context.Background())
			if tt.wantErr != stderrors.Is(err, errors.ErrCombineSizeMismatch) {
				t.Errorf("got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCombine_NotIterable(t *testing.T) {
	_, err := New([]string{"a"}).Combine(5, false).All(context.Background())
	if !stderrors.Is(err, errors.ErrNotAnIterator) {
		t.Errorf("got %v, want NOT_AN_ITERATOR", err)
	}
}

func TestMerge(t *testing.T) {
	left := sequence.MapOf(sequence.NewPair(0, "a"), sequence.NewPair("k", "x"), sequence.NewPair(5, "b"))
	right := sequence.MapOf(sequence.NewPair(0, "c"), sequence.NewPair("k", "y"))
	got := pairsOf(t, New(left).Merge(right))
	want := []sequence.Pair{{Key: 0, Value: "a"}, {Key: "k", Value: "y"}, {Key: 1, Value: "b"}, {Key: 2, Value: "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPushPutPad(t *testing.T) {
	tests := []struct {
		name string
		p    *Pipeline
		want []sequence.Pair
	}{
		{"push", New([]int{1, 2}).Push(3), []sequence.Pair{{Key: 0, Value: 1}, {Key: 1, Value: 2}, {Key: 2, Value: 3}}},
		{"push empty", Make().Push("x"), []sequence.Pair{{Key: 0, Value: "x"}}},
		{"put", New([]int{1}).Put("k", 2), []sequence.Pair{{Key: 0, Value: 1}, {Key: "k", Value: 2}}},
		{"pad", New([]int{1}).Pad(3, 0), []sequence.Pair{{Key: 0, Value: 1}, {Key: 1, Value: 0}, {Key: 2, Value: 0}}},
		{"pad shorter", New([]int{1, 2}).Pad(1, 0), []sequence.Pair{{Key: 0, Value: 1}, {Key: 1, Value: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pairsOf(t, tt.p); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCrossJoin(t *testing.T) {
	got := valuesOf(t, New([]int{1, 2}).CrossJoin([]string{"a", "b"}))
	want := []any{
		[]any{1, "a"}, []any{1, "b"},
		[]any{2, "a"}, []any{2, "b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCrossJoin_Shapes(t *testing.T) {
	if got, want := valuesOf(t, New([]int{1, 2}).CrossJoin()), []any{[]any{1}, []any{2}}; !reflect.DeepEqual(got, want) {
		t.Errorf("no operands: got %v, want %v", got, want)
	}
	if got := valuesOf(t, New([]int{1, 2}).CrossJoin([]int{})); len(got) != 0 {
		t.Errorf("empty operand: got %v, want nothing", got)
	}
	got := valuesOf(t, New([]int{1}).CrossJoin([]int{2, 3}, []int{4, 5}))
	want := []any{[]any{1, 2, 4}, []any{1, 2, 5}, []any{1, 3, 4}, []any{1, 3, 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("two operands: got %v, want %v", got, want)
	}
}

func TestDiffIntersect(t *testing.T) {
	tests := []struct {
		name string
		p    *Pipeline
		want []sequence.Pair
	}{
		{"diff", New([]int{1, 2, 3, 4, 5}).Diff([]int{2, 4}), []sequence.Pair{{Key: 0, Value: 1}, {Key: 2, Value: 3}, {Key: 4, Value: 5}}},
		{"diff several", New([]int{1, 2, 3}).Diff([]int{1}, []int{3}), []sequence.Pair{{Key: 1, Value: 2}}},
		{"diff strict", New([]any{1, "1"}).Diff([]any{"1"}), []sequence.Pair{{Key: 0, Value: 1}}},
		{"diffKeys", New(map[string]any{"a": 1, "b": 2}).DiffKeys(map[string]any{"a": 9}), []sequence.Pair{{Key: "b", Value: 2}}},
		{"diffAssoc", New(map[string]any{"a": 1, "b": 2}).DiffAssoc(map[string]any{"a": 1, "b": 3}), []sequence.Pair{{Key: "b", Value: 2}}},
		{"intersect", New([]int{1, 2, 3, 4}).Intersect([]int{2, 3, 5}, []int{3, 2}), []sequence.Pair{{Key: 1, Value: 2}, {Key: 2, Value: 3}}},
		{"intersectByKeys", New(map[string]any{"a": 1, "b": 2}).IntersectByKeys(map[string]any{"b": 0}), []sequence.Pair{{Key: "b", Value: 2}}},
		{"intersectAssoc", New(map[string]any{"a": 1, "b": 2}).IntersectAssoc(map[string]any{"a": 1, "b": 3}), []sequence.Pair{{Key: "a", Value: 1}}},
		{"except", New([]int{1, 2, 3}).Except(0, 2), []sequence.Pair{{Key: 1, Value: 2}}},
		{"only", New(map[string]any{"a": 1, "b": 2}).Only("a"), []sequence.Pair{{Key: "a", Value: 1}}},
		{"forget", New(map[string]any{"a": 1, "b": 2}).Forget("b"), []sequence.Pair{{Key: "a", Value: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pairsOf(t, tt.p); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiffIntersect_Partition(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		data := randomInts(seed, 30, 20)
		other := randomInts(seed+100, 10, 20)
		diff := valuesOf(t, New(data).Diff(other))
		inter := valuesOf(t, New(data).Intersect(other))
		if len(diff)+len(inter) != len(data) {
			t.Fatalf("seed %d: %d + %d != %d", seed, len(diff), len(inter), len(data))
		}
		for _, v := range diff {
			if slices.Contains(other, v.(int)) {
				t.Errorf("seed %d: diff kept %v", seed, v)
			}
		}
		for _, v := range inter {
			if !slices.Contains(other, v.(int)) {
				t.Errorf("seed %d: intersect kept %v", seed, v)
			}
		}
	}
}

func TestFilterReject(t *testing.T) {
	data := []any{0, 1, "", nil, "a"}
	want := []sequence.Pair{{Key: 1, Value: 1}, {Key: 4, Value: "a"}}
	if got := pairsOf(t, New(data).Filter(nil)); !reflect.DeepEqual(got, want) {
		t.Errorf("Filter: got %v, want %v", got, want)
	}
	want = []sequence.Pair{{Key: 0, Value: 0}, {Key: 2, Value: ""}, {Key: 3, Value: nil}}
	if got := pairsOf(t, New(data).Reject(nil)); !reflect.DeepEqual(got, want) {
		t.Errorf("Reject: got %v, want %v", got, want)
	}
	even := func(v any) bool { return v.(int)%2 == 0 }
	if got, want := valuesOf(t, New([]int{1, 2, 3, 4}).Filter(even)), []any{2, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("Filter(even): got %v, want %v", got, want)
	}
}

func TestFilter_RandomRecords(t *testing.T) {
	records := randomRecords(7, 40)
	got := valuesOf(t, New(records).Where("score", ">=", 50).Pluck("id"))
	var want []any
	for _, r := range records {
		if r["score"].(int) >= 50 {
			want = append(want, r["id"])
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWhere(t *testing.T) {
	rows := []map[string]any{
		{"name": "ann", "age": 31},
		{"name": "bob", "age": "25"},
		{"name": "cyd", "age": 40},
	}
	tests := []struct {
		name string
		p    *Pipeline
		want []any
	}{
		{"loose", New(rows).Where("age", 25), []any{rows[1]}},
		{"strict", New(rows).WhereStrict("age", 25), nil},
		{"operator", New(rows).Where("age", ">", 30), []any{rows[0], rows[2]}},
		{"in", New(rows).WhereIn("age", []any{25, 40}), []any{rows[1], rows[2]}},
		{"in strict", New(rows).WhereInStrict("age", []any{25, 40}), []any{rows[2]}},
		{"not in", New(rows).WhereNotIn("age", []any{25, 40}), []any{rows[0]}},
		{"not in strict", New(rows).WhereNotInStrict("age", []any{25, 40}), []any{rows[0], rows[1]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := valuesOf(t, tt.p)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

type shape interface{ Area() float64 }

type square struct{ side float64 }

func (s square) Area() float64 { return s.side * s.side }

func TestWhereInstanceOf(t *testing.T) {
	data := []any{square{2}, "x", 3, square{1}}
	got := valuesOf(t, New(data).WhereInstanceOf(reflect.TypeFor[shape]()))
	if want := []any{square{2}, square{1}}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	got = valuesOf(t, New(data).WhereInstanceOf(reflect.TypeFor[int]()))
	if want := []any{3}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMapping(t *testing.T) {
	double := func(v any) any { return v.(int) * 2 }
	src := func() *Pipeline { return New(map[string]any{"a": 1, "b": 2}) }
	tests := []struct {
		name string
		p    *Pipeline
		want []sequence.Pair
	}{
		{"map", src().Map(double), []sequence.Pair{{Key: 0, Value: 2}, {Key: 1, Value: 4}}},
		{"mapWithKeys", src().MapWithKeys(double), []sequence.Pair{{Key: "a", Value: 2}, {Key: "b", Value: 4}}},
		{"map key", src().Map(selector.Key()), []sequence.Pair{{Key: 0, Value: "a"}, {Key: 1, Value: "b"}}},
		{"flip", src().Flip(), []sequence.Pair{{Key: 1, Value: "a"}, {Key: 2, Value: "b"}}},
		{"keys", src().Keys(), []sequence.Pair{{Key: 0, Value: "a"}, {Key: 1, Value: "b"}}},
		{"values", src().Values(), []sequence.Pair{{Key: 0, Value: 1}, {Key: 1, Value: 2}}},
		{"keyBy", src().KeyBy(double), []sequence.Pair{{Key: 2, Value: 1}, {Key: 4, Value: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pairsOf(t, tt.p); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

type point struct{ X, Y int }

func TestMapSpreadAndInto(t *testing.T) {
	sum := func(args ...any) any { return args[0].(int) + args[1].(int) }
	if got, want := valuesOf(t, New([][]int{{1, 2}, {3, 4}}).MapSpread(sum)), []any{3, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("MapSpread: got %v, want %v", got, want)
	}

	ctor := func(args ...any) any { return point{args[0].(int), args[1].(int)} }
	coords := func(v any) any { return []any{v, v.(int) * 10} }
	if got, want := valuesOf(t, New([]int{1, 2}).MapInto(ctor, coords)), []any{point{1, 10}, point{2, 20}}; !reflect.DeepEqual(got, want) {
		t.Errorf("MapInto: got %v, want %v", got, want)
	}
}

func TestFlatMap(t *testing.T) {
	got := valuesOf(t, New([]int{1, 2}).FlatMap(func(v any) any { return []any{v, v} }))
	if want := []any{1, 1, 2, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCountValues(t *testing.T) {
	got := pairsOf(t, New([]string{"a", "b", "a", "c", "a"}).CountValues(nil))
	want := []sequence.Pair{{Key: "a", Value: 3}, {Key: "b", Value: 1}, {Key: "c", Value: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNth(t *testing.T) {
	got := pairsOf(t, New([]int{0, 1, 2, 3, 4, 5, 6}).Nth(3))
	want := []sequence.Pair{{Key: 3, Value: 3}, {Key: 6, Value: 6}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := New([]int{1}).Nth(0).All(context.Background()); !stderrors.Is(err, errors.ErrArithmetic) {
		t.Errorf("Nth(0): got %v, want ARITHMETIC_ERROR", err)
	}
}

func TestPrepend(t *testing.T) {
	want := []sequence.Pair{{Key: 0, Value: 0}, {Key: 1, Value: 1}, {Key: 2, Value: 2}, {Key: 3, Value: 3}}
	if got := pairsOf(t, New([]int{2, 3}).Prepend(0, 1)); !reflect.DeepEqual(got, want) {
		t.Errorf("positional: got %v, want %v", got, want)
	}
	want = []sequence.Pair{{Key: 0, Value: "x"}, {Key: "a", Value: 1}}
	if got := pairsOf(t, New(map[string]any{"a": 1}).Prepend("x")); !reflect.DeepEqual(got, want) {
		t.Errorf("keyed: got %v, want %v", got, want)
	}
}

func TestSlice(t *testing.T) {
	want := []sequence.Pair{{Key: 0, Value: 2}, {Key: 1, Value: 3}}
	if got := pairsOf(t, New([]int{1, 2, 3, 4, 5}).Slice(1, 2)); !reflect.DeepEqual(got, want) {
		t.Errorf("positional: got %v, want %v", got, want)
	}
	want = []sequence.Pair{{Key: "b", Value: 2}}
	if got := pairsOf(t, New(map[string]any{"a": 1, "b": 2, "c": 3}).Slice(1, 1)); !reflect.DeepEqual(got, want) {
		t.Errorf("keyed: got %v, want %v", got, want)
	}
	if got, want := valuesOf(t, New([]int{1, 2, 3}).Slice(1, -1)), []any{2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("rest: got %v, want %v", got, want)
	}
}

func TestSplice(t *testing.T) {
	want := []sequence.Pair{{Key: 0, Value: 1}, {Key: 1, Value: 9}, {Key: 2, Value: 8}, {Key: 3, Value: 4}, {Key: 4, Value: 5}}
	if got := pairsOf(t, New([]int{1, 2, 3, 4, 5}).Splice(1, 2, []int{9, 8})); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := valuesOf(t, New([]int{1, 2, 3}).Splice(1, 1, "x")), []any{1, "x", 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("scalar: got %v, want %v", got, want)
	}
	if got, want := valuesOf(t, New([]int{1, 2, 3}).Splice(0, 2, nil)), []any{3}; !reflect.DeepEqual(got, want) {
		t.Errorf("nil: got %v, want %v", got, want)
	}
}

func TestUnion(t *testing.T) {
	got := pairsOf(t, New(map[string]any{"a": 1, "b": 2}).Union(map[string]any{"b": 3, "c": 4}))
	want := []sequence.Pair{{Key: "a", Value: 1}, {Key: "b", Value: 2}, {Key: "c", Value: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestZip(t *testing.T) {
	left := map[string]any{"a": 1, "b": 2}
	_, err := New(left).Zip(map[string]any{"a": "x"}, false).All(context.Background())
	if !stderrors.Is(err, errors.ErrMismatch) {
		t.Errorf("got %v, want MISMATCH", err)
	}

	got := pairsOf(t, New(left).Zip(map[string]any{"a": "x"}, true))
	want := []sequence.Pair{{Key: "a", Value: []any{1, "x"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got = pairsOf(t, New([]int{1, 2}).Zip([]string{"p", "q"}, false))
	want = []sequence.Pair{{Key: 0, Value: []any{1, "p"}}, {Key: 1, Value: []any{2, "q"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTapWhenUnless(t *testing.T) {
	var seen []string
	p := New([]int{1}).
		Tap(func(*Pipeline) { seen = append(seen, "tap") }).
		When(true, func(*Pipeline) { seen = append(seen, "when") }).
		When(false, func(*Pipeline) { seen = append(seen, "never") }).
		Unless(false, func(*Pipeline) { seen = append(seen, "unless") })
	if want := []string{"tap", "when", "unless"}; !reflect.DeepEqual(seen, want) {
		t.Errorf("got %v, want %v", seen, want)
	}
	if got := valuesOf(t, p); !reflect.DeepEqual(got, []any{1}) {
		t.Errorf("got %v, want [1]", got)
	}
}

func TestEndlessSource_BoundedPulls(t *testing.T) {
	tests := []struct {
		name      string
		build     func(p *Pipeline) *Pipeline
		want      []sequence.Pair
		wantPulls int
	}{
		{"skip take", func(p *Pipeline) *Pipeline { return p.Skip(3).Take(2) },
			[]sequence.Pair{{Key: 3, Value: 3}, {Key: 4, Value: 4}}, 5},
		{"slice", func(p *Pipeline) *Pipeline { return p.Slice(2, 3) },
			[]sequence.Pair{{Key: 0, Value: 2}, {Key: 1, Value: 3}, {Key: 2, Value: 4}}, 5},
		{"splice take", func(p *Pipeline) *Pipeline { return p.Splice(2, 3, []any{"x"}).Take(5) },
			[]sequence.Pair{{Key: 0, Value: 0}, {Key: 1, Value: 1}, {Key: 2, Value: "x"}, {Key: 3, Value: 5}, {Key: 4, Value: 6}}, 7},
		{"prepend take", func(p *Pipeline) *Pipeline { return p.Prepend("a", "b").Take(4) },
			[]sequence.Pair{{Key: 0, Value: "a"}, {Key: 1, Value: "b"}, {Key: 2, Value: 0}, {Key: 3, Value: 1}}, 2},
		{"nth take", func(p *Pipeline) *Pipeline { return p.Nth(3).Take(2) },
			[]sequence.Pair{{Key: 3, Value: 3}, {Key: 6, Value: 6}}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, pulls := naturals()
			if got := pairsOf(t, tt.build(New(src))); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if *pulls != tt.wantPulls {
				t.Errorf("pulled %d elements, want %d", *pulls, tt.wantPulls)
			}
		})
	}
}

func TestEndlessSource_ChunkTake(t *testing.T) {
	src, pulls := naturals()
	m, err := New(src).Chunk(2).Take(2).ToArray(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Fatalf("got %d chunks, want 2", m.Len())
	}
	second, _ := m.Get(1)
	if got := second.(*sequence.Map).Pairs(); !reflect.DeepEqual(got, []sequence.Pair{{Key: 2, Value: 2}, {Key: 3, Value: 3}}) {
		t.Errorf("got second chunk %v", got)
	}
	if *pulls != 4 {
		t.Errorf("pulled %d elements, want 4", *pulls)
	}
}

func TestEndlessSource_Every(t *testing.T) {
	src, pulls := naturals()
	ok, err := New(src).Every(context.Background(), func(v any) bool { return v.(int) < 5 })
	if err != nil || ok {
		t.Fatalf("got %v %v, want false", ok, err)
	}
	if *pulls != 6 {
		t.Errorf("pulled %d elements, want 6", *pulls)
	}
}

// holder is comparable by type while its field may hold a slice.
type holder struct{ v any }

func TestSetOps_UncomparableContents(t *testing.T) {
	items := func() []any { return []any{holder{[]int{1}}, 2, holder{[]int{1}}} }
	other := []any{holder{[]int{1}}}
	match := []sequence.Pair{{Key: 0, Value: holder{[]int{1}}}, {Key: 2, Value: holder{[]int{1}}}}

	if got, want := pairsOf(t, New(items()).Diff(other)), []sequence.Pair{{Key: 1, Value: 2}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Diff: got %v, want %v", got, want)
	}
	if got := pairsOf(t, New(items()).Intersect(other)); !reflect.DeepEqual(got, match) {
		t.Errorf("Intersect: got %v, want %v", got, match)
	}
	if got := pairsOf(t, New(items()).WhereInStrict(nil, other)); !reflect.DeepEqual(got, match) {
		t.Errorf("WhereInStrict: got %v, want %v", got, match)
	}
	if got := valuesOf(t, New(items()).CountValues(nil)); !reflect.DeepEqual(got, []any{2, 1}) {
		t.Errorf("CountValues: got %v, want [2 1]", got)
	}
	mode, err := New(items()).Mode(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(mode, holder{[]int{1}}) {
		t.Errorf("Mode: got %v", mode)
	}
}
