package sequence

import (
	"context"
	"iter"
	"reflect"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Of returns a Sequence over v, or false when v cannot be iterated.
//
// Slices and arrays are keyed by position. Go maps are iterated in
// CompareKeys order of their normalized keys. *Map, Iterable, Sequence,
// Iterator[T] and iter.Seq/iter.Seq2 of any element type are accepted as
// well. Strings are not iterable.
func Of(v any) (Sequence, bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case *Map:
		return s.Iterate(), true
	case Iterable:
		return s.Iterate(), true
	case Sequence:
		return s, true
	case []Pair:
		return FromPairs(s...), true
	case []any:
		return FromValues(s...), true
	case iter.Seq2[any, any]:
		return FromSeq2(s), true
	case iter.Seq[any]:
		return FromSeq(s), true
	case map[string]any:
		return fromMapValue(reflect.ValueOf(s)), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return fromIndexable(rv), true
	case reflect.Map:
		return fromMapValue(rv), true
	case reflect.Func:
		return fromFunc(rv)
	}
	return fromIteratorMethod(rv)
}

// IsIterable reports whether Of accepts v.
func IsIterable(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case *Map, Iterable, Sequence, []Pair, []any, iter.Seq2[any, any], iter.Seq[any], map[string]any:
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	case reflect.Func:
		_, ok := rangeFuncArity(rv.Type())
		return ok
	}
	return isIteratorType(rv.Type())
}

func fromIndexable(rv reflect.Value) Sequence {
	i := 0
	return Func(func(_ context.Context) (Pair, bool, error) {
		if i >= rv.Len() {
			return Pair{}, false, nil
		}
		p := Pair{Key: i, Value: rv.Index(i).Interface()}
		i++
		return p, true, nil
	}, nil)
}

func fromMapValue(rv reflect.Value) Sequence {
	byKey := make(map[any]reflect.Value, rv.Len())
	keys := make([]any, 0, rv.Len())
	entries := rv.MapRange()
	for entries.Next() {
		k := NormalizeKey(entries.Key().Interface())
		if _, dup := byKey[k]; !dup {
			keys = append(keys, k)
		}
		byKey[k] = entries.Value()
	}
	SortKeys(keys)
	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{Key: k, Value: byKey[k].Interface()}
	}
	return FromPairs(pairs...)
}

// rangeFuncArity returns 1 or 2 for func(yield func(V) bool) and
// func(yield func(K, V) bool) shapes.
func rangeFuncArity(t reflect.Type) (int, bool) {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return 0, false
	}
	yt := t.In(0)
	if yt.Kind() != reflect.Func || yt.NumOut() != 1 || yt.Out(0).Kind() != reflect.Bool {
		return 0, false
	}
	if n := yt.NumIn(); n == 1 || n == 2 {
		return n, true
	}
	return 0, false
}

func fromFunc(rv reflect.Value) (Sequence, bool) {
	arity, ok := rangeFuncArity(rv.Type())
	if !ok || rv.IsNil() {
		return nil, false
	}
	yt := rv.Type().In(0)
	seq := func(yield func(any, any) bool) {
		index := 0
		fn := reflect.MakeFunc(yt, func(args []reflect.Value) []reflect.Value {
			var more bool
			if arity == 1 {
				more = yield(index, args[0].Interface())
				index++
			} else {
				more = yield(args[0].Interface(), args[1].Interface())
			}
			return []reflect.Value{reflect.ValueOf(more).Convert(yt.Out(0))}
		})
		rv.Call([]reflect.Value{fn})
	}
	return FromSeq2(iter.Seq2[any, any](seq)), true
}

func isIteratorType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	next, ok := t.MethodByName("Next")
	if !ok {
		return false
	}
	closer, ok := t.MethodByName("Close")
	if !ok {
		return false
	}
	mt := next.Type
	offset := 0
	if t.Kind() != reflect.Interface {
		offset = 1
	}
	ct := closer.Type
	if ct.NumIn() != offset || ct.NumOut() != 1 || ct.Out(0) != errorType {
		return false
	}
	return mt.NumIn() == 1+offset && mt.In(offset) == contextType &&
		mt.NumOut() == 3 && mt.Out(1).Kind() == reflect.Bool && mt.Out(2) == errorType
}

// fromIteratorMethod adapts any Iterator[T] to a positional Sequence.
func fromIteratorMethod(rv reflect.Value) (Sequence, bool) {
	if !rv.IsValid() || !isIteratorType(rv.Type()) {
		return nil, false
	}
	next := rv.MethodByName("Next")
	closeFn := rv.MethodByName("Close")
	it := Func(func(ctx context.Context) (any, bool, error) {
		out := next.Call([]reflect.Value{reflect.ValueOf(&ctx).Elem()})
		if err, _ := out[2].Interface().(error); err != nil {
			return nil, false, err
		}
		if !out[1].Bool() {
			return nil, false, nil
		}
		return out[0].Interface(), true, nil
	}, func() error {
		err, _ := closeFn.Call(nil)[0].Interface().(error)
		return err
	})
	return Positional(it), true
}
