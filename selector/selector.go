package selector

import (
	"reflect"
)

// Func extracts a result from an element.
type Func func(value, key any) any

// Predicate tests an element.
type Predicate func(value, key any) bool

// Getter is implemented by values that expose named properties.
type Getter interface {
	Get(name string) (any, bool)
}

// Receiver is implemented by elements that accept dynamically named
// method calls from a higher-order proxy.
type Receiver interface {
	Invoke(method string, args ...any) (any, error)
}

// Identity returns the value itself.
func Identity() Func {
	return func(value, _ any) any { return value }
}

// Key returns the element key.
func Key() Func {
	return func(_, key any) any { return key }
}

// Constant ignores the element and returns v.
func Constant(v any) Func {
	return func(_, _ any) any { return v }
}

// Of resolves s into a Func.
//
//   - nil resolves to Identity.
//   - Funcs, Predicates and func literals of the shapes func(v, k any) any,
//     func(v any) any, func(v, k any) bool and func(v any) bool are used as
//     is. Other functions taking one or two arguments and returning one
//     value are called through reflection.
//   - A string or int resolves to a lookup on each value: a Getter, a
//     zero-argument method, a struct field, a map key or a slice index.
//     When the value has no such member the scalar itself is returned.
//   - Anything else is a constant.
func Of(s any) Func {
	switch f := s.(type) {
	case nil:
		return Identity()
	case Func:
		if f == nil {
			return Identity()
		}
		return f
	case func(value, key any) any:
		return f
	case func(value any) any:
		return func(v, _ any) any { return f(v) }
	case Predicate:
		return func(v, k any) any { return f(v, k) }
	case func(value, key any) bool:
		return func(v, k any) any { return f(v, k) }
	case func(value any) bool:
		return func(v, _ any) any { return f(v) }
	case string, int:
		return func(v, _ any) any {
			if found, ok := Lookup(v, f); ok {
				return found
			}
			return f
		}
	}
	if fn, ok := reflectFunc(s); ok {
		return fn
	}
	return Constant(s)
}

// Truth resolves s like Of and reports the truthiness of its result.
func Truth(s any) Predicate {
	sel := Of(s)
	return func(v, k any) bool { return Truthy(sel(v, k)) }
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(v, k any) bool { return !p(v, k) }
}

func reflectFunc(s any) (Func, bool) {
	rv := reflect.ValueOf(s)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}
	t := rv.Type()
	if t.IsVariadic() || t.NumOut() != 1 || t.NumIn() < 1 || t.NumIn() > 2 {
		return nil, false
	}
	return func(v, k any) any {
		args := []reflect.Value{argValue(t.In(0), v)}
		if t.NumIn() == 2 {
			args = append(args, argValue(t.In(1), k))
		}
		return rv.Call(args)[0].Interface()
	}, true
}

func argValue(t reflect.Type, v any) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv
	}
	if rv.Type().ConvertibleTo(t) && rv.Kind() != reflect.String {
		return rv.Convert(t)
	}
	return reflect.Zero(t)
}
