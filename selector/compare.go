package selector

import (
	"cmp"
	"reflect"
	"strings"

	"github.com/apokryfos/Enumerable/sequence"
	"github.com/spf13/cast"
)

// Truthy reports whether v counts as true: nil, false, zero numbers, "",
// "0" and empty collections are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	case *sequence.Map:
		return t.Len() > 0
	}
	if f, ok := number(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// number returns the numeric value of ints, uints and floats.
func number(v any) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return cast.ToFloat64(v), true
	}
	return 0, false
}

// Numeric returns the numeric value of numbers and numeric strings.
func Numeric(v any) (float64, bool) {
	if f, ok := number(v); ok {
		return f, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, false
	}
	return f, true
}

// LooseEqual compares two values with type juggling.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return true
		}
		other := a
		if other == nil {
			other = b
		}
		if s, ok := other.(string); ok {
			return s == ""
		}
		return !Truthy(other)
	}
	if _, ok := a.(bool); ok {
		return Truthy(a) == Truthy(b)
	}
	if _, ok := b.(bool); ok {
		return Truthy(a) == Truthy(b)
	}
	fa, aNum := Numeric(a)
	fb, bNum := Numeric(b)
	if aNum && bNum {
		return fa == fb
	}
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr || bStr {
		if aStr && bStr {
			return sa == sb
		}
		if aNum || bNum {
			return false
		}
	}
	return deepEqual(a, b, LooseEqual)
}

// StrictEqual reports whether a and b have the same dynamic type and value.
// Pointers, maps, channels and funcs compare by identity.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	// Structs and arrays of a comparable type may still hold slices or maps
	// in interface fields, which == panics on.
	if reflect.ValueOf(a).Comparable() && reflect.ValueOf(b).Comparable() {
		return a == b
	}
	return deepEqual(a, b, StrictEqual)
}

func deepEqual(a, b any, elem func(x, y any) bool) bool {
	ma, aMap := a.(*sequence.Map)
	mb, bMap := b.(*sequence.Map)
	if aMap && bMap {
		if ma.Len() != mb.Len() {
			return false
		}
		pa, pb := ma.Pairs(), mb.Pairs()
		for i := range pa {
			if pa[i].Key != pb[i].Key || !elem(pa[i].Value, pb[i].Value) {
				return false
			}
		}
		return true
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	isList := func(k reflect.Kind) bool { return k == reflect.Slice || k == reflect.Array }
	if isList(ra.Kind()) && isList(rb.Kind()) {
		if ra.Len() != rb.Len() {
			return false
		}
		for i := 0; i < ra.Len(); i++ {
			if !elem(ra.Index(i).Interface(), rb.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders a and b loosely. ok is false when they are not ordered:
// only numbers, numeric strings, strings, bools and nil are.
func Compare(a, b any) (result int, ok bool) {
	if _, isBool := a.(bool); isBool || isBoolValue(b) {
		return cmp.Compare(boolInt(Truthy(a)), boolInt(Truthy(b))), true
	}
	if a == nil {
		a = zeroLike(b)
	}
	if b == nil {
		b = zeroLike(a)
	}
	fa, aNum := Numeric(a)
	fb, bNum := Numeric(b)
	if aNum && bNum {
		return cmp.Compare(fa, fb), true
	}
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(sa, sb), true
	}
	if aStr && bNum {
		return strings.Compare(sa, cast.ToString(b)), true
	}
	if bStr && aNum {
		return strings.Compare(cast.ToString(a), sb), true
	}
	return 0, false
}

func isBoolValue(v any) bool {
	_, ok := v.(bool)
	return ok
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func zeroLike(v any) any {
	if _, ok := v.(string); ok {
		return ""
	}
	return 0
}
