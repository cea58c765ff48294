package selector

import (
	"reflect"
	"slices"
)

// Operators accepted by Where. Anything else falls back to "==".
const (
	OpEqual          = "=="
	OpIdentical      = "==="
	OpNotEqual       = "!="
	OpNotIdentical   = "!=="
	OpLess           = "<"
	OpGreater        = ">"
	OpLessOrEqual    = "<="
	OpGreaterOrEqual = ">="
)

var operators = map[string]bool{
	OpEqual: true, OpIdentical: true, OpNotEqual: true, OpNotIdentical: true,
	OpLess: true, OpGreater: true, OpLessOrEqual: true, OpGreaterOrEqual: true,
}

// IsOperator reports whether op is in the whitelist.
func IsOperator(op string) bool { return operators[op] }

// Where builds a predicate from (selector[, operator], compareValue).
//
// With no arguments it tests the truthiness of the value, with one the
// truthiness of the selected result. Two arguments compare the selected
// result to the second loosely. With three the second is the operator;
// unknown operators compare loosely. The compare value is resolved with Of,
// so it may itself be a selector.
func Where(args ...any) Predicate {
	return where(false, args)
}

// WhereStrict is Where with "==" promoted to "===" and "!=" to "!==".
func WhereStrict(args ...any) Predicate {
	return where(true, args)
}

func where(strict bool, args []any) Predicate {
	switch len(args) {
	case 0:
		return Truth(nil)
	case 1:
		return Truth(args[0])
	}
	lhs := Of(args[0])
	op := OpEqual
	rhs := Of(args[1])
	if len(args) > 2 {
		if s, ok := args[1].(string); ok && IsOperator(s) {
			op = s
		}
		rhs = Of(args[2])
	}
	if strict {
		switch op {
		case OpEqual:
			op = OpIdentical
		case OpNotEqual:
			op = OpNotIdentical
		}
	}
	return func(v, k any) bool {
		return Apply(lhs(v, k), op, rhs(v, k))
	}
}

// Apply evaluates "a op b". Unknown operators compare loosely.
func Apply(a any, op string, b any) bool {
	switch op {
	case OpIdentical:
		return StrictEqual(a, b)
	case OpNotEqual:
		return !LooseEqual(a, b)
	case OpNotIdentical:
		return !StrictEqual(a, b)
	case OpLess, OpGreater, OpLessOrEqual, OpGreaterOrEqual:
		c, ok := Compare(a, b)
		if !ok {
			return false
		}
		switch op {
		case OpLess:
			return c < 0
		case OpGreater:
			return c > 0
		case OpLessOrEqual:
			return c <= 0
		default:
			return c >= 0
		}
	default:
		return LooseEqual(a, b)
	}
}

// In tests whether the selected result is one of values.
func In(s any, values []any, strict bool) Predicate {
	sel := Of(s)
	eq := LooseEqual
	if strict {
		eq = StrictEqual
	}
	return func(v, k any) bool {
		got := sel(v, k)
		return slices.ContainsFunc(values, func(candidate any) bool {
			return eq(got, candidate)
		})
	}
}

// InstanceOf tests whether values have dynamic type t or, when t is an
// interface type, implement it.
func InstanceOf(t reflect.Type) Predicate {
	return func(v, _ any) bool {
		if v == nil || t == nil {
			return false
		}
		vt := reflect.TypeOf(v)
		if vt == t {
			return true
		}
		return t.Kind() == reflect.Interface && vt.Implements(t)
	}
}
