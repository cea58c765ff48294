package sequence

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spf13/cast"
)

// NormalizeKey converts k to the form used for map keys: an int or a string.
// Strings holding a canonical decimal integer become ints, bools and numbers
// truncate to int, nil becomes the empty string and anything else is
// formatted as a string.
func NormalizeKey(k any) any {
	switch v := k.(type) {
	case int:
		return v
	case string:
		if n, ok := canonicalInt(v); ok {
			return n
		}
		return v
	case nil:
		return ""
	case bool, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return cast.ToInt(v)
	case fmt.Stringer:
		return NormalizeKey(v.String())
	}
	if s, err := cast.ToStringE(k); err == nil {
		return NormalizeKey(s)
	}
	return fmt.Sprint(k)
}

// IsIntKey reports whether a normalized key is an integer key.
func IsIntKey(k any) bool {
	_, ok := k.(int)
	return ok
}

func canonicalInt(s string) (int, bool) {
	if s == "" || len(s) > 19 {
		return 0, false
	}
	if s[0] == '0' && len(s) > 1 {
		return 0, false
	}
	for i, c := range s {
		if c == '-' && i == 0 && len(s) > 1 && s[1] != '0' {
			continue
		}
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := cast.ToIntE(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CompareKeys orders normalized keys: ints ascending before strings ascending.
func CompareKeys(a, b any) int {
	ai, aInt := a.(int)
	bi, bInt := b.(int)
	switch {
	case aInt && bInt:
		return cmp.Compare(ai, bi)
	case aInt:
		return -1
	case bInt:
		return 1
	}
	return cmp.Compare(cast.ToString(a), cast.ToString(b))
}

// SortKeys sorts normalized keys in place with CompareKeys.
func SortKeys(keys []any) {
	slices.SortStableFunc(keys, CompareKeys)
}
