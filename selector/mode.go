package selector

import "github.com/apokryfos/Enumerable/sequence"

// CombineMode selects what diff and intersect compare.
type CombineMode uint8

const (
	// OnlyValue compares values.
	OnlyValue CombineMode = 1 << iota
	// OnlyKey compares keys.
	OnlyKey
	// Both requires key and value to match.
	Both = OnlyValue | OnlyKey
)

func (m CombineMode) String() string {
	switch m {
	case OnlyValue:
		return "value"
	case OnlyKey:
		return "key"
	case Both:
		return "both"
	}
	return "unknown"
}

// Matches reports whether a and b are the same element under m, comparing
// with StrictEqual.
func (m CombineMode) Matches(a, b sequence.Pair) bool {
	if m&OnlyKey != 0 && !StrictEqual(a.Key, b.Key) {
		return false
	}
	if m&OnlyValue != 0 && !StrictEqual(a.Value, b.Value) {
		return false
	}
	return m != 0
}

// MatchesAny reports whether p matches any element of set.
func (m CombineMode) MatchesAny(p sequence.Pair, set []sequence.Pair) bool {
	for _, q := range set {
		if m.Matches(p, q) {
			return true
		}
	}
	return false
}
