package stats

import (
	"reflect"

	"github.com/apokryfos/Enumerable/errors"
)

// Count is a value and how many times it was seen.
type Count struct {
	Value any
	N     int
}

// Frequency counts values in order of first occurrence. Comparable values
// are matched by ==, others by deep equality.
type Frequency struct {
	counts []Count
	index  map[any]int
}

// NewFrequency returns an empty Frequency.
func NewFrequency() *Frequency {
	return &Frequency{index: make(map[any]int)}
}

// Add records v and returns its count so far.
func (f *Frequency) Add(v any) int {
	i := f.find(v)
	if i < 0 {
		i = len(f.counts)
		f.counts = append(f.counts, Count{Value: v})
		if hashable(v) {
			f.index[v] = i
		}
	}
	f.counts[i].N++
	return f.counts[i].N
}

func (f *Frequency) find(v any) int {
	if hashable(v) {
		if i, ok := f.index[v]; ok {
			return i
		}
		return -1
	}
	for i, c := range f.counts {
		if !hashable(c.Value) && reflect.DeepEqual(c.Value, v) {
			return i
		}
	}
	return -1
}

// hashable reports whether v can key a map. The dynamic contents of
// interface fields count, not just the static type.
func hashable(v any) bool {
	return v == nil || reflect.ValueOf(v).Comparable()
}

// Counts returns the counts in order of first occurrence.
func (f *Frequency) Counts() []Count {
	out := make([]Count, len(f.counts))
	copy(out, f.counts)
	return out
}

// Len returns the number of distinct values.
func (f *Frequency) Len() int { return len(f.counts) }

// Mode returns the most frequent value. On a tie the value that occurred
// first wins.
func (f *Frequency) Mode() (any, error) {
	if len(f.counts) == 0 {
		return nil, errors.EmptySequence("mode")
	}
	best := f.counts[0]
	for _, c := range f.counts[1:] {
		if c.N > best.N {
			best = c
		}
	}
	return best.Value, nil
}
