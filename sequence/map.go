package sequence

import (
	"context"
	"iter"
)

// Map is an ordered key/value snapshot. Keys are normalized with
// NormalizeKey; setting an existing key replaces its value in place.
type Map struct {
	entries []Pair
	index   map[any]int
	nextInt int
	// holes counts deleted entries still in entries.
	holes int
}

// tombstone replaces the key of a deleted entry until the next compaction.
type tombstone struct{}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{index: make(map[any]int)}
}

// MapOf builds a Map from pairs. Later pairs win on key collision.
func MapOf(pairs ...Pair) *Map {
	m := NewMap()
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// ListOf builds a Map keyed 0, 1, 2... from values.
func ListOf(values ...any) *Map {
	m := NewMap()
	for _, v := range values {
		m.Append(v)
	}
	return m
}

// Set stores value under key.
func (m *Map) Set(key, value any) {
	m.lazyInit()
	key = NormalizeKey(key)
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Pair{Key: key, Value: value})
	if n, ok := key.(int); ok && n >= m.nextInt {
		m.nextInt = n + 1
	}
}

// Append stores value under the next integer key and returns that key.
func (m *Map) Append(value any) int {
	k := m.nextInt
	m.Set(k, value)
	return k
}

// NextIntKey returns the key Append would use.
func (m *Map) NextIntKey() int { return m.nextInt }

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	if m == nil || m.index == nil {
		return nil, false
	}
	i, ok := m.index[NormalizeKey(key)]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Has reports whether key is present.
func (m *Map) Has(key any) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key and reports whether it was present. Deleted entries
// are compacted away in batches, so deleting n keys costs O(n) overall.
func (m *Map) Delete(key any) bool {
	if m == nil || m.index == nil {
		return false
	}
	key = NormalizeKey(key)
	i, ok := m.index[key]
	if !ok {
		return false
	}
	delete(m.index, key)
	m.entries[i] = Pair{Key: tombstone{}}
	m.holes++
	if m.holes*2 > len(m.entries) {
		m.compact()
	}
	return true
}

// compact drops deleted entries and reindexes the rest.
func (m *Map) compact() {
	live := m.entries[:0]
	for _, p := range m.entries {
		if _, dead := p.Key.(tombstone); dead {
			continue
		}
		m.index[p.Key] = len(live)
		live = append(live, p)
	}
	clear(m.entries[len(live):])
	m.entries = live
	m.holes = 0
}

// live returns the entries without deleted ones.
func (m *Map) live() []Pair {
	if m.holes > 0 {
		m.compact()
	}
	return m.entries
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries) - m.holes
}

// Keys returns the keys in order.
func (m *Map) Keys() []any {
	keys := make([]any, 0, m.Len())
	for _, p := range m.Pairs() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Values returns the values in order.
func (m *Map) Values() []any {
	values := make([]any, 0, m.Len())
	for _, p := range m.Pairs() {
		values = append(values, p.Value)
	}
	return values
}

// Pairs returns a copy of the entries in order.
func (m *Map) Pairs() []Pair {
	if m == nil {
		return nil
	}
	live := m.live()
	out := make([]Pair, len(live))
	copy(out, live)
	return out
}

// All returns a range-over-func iterator over the entries.
func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, p := range m.Pairs() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Iterate returns a Sequence over a copy of the current entries. The Map
// itself stays usable, so a Map can be iterated any number of times.
func (m *Map) Iterate() Sequence {
	return FromPairs(m.Pairs()...)
}

// IsList reports whether the keys are exactly 0..Len()-1 in order.
func (m *Map) IsList() bool {
	for i, p := range m.Pairs() {
		if k, ok := p.Key.(int); !ok || k != i {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy.
func (m *Map) Clone() *Map {
	return MapOf(m.Pairs()...)
}

// CollectMap materializes seq into a Map. Later keys win. It closes seq.
func CollectMap(ctx context.Context, seq Sequence) (*Map, error) {
	defer seq.Close()
	m := NewMap()
	for {
		p, ok, err := seq.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return m, nil
		}
		m.Set(p.Key, p.Value)
	}
}

func (m *Map) lazyInit() {
	if m.index == nil {
		m.index = make(map[any]int)
	}
}
