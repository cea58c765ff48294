package stats

import (
	"container/heap"
	"math"

	"github.com/apokryfos/Enumerable/errors"
)

type minHeap []float64

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(float64)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Median computes a median by pushing every value onto a min-heap and
// extracting the lower half.
type Median struct {
	h minHeap
}

// NewMedian returns an empty Median.
func NewMedian() *Median {
	return &Median{}
}

// Add inserts v. Non-numeric values are an arithmetic error.
func (m *Median) Add(v any) error {
	n, err := ToNumber("median", v)
	if err != nil {
		return err
	}
	heap.Push(&m.h, n.Float)
	return nil
}

// Len returns the number of values inserted.
func (m *Median) Len() int { return m.h.Len() }

// Result extracts count/2 values. For an odd count the next value is the
// median; for an even count it is the mean of sorted positions count/2-1
// and count/2. Result drains the heap.
func (m *Median) Result() (float64, error) {
	count := m.h.Len()
	if count == 0 {
		return math.NaN(), errors.EmptySequence("median")
	}
	var current float64
	for i := 0; i < count/2; i++ {
		current = heap.Pop(&m.h).(float64)
	}
	next := heap.Pop(&m.h).(float64)
	if count%2 == 0 {
		return (current + next) / 2, nil
	}
	return next, nil
}
