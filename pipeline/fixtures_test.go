package pipeline

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/apokryfos/Enumerable/sequence"
)

// randomInts returns n pseudo-random ints in [0, limit), the same for a seed.
func randomInts(seed uint64, n, limit int) []int {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]int, n)
	for i := range out {
		out[i] = r.IntN(limit)
	}
	return out
}

// randomRecords returns n records with an "id" and a "score".
func randomRecords(seed uint64, n int) []map[string]any {
	r := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"id":    i,
			"score": r.IntN(100),
			"team":  []string{"red", "blue", "green"}[r.IntN(3)],
		}
	}
	return out
}

func anys[T any](items []T) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

func mustAll(t *testing.T, p *Pipeline) *sequence.Map {
	t.Helper()
	m, err := p.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	return m
}

func pairsOf(t *testing.T, p *Pipeline) []sequence.Pair {
	t.Helper()
	return mustAll(t, p).Pairs()
}

func valuesOf(t *testing.T, p *Pipeline) []any {
	t.Helper()
	return mustAll(t, p).Values()
}

// naturals returns an endless source of 0, 1, 2... keyed by position, and
// a counter of the elements pulled from it.
func naturals() (sequence.Sequence, *int) {
	pulls := new(int)
	src := sequence.Func(func(context.Context) (sequence.Pair, bool, error) {
		n := *pulls
		*pulls++
		return sequence.Pair{Key: n, Value: n}, true, nil
	}, nil)
	return src, pulls
}
