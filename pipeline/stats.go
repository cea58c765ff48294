package pipeline

import (
	"context"
	"math"

	"github.com/apokryfos/Enumerable/selector"
	"github.com/apokryfos/Enumerable/sequence"
	"github.com/apokryfos/Enumerable/stats"
)

// fold consumes the Pipeline, passing sel applied to each element to add.
func (p *Pipeline) fold(ctx context.Context, op string, sel any, add func(v any) error) error {
	f := selector.Of(sel)
	return p.consume(ctx, op, func(c *sequence.Cursor) error {
		return walk(ctx, c, func(e pair) (Control, error) {
			return Continue, add(f(e.Value, e.Key))
		})
	})
}

// Sum adds the selected values. The result is an int64 while every value
// is integral and a float64 otherwise. An empty sequence sums to int64(0).
func (p *Pipeline) Sum(ctx context.Context, sel any) (any, error) {
	acc := stats.NewAccumulator("sum")
	if err := p.fold(ctx, "sum", sel, acc.Add); err != nil {
		return nil, err
	}
	return acc.Sum(), nil
}

// Average returns the mean of the selected values. An empty sequence
// fails with EMPTY_SEQUENCE.
func (p *Pipeline) Average(ctx context.Context, sel any) (float64, error) {
	acc := stats.NewAccumulator("average")
	if err := p.fold(ctx, "average", sel, acc.Add); err != nil {
		return math.NaN(), err
	}
	return acc.Mean()
}

// Avg is an alias of Average.
func (p *Pipeline) Avg(ctx context.Context, sel any) (float64, error) {
	return p.Average(ctx, sel)
}

// Max returns the largest selected value, or nil when empty.
func (p *Pipeline) Max(ctx context.Context, sel any) (any, error) {
	return p.extreme(ctx, "max", sel, 1)
}

// Min returns the smallest selected value, or nil when empty.
func (p *Pipeline) Min(ctx context.Context, sel any) (any, error) {
	return p.extreme(ctx, "min", sel, -1)
}

// extreme keeps the value v for which Compare(v, best) has the sign of want.
// Values that do not compare with the current best are skipped.
func (p *Pipeline) extreme(ctx context.Context, op string, sel any, want int) (any, error) {
	var best any
	have := false
	err := p.fold(ctx, op, sel, func(v any) error {
		if !have {
			best, have = v, true
			return nil
		}
		if c, ok := selector.Compare(v, best); ok && c*want > 0 {
			best = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return best, nil
}

// Median returns the median of the selected values. For an even count it
// is the mean of the two middle values. An empty sequence fails with
// EMPTY_SEQUENCE.
func (p *Pipeline) Median(ctx context.Context, sel any) (float64, error) {
	m := stats.NewMedian()
	if err := p.fold(ctx, "median", sel, m.Add); err != nil {
		return math.NaN(), err
	}
	return m.Result()
}

// Mode returns the most frequent selected value. On a tie the value seen
// first wins. An empty sequence fails with EMPTY_SEQUENCE.
func (p *Pipeline) Mode(ctx context.Context, sel any) (any, error) {
	freq := stats.NewFrequency()
	err := p.fold(ctx, "mode", sel, func(v any) error {
		freq.Add(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return freq.Mode()
}
