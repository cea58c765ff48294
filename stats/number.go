package stats

import (
	"fmt"
	"math"
	"strings"

	"github.com/apokryfos/Enumerable/errors"
	"github.com/spf13/cast"
)

// Number is a numeric value that remembers whether it is integral.
type Number struct {
	Int      int64
	Float    float64
	Integral bool
}

// ToNumber converts ints, uints, floats, numeric strings, bools and nil.
// Other values are an arithmetic error.
func ToNumber(op string, v any) (Number, error) {
	switch t := v.(type) {
	case nil:
		return Number{Integral: true}, nil
	case bool:
		if t {
			return Number{Int: 1, Float: 1, Integral: true}, nil
		}
		return Number{Integral: true}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n := cast.ToInt64(t)
		return Number{Int: n, Float: float64(n), Integral: true}, nil
	case float32, float64:
		return Number{Float: cast.ToFloat64(t)}, nil
	case string:
		s := strings.TrimSpace(t)
		if !strings.ContainsAny(s, ".eE") {
			if n, err := cast.ToInt64E(s); err == nil && s != "" {
				return Number{Int: n, Float: float64(n), Integral: true}, nil
			}
		}
		if f, err := cast.ToFloat64E(s); err == nil && s != "" {
			return Number{Float: f}, nil
		}
	}
	return Number{}, errors.Arithmetic(op, fmt.Sprintf("non-numeric value %v (%T)", v, v))
}

// Value returns the number as int64 when integral, float64 otherwise.
func (n Number) Value() any {
	if n.Integral {
		return n.Int
	}
	return n.Float
}

// Accumulator sums numbers, staying integral while every input is.
type Accumulator struct {
	op       string
	intSum   int64
	floatSum float64
	integral bool
	count    int
}

// NewAccumulator returns an empty Accumulator. op names the reduction in errors.
func NewAccumulator(op string) *Accumulator {
	return &Accumulator{op: op, integral: true}
}

// Add folds v into the sum.
func (a *Accumulator) Add(v any) error {
	n, err := ToNumber(a.op, v)
	if err != nil {
		return err
	}
	a.count++
	a.floatSum += n.Float
	if !n.Integral {
		a.integral = false
		return nil
	}
	if a.integral {
		sum := a.intSum + n.Int
		if (n.Int > 0 && sum < a.intSum) || (n.Int < 0 && sum > a.intSum) {
			a.integral = false
			return nil
		}
		a.intSum = sum
	}
	return nil
}

// Count returns the number of values added.
func (a *Accumulator) Count() int { return a.count }

// Sum returns an int64 while every input was integral, float64 otherwise.
func (a *Accumulator) Sum() any {
	if a.integral {
		return a.intSum
	}
	return a.floatSum
}

// Mean returns the arithmetic mean. An empty Accumulator has none.
func (a *Accumulator) Mean() (float64, error) {
	if a.count == 0 {
		return math.NaN(), errors.EmptySequence(a.op)
	}
	if a.integral {
		return float64(a.intSum) / float64(a.count), nil
	}
	return a.floatSum / float64(a.count), nil
}
