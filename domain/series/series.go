// Package series generates inclusive arithmetic integer sequences.
package series

import (
	"fmt"
	"iter"
)

// Spec is the resolved (low, high, increment) triple. Immutable value object.
type Spec struct {
	low       int64
	high      int64
	increment int64
}

// NewSpec creates a Spec from explicit bounds.
func NewSpec(low, high, increment int64) Spec {
	return Spec{low: low, high: high, increment: increment}
}

// Resolve applies the positional defaulting rule:
//
//	[high]                  -> 1, high, 1
//	[low, high]             -> low, high, 1
//	[low, high, increment]  -> low, high, increment
//
// values must hold one to three elements; callers validate arity first.
func Resolve(values []int64) Spec {
	switch len(values) {
	case 1:
		return NewSpec(1, values[0], 1)
	case 2:
		return NewSpec(values[0], values[1], 1)
	case 3:
		return NewSpec(values[0], values[1], values[2])
	default:
		panic(fmt.Sprintf("series.Resolve: %d values, want 1 to 3", len(values)))
	}
}

// Generate resolves values and returns the lazy sequence they describe.
func Generate(values []int64) iter.Seq[int64] {
	return Resolve(values).Values()
}

// Low returns the first value of the sequence.
func (s Spec) Low() int64 { return s.low }

// High returns the inclusive upper bound.
func (s Spec) High() int64 { return s.high }

// Increment returns the step between consecutive values.
func (s Spec) Increment() int64 { return s.increment }

// Empty reports whether the sequence yields no values. A non-positive
// increment is treated as empty.
func (s Spec) Empty() bool {
	return s.increment <= 0 || s.low > s.high
}

// Count returns the number of values the sequence yields.
func (s Spec) Count() uint64 {
	if s.Empty() {
		return 0
	}
	return uint64(s.high-s.low)/uint64(s.increment) + 1
}

// Values returns the sequence low, low+increment, ... <= high. Each call to
// the returned function starts over from low.
func (s Spec) Values() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		c := s.Cursor()
		for c.Next() {
			if !yield(c.Value()) {
				return
			}
		}
	}
}

// String renders the spec as "low..high step increment".
func (s Spec) String() string {
	return fmt.Sprintf("%d..%d step %d", s.low, s.high, s.increment)
}
