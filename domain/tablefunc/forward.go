package tablefunc

import (
	"context"
	"iter"
)

// Emitter accepts produced values one at a time, in order, and materializes
// them as output rows.
type Emitter interface {
	Emit(value int64) error
}

// EmitterFunc adapts a function to an Emitter.
type EmitterFunc func(value int64) error

// Emit calls f(value).
func (f EmitterFunc) Emit(value int64) error { return f(value) }

// Forward drains seq into emit and returns the number of rows forwarded.
// It stops at the first emit error or when ctx is done.
func Forward(ctx context.Context, seq iter.Seq[int64], emit Emitter) (int, error) {
	n := 0
	for v := range seq {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := emit.Emit(v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Collect drains seq into a slice.
func Collect(ctx context.Context, seq iter.Seq[int64]) ([]int64, error) {
	rows := []int64{}
	_, err := Forward(ctx, seq, EmitterFunc(func(v int64) error {
		rows = append(rows, v)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return rows, nil
}
