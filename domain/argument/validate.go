package argument

import (
	"database/sql"
	"math"
)

// Range is an inclusive bound on an argument count.
type Range struct {
	Min int
	Max int
}

// NewRange creates a Range.
func NewRange(minCount, maxCount int) Range {
	return Range{Min: minCount, Max: maxCount}
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// ValidateArity checks argCount against the allowed range.
func ValidateArity(argCount int, allowed Range) error {
	if !allowed.Contains(argCount) {
		return &ArityError{Allowed: allowed, Actual: argCount}
	}
	return nil
}

// ValidateNoNulls checks every position and reports all null ones at once.
// On success it returns the unwrapped values in order.
func ValidateNoNulls[T any](args []sql.Null[T]) ([]T, error) {
	var positions []int
	values := make([]T, len(args))
	for i, a := range args {
		if !a.Valid {
			positions = append(positions, i)
			continue
		}
		values[i] = a.V
	}
	if len(positions) > 0 {
		return nil, &NullArgumentError{Positions: positions}
	}
	return values, nil
}

// ValidatePrimitiveKind checks that d is a primitive of the expected kind.
// context names the function (or call site) in the error message.
func ValidatePrimitiveKind(d Descriptor, expected Kind, context string) error {
	if d.Category() == CategoryPrimitive && d.Kind() == expected {
		return nil
	}
	return &TypeError{
		Context:        context,
		Position:       d.Position(),
		Expected:       expected,
		ActualCategory: d.Category(),
		ActualKind:     d.Kind(),
	}
}

// ValidateIncrement rejects a zero or negative step.
func ValidateIncrement(increment int64) error {
	if increment <= 0 {
		return &InvalidIncrementError{Increment: increment}
	}
	return nil
}

// Optional wraps dynamically typed values, treating nil as null.
func Optional(vals []any) []sql.Null[any] {
	out := make([]sql.Null[any], len(vals))
	for i, v := range vals {
		out[i] = sql.Null[any]{V: v, Valid: v != nil}
	}
	return out
}

// Int64 converts an integer-kinded value to int64.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
