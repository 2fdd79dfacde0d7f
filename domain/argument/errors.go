package argument

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrValidation is matched by every error this package returns.
var ErrValidation = errors.New("argument validation failed")

// ArityError reports an argument count outside the allowed range.
type ArityError struct {
	Allowed Range
	Actual  int
}

func (e *ArityError) Error() string {
	if e.Allowed.Min == e.Allowed.Max {
		return fmt.Sprintf("expected %d arguments, got %d", e.Allowed.Min, e.Actual)
	}
	return fmt.Sprintf("expected between %d and %d arguments, got %d", e.Allowed.Min, e.Allowed.Max, e.Actual)
}

// Is reports whether target is ErrValidation.
func (e *ArityError) Is(target error) bool { return target == ErrValidation }

// NullArgumentError reports every argument position holding a null.
type NullArgumentError struct {
	Positions []int
}

func (e *NullArgumentError) Error() string {
	parts := make([]string, len(e.Positions))
	for i, p := range e.Positions {
		parts[i] = strconv.Itoa(p)
	}
	noun := "position"
	if len(parts) > 1 {
		noun = "positions"
	}
	return fmt.Sprintf("unexpected null argument at %s %s", noun, strings.Join(parts, ", "))
}

// Is reports whether target is ErrValidation.
func (e *NullArgumentError) Is(target error) bool { return target == ErrValidation }

// TypeError reports an argument whose declared type is not the expected
// primitive kind.
type TypeError struct {
	Context        string
	Position       int
	Expected       Kind
	ActualCategory Category
	ActualKind     Kind
}

func (e *TypeError) Error() string {
	actual := e.ActualCategory.String()
	if e.ActualCategory == CategoryPrimitive {
		actual += " " + e.ActualKind.String()
	}
	return fmt.Sprintf("%s: argument %d: expected primitive %s, got %s", e.Context, e.Position, e.Expected, actual)
}

// Is reports whether target is ErrValidation.
func (e *TypeError) Is(target error) bool { return target == ErrValidation }

// InvalidIncrementError reports a step that is zero or negative.
type InvalidIncrementError struct {
	Increment int64
}

func (e *InvalidIncrementError) Error() string {
	return fmt.Sprintf("increment must be positive, got %d", e.Increment)
}

// Is reports whether target is ErrValidation.
func (e *InvalidIncrementError) Is(target error) bool { return target == ErrValidation }
