package service

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/helixml/explode/domain/argument"
	"github.com/helixml/explode/domain/series"
	"github.com/helixml/explode/domain/tablefunc"
)

// DefaultExplodeName is the registration name of ExplodeTimes.
const DefaultExplodeName = "explode_times"

const explodeDescription = `Produces one row per value from low to high inclusive, stepping by increment.

  explode_times(high)                  rows 1..high
  explode_times(low, high)             rows low..high
  explode_times(low, high, increment)  rows low, low+increment, ... <= high

All arguments must be non-null integers and increment must be positive.
When low is greater than high no rows are produced.`

// ExplodeTimes is the explode_times table function.
type ExplodeTimes struct {
	name   string
	logger *slog.Logger
}

// ExplodeOption configures ExplodeTimes.
type ExplodeOption func(*ExplodeTimes)

// WithExplodeName overrides the registration name.
func WithExplodeName(name string) ExplodeOption {
	return func(e *ExplodeTimes) { e.name = name }
}

// WithExplodeLogger sets the logger.
func WithExplodeLogger(logger *slog.Logger) ExplodeOption {
	return func(e *ExplodeTimes) { e.logger = logger }
}

// NewExplodeTimes creates a new ExplodeTimes function.
func NewExplodeTimes(opts ...ExplodeOption) *ExplodeTimes {
	e := &ExplodeTimes{name: DefaultExplodeName}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Name returns the registration name.
func (e *ExplodeTimes) Name() string { return e.name }

// Description returns the documentation text.
func (e *ExplodeTimes) Description() string { return explodeDescription }

// Signature returns the allowed argument count, one to three.
func (e *ExplodeTimes) Signature() argument.Range { return argument.NewRange(1, 3) }

// Schema returns the output schema. Argument columns are hidden so hosts
// can bind call arguments to them.
func (e *ExplodeTimes) Schema() tablefunc.Schema {
	return tablefunc.NewSchema(
		tablefunc.Column{Name: "value", Kind: argument.KindInteger},
		tablefunc.Column{Name: "arg1", Kind: argument.KindInteger, Hidden: true},
		tablefunc.Column{Name: "arg2", Kind: argument.KindInteger, Hidden: true},
		tablefunc.Column{Name: "arg3", Kind: argument.KindInteger, Hidden: true},
	)
}

// Bind checks the argument count, nullability and kinds once per call site.
func (e *ExplodeTimes) Bind(args []argument.Descriptor) (tablefunc.Schema, error) {
	if err := argument.ValidateArity(len(args), e.Signature()); err != nil {
		return tablefunc.Schema{}, fmt.Errorf("bind %s: %w", e.name, err)
	}

	var nulls []int
	for _, d := range args {
		if d.Nullable() && d.Kind() == argument.KindUnknown {
			nulls = append(nulls, d.Position())
		}
	}
	if len(nulls) > 0 {
		return tablefunc.Schema{}, fmt.Errorf("bind %s: %w", e.name, &argument.NullArgumentError{Positions: nulls})
	}

	for _, d := range args {
		if err := argument.ValidatePrimitiveKind(d, argument.KindInteger, e.name); err != nil {
			return tablefunc.Schema{}, fmt.Errorf("bind %s: %w", e.name, err)
		}
	}

	e.logger.Debug("bound table function", "function", e.name, "args", len(args))
	return e.Schema(), nil
}

// EvaluateRow validates one row's values and returns its sequence.
func (e *ExplodeTimes) EvaluateRow(_ context.Context, args []any) (iter.Seq[int64], error) {
	if err := argument.ValidateArity(len(args), e.Signature()); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", e.name, err)
	}

	vals, err := argument.ValidateNoNulls(argument.Optional(args))
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", e.name, err)
	}

	ints := make([]int64, len(vals))
	for i, v := range vals {
		d := argument.DescribeValue(i, v)
		if err := argument.ValidatePrimitiveKind(d, argument.KindInteger, e.name); err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", e.name, err)
		}
		n, ok := argument.Int64(v)
		if !ok {
			return nil, fmt.Errorf("evaluate %s: argument %d: %v out of int64 range: %w", e.name, i, v, argument.ErrValidation)
		}
		ints[i] = n
	}

	spec := series.Resolve(ints)
	if err := argument.ValidateIncrement(spec.Increment()); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", e.name, err)
	}

	e.logger.Debug("evaluating table function", "function", e.name, "range", spec.String(), "rows", spec.Count())

	return spec.Values(), nil
}

// Close is a no-op; ExplodeTimes holds no resources.
func (e *ExplodeTimes) Close() error {
	e.logger.Debug("closed table function", "function", e.name)
	return nil
}

// Prepare binds fn against the runtime types of args and evaluates a single
// row, returning the lazy sequence of produced values.
func Prepare(ctx context.Context, fn tablefunc.Function, args []any) (iter.Seq[int64], error) {
	descriptors := make([]argument.Descriptor, len(args))
	for i, a := range args {
		descriptors[i] = argument.DescribeValue(i, a)
	}
	if _, err := fn.Bind(descriptors); err != nil {
		return nil, err
	}
	return fn.EvaluateRow(ctx, args)
}

// Evaluate prepares fn with args and collects the produced values.
func Evaluate(ctx context.Context, fn tablefunc.Function, args []any) ([]int64, error) {
	seq, err := Prepare(ctx, fn, args)
	if err != nil {
		return nil, err
	}
	return tablefunc.Collect(ctx, seq)
}
