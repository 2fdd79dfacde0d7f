// Package tablefunc defines the contract between table-generating functions
// and the query engines that host them.
//
// A host drives a Function through three phases:
//
//	schema, err := fn.Bind(descriptors)      // once per call site
//	rows, err := fn.EvaluateRow(ctx, args)   // once per input row
//	err = fn.Close()                         // teardown
package tablefunc

import (
	"context"
	"iter"

	"github.com/helixml/explode/domain/argument"
)

// Column describes one output column of a table function.
type Column struct {
	Name   string
	Kind   argument.Kind
	Hidden bool
}

// Schema is the ordered list of output columns negotiated at bind time.
type Schema struct {
	columns []Column
}

// NewSchema creates a Schema.
func NewSchema(columns ...Column) Schema {
	return Schema{columns: columns}
}

// Columns returns a copy of the columns.
func (s Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Visible returns the columns that are not hidden.
func (s Schema) Visible() []Column {
	var out []Column
	for _, c := range s.columns {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// Function is a table-generating function.
type Function interface {
	// Name returns the registration name.
	Name() string

	// Description returns documentation text shown to users.
	Description() string

	// Signature returns the allowed argument count.
	Signature() argument.Range

	// Bind validates declared argument shapes and returns the output schema.
	Bind(args []argument.Descriptor) (Schema, error)

	// EvaluateRow validates one row's argument values and returns the
	// rows they produce. The sequence is restartable.
	EvaluateRow(ctx context.Context, args []any) (iter.Seq[int64], error)

	// Close releases resources held by the function.
	Close() error
}
