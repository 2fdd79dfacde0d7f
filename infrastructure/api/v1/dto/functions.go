// Package dto holds request and response payloads of the v1 API.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/helixml/explode/domain/tablefunc"
)

// ColumnAttributes describes one output column.
type ColumnAttributes struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Hidden bool   `json:"hidden,omitempty"`
}

// FunctionAttributes describes a registered table function.
type FunctionAttributes struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	MinArgs     int                `json:"min_args"`
	MaxArgs     int                `json:"max_args"`
	Columns     []ColumnAttributes `json:"columns,omitempty"`
}

// NewFunctionAttributes builds attributes for fn. Columns are included when
// fn exposes a schema.
func NewFunctionAttributes(fn tablefunc.Function) FunctionAttributes {
	sig := fn.Signature()
	attrs := FunctionAttributes{
		Name:        fn.Name(),
		Description: fn.Description(),
		MinArgs:     sig.Min,
		MaxArgs:     sig.Max,
	}
	if s, ok := fn.(interface{ Schema() tablefunc.Schema }); ok {
		for _, c := range s.Schema().Columns() {
			attrs.Columns = append(attrs.Columns, ColumnAttributes{
				Name:   c.Name,
				Kind:   c.Kind.String(),
				Hidden: c.Hidden,
			})
		}
	}
	return attrs
}

// RowsAttributes is the result of evaluating a function once.
type RowsAttributes struct {
	Function  string  `json:"function"`
	Args      []any   `json:"args"`
	Values    []int64 `json:"values"`
	Count     int     `json:"count"`
	Truncated bool    `json:"truncated"`
}

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	SQL  string            `json:"sql"`
	Args []json.RawMessage `json:"args,omitempty"`
}

// DecodeQueryRequest decodes a QueryRequest. Whole-number arguments are
// bound as int64 so they reach SQL as INTEGER rather than REAL.
func DecodeQueryRequest(body []byte) (QueryRequest, []any, error) {
	var req QueryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return QueryRequest{}, nil, fmt.Errorf("decode request: %w", err)
	}
	if req.SQL == "" {
		return QueryRequest{}, nil, fmt.Errorf("decode request: sql is required")
	}

	args := make([]any, len(req.Args))
	for i, raw := range req.Args {
		v, err := decodeArg(raw)
		if err != nil {
			return QueryRequest{}, nil, fmt.Errorf("decode request: args[%d]: %w", i, err)
		}
		args[i] = v
	}
	return req, args, nil
}

func decodeArg(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		return t.Float64()
	case nil, string, bool:
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported argument type %T", v)
	}
}

// QueryAttributes is the result of a SQL query.
type QueryAttributes struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Count   int      `json:"count"`
}
