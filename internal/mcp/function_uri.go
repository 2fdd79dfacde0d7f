package mcp

import (
	"fmt"
	"net/url"
	"strings"
)

// URIScheme is the scheme of MCP resources published by explode.
const URIScheme = "explode"

// FunctionURI names a function resource, or one evaluation of it when
// arguments are attached. Immutable value object; methods return copies.
type FunctionURI struct {
	name    string
	args    []any
	hasArgs bool
}

// NewFunctionURI creates a FunctionURI for the named function.
func NewFunctionURI(name string) FunctionURI {
	return FunctionURI{name: name}
}

// WithArgs returns a copy naming an evaluation with args. nil arguments
// render as null.
func (u FunctionURI) WithArgs(args ...any) FunctionURI {
	u.args = append([]any(nil), args...)
	u.hasArgs = true
	return u
}

// Name returns the function name.
func (u FunctionURI) Name() string { return u.name }

// String builds the explode:// URI string.
func (u FunctionURI) String() string {
	base := fmt.Sprintf("%s://functions/%s", URIScheme, url.PathEscape(u.name))
	if !u.hasArgs {
		return base
	}
	q := make([]string, len(u.args))
	for i, a := range u.args {
		if a == nil {
			q[i] = "arg=null"
			continue
		}
		q[i] = "arg=" + url.QueryEscape(fmt.Sprint(a))
	}
	if len(q) == 0 {
		return base + "/rows"
	}
	return base + "/rows?" + strings.Join(q, "&")
}
