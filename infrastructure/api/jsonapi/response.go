// Package jsonapi provides JSON:API document types for API responses.
package jsonapi

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"

// Document represents a JSON:API top-level document.
// See: https://jsonapi.org/format/#document-structure
type Document struct {
	Data   any     `json:"data,omitempty"`
	Meta   Meta    `json:"meta,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Meta holds non-standard meta-information about a document.
type Meta map[string]any

// Links holds links associated with a resource.
type Links struct {
	Self string `json:"self,omitempty"`
}

// Resource represents a JSON:API resource object.
type Resource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes any    `json:"attributes"`
	Links      *Links `json:"links,omitempty"`
}

// Error represents a JSON:API error object.
type Error struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status,omitempty"`
	Title  string       `json:"title,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource points at the request part that caused an error.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// NewResource creates a resource, with a self link when self is set.
func NewResource(resourceType, id string, attrs any, self string) *Resource {
	r := &Resource{Type: resourceType, ID: id, Attributes: attrs}
	if self != "" {
		r.Links = &Links{Self: self}
	}
	return r
}

// NewSingleResponse creates a document holding one resource.
func NewSingleResponse(resource *Resource) *Document {
	return &Document{Data: resource}
}

// NewListResponse creates a document holding a list of resources. An empty
// list is encoded as [] with a total of zero.
func NewListResponse(resources []*Resource) *Document {
	if resources == nil {
		resources = []*Resource{}
	}
	return &Document{Data: resources, Meta: Meta{"total": len(resources)}}
}

// NewErrorResponse creates a document holding errors.
func NewErrorResponse(errs ...Error) *Document {
	return &Document{Errors: errs}
}

// NewError creates an error with status, title and detail.
func NewError(status, title, detail string) Error {
	return Error{Status: status, Title: title, Detail: detail}
}
