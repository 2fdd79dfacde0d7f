// Package argument provides argument descriptors and the validation checks
// shared by table-generating functions.
package argument

import (
	"fmt"
	"reflect"
)

// Category is the broad shape of a declared argument type.
type Category int

// Category values.
const (
	CategoryPrimitive Category = iota
	CategoryList
	CategoryMap
	CategoryStruct
)

// String returns the lower-case category name.
func (c Category) String() string {
	switch c {
	case CategoryPrimitive:
		return "primitive"
	case CategoryList:
		return "list"
	case CategoryMap:
		return "map"
	case CategoryStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Kind is the concrete type of a primitive argument.
type Kind int

// Kind values.
const (
	KindUnknown Kind = iota
	KindInteger
	KindReal
	KindText
	KindBlob
	KindBoolean
)

// String returns the SQL-ish name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Descriptor describes one declared call argument at bind time.
// Immutable value object.
type Descriptor struct {
	position int
	category Category
	kind     Kind
	nullable bool
}

// NewDescriptor creates a Descriptor.
func NewDescriptor(position int, category Category, kind Kind, nullable bool) Descriptor {
	return Descriptor{
		position: position,
		category: category,
		kind:     kind,
		nullable: nullable,
	}
}

// IntegerDescriptor is shorthand for a non-null primitive integer argument.
func IntegerDescriptor(position int) Descriptor {
	return NewDescriptor(position, CategoryPrimitive, KindInteger, false)
}

// DescribeValue derives a Descriptor from a runtime value. Hosts without
// declared parameter types (SQLite) use it to type-check arguments.
// A nil value yields a nullable descriptor of unknown kind.
func DescribeValue(position int, v any) Descriptor {
	switch v.(type) {
	case nil:
		return NewDescriptor(position, CategoryPrimitive, KindUnknown, true)
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return NewDescriptor(position, CategoryPrimitive, KindInteger, false)
	case float32, float64:
		return NewDescriptor(position, CategoryPrimitive, KindReal, false)
	case string:
		return NewDescriptor(position, CategoryPrimitive, KindText, false)
	case []byte:
		return NewDescriptor(position, CategoryPrimitive, KindBlob, false)
	case bool:
		return NewDescriptor(position, CategoryPrimitive, KindBoolean, false)
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return NewDescriptor(position, CategoryList, KindUnknown, false)
	case reflect.Map:
		return NewDescriptor(position, CategoryMap, KindUnknown, false)
	case reflect.Struct:
		return NewDescriptor(position, CategoryStruct, KindUnknown, false)
	default:
		return NewDescriptor(position, CategoryPrimitive, KindUnknown, false)
	}
}

// Position returns the 0-based argument position.
func (d Descriptor) Position() int { return d.position }

// Category returns the declared category.
func (d Descriptor) Category() Category { return d.category }

// Kind returns the concrete primitive kind.
func (d Descriptor) Kind() Kind { return d.kind }

// Nullable reports whether the argument may be null.
func (d Descriptor) Nullable() bool { return d.nullable }

// String renders the descriptor as "position:category kind".
func (d Descriptor) String() string {
	if d.category != CategoryPrimitive {
		return fmt.Sprintf("%d:%s", d.position, d.category)
	}
	return fmt.Sprintf("%d:%s %s", d.position, d.category, d.kind)
}
