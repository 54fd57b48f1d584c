package mapping

import (
	"fmt"
)

// Kind classifies a type descriptor.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindObject
	KindSequence
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Type describes the value a field holds: a primitive, a nested schema, or a
// sequence of another type. Types are immutable once constructed.
type Type struct {
	kind   Kind
	schema *Schema
	elem   *Type
}

// Primitive type descriptors.
var (
	Bool   = &Type{kind: KindBool}
	Int    = &Type{kind: KindInt}
	Float  = &Type{kind: KindFloat}
	String = &Type{kind: KindString}
)

// Nested returns a descriptor for a field holding an object of schema s.
func Nested(s *Schema) *Type {
	return &Type{kind: KindObject, schema: s}
}

// SequenceOf returns a descriptor for a field holding a sequence of elem.
func SequenceOf(elem *Type) *Type {
	return &Type{kind: KindSequence, elem: elem}
}

// Kind returns the descriptor's kind.
func (t *Type) Kind() Kind { return t.kind }

// Schema returns the nested schema for KindObject descriptors, nil otherwise.
func (t *Type) Schema() *Schema { return t.schema }

// Elem returns the element descriptor for KindSequence descriptors, nil otherwise.
func (t *Type) Elem() *Type { return t.elem }

// String renders the descriptor, e.g. "int", "Metadata", "[]ResourceIdentifier".
func (t *Type) String() string {
	switch t.kind {
	case KindObject:
		if t.schema == nil {
			return "object"
		}
		return t.schema.name
	case KindSequence:
		if t.elem == nil {
			return "[]?"
		}
		return "[]" + t.elem.String()
	default:
		return t.kind.String()
	}
}

// validate checks that composite descriptors are complete.
func (t *Type) validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrInvalidSchema)
	}
	switch t.kind {
	case KindObject:
		if t.schema == nil {
			return fmt.Errorf("%w: nested type without schema", ErrInvalidSchema)
		}
	case KindSequence:
		return t.elem.validate()
	}
	return nil
}

// Field declares one named, optional member of a schema.
type Field struct {
	Name string
	Type *Type
}

// F is shorthand for declaring a Field in a NewSchema call.
func F(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

// Schema declares the shape of a resource type: an ordered list of uniquely
// named fields. A Schema is immutable after construction, and because nested
// descriptors can only reference schemas that already exist, schema graphs
// are acyclic.
type Schema struct {
	name   string
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema from its fields, in declaration order.
//
// It fails with ErrInvalidSchema for an empty schema name, an empty field name
// or an incomplete type descriptor, and with ErrDuplicateField when a field
// name repeats.
func NewSchema(name string, fields ...Field) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: schema name is required", ErrInvalidSchema)
	}

	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: %s: empty field name", ErrInvalidSchema, name)
		}
		if err := f.Type.validate(); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, f.Name, err)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, name, f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. It is meant for schemas
// declared as package-level variables.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the declared fields in order. The slice is a copy.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the declaration for name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Has reports whether the schema declares name.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Description is a JSON-friendly rendering of a schema.
type Description struct {
	Name   string             `json:"name"`
	Fields []FieldDescription `json:"fields"`
}

// FieldDescription is one entry of a Description.
type FieldDescription struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Describe returns the schema's description.
func (s *Schema) Describe() Description {
	d := Description{
		Name:   s.name,
		Fields: make([]FieldDescription, len(s.fields)),
	}
	for i, f := range s.fields {
		d.Fields[i] = FieldDescription{Name: f.Name, Type: f.Type.String()}
	}
	return d
}

// dependencies returns the distinct schemas referenced by s's fields,
// directly or through sequences.
func (s *Schema) dependencies() []*Schema {
	var deps []*Schema
	seen := make(map[*Schema]bool)
	for _, f := range s.fields {
		t := f.Type
		for t.kind == KindSequence {
			t = t.elem
		}
		if t.kind == KindObject && !seen[t.schema] {
			seen[t.schema] = true
			deps = append(deps, t.schema)
		}
	}
	return deps
}
