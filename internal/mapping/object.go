package mapping

import (
	"fmt"
	"strconv"
	"strings"
)

// slot holds one field value. set distinguishes an unset field from one
// holding a zero value.
type slot struct {
	set bool
	v   any
}

// Object is an instance of one Schema.
//
// Values are stored in canonical form: int64, float64, string, bool, *Object
// for nested schemas and []any for sequences. An Object exclusively owns its
// nested objects; Set copies any *Object it is given.
//
// Object is not safe for concurrent mutation.
type Object struct {
	schema *Schema
	values []slot
}

// New creates an Object of schema s with every field unset.
func New(s *Schema) *Object {
	return &Object{
		schema: s,
		values: make([]slot, len(s.fields)),
	}
}

// Schema returns the object's schema.
func (o *Object) Schema() *Schema { return o.schema }

// Set assigns value to the named field after converting it to the field's
// declared type. A nil value unsets the field.
//
// It fails with ErrUnknownField when the schema does not declare name, and
// with a *MappingError when value cannot be converted.
func (o *Object) Set(name string, value any) error {
	i, ok := o.schema.index[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, o.schema.name, name)
	}
	if value == nil {
		o.values[i] = slot{}
		return nil
	}

	v, err := Decoder{}.convert(o.schema.fields[i].Type, value, name)
	if err != nil {
		return err
	}
	o.values[i] = slot{set: true, v: v}
	return nil
}

// MustSet is like Set but panics on error. It is meant for building objects
// from values known to match the schema.
func (o *Object) MustSet(name string, value any) *Object {
	if err := o.Set(name, value); err != nil {
		panic(err)
	}
	return o
}

// Unset clears the named field.
func (o *Object) Unset(name string) error {
	i, ok := o.schema.index[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, o.schema.name, name)
	}
	o.values[i] = slot{}
	return nil
}

// Get returns the value of the named field. ok is false when the field is
// unset or not declared.
func (o *Object) Get(name string) (any, bool) {
	i, declared := o.schema.index[name]
	if !declared || !o.values[i].set {
		return nil, false
	}
	return o.values[i].v, true
}

// IsSet reports whether the named field holds a value.
func (o *Object) IsSet(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// SetFields returns the names of the set fields in declaration order.
func (o *Object) SetFields() []string {
	var names []string
	for i, s := range o.values {
		if s.set {
			names = append(names, o.schema.fields[i].Name)
		}
	}
	return names
}

// String returns a string field.
func (o *Object) String(name string) (string, bool) {
	v, ok := o.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns an int field.
func (o *Object) Int(name string) (int64, bool) {
	v, ok := o.Get(name)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// Float returns a float field.
func (o *Object) Float(name string) (float64, bool) {
	v, ok := o.Get(name)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Bool returns a bool field.
func (o *Object) Bool(name string) (bool, bool) {
	v, ok := o.Get(name)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Object returns a nested object field.
func (o *Object) Object(name string) (*Object, bool) {
	v, ok := o.Get(name)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok
}

// Objects returns a sequence-of-object field.
func (o *Object) Objects(name string) ([]*Object, bool) {
	v, ok := o.Get(name)
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]*Object, 0, len(items))
	for _, item := range items {
		obj, isObj := item.(*Object)
		if !isObj {
			return nil, false
		}
		out = append(out, obj)
	}
	return out, true
}

// Strings returns a sequence-of-string field.
func (o *Object) Strings(name string) ([]string, bool) {
	v, ok := o.Get(name)
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, isString := item.(string)
		if !isString {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	c := &Object{
		schema: o.schema,
		values: make([]slot, len(o.values)),
	}
	for i, s := range o.values {
		if s.set {
			c.values[i] = slot{set: true, v: cloneValue(s.v)}
		}
	}
	return c
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case *Object:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Lookup resolves a dotted path such as "metadata.name" or "services.0.rid".
//
// ok reports whether the path is declared by the schema. A declared path
// whose value is unset, or runs through an unset parent or a missing
// sequence index, yields (nil, true).
func (o *Object) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	parts := strings.Split(path, ".")

	var (
		t   *Type
		cur any = o
	)
	for n, part := range parts {
		if n == 0 {
			f, ok := o.schema.Field(part)
			if !ok {
				return nil, false
			}
			t = f.Type
			cur, _ = o.Get(part)
			continue
		}

		switch t.kind {
		case KindObject:
			f, ok := t.schema.Field(part)
			if !ok {
				return nil, false
			}
			t = f.Type
			if obj, isObj := cur.(*Object); isObj {
				cur, _ = obj.Get(part)
			} else {
				cur = nil
			}
		case KindSequence:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 {
				return nil, false
			}
			t = t.elem
			if items, isSeq := cur.([]any); isSeq && idx < len(items) {
				cur = items[idx]
			} else {
				cur = nil
			}
		default:
			return nil, false
		}
	}
	return cur, true
}

// MarshalJSON encodes the set fields of o.
func (o *Object) MarshalJSON() ([]byte, error) {
	return marshalJSON(Encode(o))
}
