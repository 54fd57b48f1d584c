package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// errNotIntegral is the cause attached when a fractional number is given for
// an int field.
var errNotIntegral = errors.New("number is not integral")

// errTrailingData is the cause attached when JSON text continues after the
// first value.
var errTrailingData = errors.New("unexpected data after JSON value")

// Decoder converts loosely-typed payloads into Objects.
//
// The zero value ignores payload keys the schema does not declare. With
// Strict set, such keys fail the decode with an *UnknownKeyError.
type Decoder struct {
	Strict bool
}

// Decode converts payload into an Object of schema s using a lenient Decoder.
func Decode(payload map[string]any, s *Schema) (*Object, error) {
	return Decoder{}.Decode(payload, s)
}

// DecodeList converts a sequence of payloads using a lenient Decoder.
func DecodeList(items []any, s *Schema) ([]*Object, error) {
	return Decoder{}.DecodeList(items, s)
}

// Decode converts payload into an Object of schema s.
//
// Declared keys are coerced to their field's type; absent keys and JSON null
// values leave the field unset. The first failure aborts the decode and is
// returned as a *MappingError naming the dotted path of the offending value.
func (d Decoder) Decode(payload map[string]any, s *Schema) (*Object, error) {
	return d.decodeObject(payload, s, "")
}

// DecodeList converts each element of items, which must be objects, into an
// Object of schema s. Paths in errors start with the element index.
func (d Decoder) DecodeList(items []any, s *Schema) ([]*Object, error) {
	out := make([]*Object, 0, len(items))
	for i, item := range items {
		path := strconv.Itoa(i)
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &MappingError{Path: path, Expected: s.name, Value: item}
		}
		obj, err := d.decodeObject(m, s, path)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// DecodeJSON decodes raw JSON object text into an Object of schema s.
// Numbers are kept exact until coercion.
func (d Decoder) DecodeJSON(data []byte, s *Schema) (*Object, error) {
	var payload map[string]any
	if err := unmarshalJSON(data, &payload); err != nil {
		return nil, &MappingError{Expected: s.name, Value: string(data), Cause: err}
	}
	if payload == nil {
		return nil, &MappingError{Expected: s.name, Value: nil}
	}
	return d.Decode(payload, s)
}

func (d Decoder) decodeObject(payload map[string]any, s *Schema, path string) (*Object, error) {
	if d.Strict {
		if err := checkUnknownKeys(payload, s, path); err != nil {
			return nil, err
		}
	}

	obj := New(s)
	for i, f := range s.fields {
		raw, present := payload[f.Name]
		if !present || raw == nil {
			continue
		}
		v, err := d.convert(f.Type, raw, joinPath(path, f.Name))
		if err != nil {
			return nil, err
		}
		obj.values[i] = slot{set: true, v: v}
	}
	return obj, nil
}

// checkUnknownKeys reports the first undeclared key in sorted order so the
// error is deterministic.
func checkUnknownKeys(payload map[string]any, s *Schema, path string) error {
	var unknown []string
	for key := range payload {
		if !s.Has(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &UnknownKeyError{Path: joinPath(path, unknown[0]), Schema: s.name}
}

// convert coerces raw to the canonical representation of t.
func (d Decoder) convert(t *Type, raw any, path string) (any, error) {
	if raw == nil {
		return nil, &MappingError{Path: path, Expected: t.String(), Value: nil}
	}

	switch t.kind {
	case KindBool:
		return toBool(raw, path)
	case KindInt:
		return toInt(raw, path)
	case KindFloat:
		return toFloat(raw, path)
	case KindString:
		return toString(raw, path)
	case KindObject:
		return d.convertObject(t, raw, path)
	case KindSequence:
		return d.convertSequence(t, raw, path)
	default:
		return nil, &MappingError{Path: path, Expected: t.String(), Value: raw}
	}
}

func (d Decoder) convertObject(t *Type, raw any, path string) (any, error) {
	switch val := raw.(type) {
	case *Object:
		if val.schema != t.schema {
			return nil, &MappingError{
				Path:     path,
				Expected: t.String(),
				Value:    raw,
				Cause:    fmt.Errorf("object has schema %s", val.schema.name),
			}
		}
		return val.Clone(), nil
	case map[string]any:
		return d.decodeObject(val, t.schema, path)
	default:
		return nil, &MappingError{Path: path, Expected: t.String(), Value: raw}
	}
}

func (d Decoder) convertSequence(t *Type, raw any, path string) (any, error) {
	items, ok := raw.([]any)
	if !ok {
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, &MappingError{Path: path, Expected: t.String(), Value: raw}
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	out := make([]any, len(items))
	for i, item := range items {
		v, err := d.convert(t.elem, item, joinPath(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func toBool(raw any, path string) (any, error) {
	switch val := raw.(type) {
	case bool:
		return val, nil
	case string:
		b, err := cast.ToBoolE(val)
		if err != nil {
			return nil, &MappingError{Path: path, Expected: "bool", Value: raw, Cause: err}
		}
		return b, nil
	default:
		return nil, &MappingError{Path: path, Expected: "bool", Value: raw}
	}
}

func toInt(raw any, path string) (any, error) {
	switch val := raw.(type) {
	case bool, map[string]any, []any:
		return nil, &MappingError{Path: path, Expected: "int", Value: raw}
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, &MappingError{Path: path, Expected: "int", Value: raw, Cause: err}
		}
		return integral(f, raw, path)
	case float64:
		return integral(val, raw, path)
	case float32:
		return integral(float64(val), raw, path)
	case string:
		return parseIntString(val, path)
	}

	n, err := cast.ToInt64E(raw)
	if err != nil {
		return nil, &MappingError{Path: path, Expected: "int", Value: raw, Cause: err}
	}
	return n, nil
}

// parseIntString reads a base-10 integer. Leading zeros do not select
// octal, and prefixed or underscored forms are rejected. A string holding a
// whole float such as "12.0" is accepted.
func parseIntString(s, path string) (any, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	if isDecimalFloat(s) {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return integral(f, s, path)
		}
	}
	return nil, &MappingError{Path: path, Expected: "int", Value: s, Cause: err}
}

// isDecimalFloat reports whether s is a plain decimal float literal with an
// optional sign, fraction and exponent.
func isDecimalFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	if s == "" {
		return false
	}
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '.' || r == 'e' || r == 'E' || r == '+' || r == '-':
		default:
			return false
		}
	}
	return digits
}

func integral(f float64, raw any, path string) (any, error) {
	// 1<<63 is the first float64 above MaxInt64.
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f >= 1<<63 || f < math.MinInt64 {
		return nil, &MappingError{Path: path, Expected: "int", Value: raw, Cause: errNotIntegral}
	}
	return int64(f), nil
}

func toFloat(raw any, path string) (any, error) {
	switch val := raw.(type) {
	case bool, map[string]any, []any:
		return nil, &MappingError{Path: path, Expected: "float", Value: raw}
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, &MappingError{Path: path, Expected: "float", Value: raw, Cause: err}
		}
		return f, nil
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, &MappingError{Path: path, Expected: "float", Value: raw, Cause: err}
	}
	return f, nil
}

func toString(raw any, path string) (any, error) {
	switch val := raw.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case map[string]any, []any, []byte, *Object:
		return nil, &MappingError{Path: path, Expected: "string", Value: raw}
	}

	s, err := cast.ToStringE(raw)
	if err != nil {
		return nil, &MappingError{Path: path, Expected: "string", Value: raw, Cause: err}
	}
	return s, nil
}
