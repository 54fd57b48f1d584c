package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Encode converts obj into a plain mapping containing only its set fields.
// Nested objects and sequences are encoded recursively. Unset fields are
// omitted, never emitted as null. A nil obj encodes as nil.
func Encode(obj *Object) map[string]any {
	if obj == nil {
		return nil
	}
	out := make(map[string]any, len(obj.values))
	for i, s := range obj.values {
		if !s.set {
			continue
		}
		out[obj.schema.fields[i].Name] = encodeValue(s.v)
	}
	return out
}

// EncodeList encodes each object in order.
func EncodeList(objs []*Object) []any {
	out := make([]any, len(objs))
	for i, obj := range objs {
		out[i] = Encode(obj)
	}
	return out
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case *Object:
		return Encode(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return v
	}
}

func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON decodes exactly one JSON value with UseNumber so integers
// survive until coercion. Anything after the value is an error.
func unmarshalJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}
