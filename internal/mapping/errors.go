package mapping

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Sentinel errors for the mapping package.
//
// Structured errors returned by Decode and Object.Set unwrap to one of these,
// so callers can branch with errors.Is without inspecting message text:
//
//	if errors.Is(err, mapping.ErrTypeMismatch) {
//	    // payload value has the wrong shape
//	}
var (
	// ErrTypeMismatch is returned when a payload value cannot be coerced to
	// the type declared for its field.
	ErrTypeMismatch = errors.New("mapping: type mismatch")

	// ErrUnknownKey is returned by a strict Decoder when a payload carries a
	// key the schema does not declare.
	ErrUnknownKey = errors.New("mapping: unknown key")

	// ErrUnknownField is returned when code addresses a field the schema does
	// not declare (Object.Set, Object.Unset).
	ErrUnknownField = errors.New("mapping: unknown field")

	// ErrInvalidSchema is returned when a schema definition is malformed.
	ErrInvalidSchema = errors.New("mapping: invalid schema")

	// ErrDuplicateField is returned when a schema declares the same field twice.
	ErrDuplicateField = errors.New("mapping: duplicate field")

	// ErrSchemaExists is returned when registering a second, different schema
	// under a name that is already taken.
	ErrSchemaExists = errors.New("mapping: schema already registered")

	// ErrSchemaNotFound is returned when looking up an unregistered schema.
	ErrSchemaNotFound = errors.New("mapping: schema not found")

	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("mapping: registry is frozen")
)

// MappingError reports a payload value that could not be converted to the
// declared type of its field.
//
// Path is dot-separated from the root object and includes sequence indices,
// for example "services.0.rid".
type MappingError struct {
	Path     string
	Expected string
	Value    any
	Cause    error
}

func (e *MappingError) Error() string {
	msg := fmt.Sprintf("mapping: field %q: cannot use %s as %s", e.Path, describeValue(e.Value), e.Expected)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MappingError) Unwrap() error {
	return ErrTypeMismatch
}

// UnknownKeyError reports a payload key that the schema does not declare.
// Only a strict Decoder returns it.
type UnknownKeyError struct {
	Path   string
	Schema string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("mapping: key %q is not declared by schema %s", e.Path, e.Schema)
}

func (e *UnknownKeyError) Unwrap() error {
	return ErrUnknownKey
}

// describeValue renders a raw payload value for error messages without
// dumping whole nested structures.
func describeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		const maxLen = 64
		if utf8.RuneCountInString(val) > maxLen {
			val = string([]rune(val)[:maxLen]) + "..."
		}
		return fmt.Sprintf("string %q", val)
	case map[string]any:
		return "object"
	case []any:
		return fmt.Sprintf("array of %d", len(val))
	default:
		return fmt.Sprintf("%T %v", v, v)
	}
}

// joinPath appends a field name or index to a dotted path.
func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
