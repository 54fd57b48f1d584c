// Package mapping converts between loosely-typed key/value payloads and
// schema-shaped objects.
//
// A Schema declares an ordered set of optional fields, each typed as a
// primitive (Bool, Int, Float, String), a nested schema (Nested) or a
// sequence (SequenceOf). Payloads decoded from vendor JSON become Objects;
// Objects encode back to plain mappings containing only the fields that
// were set.
//
// Architecture:
//
//	  JSON payload            Object                 JSON payload
//	┌──────────────┐  Decode  ┌──────────────┐ Encode ┌──────────────┐
//	│ map[string]any│ ───────▶ │ schema+slots │ ─────▶ │ set fields   │
//	└──────────────┘          └──────────────┘        └──────────────┘
//	                                 │
//	                                 ▼
//	                         Lookup("metadata.name")
//	                         (used by package filter)
//
// # Unset vs zero
//
// Every field is optional. A field that is absent from the payload, or
// present with a JSON null, stays unset. Unset is distinct from the zero
// value: an unset "brightness" is omitted from encoded output, whereas a
// brightness of 0 is emitted.
//
// # Unknown keys
//
// The zero Decoder ignores keys the schema does not declare, which keeps
// decoding tolerant of vendor API additions. A Decoder with Strict set
// rejects them with *UnknownKeyError.
//
// # Errors
//
// Coercion failures are returned as *MappingError, whose Path names the
// offending value ("services.0.rid") and which unwraps to ErrTypeMismatch.
//
// # Thread Safety
//
// Schemas are immutable and may be shared freely. A Registry is safe for
// concurrent use. Objects are not; each request builds its own.
package mapping
