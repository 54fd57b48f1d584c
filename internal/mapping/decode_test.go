package mapping

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

var (
	testService = MustSchema("Service",
		F("rtype", String),
		F("rid", String),
	)
	testRoom = MustSchema("Room",
		F("name", String),
		F("id", String),
		F("services", SequenceOf(Nested(testService))),
	)
	testScalars = MustSchema("Scalars",
		F("knownField", Int),
		F("intField", Int),
		F("floatField", Float),
		F("boolField", Bool),
		F("stringField", String),
		F("tags", SequenceOf(String)),
	)
)

func TestDecode_UnknownKeyTolerance(t *testing.T) {
	obj, err := Decode(map[string]any{"knownField": 1, "unknownField": 2}, testScalars)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got := obj.SetFields(); !reflect.DeepEqual(got, []string{"knownField"}) {
		t.Errorf("SetFields() = %v, want [knownField]", got)
	}
	if n, _ := obj.Int("knownField"); n != 1 {
		t.Errorf("knownField = %d, want 1", n)
	}
}

func TestDecode_MissingFieldTolerance(t *testing.T) {
	obj, err := Decode(map[string]any{}, testScalars)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	for _, f := range testScalars.Fields() {
		if obj.IsSet(f.Name) {
			t.Errorf("field %q is set, want unset", f.Name)
		}
	}
	if len(Encode(obj)) != 0 {
		t.Errorf("Encode() = %v, want empty", Encode(obj))
	}
}

func TestDecode_TypeMismatch(t *testing.T) {
	_, err := Decode(map[string]any{"intField": "notanumber"}, testScalars)
	if err == nil {
		t.Fatal("Decode() should fail for a non-numeric int")
	}

	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("error type = %T, want *MappingError", err)
	}
	if mapErr.Path != "intField" {
		t.Errorf("Path = %q, want %q", mapErr.Path, "intField")
	}
	if mapErr.Expected != "int" {
		t.Errorf("Expected = %q, want %q", mapErr.Expected, "int")
	}
	if !errors.Is(err, ErrTypeMismatch) {
		t.Error("errors.Is(err, ErrTypeMismatch) = false")
	}
}

func TestDecode_NullLeavesUnset(t *testing.T) {
	obj, err := Decode(map[string]any{"intField": nil, "stringField": "x"}, testScalars)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if obj.IsSet("intField") {
		t.Error("intField should stay unset for a null value")
	}
	if !obj.IsSet("stringField") {
		t.Error("stringField should be set")
	}
}

func TestDecode_Coercion(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		raw     any
		want    any
		wantErr bool
	}{
		{"int from float64", "intField", float64(42), int64(42), false},
		{"int from json.Number", "intField", json.Number("7"), int64(7), false},
		{"int from numeric string", "intField", "12", int64(12), false},
		{"int leading zero is decimal", "intField", "010", int64(10), false},
		{"int leading zero eight", "intField", "08", int64(8), false},
		{"int padded string", "intField", " 42 ", int64(42), false},
		{"int negative string", "intField", "-7", int64(-7), false},
		{"int whole float string", "intField", "12.0", int64(12), false},
		{"int rejects hex string", "intField", "0x1F", nil, true},
		{"int rejects binary string", "intField", "0b11", nil, true},
		{"int rejects octal prefix", "intField", "0o17", nil, true},
		{"int rejects underscores", "intField", "1_000", nil, true},
		{"int rejects fractional string", "intField", "12.5", nil, true},
		{"int rejects empty string", "intField", "", nil, true},
		{"int rejects word", "intField", "notanumber", nil, true},
		{"int rejects NaN string", "intField", "NaN", nil, true},
		{"int rejects 2^63", "intField", float64(math.MaxInt64), nil, true},
		{"int accepts -2^63", "intField", float64(math.MinInt64), int64(math.MinInt64), false},
		{"int rejects 2^63 string", "intField", "9223372036854775808", nil, true},
		{"int rejects fraction", "intField", 1.5, nil, true},
		{"int rejects bool", "intField", true, nil, true},
		{"int rejects object", "intField", map[string]any{}, nil, true},
		{"float from int", "floatField", 3, float64(3), false},
		{"float from json.Number", "floatField", json.Number("0.25"), 0.25, false},
		{"float rejects bool", "floatField", false, nil, true},
		{"float rejects word", "floatField", "abc", nil, true},
		{"bool from bool", "boolField", true, true, false},
		{"bool from string", "boolField", "false", false, false},
		{"bool rejects number", "boolField", float64(1), nil, true},
		{"string from string", "stringField", "hello", "hello", false},
		{"string from number", "stringField", float64(42), "42", false},
		{"string rejects array", "stringField", []any{"a"}, nil, true},
		{"sequence of strings", "tags", []any{"a", "b"}, []any{"a", "b"}, false},
		{"sequence from typed slice", "tags", []string{"x"}, []any{"x"}, false},
		{"sequence rejects scalar", "tags", "a", nil, true},
		{"sequence rejects null element", "tags", []any{"a", nil}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := Decode(map[string]any{tt.field: tt.raw}, testScalars)
			if tt.wantErr {
				if !errors.Is(err, ErrTypeMismatch) {
					t.Fatalf("Decode() error = %v, want ErrTypeMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			got, _ := obj.Get(tt.field)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s = %#v, want %#v", tt.field, got, tt.want)
			}
		})
	}
}

func TestDecode_NestedErrorPath(t *testing.T) {
	payload := map[string]any{
		"services": []any{
			map[string]any{"rtype": "light", "rid": "l1"},
			map[string]any{"rtype": "light", "rid": []any{}},
		},
	}

	_, err := Decode(payload, testRoom)
	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("Decode() error = %v, want *MappingError", err)
	}
	if mapErr.Path != "services.1.rid" {
		t.Errorf("Path = %q, want %q", mapErr.Path, "services.1.rid")
	}
}

func TestDecoder_Strict(t *testing.T) {
	d := Decoder{Strict: true}

	_, err := d.Decode(map[string]any{"name": "Lounge", "zeta": 1, "alpha": 2}, testRoom)
	var keyErr *UnknownKeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("Decode() error = %v, want *UnknownKeyError", err)
	}
	if keyErr.Path != "alpha" {
		t.Errorf("Path = %q, want %q", keyErr.Path, "alpha")
	}
	if !errors.Is(err, ErrUnknownKey) {
		t.Error("errors.Is(err, ErrUnknownKey) = false")
	}

	_, err = d.Decode(map[string]any{
		"services": []any{map[string]any{"rid": "g1", "owner": "x"}},
	}, testRoom)
	if !errors.As(err, &keyErr) {
		t.Fatalf("nested Decode() error = %v, want *UnknownKeyError", err)
	}
	if keyErr.Path != "services.0.owner" {
		t.Errorf("nested Path = %q, want %q", keyErr.Path, "services.0.owner")
	}
}

func TestDecodeList(t *testing.T) {
	items := []any{
		map[string]any{"name": "Lounge"},
		map[string]any{"name": "Kitchen"},
	}
	objs, err := DecodeList(items, testRoom)
	if err != nil {
		t.Fatalf("DecodeList() error = %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("len = %d, want 2", len(objs))
	}
	if name, _ := objs[1].String("name"); name != "Kitchen" {
		t.Errorf("objs[1].name = %q, want Kitchen", name)
	}

	_, err = DecodeList([]any{"not an object"}, testRoom)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("DecodeList(non-object) error = %v, want ErrTypeMismatch", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	obj, err := Decoder{}.DecodeJSON([]byte(`{"intField": 9007199254740993}`), testScalars)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if n, _ := obj.Int("intField"); n != 9007199254740993 {
		t.Errorf("intField = %d, want exact 9007199254740993", n)
	}

	if _, err := (Decoder{}).DecodeJSON([]byte(`[1,2]`), testScalars); err == nil {
		t.Error("DecodeJSON(array) should fail")
	}
}

func TestDecodeJSON_TrailingData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"trailing whitespace", "{\"stringField\": \"a\"}\n\t ", false},
		{"second object", `{"stringField": "a"} {"stringField": "b"}`, true},
		{"second object and garbage", `{"stringField": "a"} {"stringField": "b"} garbage`, true},
		{"garbage", `{"stringField": "a"} x`, true},
		{"trailing brace", `{"stringField": "a"}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := Decoder{}.DecodeJSON([]byte(tt.input), testScalars)
			if tt.wantErr {
				var me *MappingError
				if !errors.As(err, &me) {
					t.Fatalf("DecodeJSON() error = %v, want *MappingError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON() error = %v", err)
			}
			if s, _ := obj.String("stringField"); s != "a" {
				t.Errorf("stringField = %q, want a", s)
			}
		})
	}
}

func TestMappingError_TruncatesOnRuneBoundary(t *testing.T) {
	// 63 ASCII bytes put the 64th rune's bytes across the byte-64 boundary.
	value := strings.Repeat("a", 63) + strings.Repeat("é", 10)
	_, err := Decode(map[string]any{"intField": value}, testScalars)
	if err == nil {
		t.Fatal("Decode() should fail")
	}

	msg := err.Error()
	if !utf8.ValidString(msg) {
		t.Errorf("message is not valid UTF-8: %q", msg)
	}
	want := strings.Repeat("a", 63) + "é..."
	if !strings.Contains(msg, want) {
		t.Errorf("message %q does not contain %q", msg, want)
	}
}

func TestEndToEnd_Lounge(t *testing.T) {
	payload := map[string]any{
		"name": "Lounge",
		"id":   "42",
		"services": []any{
			map[string]any{"rtype": "grouped_light", "rid": "g1"},
		},
	}

	obj, err := Decode(payload, testRoom)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	services, ok := obj.Objects("services")
	if !ok || len(services) != 1 {
		t.Fatalf("services = %v, ok=%v", services, ok)
	}
	if rid, _ := services[0].String("rid"); rid != "g1" {
		t.Errorf("services[0].rid = %q, want g1", rid)
	}

	got := Encode(obj)
	if !reflect.DeepEqual(got, payload) {
		t.Errorf("Encode() = %#v, want %#v", got, payload)
	}
}

func TestRoundTrip_PreservesSetFields(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"empty", map[string]any{}},
		{"single", map[string]any{"intField": int64(0)}},
		{"zero values", map[string]any{"boolField": false, "stringField": "", "floatField": float64(0)}},
		{"sequence", map[string]any{"tags": []any{}, "knownField": int64(3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := Decode(tt.payload, testScalars)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			second, err := Decode(Encode(first), testScalars)
			if err != nil {
				t.Fatalf("Decode(Encode()) error = %v", err)
			}

			if !reflect.DeepEqual(first.SetFields(), second.SetFields()) {
				t.Errorf("set fields %v, want %v", second.SetFields(), first.SetFields())
			}
			if !reflect.DeepEqual(Encode(first), Encode(second)) {
				t.Errorf("values %v, want %v", Encode(second), Encode(first))
			}
		})
	}
}
