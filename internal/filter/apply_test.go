package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

func names(items []Item) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i], _ = item.Lookup("name")
	}
	return out
}

func TestApply_Commutative(t *testing.T) {
	items := Records([]map[string]any{
		{"name": "one", "a": 1, "b": 2},
		{"name": "two", "a": 1, "b": 3},
		{"name": "three", "a": 2, "b": 2},
		{"name": "four", "a": 1, "b": 2},
	})

	ab, err := Parse(`{"a[eq]": 1, "b[eq]": 2}`)
	if err != nil {
		t.Fatalf("Parse(ab) error = %v", err)
	}
	ba, err := Parse(`{"b[eq]": 2, "a[eq]": 1}`)
	if err != nil {
		t.Fatalf("Parse(ba) error = %v", err)
	}

	gotAB, err := Apply(ab, items)
	if err != nil {
		t.Fatalf("Apply(ab) error = %v", err)
	}
	gotBA, err := Apply(ba, items)
	if err != nil {
		t.Fatalf("Apply(ba) error = %v", err)
	}

	want := []any{"one", "four"}
	if !reflect.DeepEqual(names(gotAB), want) {
		t.Errorf("Apply(ab) = %v, want %v", names(gotAB), want)
	}
	if !reflect.DeepEqual(names(gotAB), names(gotBA)) {
		t.Errorf("Apply(ab) = %v, Apply(ba) = %v", names(gotAB), names(gotBA))
	}
}

func TestApply_EmptySetReturnsInput(t *testing.T) {
	items := Records([]map[string]any{{"name": "x"}, {"other": 1}})

	got, err := Apply(Set{}, items)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(got) != len(items) {
		t.Errorf("len = %d, want %d", len(got), len(items))
	}
}

func TestApply_FieldNotFound(t *testing.T) {
	items := Records([]map[string]any{
		{"name": "Lounge", "room": "a"},
		{"name": "Kitchen"},
	})

	// The first expression already rejects the second item, yet the missing
	// field is still reported.
	for _, text := range []string{
		`{"name[eq]": "Lounge", "room[eq]": "a"}`,
		`{"room[eq]": "a", "name[eq]": "Lounge"}`,
	} {
		set, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		_, err = Apply(set, items)

		var fieldErr *FieldNotFoundError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("Apply(%s) error = %v, want *FieldNotFoundError", text, err)
		}
		if fieldErr.Field != "room" {
			t.Errorf("Field = %q, want room", fieldErr.Field)
		}
		if !errors.Is(err, ErrFieldNotFound) {
			t.Error("errors.Is(err, ErrFieldNotFound) = false")
		}
	}
}

func TestApply_Operators(t *testing.T) {
	items := Records([]map[string]any{
		{"name": "a", "level": int64(10), "on": true, "tag": "x", "note": nil},
		{"name": "b", "level": 50.0, "on": false, "tag": "y", "note": "hi"},
		{"name": "c", "level": 90, "on": true, "tag": "z", "note": nil},
	})

	tests := []struct {
		text string
		want []any
	}{
		{`{"level[eq]": 10}`, []any{"a"}},
		{`{"level[ne]": 10}`, []any{"b", "c"}},
		{`{"level[gt]": 10}`, []any{"b", "c"}},
		{`{"level[gte]": 50}`, []any{"b", "c"}},
		{`{"level[lt]": 50}`, []any{"a"}},
		{`{"level[lte]": 50}`, []any{"a", "b"}},
		{`{"tag[gt]": "x"}`, []any{"b", "c"}},
		{`{"tag[in]": ["x", "z", 3]}`, []any{"a", "c"}},
		{`{"on[eq]": true}`, []any{"a", "c"}},
		{`{"on[eq]": "true"}`, []any{}},
		{`{"level[eq]": "10"}`, []any{}},
		{`{"note[eq]": null}`, []any{"a", "c"}},
		{`{"on[eq]": true, "level[gt]": 50}`, []any{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			set, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := Apply(set, items)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !reflect.DeepEqual(names(got), tt.want) {
				t.Errorf("Apply() = %v, want %v", names(got), tt.want)
			}
		})
	}
}

func TestRecord_Lookup(t *testing.T) {
	r := Record{
		"metadata": map[string]any{"name": "Desk"},
		"services": []any{map[string]any{"rid": "s1"}},
		"a.b":      "literal",
	}

	tests := []struct {
		name   string
		want   any
		wantOK bool
	}{
		{"metadata.name", "Desk", true},
		{"services.0.rid", "s1", true},
		{"a.b", "literal", true},
		{"services.1.rid", nil, false},
		{"metadata.missing", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, ok := r.Lookup(tt.name)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestApplyTo_MappingObjects(t *testing.T) {
	metadata := mapping.MustSchema("Metadata", mapping.F("name", mapping.String))
	room := mapping.MustSchema("Room",
		mapping.F("id", mapping.String),
		mapping.F("metadata", mapping.Nested(metadata)),
		mapping.F("children", mapping.SequenceOf(mapping.String)),
	)

	rooms, err := mapping.DecodeList([]any{
		map[string]any{"id": "1", "metadata": map[string]any{"name": "Lounge"}},
		map[string]any{"id": "2", "metadata": map[string]any{"name": "Kitchen"}},
		map[string]any{"id": "3"},
	}, room)
	if err != nil {
		t.Fatalf("DecodeList() error = %v", err)
	}

	set, err := Parse(`{"metadata.name[eq]": "Lounge"}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err := ApplyTo(set, rooms)
	if err != nil {
		t.Fatalf("ApplyTo() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if id, _ := got[0].String("id"); id != "1" {
		t.Errorf("id = %q, want 1", id)
	}

	set, err = Parse(`{"colour[eq]": "red"}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := ApplyTo(set, rooms); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("ApplyTo(undeclared) error = %v, want ErrFieldNotFound", err)
	}
}
