package filter

import (
	"errors"
	"testing"
)

func TestParse_KeyOrderPreserved(t *testing.T) {
	set, err := Parse(`{"z[eq]": 1, "a[eq]": "x", "m[gt]": 2.5}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	exprs := set.Expressions()
	want := []struct{ field, op string }{{"z", "eq"}, {"a", "eq"}, {"m", "gt"}}
	if len(exprs) != len(want) {
		t.Fatalf("len = %d, want %d", len(exprs), len(want))
	}
	for i, w := range want {
		if exprs[i].Field != w.field || exprs[i].Operator != w.op {
			t.Errorf("exprs[%d] = %s[%s], want %s[%s]", i, exprs[i].Field, exprs[i].Operator, w.field, w.op)
		}
	}
}

func TestParse_FieldUsesFirstBracket(t *testing.T) {
	set, err := Parse(`{"metadata.name[eq]": "Lounge"}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	e := set.Expressions()[0]
	if e.Field != "metadata.name" || e.Operator != "eq" || e.Value != "Lounge" {
		t.Errorf("expression = %+v", e)
	}
	if got := set.String(); got != `metadata.name[eq]="Lounge"` {
		t.Errorf("String() = %s", got)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantKey string
	}{
		{"no brackets", `{"name": "x"}`, "name"},
		{"unterminated", `{"name[eq": "x"}`, "name[eq"},
		{"trailing text", `{"name[eq]x": "x"}`, "name[eq]x"},
		{"empty field", `{"[eq]": "x"}`, "[eq]"},
		{"nested bracket", `{"a[e[q]]": 1}`, "a[e[q]]"},
		{"invalid value", `{"name[eq]": }`, "name[eq]"},
		{"invalid json", `{1: 2}`, ""},
		{"not an object", `["name[eq]"]`, ""},
		{"empty text", ``, ""},
		{"trailing data", `{"a[eq]": 1} {}`, ""},
		{"in needs array", `{"a[in]": 1}`, "a[in]"},
		{"gt needs scalar", `{"a[gt]": true}`, "a[gt]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			var synErr *SyntaxError
			if !errors.As(err, &synErr) {
				t.Fatalf("Parse(%s) error = %v, want *SyntaxError", tt.text, err)
			}
			if synErr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", synErr.Key, tt.wantKey)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Error("errors.Is(err, ErrSyntax) = false")
			}
		})
	}
}

func TestParse_UnknownOperator(t *testing.T) {
	_, err := Parse(`{"room[eq]": "x", "name[like]": "Lou%"}`)

	var opErr *UnknownOperatorError
	if !errors.As(err, &opErr) {
		t.Fatalf("Parse() error = %v, want *UnknownOperatorError", err)
	}
	if opErr.Key != "name[like]" || opErr.Operator != "like" {
		t.Errorf("error = %+v", opErr)
	}
	if !errors.Is(err, ErrUnknownOperator) {
		t.Error("errors.Is(err, ErrUnknownOperator) = false")
	}
}

func TestParse_DuplicateKeys(t *testing.T) {
	set, err := Parse(`{"a[gt]": 1, "a[gt]": 5}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", set.Len())
	}
}

func TestParse_EmptyObject(t *testing.T) {
	set, err := Parse(`{}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !set.IsEmpty() {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
}

func TestParseMap_SortedKeys(t *testing.T) {
	set, err := ParseMap(map[string]any{"b[eq]": 2, "a[eq]": 1})
	if err != nil {
		t.Fatalf("ParseMap() error = %v", err)
	}
	exprs := set.Expressions()
	if exprs[0].Field != "a" || exprs[1].Field != "b" {
		t.Errorf("order = %s, %s; want a, b", exprs[0].Field, exprs[1].Field)
	}

	if _, err := ParseMap(map[string]any{"plain": 1}); !errors.Is(err, ErrSyntax) {
		t.Errorf("ParseMap(plain) error = %v, want ErrSyntax", err)
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	contains := func(lit any) (Predicate, error) {
		want, _ := lit.(string)
		return PredicateFunc(func(v any) bool {
			s, ok := v.(string)
			return ok && want != "" && len(s) >= len(want) && s[:len(want)] == want
		}), nil
	}
	if err := reg.Register("prefix", contains); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register("prefix", contains); !errors.Is(err, ErrOperatorExists) {
		t.Errorf("Register(duplicate) error = %v, want ErrOperatorExists", err)
	}
	if err := reg.Register("a]b", contains); err == nil {
		t.Error("Register(bracket) should fail")
	}

	set, err := NewParser(reg).Parse(`{"name[prefix]": "Lou"}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err := Apply(set, Records([]map[string]any{{"name": "Lounge"}, {"name": "Kitchen"}}))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}

	if _, err := Parse(`{"name[prefix]": "Lou"}`); !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("default registry should not see custom operator, error = %v", err)
	}
}
