package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Expression is one parsed filter condition: field, operator and literal.
type Expression struct {
	Field    string
	Operator string
	Value    any

	pred Predicate
}

// Match reports whether value satisfies the expression.
func (e Expression) Match(value any) bool {
	return e.pred.Match(value)
}

// String renders the expression in key form, e.g. `room[eq]="Lounge"`.
func (e Expression) String() string {
	lit, err := json.Marshal(e.Value)
	if err != nil {
		lit = []byte(fmt.Sprint(e.Value))
	}
	return fmt.Sprintf("%s[%s]=%s", e.Field, e.Operator, lit)
}

// Set is an ordered, conjunctive collection of expressions. The zero Set is
// empty and matches everything. A Set is immutable once parsed.
type Set struct {
	exprs []Expression
}

// Expressions returns the expressions in parse order. The slice is a copy.
func (s Set) Expressions() []Expression {
	out := make([]Expression, len(s.exprs))
	copy(out, s.exprs)
	return out
}

// Len returns the number of expressions.
func (s Set) Len() int { return len(s.exprs) }

// IsEmpty reports whether the set has no expressions.
func (s Set) IsEmpty() bool { return len(s.exprs) == 0 }

// String joins the expressions with " AND ".
func (s Set) String() string {
	parts := make([]string, len(s.exprs))
	for i, e := range s.exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, " AND ")
}

// Parser turns filter text into a Set using an operator registry.
type Parser struct {
	ops *Registry
}

// NewParser creates a parser over ops. A nil ops uses DefaultRegistry.
func NewParser(ops *Registry) *Parser {
	if ops == nil {
		ops = defaultRegistry
	}
	return &Parser{ops: ops}
}

// Parse parses text with the default registry.
func Parse(text string) (Set, error) {
	return NewParser(nil).Parse(text)
}

// ParseMap parses an already-decoded mapping with the default registry.
func ParseMap(m map[string]any) (Set, error) {
	return NewParser(nil).ParseMap(m)
}

// Parse parses a JSON object whose keys have the form field[operator], for
// example {"room[eq]": "Lounge"}. Expressions keep the textual key order, and
// a repeated key yields one expression per occurrence. Parsing is
// all-or-nothing.
func (p *Parser) Parse(text string) (Set, error) {
	if strings.TrimSpace(text) == "" {
		return Set{}, &SyntaxError{Reason: "empty filter text"}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Set{}, &SyntaxError{Reason: "invalid JSON", Cause: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Set{}, &SyntaxError{Reason: "filter text must be a JSON object"}
	}

	var exprs []Expression
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Set{}, &SyntaxError{Reason: "invalid JSON", Cause: err}
		}
		key, ok := tok.(string)
		if !ok {
			return Set{}, &SyntaxError{Reason: "invalid JSON key"}
		}

		var literal any
		if err := dec.Decode(&literal); err != nil {
			return Set{}, &SyntaxError{Key: key, Reason: "invalid JSON value", Cause: err}
		}

		expr, err := p.parseExpression(key, literal)
		if err != nil {
			return Set{}, err
		}
		exprs = append(exprs, expr)
	}

	if _, err := dec.Token(); err != nil {
		return Set{}, &SyntaxError{Reason: "invalid JSON", Cause: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Set{}, &SyntaxError{Reason: "trailing data after filter object"}
	}

	return Set{exprs: exprs}, nil
}

// ParseMap parses an already-decoded mapping. Go maps carry no order, so
// expressions are ordered by key.
func (p *Parser) ParseMap(m map[string]any) (Set, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	exprs := make([]Expression, 0, len(keys))
	for _, key := range keys {
		expr, err := p.parseExpression(key, m[key])
		if err != nil {
			return Set{}, err
		}
		exprs = append(exprs, expr)
	}
	return Set{exprs: exprs}, nil
}

func (p *Parser) parseExpression(key string, literal any) (Expression, error) {
	field, op, err := splitKey(key)
	if err != nil {
		return Expression{}, err
	}

	ctor, ok := p.ops.Lookup(op)
	if !ok {
		return Expression{}, &UnknownOperatorError{Key: key, Operator: op}
	}
	pred, err := ctor(literal)
	if err != nil {
		return Expression{}, &SyntaxError{Key: key, Reason: "invalid literal for " + op, Cause: err}
	}

	return Expression{Field: field, Operator: op, Value: literal, pred: pred}, nil
}

// splitKey splits "field[op]" at the first bracket. The key must end with
// the closing bracket and the operator must not contain brackets.
func splitKey(key string) (field, op string, err error) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") || open == len(key)-1 {
		return "", "", &SyntaxError{Key: key, Reason: "expected field[operator]"}
	}

	field = key[:open]
	op = key[open+1 : len(key)-1]
	if field == "" {
		return "", "", &SyntaxError{Key: key, Reason: "empty field name"}
	}
	if strings.ContainsAny(op, "[]") {
		return "", "", &SyntaxError{Key: key, Reason: "unbalanced brackets"}
	}
	return field, op, nil
}
