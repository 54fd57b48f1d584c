package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Predicate tests one field value against the literal it was built from.
type Predicate interface {
	Match(value any) bool
}

// PredicateFunc adapts an ordinary function to Predicate.
type PredicateFunc func(value any) bool

// Match calls f(value).
func (f PredicateFunc) Match(value any) bool { return f(value) }

// Constructor builds the predicate for one operator from a literal. It
// returns an error when the literal is unusable with the operator.
type Constructor func(literal any) (Predicate, error)

// Operator symbols registered by default.
const (
	OpEqual              = "eq"
	OpNotEqual           = "ne"
	OpGreaterThan        = "gt"
	OpGreaterThanOrEqual = "gte"
	OpLessThan           = "lt"
	OpLessThanOrEqual    = "lte"
	OpIn                 = "in"
)

var (
	errNotOrderable = errors.New("literal must be a number or a string")
	errNotList      = errors.New("literal must be an array")
)

// Registry maps operator symbols to predicate constructors.
type Registry struct {
	ops map[string]Constructor
	mu  sync.RWMutex
}

// NewRegistry creates a registry holding the default operators.
func NewRegistry() *Registry {
	r := &Registry{ops: make(map[string]Constructor)}
	r.ops[OpEqual] = newEqual
	r.ops[OpNotEqual] = newNotEqual
	r.ops[OpGreaterThan] = newOrdered(func(c int) bool { return c > 0 })
	r.ops[OpGreaterThanOrEqual] = newOrdered(func(c int) bool { return c >= 0 })
	r.ops[OpLessThan] = newOrdered(func(c int) bool { return c < 0 })
	r.ops[OpLessThanOrEqual] = newOrdered(func(c int) bool { return c <= 0 })
	r.ops[OpIn] = newIn
	return r
}

// Register adds an operator. Symbols must be non-empty, must not contain
// brackets and must not already be registered.
func (r *Registry) Register(symbol string, ctor Constructor) error {
	if symbol == "" || ctor == nil {
		return fmt.Errorf("filter: invalid operator registration %q", symbol)
	}
	for _, c := range symbol {
		if c == '[' || c == ']' {
			return fmt.Errorf("filter: operator %q contains a bracket", symbol)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ops[symbol]; exists {
		return fmt.Errorf("%w: %s", ErrOperatorExists, symbol)
	}
	r.ops[symbol] = ctor
	return nil
}

// Lookup returns the constructor registered for symbol.
func (r *Registry) Lookup(symbol string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.ops[symbol]
	return ctor, ok
}

// Symbols returns the registered operator symbols in sorted order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.ops))
	for s := range r.ops {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry used by the package-level Parse
// functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func newEqual(literal any) (Predicate, error) {
	want := normalize(literal)
	return PredicateFunc(func(v any) bool {
		return equal(normalize(v), want)
	}), nil
}

func newNotEqual(literal any) (Predicate, error) {
	want := normalize(literal)
	return PredicateFunc(func(v any) bool {
		return !equal(normalize(v), want)
	}), nil
}

func newOrdered(accept func(cmp int) bool) Constructor {
	return func(literal any) (Predicate, error) {
		want := normalize(literal)
		switch want.(type) {
		case float64, string:
		default:
			return nil, errNotOrderable
		}
		return PredicateFunc(func(v any) bool {
			c, ok := compare(normalize(v), want)
			return ok && accept(c)
		}), nil
	}
}

func newIn(literal any) (Predicate, error) {
	items, ok := literal.([]any)
	if !ok {
		return nil, errNotList
	}
	wants := make([]any, len(items))
	for i, item := range items {
		wants[i] = normalize(item)
	}
	return PredicateFunc(func(v any) bool {
		got := normalize(v)
		for _, want := range wants {
			if equal(got, want) {
				return true
			}
		}
		return false
	}), nil
}

// normalize maps every numeric representation to float64 so that a JSON
// literal 1 matches an int64 field value of 1.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	default:
		return v
	}
}

// equal compares normalized scalars. Values of different kinds are never
// equal; composite values never match.
func equal(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

// compare orders two normalized numbers or two strings.
func compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}
