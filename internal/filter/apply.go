package filter

import (
	"strconv"
	"strings"
)

// Item is anything a filter can read fields from. ok is false when the item
// does not expose the named field at all; an exposed but empty field returns
// (nil, true).
//
// *mapping.Object satisfies Item, including dotted paths into nested objects.
type Item interface {
	Lookup(name string) (value any, ok bool)
}

// Apply returns the items that satisfy every expression in set, in input
// order. An empty set returns items unchanged.
//
// Every item is checked against every expression, so the result and any
// *FieldNotFoundError do not depend on expression order.
func Apply(set Set, items []Item) ([]Item, error) {
	return ApplyTo(set, items)
}

// ApplyTo is Apply for a slice of any concrete Item type.
func ApplyTo[T Item](set Set, items []T) ([]T, error) {
	if set.IsEmpty() {
		return items, nil
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		keep, err := matchAll(set, item)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, item)
		}
	}
	return out, nil
}

// Match reports whether item satisfies every expression in set.
func Match(set Set, item Item) (bool, error) {
	return matchAll(set, item)
}

// matchAll evaluates all expressions before deciding so that a missing
// field is reported even when an earlier expression already failed. When
// several fields are missing the lexically smallest is reported.
func matchAll(set Set, item Item) (bool, error) {
	keep := true
	var missing string
	for _, e := range set.exprs {
		v, ok := item.Lookup(e.Field)
		if !ok {
			if missing == "" || e.Field < missing {
				missing = e.Field
			}
			continue
		}
		if !e.Match(v) {
			keep = false
		}
	}
	if missing != "" {
		return false, &FieldNotFoundError{Field: missing}
	}
	return keep, nil
}

// Record adapts a plain mapping to Item. Dotted names descend into nested
// mappings and numeric segments index into slices.
type Record map[string]any

// Lookup implements Item.
func (r Record) Lookup(name string) (any, bool) {
	if name == "" {
		return nil, false
	}
	if v, ok := r[name]; ok {
		return v, true
	}

	var cur any = map[string]any(r)
	for _, part := range strings.Split(name, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case Record:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Records converts mappings into Items.
func Records(ms []map[string]any) []Item {
	out := make([]Item, len(ms))
	for i, m := range ms {
		out[i] = Record(m)
	}
	return out
}
