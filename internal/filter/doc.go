// Package filter parses and evaluates declarative collection filters.
//
// Filter text is a JSON object whose keys name a field and an operator:
//
//	{"metadata.name[eq]": "Lounge", "dimming.brightness[gte]": 50}
//
// Each key becomes an Expression. The expressions of a Set are combined with
// AND, and Apply keeps the items that satisfy all of them.
//
// # Operators
//
// Operators are looked up in a Registry that maps a symbol to a predicate
// constructor. The default registry holds eq, ne, gt, gte, lt, lte and in.
// New operators are added with Registry.Register without touching the
// parser.
//
// # Items
//
// Anything with a Lookup(name) (any, bool) method can be filtered;
// *mapping.Object and Record both qualify. Referencing a field that an item
// does not expose fails with *FieldNotFoundError rather than silently
// dropping or keeping the item.
package filter
