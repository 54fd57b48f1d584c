package mapping

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named schemas. Schemas are registered once during start-up,
// then the registry is frozen and read concurrently.
type Registry struct {
	schemas map[string]*Schema
	frozen  bool
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

// Register adds s and, recursively, every schema it references.
//
// Registering the same *Schema twice is a no-op. A different schema under a
// name that is already taken fails with ErrSchemaExists, and any registration
// after Freeze fails with ErrRegistryFrozen. Registration is all-or-nothing.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}

	pending := make(map[string]*Schema)
	if err := r.collect(s, pending, make(map[*Schema]bool)); err != nil {
		return err
	}
	for name, schema := range pending {
		r.schemas[name] = schema
	}
	return nil
}

// collect walks s depth-first and gathers schemas that are not yet
// registered. onPath guards the walk against a reference cycle, which
// NewSchema cannot produce but a hand-built Schema value could.
func (r *Registry) collect(s *Schema, pending map[string]*Schema, onPath map[*Schema]bool) error {
	if onPath[s] {
		return fmt.Errorf("%w: cycle through %s", ErrInvalidSchema, s.name)
	}
	if existing, ok := r.schemas[s.name]; ok {
		if existing != s {
			return fmt.Errorf("%w: %s", ErrSchemaExists, s.name)
		}
		return nil
	}
	if existing, ok := pending[s.name]; ok {
		if existing != s {
			return fmt.Errorf("%w: %s", ErrSchemaExists, s.name)
		}
		return nil
	}

	onPath[s] = true
	defer delete(onPath, s)

	for _, dep := range s.dependencies() {
		if err := r.collect(dep, pending, onPath); err != nil {
			return err
		}
	}
	pending[s.name] = s
	return nil
}

// Get returns the schema registered under name.
func (r *Registry) Get(name string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
	return s, nil
}

// MustGet is like Get but panics when name is not registered.
func (r *Registry) MustGet(name string) *Schema {
	s, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns the registered schema names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns descriptions of all registered schemas, sorted by name.
func (r *Registry) Describe() []Description {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Description, 0, len(names))
	for _, name := range names {
		if s, ok := r.schemas[name]; ok {
			out = append(out, s.Describe())
		}
	}
	return out
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
