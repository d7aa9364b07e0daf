package link

import (
	"fmt"
	"sync"

	"github.com/dealflow/backend/internal/domain/shared"
)

// Resolver checks that a linkable is exported by some module
type Resolver interface {
	Resolve(l Linkable) error
}

// EntityRegistry records the linkables each business module exports
type EntityRegistry struct {
	mu       sync.RWMutex
	entities map[Linkable]struct{}
	order    []Linkable
}

// NewEntityRegistry creates an empty registry
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{
		entities: make(map[Linkable]struct{}),
	}
}

// Register exports entities from module
func (r *EntityRegistry) Register(module string, entities ...string) error {
	if module == "" {
		return fmt.Errorf("%w: module name cannot be empty", shared.ErrInvalidInput)
	}
	if len(entities) == 0 {
		return fmt.Errorf("%w: module '%s' exports no entities", shared.ErrInvalidInput, module)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entity := range entities {
		if entity == "" {
			return fmt.Errorf("%w: module '%s' exports an empty entity name", shared.ErrInvalidInput, module)
		}
		l := NewLinkable(module, entity)
		if _, exists := r.entities[l]; exists {
			return fmt.Errorf("%w: linkable '%s' already registered", shared.ErrAlreadyExists, l)
		}
		r.entities[l] = struct{}{}
		r.order = append(r.order, l)
	}
	return nil
}

// Resolve returns ErrUnresolvableEntity when l was never exported
func (r *EntityRegistry) Resolve(l Linkable) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.entities[l]; !exists {
		return fmt.Errorf("%w: '%s'", ErrUnresolvableEntity, l)
	}
	return nil
}

// Lookup resolves module and entity names to a linkable
func (r *EntityRegistry) Lookup(module, entity string) (Linkable, error) {
	l := NewLinkable(module, entity)
	if err := r.Resolve(l); err != nil {
		return Linkable{}, err
	}
	return l, nil
}

// Linkables returns every exported linkable in registration order
func (r *EntityRegistry) Linkables() []Linkable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Linkable, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of exported linkables
func (r *EntityRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
