package astral

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/megaverse/megaverse/pkg/engine"
)

// Factory constructs a variant bound to a candidate and transport.
type Factory func(candidateID string, t Transport) engine.Placeable

// Registry maps canonical variant names to factories. Adding a variant
// requires only a Register call; callers resolve by name.
type Registry struct {
	// mu protects the registry state.
	mu sync.RWMutex

	// factories maps lowercase variant name to its factory.
	factories map[string]Factory

	// candidateID is shared by every instance the registry builds.
	candidateID string

	transport Transport
}

var _ engine.Resolver = (*Registry)(nil)

// NewEmptyRegistry creates a registry with no variants.
func NewEmptyRegistry(candidateID string, t Transport) *Registry {
	return &Registry{
		factories:   make(map[string]Factory),
		candidateID: candidateID,
		transport:   t,
	}
}

// NewRegistry creates a registry holding the default variants.
func NewRegistry(candidateID string, t Transport) *Registry {
	r := NewEmptyRegistry(candidateID, t)
	r.mustRegister(PolyanetDescriptor.Name, func(id string, t Transport) engine.Placeable { return NewPolyanet(id, t) })
	r.mustRegister(SoloonDescriptor.Name, func(id string, t Transport) engine.Placeable { return NewSoloon(id, t) })
	r.mustRegister(ComethDescriptor.Name, func(id string, t Transport) engine.Placeable { return NewCometh(id, t) })
	return r
}

// Register adds a variant. Names are case-insensitive and must be unique.
func (r *Registry) Register(name string, factory Factory) error {
	key := canonicalName(name)
	if key == "" {
		return fmt.Errorf("variant name is required")
	}
	if factory == nil {
		return fmt.Errorf("variant %s has no factory", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("variant %s already registered", key)
	}
	r.factories[key] = factory
	return nil
}

func (r *Registry) mustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Resolve constructs the variant registered under name.
func (r *Registry) Resolve(name string) (engine.Placeable, error) {
	key := canonicalName(name)

	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()

	if !ok {
		return nil, engine.NewUnknownVariantError(key)
	}
	return factory(r.candidateID, r.transport), nil
}

// Names returns the registered variant names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// canonicalName is the registry key for a variant name.
func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
