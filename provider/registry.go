package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds an adapter from its dependencies.
type Factory func(deps Deps) (Adapter, error)

// Registry maps login types to adapter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[LoginType]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[LoginType]Factory)}
}

// DefaultRegistry returns a registry holding every built-in adapter.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Google, newGoogle)
	r.Register(Reddit, newReddit)
	r.Register(Discord, newDiscord)
	r.Register(Twitch, newTwitch)
	r.Register(GitHub, newGitHub)
	r.Register(Twitter, newTwitter)
	r.Register(Passwordless, newPasswordless)
	return r
}

// Register sets the factory for a login type, replacing any previous one.
func (r *Registry) Register(t LoginType, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = factory
}

// New builds the adapter for t.
func (r *Registry) New(t LoginType, deps Deps) (Adapter, error) {
	r.mu.RLock()
	factory, ok := r.factories[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider: no adapter registered for %q", t)
	}
	return factory(deps)
}

// List returns the registered login types, sorted.
func (r *Registry) List() []LoginType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]LoginType, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

var builtins = DefaultRegistry()

// New builds the built-in adapter for t.
func New(t LoginType, deps Deps) (Adapter, error) {
	return builtins.New(t, deps)
}
