package transcription

import (
	"fmt"
	"slices"
	"sync"
)

// Factory builds a Provider on demand.
type Factory func() (Provider, error)

// Registry maps backend names to factories so the configured backend is
// only constructed (and its credentials checked) when selected.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named factory, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Create builds the provider registered under name.
func (r *Registry) Create(name string) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("transcription: unknown backend %q (available: %v)", name, r.Names())
	}
	p, err := f()
	if err != nil {
		return nil, fmt.Errorf("transcription: build %s backend: %w", name, err)
	}
	return p, nil
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
