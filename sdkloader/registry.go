package sdkloader

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudobjects/cloudobjects-go/jsonld"
)

// Factory builds an SDK value from the namespace node and caller options.
type Factory func(ns *jsonld.Node, r *jsonld.Reader, opts map[string]any) (any, error)

// Registry manages SDK factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a new registry holding the built-in factories.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("aws", AWS)
	_ = r.Register("getstream", GetStream)
	_ = r.Register("pusher", Pusher)
	return r
}

// Register adds a factory.
func (r *Registry) Register(name string, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	r.factories[name] = factory
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[strings.TrimSpace(name)]
	return f, ok
}

// List returns registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
