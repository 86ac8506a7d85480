package sdkloader

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudobjects/cloudobjects-go/cache"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

// NamespaceResolver resolves the authenticating namespace.
// *retriever.Retriever satisfies it.
type NamespaceResolver interface {
	AuthenticatingNamespace(ctx context.Context) (*retriever.Object, error)
}

// Loader builds and memoizes SDK values.
type Loader struct {
	resolver NamespaceResolver
	registry *Registry
	reader   *jsonld.Reader
	keyer    cache.Keyer

	mu     sync.Mutex
	values map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) Option {
	return func(l *Loader) { l.registry = r }
}

// WithReader sets the reader passed to factories.
func WithReader(r *jsonld.Reader) Option {
	return func(l *Loader) { l.reader = r }
}

// NewLoader creates a Loader over DefaultRegistry.
func NewLoader(resolver NamespaceResolver, opts ...Option) *Loader {
	l := &Loader{
		resolver: resolver,
		registry: DefaultRegistry(),
		reader:   jsonld.NewReader(nil),
		keyer:    cache.NewHashKeyer(),
		values:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the value for name and opts, building it on first use.
// Unknown names yield ErrUnsupported.
func (l *Loader) Get(ctx context.Context, name string, opts map[string]any) (any, error) {
	factory, ok := l.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: <%s>", ErrUnsupported, name)
	}

	key, err := l.keyer.Key(name, opts)
	if err != nil {
		return nil, fmt.Errorf("sdkloader: %w", err)
	}

	l.mu.Lock()
	v, ok := l.values[key]
	l.mu.Unlock()
	if ok {
		return v, nil
	}

	obj, err := l.resolver.AuthenticatingNamespace(ctx)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: authenticating namespace", retriever.ErrNotFound)
	}

	v, err = factory(obj.Node(), l.reader, opts)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.values[key]; ok {
		return existing, nil
	}
	l.values[key] = v
	return v, nil
}

// Load is Get with the result asserted to T.
func Load[T any](ctx context.Context, l *Loader, name string, opts map[string]any) (T, error) {
	var zero T
	v, err := l.Get(ctx, name, opts)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("sdkloader: %q yields %T, not %T", name, v, zero)
	}
	return t, nil
}
