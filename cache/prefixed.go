package cache

import (
	"context"
	"time"
)

// DefaultPrefix namespaces SDK entries in shared stores.
const DefaultPrefix = "clobj:"

// Prefixed namespaces every key of an underlying Store.
type Prefixed struct {
	store  Store
	prefix string
}

// NewPrefixed wraps store so every key is stored as prefix+key.
func NewPrefixed(store Store, prefix string) *Prefixed {
	return &Prefixed{store: store, prefix: prefix}
}

func (p *Prefixed) Get(ctx context.Context, key string) ([]byte, bool) {
	return p.store.Get(ctx, p.prefix+key)
}

func (p *Prefixed) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.store.Set(ctx, p.prefix+key, value, ttl)
}

func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.store.Delete(ctx, p.prefix+key)
}

// Close closes the underlying store.
func (p *Prefixed) Close() error {
	return Close(p.store)
}

// Unwrap returns the underlying store.
func (p *Prefixed) Unwrap() Store { return p.store }

var _ Store = (*Prefixed)(nil)
