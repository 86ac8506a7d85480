package cache

import (
	"context"
	"time"
)

// Tier identifies where a resolution was served from.
type Tier int

const (
	TierNone Tier = iota
	TierLocal
	TierSnapshot
	TierStore
	TierRemote
)

// String returns the tier name used in logs and metric attributes.
func (t Tier) String() string {
	switch t {
	case TierLocal:
		return "local"
	case TierSnapshot:
		return "snapshot"
	case TierStore:
		return "store"
	case TierRemote:
		return "remote"
	default:
		return "none"
	}
}

// Request describes one lookup through the snapshot and store tiers.
type Request struct {
	// Key is the store key.
	Key string

	// SnapshotName is the snapshot entry to consult. Empty skips the
	// snapshot tier.
	SnapshotName string

	// Marker is the caller's freshness token. A stored entry is fresh only
	// when its marker equals Marker byte for byte.
	Marker string

	// TrustStored serves any stored entry when Marker is empty, leaving
	// expiry to the store's TTL.
	TrustStored bool

	// ServeStale returns a stale stored entry when the fetch fails or
	// finds nothing.
	ServeStale bool

	// Separator between marker and payload; zero means ObjectSeparator.
	Separator byte

	// TTL for entries written after a fetch.
	TTL time.Duration
}

func (r Request) separator() byte {
	if r.Separator == 0 {
		return ObjectSeparator
	}
	return r.Separator
}

// Result is the outcome of a lookup.
type Result struct {
	Entry

	// Tier that produced the entry; TierNone when nothing was found.
	Tier Tier

	// Stale is set when the entry came from the store with a marker that
	// did not match the request.
	Stale bool

	// StoreErr is the store write failure after a fetch. The fetched entry
	// is still returned.
	StoreErr error
}

// FetchFunc loads an entry from the origin. It reports found=false for
// absent entries; errors are origin failures.
type FetchFunc func(ctx context.Context) (entry Entry, found bool, err error)

// Tiered chains the snapshot and store tiers in front of a fetch. Both
// tiers are optional.
//
// Contract:
// - Concurrency: safe for concurrent use if the tiers are.
// - Expiry: TTLs are passed to the store; Tiered does not enforce them.
type Tiered struct {
	snapshot Snapshot
	store    Store
}

// NewTiered creates a tier chain. Either argument may be nil.
func NewTiered(snapshot Snapshot, store Store) *Tiered {
	return &Tiered{snapshot: snapshot, store: store}
}

// Store returns the external store, or nil.
func (t *Tiered) Store() Store { return t.store }

// Snapshot returns the static snapshot, or nil.
func (t *Tiered) Snapshot() Snapshot { return t.snapshot }

// Lookup consults the snapshot and then the store. On a store entry whose
// marker does not match, it returns that entry with Stale set and ok false.
func (t *Tiered) Lookup(ctx context.Context, req Request) (Result, bool) {
	if t.snapshot != nil && req.SnapshotName != "" {
		if data, ok := t.snapshot.Read(req.SnapshotName); ok {
			return Result{Entry: Entry{Payload: data}, Tier: TierSnapshot}, true
		}
	}

	if t.store == nil || ValidateKey(req.Key) != nil {
		return Result{}, false
	}
	data, ok := t.store.Get(ctx, req.Key)
	if !ok {
		return Result{}, false
	}
	entry, ok := DecodeEntry(data, req.separator())
	if !ok {
		return Result{}, false
	}

	fresh := (req.Marker != "" && entry.Marker == req.Marker) || (req.Marker == "" && req.TrustStored)
	return Result{Entry: entry, Tier: TierStore, Stale: !fresh}, fresh
}

// Put writes an entry to the store. It is a no-op without a store.
func (t *Tiered) Put(ctx context.Context, key string, sep byte, entry Entry, ttl time.Duration) error {
	if t.store == nil {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	if sep == 0 {
		sep = ObjectSeparator
	}
	return t.store.Set(ctx, key, entry.Encode(sep), ttl)
}

// Resolve runs the chain: snapshot, fresh store entry, then fetch. A
// fetched entry overwrites the stored one with req.TTL. Store write
// failures do not fail the resolution; they are reported in
// Result.StoreErr.
func (t *Tiered) Resolve(ctx context.Context, req Request, fetch FetchFunc) (Result, error) {
	cached, ok := t.Lookup(ctx, req)
	if ok {
		return cached, nil
	}

	entry, found, err := fetch(ctx)
	if err != nil || !found {
		if req.ServeStale && cached.Stale {
			return cached, nil
		}
		return Result{}, err
	}

	putErr := t.Put(ctx, req.Key, req.separator(), entry, req.TTL)
	return Result{Entry: entry, Tier: TierRemote, StoreErr: putErr}, nil
}
