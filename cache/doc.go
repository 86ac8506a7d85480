// Package cache implements the resolution cache used by the retriever.
//
// Lookups run through an ordered chain of tiers: a process-local map
// (Local), an optional read-only static snapshot (Snapshot), and an
// optional external key/value store (Store) whose entries carry a
// freshness marker. Store implementations are provided for memory,
// pebble (on-disk) and Redis.
package cache
