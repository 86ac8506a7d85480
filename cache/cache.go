package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilStore        = errors.New("cache: store is nil")
	ErrInvalidKey      = errors.New("cache: key is invalid")
	ErrKeyTooLong      = errors.New("cache: key exceeds max length")
	ErrUnknownProvider = errors.New("cache: unknown provider")
)

// Store is the external key/value tier.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get should never error; it returns (nil, false) on miss.
// - TTL: zero means the entry does not expire.
type Store interface {
	// Get retrieves a stored value. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// Close releases resources held by s when it implements io.Closer.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Separators between marker and payload.
const (
	ObjectSeparator     byte = '|'
	AttachmentSeparator byte = '#'
)

// Entry is a payload paired with the freshness marker it was stored under.
type Entry struct {
	Marker  string
	Payload []byte
}

// Encode serializes the entry as marker + sep + payload.
func (e Entry) Encode(sep byte) []byte {
	out := make([]byte, 0, len(e.Marker)+1+len(e.Payload))
	out = append(out, e.Marker...)
	out = append(out, sep)
	return append(out, e.Payload...)
}

// DecodeEntry splits data at the first sep. It reports false when the
// separator is missing.
func DecodeEntry(data []byte, sep byte) (Entry, bool) {
	i := bytes.IndexByte(data, sep)
	if i < 0 {
		return Entry{}, false
	}
	return Entry{Marker: string(data[:i]), Payload: data[i+1:]}, true
}
