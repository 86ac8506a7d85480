package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
)

const expiryHeaderLen = 8

// PebbleStore is an on-disk Store backed by pebble. Each value is prefixed
// with its expiry as big-endian Unix nanoseconds (zero for none); expired
// entries are dropped when read.
type PebbleStore struct {
	db  *pebble.DB
	now func() time.Time
}

// OpenPebbleStore opens or creates a store in dir. opts may be nil.
func OpenPebbleStore(dir string, opts *pebble.Options) (*PebbleStore, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db, now: time.Now}, nil
}

// Get retrieves a value. Returns (nil, false) on miss, expiry or read error.
func (s *PebbleStore) Get(_ context.Context, key string) ([]byte, bool) {
	v, closer, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	defer closer.Close()

	if len(v) < expiryHeaderLen {
		return nil, false
	}
	if exp := int64(binary.BigEndian.Uint64(v[:expiryHeaderLen])); exp != 0 && s.now().UnixNano() > exp {
		_ = s.db.Delete([]byte(key), pebble.NoSync)
		return nil, false
	}

	out := make([]byte, len(v)-expiryHeaderLen)
	copy(out, v[expiryHeaderLen:])
	return out, true
}

// Set stores a value. TTL=0 keeps the entry until deleted.
func (s *PebbleStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	var exp int64
	if ttl > 0 {
		exp = s.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, expiryHeaderLen+len(value))
	binary.BigEndian.PutUint64(buf, uint64(exp))
	copy(buf[expiryHeaderLen:], value)
	return s.db.Set([]byte(key), buf, pebble.NoSync)
}

// Delete removes a value. Idempotent - no error on miss.
func (s *PebbleStore) Delete(_ context.Context, key string) error {
	err := s.db.Delete([]byte(key), pebble.NoSync)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	return err
}

// Close flushes and closes the database.
func (s *PebbleStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*PebbleStore)(nil)
