package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

func newTestPebbleStore(t *testing.T) *PebbleStore {
	t.Helper()
	s, err := OpenPebbleStore("cache", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		t.Fatalf("OpenPebbleStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPebbleStore_GetSetDelete(t *testing.T) {
	s := newTestPebbleStore(t)
	ctx := context.Background()

	if _, ok := s.Get(ctx, "missing"); ok {
		t.Error("Get() on empty store should miss")
	}
	if err := s.Set(ctx, "clobj:coid://example.com", []byte("r1|{}"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok := s.Get(ctx, "clobj:coid://example.com")
	if !ok || string(got) != "r1|{}" {
		t.Errorf("Get() = (%q, %v)", got, ok)
	}
	if err := s.Delete(ctx, "clobj:coid://example.com"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := s.Get(ctx, "clobj:coid://example.com"); ok {
		t.Error("Get() after Delete() should miss")
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() on missing key error = %v", err)
	}
}

func TestPebbleStore_Expiry(t *testing.T) {
	s := newTestPebbleStore(t)
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.Set(ctx, "short", []byte("v"), time.Second)
	_ = s.Set(ctx, "forever", []byte("v"), 0)

	now = now.Add(time.Hour)
	if _, ok := s.Get(ctx, "short"); ok {
		t.Error("expired entry should miss")
	}
	if _, ok := s.Get(ctx, "forever"); !ok {
		t.Error("TTL=0 entry should not expire")
	}
}

func TestPebbleStore_EmptyValue(t *testing.T) {
	s := newTestPebbleStore(t)
	ctx := context.Background()
	_ = s.Set(ctx, "empty", nil, 0)
	got, ok := s.Get(ctx, "empty")
	if !ok || len(got) != 0 {
		t.Errorf("Get() = (%q, %v), want empty hit", got, ok)
	}
}
