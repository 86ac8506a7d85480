package cache

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrProbeMismatch is returned by HealthCheck when a written probe value
// cannot be read back.
var ErrProbeMismatch = errors.New("cache: probe value mismatch")

const probeKey = "__health__"

// HealthCheck writes, reads back and deletes a probe entry. A nil store is
// healthy.
func HealthCheck(ctx context.Context, store Store) error {
	if store == nil {
		return nil
	}
	value := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	if err := store.Set(ctx, probeKey, value, time.Minute); err != nil {
		return err
	}
	got, ok := store.Get(ctx, probeKey)
	if !ok || !bytes.Equal(got, value) {
		return ErrProbeMismatch
	}
	return store.Delete(ctx, probeKey)
}
