package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Provider names accepted by Open.
const (
	ProviderNone   = "none"
	ProviderMemory = "memory"
	ProviderFile   = "file"
	ProviderRedis  = "redis"
)

// ProviderConfig selects and configures an external store.
type ProviderConfig struct {
	// Provider is one of none, memory, file or redis. Empty means none.
	Provider string

	// Prefix is prepended to every key. Empty disables prefixing.
	Prefix string

	Redis RedisConfig
	File  FileConfig
}

// RedisConfig configures the redis provider.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// FileConfig configures the file provider.
type FileConfig struct {
	// Directory holds the pebble database; defaults to
	// os.TempDir()/cloudobjects-cache.
	Directory string
}

// Providers lists the accepted provider names.
func Providers() []string {
	return []string{ProviderNone, ProviderMemory, ProviderFile, ProviderRedis}
}

// ValidProvider reports whether name is accepted by Open.
func ValidProvider(name string) bool {
	switch strings.TrimSpace(name) {
	case "", ProviderNone, ProviderMemory, ProviderFile, ProviderRedis:
		return true
	}
	return false
}

// Open builds the configured store. The none provider yields a nil Store,
// which Tiered treats as an absent tier. Release the result with Close.
func Open(ctx context.Context, cfg ProviderConfig) (Store, error) {
	var store Store
	switch strings.TrimSpace(cfg.Provider) {
	case "", ProviderNone:
		return nil, nil
	case ProviderMemory:
		store = NewMemoryCache()
	case ProviderFile:
		dir := cfg.File.Directory
		if dir == "" {
			dir = filepath.Join(os.TempDir(), "cloudobjects-cache")
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("cache: file provider: %w", err)
		}
		ps, err := OpenPebbleStore(dir, nil)
		if err != nil {
			return nil, fmt.Errorf("cache: file provider: %w", err)
		}
		store = ps
	case ProviderRedis:
		addr := cfg.Redis.Addr
		if addr == "" {
			addr = "127.0.0.1:6379"
		}
		rs := NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("cache: redis provider: %w", err)
		}
		store = rs
	default:
		return nil, fmt.Errorf("%w: %q (valid: none, memory, file, redis)", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.Prefix != "" {
		store = NewPrefixed(store, cfg.Prefix)
	}
	return store, nil
}
