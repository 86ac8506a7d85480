package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudobjects/cloudobjects-go/secret"
)

const sampleYAML = `
api_base_url: https://api.example.test/
auth_ns: example.com
auth_secret: from-file
cache_provider: redis
cache_ttl: 5m
redis:
  addr: cache:6379
  db: 3
trust_cache: true
logging:
  level: debug
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.APIBaseURL != "https://api.example.test/" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 3 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if !cfg.TrustCache {
		t.Error("TrustCache = false, want true")
	}
	if cfg.CachePrefix != "clobj:" {
		t.Errorf("CachePrefix = %q, want default clobj:", cfg.CachePrefix)
	}
	if cfg.ConnectTimeout != 5*time.Second {
		t.Errorf("ConnectTimeout = %v, want default 5s", cfg.ConnectTimeout)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want default", cfg.APIBaseURL)
	}
}

func TestParse_UnknownField(t *testing.T) {
	if _, err := Parse([]byte("cache_tll: 5m\n")); err == nil {
		t.Error("Parse() should reject unknown fields")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "cloudobjects.yaml", sampleYAML)
	t.Setenv("CLOUDOBJECTS_CACHE_TTL", "90s")
	t.Setenv("CLOUDOBJECTS_REDIS_ADDR", "env-cache:6380")
	t.Setenv("CLOUDOBJECTS_AUTH_SECRET", "from-env")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v, want 90s", cfg.CacheTTL)
	}
	if cfg.Redis.Addr != "env-cache:6380" {
		t.Errorf("Redis.Addr = %q, want env-cache:6380", cfg.Redis.Addr)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("Redis.DB = %d, want 3 from file", cfg.Redis.DB)
	}
	if cfg.AuthSecret != "from-env" {
		t.Errorf("AuthSecret = %q, want from-env", cfg.AuthSecret)
	}
}

func TestLoad_PathFromEnv(t *testing.T) {
	t.Setenv(ConfigPathEnv, writeFile(t, "co.yaml", "cache_prefix: \"test:\"\n"))

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CachePrefix != "test:" {
		t.Errorf("CachePrefix = %q, want test:", cfg.CachePrefix)
	}
}

func TestLoad_ResolvesSecrets(t *testing.T) {
	secrets := t.TempDir()
	if err := os.WriteFile(filepath.Join(secrets, "co-secret"), []byte("s3cr3t\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CO_TEST_REDIS_PW", "redis-pw")
	path := writeFile(t, "co.yaml", `
auth_ns: example.com
auth_secret: secretref:file:co-secret
redis:
  password: ${CO_TEST_REDIS_PW}
secrets:
  dir: `+secrets+"\n")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AuthSecret != "s3cr3t" {
		t.Errorf("AuthSecret = %q, want s3cr3t", cfg.AuthSecret)
	}
	if cfg.Redis.Password != "redis-pw" {
		t.Errorf("Redis.Password = %q, want redis-pw", cfg.Redis.Password)
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := Load(ctx, filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() missing file error = %v, want ErrNotFound", err)
	}

	bad := writeFile(t, "bad.yaml", "cache_provider: memcached\n")
	if _, err := Load(ctx, bad); !errors.Is(err, ErrInvalidProvider) {
		t.Errorf("Load() error = %v, want ErrInvalidProvider", err)
	}

	unset := writeFile(t, "unset.yaml", "auth_ns: example.com\nauth_secret: ${CO_TEST_UNSET_SECRET}\n")
	if _, err := Load(ctx, unset); !errors.Is(err, secret.ErrMissingEnv) {
		t.Errorf("Load() error = %v, want secret.ErrMissingEnv", err)
	}

	t.Setenv("CLOUDOBJECTS_TIMEOUT", "soon")
	if _, err := Load(ctx, ""); err == nil {
		t.Error("Load() should fail on an unparsable duration")
	}
}
