package config

import (
	"errors"
	"testing"
	"time"

	"github.com/cloudobjects/cloudobjects-go/cache"
	"github.com/cloudobjects/cloudobjects-go/observe"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, DefaultAPIBaseURL)
	}
	if cfg.CachePrefix != "clobj:" {
		t.Errorf("CachePrefix = %q, want clobj:", cfg.CachePrefix)
	}
	if cfg.CacheProvider != cache.ProviderNone {
		t.Errorf("CacheProvider = %q, want none", cfg.CacheProvider)
	}
	if cfg.CacheTTL != 60*time.Second || cfg.AttachmentCacheTTL != 0 {
		t.Errorf("TTLs = (%v, %v), want (60s, 0)", cfg.CacheTTL, cfg.AttachmentCacheTTL)
	}
	if cfg.Timeout != 20*time.Second || cfg.ConnectTimeout != 5*time.Second {
		t.Errorf("timeouts = (%v, %v), want (20s, 5s)", cfg.Timeout, cfg.ConnectTimeout)
	}
	if cfg.Redis.Addr != "127.0.0.1:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"memory provider", func(c *Config) { c.CacheProvider = "memory" }, nil},
		{"unknown provider", func(c *Config) { c.CacheProvider = "memcached" }, ErrInvalidProvider},
		{"namespace with secret", func(c *Config) { c.AuthNamespace = "example.com"; c.AuthSecret = "s" }, nil},
		{"namespace without secret", func(c *Config) { c.AuthNamespace = "example.com" }, ErrMissingSecret},
		{"namespace with path", func(c *Config) { c.AuthNamespace = "example.com/Foo"; c.AuthSecret = "s" }, ErrInvalidNamespace},
		{"uppercase namespace", func(c *Config) { c.AuthNamespace = "Example.com"; c.AuthSecret = "s" }, ErrInvalidNamespace},
		{"relative base url", func(c *Config) { c.APIBaseURL = "api.cloudobjects.io" }, ErrInvalidBaseURL},
		{"ftp base url", func(c *Config) { c.APIBaseURL = "ftp://api.cloudobjects.io/" }, ErrInvalidBaseURL},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLogLevel},
		{"bad exporter", func(c *Config) { c.Telemetry.Tracing = "zipkin" }, observe.ErrInvalidTracingExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuthNamespaceID(t *testing.T) {
	cfg := Default()
	if !cfg.AuthNamespaceID().IsZero() {
		t.Error("AuthNamespaceID() should be zero without a namespace")
	}

	cfg.AuthNamespace = "example.com"
	if got := cfg.AuthNamespaceID().String(); got != "coid://example.com" {
		t.Errorf("AuthNamespaceID() = %q, want coid://example.com", got)
	}
}

func TestCacheProviderConfig(t *testing.T) {
	cfg := Default()
	cfg.CacheProvider = "redis"
	cfg.Redis = RedisConfig{Addr: "cache:6379", Password: "pw", DB: 2}

	got := cfg.CacheProviderConfig()
	if got.Provider != "redis" || got.Prefix != "clobj:" {
		t.Errorf("CacheProviderConfig() = %+v", got)
	}
	if got.Redis.Addr != "cache:6379" || got.Redis.Password != "pw" || got.Redis.DB != 2 {
		t.Errorf("CacheProviderConfig().Redis = %+v", got.Redis)
	}
}

func TestCachePolicy(t *testing.T) {
	cfg := Default()
	cfg.AttachmentCacheTTL = time.Hour
	cfg.MaxCacheTTL = 30 * time.Minute

	p := cfg.CachePolicy()
	if p.ObjectEntryTTL() != time.Minute {
		t.Errorf("ObjectEntryTTL() = %v, want 1m", p.ObjectEntryTTL())
	}
	if p.AttachmentEntryTTL() != 30*time.Minute {
		t.Errorf("AttachmentEntryTTL() = %v, want 30m", p.AttachmentEntryTTL())
	}
}

func TestObserveConfig(t *testing.T) {
	cfg := Default()
	obs := cfg.ObserveConfig("1.2.3")
	if obs.Tracing.Enabled || obs.Metrics.Enabled {
		t.Errorf("ObserveConfig() enabled telemetry by default: %+v", obs)
	}
	if obs.Version != "1.2.3" || obs.Logging.Level != "info" {
		t.Errorf("ObserveConfig() = %+v", obs)
	}

	cfg.Telemetry.Tracing = "stdout"
	cfg.Telemetry.Metrics = "prometheus"
	obs = cfg.ObserveConfig("")
	if !obs.Tracing.Enabled || !obs.Metrics.Enabled {
		t.Errorf("ObserveConfig() did not enable exporters: %+v", obs)
	}
}
