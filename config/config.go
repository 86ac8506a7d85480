package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudobjects/cloudobjects-go/cache"
	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/observe"
)

// DefaultAPIBaseURL is the public CloudObjects Object API.
const DefaultAPIBaseURL = "https://api.cloudobjects.io/"

// Validation errors.
var (
	ErrInvalidProvider  = errors.New("config: invalid cache provider")
	ErrInvalidNamespace = errors.New("config: auth namespace is not a root COID")
	ErrInvalidBaseURL   = errors.New("config: invalid API base URL")
	ErrInvalidTimeout   = errors.New("config: timeouts must not be negative")
	ErrMissingSecret    = errors.New("config: auth namespace requires auth secret")
	ErrInvalidLogLevel  = errors.New("config: invalid log level")
)

// Config holds the SDK options. The zero value is not useful; start from
// Default.
type Config struct {
	// APIBaseURL is the prefix of every Object API request.
	APIBaseURL string `yaml:"api_base_url" env:"API_BASE_URL"`

	// AuthNamespace is the domain of the namespace the SDK authenticates
	// as, e.g. "example.com". Empty means anonymous access.
	AuthNamespace string `yaml:"auth_ns" env:"AUTH_NS"`

	// AuthSecret is the shared secret of AuthNamespace with cloudobjects.io.
	AuthSecret string `yaml:"auth_secret" env:"AUTH_SECRET"`

	// StaticConfigPath is the root of a static snapshot directory.
	StaticConfigPath string `yaml:"static_config_path" env:"STATIC_CONFIG_PATH"`

	CacheProvider      string        `yaml:"cache_provider" env:"CACHE_PROVIDER"`
	CachePrefix        string        `yaml:"cache_prefix" env:"CACHE_PREFIX"`
	CacheTTL           time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
	AttachmentCacheTTL time.Duration `yaml:"cache_ttl_attachments" env:"CACHE_TTL_ATTACHMENTS"`
	MaxCacheTTL        time.Duration `yaml:"cache_max_ttl" env:"CACHE_MAX_TTL"`

	Redis RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
	File  FileConfig  `yaml:"file" envPrefix:"FILE_"`

	// Timeout bounds a whole HTTP request, ConnectTimeout only the dial.
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`

	// MaxConcurrentRequests caps in-flight API requests. Zero means 10.
	MaxConcurrentRequests int `yaml:"max_concurrent_requests" env:"MAX_CONCURRENT_REQUESTS"`

	// TrustCache serves any stored object within its TTL when the caller
	// supplies no freshness marker.
	TrustCache bool `yaml:"trust_cache" env:"TRUST_CACHE"`

	// ServeStaleAttachments returns a stored attachment when re-fetching
	// it after a revision change fails.
	ServeStaleAttachments bool `yaml:"serve_stale_attachments" env:"SERVE_STALE_ATTACHMENTS"`

	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOG_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
	Secrets   SecretsConfig   `yaml:"secrets" envPrefix:"SECRETS_"`
}

// RedisConfig configures the redis cache provider.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// FileConfig configures the file cache provider.
type FileConfig struct {
	Directory string `yaml:"directory" env:"DIRECTORY"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// TelemetryConfig selects OpenTelemetry exporters. "none" disables a
// signal.
type TelemetryConfig struct {
	Tracing   string  `yaml:"tracing" env:"TRACING"`
	Metrics   string  `yaml:"metrics" env:"METRICS"`
	SamplePct float64 `yaml:"sample_pct" env:"SAMPLE_PCT"`
}

// SecretsConfig configures secret providers.
type SecretsConfig struct {
	// Dir is read by the file provider; defaults to /run/secrets.
	Dir string `yaml:"dir" env:"DIR"`
}

// Default returns the SDK defaults.
func Default() Config {
	return Config{
		APIBaseURL:         DefaultAPIBaseURL,
		CacheProvider:      cache.ProviderNone,
		CachePrefix:        cache.DefaultPrefix,
		CacheTTL:           60 * time.Second,
		AttachmentCacheTTL: 0,
		Redis:              RedisConfig{Addr: "127.0.0.1:6379"},
		File:               FileConfig{Directory: filepath.Join(os.TempDir(), "cloudobjects-cache")},
		Timeout:            20 * time.Second,
		ConnectTimeout:     5 * time.Second,
		Logging:            LoggingConfig{Level: "info"},
		Telemetry:          TelemetryConfig{Tracing: "none", Metrics: "none", SamplePct: 1},
	}
}

// Validate checks the options.
func (c *Config) Validate() error {
	if !cache.ValidProvider(c.CacheProvider) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrInvalidProvider, c.CacheProvider, cache.Providers())
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.APIBaseURL)
	}

	if c.AuthNamespace != "" {
		if c.AuthNamespaceID().Kind() != coid.Root {
			return fmt.Errorf("%w: %q", ErrInvalidNamespace, c.AuthNamespace)
		}
		if c.AuthSecret == "" {
			return ErrMissingSecret
		}
	}

	if c.Timeout < 0 || c.ConnectTimeout < 0 || c.CacheTTL < 0 || c.AttachmentCacheTTL < 0 || c.MaxCacheTTL < 0 {
		return ErrInvalidTimeout
	}

	if c.Logging.Level != "" && !validLogLevel(c.Logging.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	obs := c.ObserveConfig("")
	return obs.Validate()
}

func validLogLevel(level string) bool {
	for _, l := range observe.ValidLogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// AuthNamespaceID returns the namespace COID, or the zero ID when no
// namespace is configured.
func (c *Config) AuthNamespaceID() coid.ID {
	if c.AuthNamespace == "" {
		return coid.ID{}
	}
	return coid.Normalize(c.AuthNamespace)
}

// CacheProviderConfig returns the options for cache.Open.
func (c *Config) CacheProviderConfig() cache.ProviderConfig {
	return cache.ProviderConfig{
		Provider: c.CacheProvider,
		Prefix:   c.CachePrefix,
		Redis: cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		},
		File: cache.FileConfig{Directory: c.File.Directory},
	}
}

// CachePolicy returns the TTLs for the external store.
func (c *Config) CachePolicy() cache.Policy {
	return cache.Policy{
		ObjectTTL:     c.CacheTTL,
		AttachmentTTL: c.AttachmentCacheTTL,
		MaxTTL:        c.MaxCacheTTL,
	}
}

// ObserveConfig returns the observer options for service version.
func (c *Config) ObserveConfig(version string) observe.Config {
	return observe.Config{
		ServiceName: "cloudobjects",
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Telemetry.Tracing != "" && c.Telemetry.Tracing != "none",
			Exporter:  c.Telemetry.Tracing,
			SamplePct: c.Telemetry.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Telemetry.Metrics != "" && c.Telemetry.Metrics != "none",
			Exporter: c.Telemetry.Metrics,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.logLevel(),
		},
	}
}

func (c *Config) logLevel() string {
	if c.Logging.Level == "" {
		return "info"
	}
	return c.Logging.Level
}
