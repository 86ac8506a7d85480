package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/cloudobjects/cloudobjects-go/secret"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CLOUDOBJECTS_"

// ConfigPathEnv names the config file when Load is called without a path.
const ConfigPathEnv = EnvPrefix + "CONFIG"

// ErrNotFound is returned when an explicitly named config file is missing.
var ErrNotFound = errors.New("config: file not found")

// Load builds a Config from defaults, the YAML file at path (or
// $CLOUDOBJECTS_CONFIG), and the environment, then resolves secrets and
// validates the result. Without a path and variable no file is read.
func Load(ctx context.Context, path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}

	resolver, err := secret.DefaultRegistry.NewResolver(true, map[string]map[string]any{
		"file": {"dir": cfg.Secrets.Dir},
	})
	if err != nil {
		return Config{}, err
	}
	defer resolver.Close()

	if err := cfg.ResolveSecrets(ctx, resolver); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse overlays YAML data onto the defaults without reading the
// environment, resolving secrets or validating.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.mergeYAML(data); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveSecrets expands secret references in the credential fields.
func (c *Config) ResolveSecrets(ctx context.Context, r *secret.Resolver) error {
	err := r.ResolveFields(ctx, map[string]*string{
		"auth_secret":    &c.AuthSecret,
		"redis.password": &c.Redis.Password,
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := c.mergeYAML(data); err != nil {
		return fmt.Errorf("%w (%s)", err, path)
	}
	return nil
}

func (c *Config) mergeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}
