package secret

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a reference as the name of an environment variable.
type EnvProvider struct{}

// Name returns "env".
func (EnvProvider) Name() string { return "env" }

// Resolve returns the value of the variable named ref.
func (EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, ref)
	}
	return v, nil
}

// Close is a no-op.
func (EnvProvider) Close() error { return nil }

// FileProvider resolves a reference as a file below a directory, the way
// container runtimes mount secrets. Surrounding whitespace is trimmed.
type FileProvider struct {
	fsys fs.FS
}

// NewFileProvider reads secrets from dir. An empty dir defaults to
// /run/secrets.
func NewFileProvider(dir string) *FileProvider {
	if dir == "" {
		dir = "/run/secrets"
	}
	return &FileProvider{fsys: os.DirFS(dir)}
}

// NewFSProvider reads secrets from fsys.
func NewFSProvider(fsys fs.FS) *FileProvider {
	return &FileProvider{fsys: fsys}
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Resolve reads the file named ref.
func (p *FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	if !fs.ValidPath(ref) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	data, err := fs.ReadFile(p.fsys, ref)
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", ref, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Close is a no-op.
func (p *FileProvider) Close() error { return nil }
