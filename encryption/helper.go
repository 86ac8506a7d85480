package encryption

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"

	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

const keyProperty = "common:usesSharedEncryptionKey"

// x25519Prefix marks native age identities.
const x25519Prefix = "AGE-SECRET-KEY-1"

// ErrDecrypt reports ciphertext that could not be decrypted with the key.
var ErrDecrypt = errors.New("encryption: decryption failed")

// ObjectResolver resolves namespace objects. *retriever.Retriever
// satisfies it.
type ObjectResolver interface {
	Object(ctx context.Context, id coid.ID) (*retriever.Object, error)
	AuthenticatingNamespace(ctx context.Context) (*retriever.Object, error)
}

// Helper encrypts with one namespace's shared encryption key.
type Helper struct {
	namespace  *jsonld.Node
	reader     *jsonld.Reader
	workFactor int
}

// Option configures a Helper.
type Option func(*options)

type options struct {
	namespace  coid.ID
	workFactor int
}

// WithNamespace selects the namespace whose key is used instead of the
// authenticating namespace.
func WithNamespace(ns coid.ID) Option {
	return func(o *options) { o.namespace = ns }
}

// WithScryptWorkFactor sets the scrypt work factor (log2 of N) for
// passphrase keys. Zero keeps the age default.
func WithScryptWorkFactor(logN int) Option {
	return func(o *options) { o.workFactor = logN }
}

// NewHelper resolves the namespace and returns a Helper for its key. A
// namespace that cannot be found yields retriever.ErrNotFound.
func NewHelper(ctx context.Context, resolver ObjectResolver, opts ...Option) (*Helper, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var (
		obj *retriever.Object
		err error
	)
	if o.namespace.IsZero() {
		obj, err = resolver.AuthenticatingNamespace(ctx)
	} else {
		obj, err = resolver.Object(ctx, o.namespace)
	}
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: encryption namespace", retriever.ErrNotFound)
	}
	return &Helper{
		namespace:  obj.Node(),
		reader:     jsonld.NewReader(nil),
		workFactor: o.workFactor,
	}, nil
}

// SharedEncryptionKey returns the namespace's key string.
func (h *Helper) SharedEncryptionKey() (string, error) {
	key := h.reader.FirstValueString(h.namespace, keyProperty, "")
	if key == "" {
		return "", fmt.Errorf("%w: the namespace doesn't have an encryption key",
			jsonld.ErrInvalidObjectConfiguration)
	}
	return key, nil
}

// Encrypt encrypts plaintext and returns base64 ciphertext.
func (h *Helper) Encrypt(plaintext []byte) (string, error) {
	key, err := h.SharedEncryptionKey()
	if err != nil {
		return "", err
	}
	recipient, err := h.recipient(key)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return "", fmt.Errorf("encryption: creating encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return "", fmt.Errorf("encryption: writing plaintext: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("encryption: finalizing: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decrypt decrypts base64 ciphertext produced by Encrypt.
func (h *Helper) Decrypt(ciphertext string) ([]byte, error) {
	key, err := h.SharedEncryptionKey()
	if err != nil {
		return nil, err
	}
	identity, err := identity(key)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding base64: %v", ErrDecrypt, err)
	}
	r, err := age.Decrypt(bytes.NewReader(raw), identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}

// EncryptString is Encrypt for string values.
func (h *Helper) EncryptString(s string) (string, error) {
	return h.Encrypt([]byte(s))
}

// DecryptString is Decrypt for string values.
func (h *Helper) DecryptString(ciphertext string) (string, error) {
	b, err := h.Decrypt(ciphertext)
	return string(b), err
}

func (h *Helper) recipient(key string) (age.Recipient, error) {
	if strings.HasPrefix(key, x25519Prefix) {
		id, err := age.ParseX25519Identity(key)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid age key: %v", jsonld.ErrInvalidObjectConfiguration, err)
		}
		return id.Recipient(), nil
	}
	r, err := age.NewScryptRecipient(key)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid passphrase: %v", jsonld.ErrInvalidObjectConfiguration, err)
	}
	if h.workFactor > 0 {
		r.SetWorkFactor(h.workFactor)
	}
	return r, nil
}

func identity(key string) (age.Identity, error) {
	if strings.HasPrefix(key, x25519Prefix) {
		id, err := age.ParseX25519Identity(key)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid age key: %v", jsonld.ErrInvalidObjectConfiguration, err)
		}
		return id, nil
	}
	id, err := age.NewScryptIdentity(key)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid passphrase: %v", jsonld.ErrInvalidObjectConfiguration, err)
	}
	return id, nil
}

// GenerateKey returns a new X25519 key suitable for
// common:usesSharedEncryptionKey.
func GenerateKey() (string, error) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("encryption: generating key: %w", err)
	}
	return id.String(), nil
}
