package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

// SharedSecretLength is the length of a namespace shared secret.
const SharedSecretLength = 40

const (
	sharedSecretProperty = "co:hasSharedSecret"
	tokenValueProperty   = "co:hasTokenValue"
)

// ObjectResolver resolves namespace objects. *retriever.Retriever
// satisfies it.
type ObjectResolver interface {
	Object(ctx context.Context, id coid.ID) (*retriever.Object, error)
}

// VerifyResult is the outcome of a shared secret check.
type VerifyResult int

const (
	ResultOK VerifyResult = iota
	ResultInvalidUsername
	ResultInvalidPassword
	ResultNamespaceNotFound
	ResultSharedSecretNotRetrievable
	ResultSharedSecretIncorrect
)

// String returns the result name.
func (r VerifyResult) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultInvalidUsername:
		return "invalid username"
	case ResultInvalidPassword:
		return "invalid password"
	case ResultNamespaceNotFound:
		return "namespace not found"
	case ResultSharedSecretNotRetrievable:
		return "shared secret not retrievable"
	case ResultSharedSecretIncorrect:
		return "shared secret incorrect"
	default:
		return "unknown"
	}
}

// Err maps a result to the error reported in a failed AuthResult; nil for
// ResultOK.
func (r VerifyResult) Err() error {
	switch r {
	case ResultOK:
		return nil
	case ResultNamespaceNotFound:
		return ErrNamespaceNotFound
	case ResultSharedSecretNotRetrievable:
		return ErrSecretUnavailable
	default:
		return ErrInvalidCredentials
	}
}

// SharedSecretAuthenticator checks namespace credentials against the
// shared secret published in the namespace object. It also authenticates
// HTTP Basic requests.
type SharedSecretAuthenticator struct {
	resolver ObjectResolver
	reader   *jsonld.Reader
}

// NewSharedSecretAuthenticator creates an authenticator that looks up
// namespaces through resolver, which must be authenticated against
// CloudObjects.
func NewSharedSecretAuthenticator(resolver ObjectResolver) *SharedSecretAuthenticator {
	return &SharedSecretAuthenticator{
		resolver: resolver,
		reader:   jsonld.NewReader(nil),
	}
}

// Verify checks a namespace domain and shared secret. A failing lookup is
// reported as ResultNamespaceNotFound.
func (a *SharedSecretAuthenticator) Verify(ctx context.Context, username, password string) VerifyResult {
	result, _, _ := a.verify(ctx, username, password)
	return result
}

func (a *SharedSecretAuthenticator) verify(ctx context.Context, username, password string) (VerifyResult, coid.ID, error) {
	ns := coid.NewRoot(username)
	if ns.Kind() != coid.Root {
		return ResultInvalidUsername, ns, nil
	}
	if len(password) != SharedSecretLength {
		return ResultInvalidPassword, ns, nil
	}

	secret, result, err := a.sharedSecret(ctx, ns)
	if result != ResultOK {
		return result, ns, err
	}
	if !ConstantTimeCompare(secret, password) {
		return ResultSharedSecretIncorrect, ns, nil
	}
	return ResultOK, ns, nil
}

// SharedSecret returns the shared secret published by a namespace. It
// fails with ErrNamespaceNotFound or ErrSecretUnavailable, or with the
// resolver's error.
func (a *SharedSecretAuthenticator) SharedSecret(ctx context.Context, ns coid.ID) (string, error) {
	secret, result, err := a.sharedSecret(ctx, ns)
	if err != nil {
		return "", err
	}
	if result != ResultOK {
		return "", result.Err()
	}
	return secret, nil
}

// sharedSecret reads the single co:hasSharedSecret token of a namespace.
func (a *SharedSecretAuthenticator) sharedSecret(ctx context.Context, ns coid.ID) (string, VerifyResult, error) {
	obj, err := a.resolver.Object(ctx, ns)
	if err != nil {
		return "", ResultNamespaceNotFound, err
	}
	if obj == nil {
		return "", ResultNamespaceNotFound, nil
	}

	secrets := a.reader.AllValuesNode(obj.Node(), sharedSecretProperty)
	if len(secrets) != 1 {
		return "", ResultSharedSecretNotRetrievable, nil
	}
	return a.reader.FirstValueString(secrets[0], tokenValueProperty, ""), ResultOK, nil
}

// Name returns "shared_secret".
func (a *SharedSecretAuthenticator) Name() string {
	return "shared_secret"
}

// Supports returns true for HTTP Basic credentials.
func (a *SharedSecretAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return strings.HasPrefix(req.GetHeader("Authorization"), "Basic ")
}

// Authenticate verifies HTTP Basic credentials. Resolver errors are
// returned as internal errors.
func (a *SharedSecretAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	username, password, ok := req.BasicAuth()
	if !ok {
		return AuthFailure(ErrMissingCredentials, string(AuthMethodBasic)), nil
	}

	result, ns, err := a.verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if result != ResultOK {
		return AuthFailure(result.Err(), string(AuthMethodBasic)), nil
	}
	return AuthSuccess(namespaceIdentity(ns, AuthMethodBasic)), nil
}

// ConstantTimeCompare compares two strings in constant time.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Ensure SharedSecretAuthenticator implements Authenticator
var _ Authenticator = (*SharedSecretAuthenticator)(nil)
