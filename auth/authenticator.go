package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
)

// Authenticator checks the credentials of a request against CloudObjects
// namespaces.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a credential that does not check out is a failed AuthResult;
//   an error means the namespace lookup itself failed.
type Authenticator interface {
	Name() string

	// Supports reports whether the request carries credentials this
	// authenticator understands.
	Supports(ctx context.Context, req *AuthRequest) bool

	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthRequest carries the headers of an incoming request.
type AuthRequest struct {
	Headers http.Header
}

// NewAuthRequest builds an AuthRequest from an incoming HTTP request.
func NewAuthRequest(r *http.Request) *AuthRequest {
	return &AuthRequest{Headers: r.Header}
}

// GetHeader returns the first value for a header, or empty string. The key
// is tried verbatim first, then in canonical MIME form.
func (r *AuthRequest) GetHeader(key string) string {
	if r.Headers == nil {
		return ""
	}
	values := r.Headers[key]
	if len(values) == 0 {
		values = r.Headers[http.CanonicalHeaderKey(key)]
	}
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// BasicAuth returns the namespace domain and shared secret of an HTTP
// Basic Authorization header.
func (r *AuthRequest) BasicAuth() (namespace, secret string, ok bool) {
	encoded, found := strings.CutPrefix(r.GetHeader("Authorization"), "Basic ")
	if !found {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

// AuthResult is the outcome of an authentication attempt. Identity is set
// on success, Error on failure.
type AuthResult struct {
	Authenticated bool
	Identity      *Identity
	Error         error

	// Method names the credential type that was checked.
	Method string
}

// AuthSuccess wraps an authenticated namespace identity.
func AuthSuccess(identity *Identity) *AuthResult {
	return &AuthResult{
		Authenticated: true,
		Identity:      identity,
		Method:        string(identity.Method),
	}
}

// AuthFailure reports rejected credentials.
func AuthFailure(err error, method string) *AuthResult {
	return &AuthResult{Error: err, Method: method}
}
