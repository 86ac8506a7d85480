package auth

import (
	"time"

	"github.com/cloudobjects/cloudobjects-go/coid"
)

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodNone      AuthMethod = "none"
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodBasic     AuthMethod = "basic"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity represents an authenticated namespace.
type Identity struct {
	// Principal is the namespace COID string, e.g. "coid://example.com".
	Principal string

	// Namespace is the parsed Root COID of the principal.
	Namespace coid.ID

	// Method indicates how authentication was performed.
	Method AuthMethod

	// Claims contains the raw claims from a token.
	Claims map[string]any

	// ExpiresAt is when this identity expires.
	ExpiresAt time.Time

	// IssuedAt is when this identity was created.
	IssuedAt time.Time
}

// Domain returns the namespace authority, or "" when the identity carries
// no valid namespace.
func (id *Identity) Domain() string {
	domain, _ := id.Namespace.Authority()
	return domain
}

// IsExpired checks if the identity has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsAnonymous returns true if this is an anonymous identity.
func (id *Identity) IsAnonymous() bool {
	return id.Method == AuthMethodAnonymous || id.Principal == ""
}

// AnonymousIdentity creates a default anonymous identity.
func AnonymousIdentity() *Identity {
	return &Identity{
		Principal: "anonymous",
		Method:    AuthMethodAnonymous,
		Claims:    make(map[string]any),
	}
}

func namespaceIdentity(ns coid.ID, method AuthMethod) *Identity {
	return &Identity{
		Principal: ns.String(),
		Namespace: ns,
		Method:    method,
		Claims:    make(map[string]any),
		IssuedAt:  time.Now(),
	}
}
