package auth

import "errors"

// Sentinel errors for authentication.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrKeyNotFound        = errors.New("auth: signing key not found")

	// Shared secret lookup errors
	ErrNamespaceNotFound = errors.New("auth: namespace not found")
	ErrSecretUnavailable = errors.New("auth: shared secret not retrievable")
)
