package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cloudobjects/cloudobjects-go/coid"
)

// JWTConfig configures the JWT authenticator.
type JWTConfig struct {
	// Issuer is the expected token issuer (iss claim).
	Issuer string

	// Audience is the expected token audience (aud claim).
	Audience string

	// HeaderName is the header containing the token.
	// Default: "Authorization"
	HeaderName string

	// TokenPrefix is the prefix before the token in the header.
	// Default: "Bearer "
	TokenPrefix string

	// PrincipalClaim is the claim containing the namespace principal.
	// Default: "sub"
	PrincipalClaim string

	// ValidMethods restricts accepted signing algorithms. Empty accepts any
	// algorithm the key type supports.
	ValidMethods []string

	// KeyIDClaim names a claim that must equal the "kid" header, binding
	// the token to the key it was verified with.
	KeyIDClaim string
}

// KeyProvider retrieves signing keys for JWT validation.
type KeyProvider interface {
	// GetKey returns the key for the given key ID.
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider provides a static signing key.
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a static key provider.
func NewStaticKeyProvider(key []byte) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(_ context.Context, _ string) (any, error) {
	return p.key, nil
}

// JWTAuthenticator validates JWT tokens.
type JWTAuthenticator struct {
	config      JWTConfig
	keyProvider KeyProvider
	parser      *jwt.Parser
}

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(config JWTConfig, keyProvider KeyProvider) *JWTAuthenticator {
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}
	if config.TokenPrefix == "" {
		config.TokenPrefix = "Bearer "
	}
	if config.PrincipalClaim == "" {
		config.PrincipalClaim = "sub"
	}

	var opts []jwt.ParserOption
	if len(config.ValidMethods) > 0 {
		opts = append(opts, jwt.WithValidMethods(config.ValidMethods))
	}

	return &JWTAuthenticator{
		config:      config,
		keyProvider: keyProvider,
		parser:      jwt.NewParser(opts...),
	}
}

// Name returns "jwt".
func (a *JWTAuthenticator) Name() string {
	return "jwt"
}

// Supports returns true if the request contains a JWT token.
func (a *JWTAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	header := req.GetHeader(a.config.HeaderName)
	return strings.HasPrefix(header, a.config.TokenPrefix)
}

// Authenticate validates the JWT token.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	header := req.GetHeader(a.config.HeaderName)
	if header == "" {
		return AuthFailure(ErrMissingCredentials, "jwt"), nil
	}

	tokenString := strings.TrimPrefix(header, a.config.TokenPrefix)
	if tokenString == header {
		return AuthFailure(ErrMissingCredentials, "jwt"), nil
	}
	tokenString = strings.TrimSpace(tokenString)

	kid := ""
	token, err := a.parser.Parse(tokenString, func(token *jwt.Token) (any, error) {
		kid, _ = token.Header["kid"].(string)
		return a.keyProvider.GetKey(ctx, kid)
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return AuthFailure(ErrTokenExpired, "jwt"), nil
		case errors.Is(err, ErrKeyNotFound):
			return AuthFailure(ErrKeyNotFound, "jwt"), nil
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return AuthFailure(ErrInvalidCredentials, "jwt"), nil
		}
		return AuthFailure(ErrTokenMalformed, "jwt"), nil
	}

	if !token.Valid {
		return AuthFailure(ErrInvalidCredentials, "jwt"), nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthFailure(ErrTokenMalformed, "jwt"), nil
	}

	if a.config.Issuer != "" {
		if iss, ok := claims["iss"].(string); !ok || iss != a.config.Issuer {
			return AuthFailure(ErrInvalidCredentials, "jwt"), nil
		}
	}

	if a.config.Audience != "" {
		aud, _ := claims.GetAudience()
		if !containsAudience(aud, a.config.Audience) {
			return AuthFailure(ErrInvalidCredentials, "jwt"), nil
		}
	}

	if a.config.KeyIDClaim != "" {
		if v, ok := claims[a.config.KeyIDClaim].(string); !ok || v != kid {
			return AuthFailure(ErrInvalidCredentials, "jwt"), nil
		}
	}

	return AuthSuccess(a.buildIdentity(claims)), nil
}

func containsAudience(audiences []string, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}

func (a *JWTAuthenticator) buildIdentity(claims jwt.MapClaims) *Identity {
	identity := &Identity{
		Method: AuthMethodJWT,
		Claims: make(map[string]any, len(claims)),
	}
	for k, v := range claims {
		identity.Claims[k] = v
	}

	if principal, ok := claims[a.config.PrincipalClaim].(string); ok {
		identity.Principal = principal
		if ns := coid.Normalize(principal); ns.Kind() == coid.Root {
			identity.Namespace = ns
		}
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}

	return identity
}

// Ensure JWTAuthenticator implements Authenticator
var _ Authenticator = (*JWTAuthenticator)(nil)

// Ensure StaticKeyProvider implements KeyProvider
var _ KeyProvider = (*StaticKeyProvider)(nil)

// SharedSecretKeyProvider resolves HS256 keys from namespace shared
// secrets. The key ID is the namespace domain.
type SharedSecretKeyProvider struct {
	lookup *SharedSecretAuthenticator
}

// NewSharedSecretKeyProvider creates a key provider backed by resolver.
func NewSharedSecretKeyProvider(resolver ObjectResolver) *SharedSecretKeyProvider {
	return &SharedSecretKeyProvider{lookup: NewSharedSecretAuthenticator(resolver)}
}

// GetKey returns the shared secret of the namespace named by keyID.
func (p *SharedSecretKeyProvider) GetKey(ctx context.Context, keyID string) (any, error) {
	ns := coid.NewRoot(keyID)
	if keyID == "" || ns.Kind() != coid.Root {
		return nil, ErrKeyNotFound
	}
	secret, result, err := p.lookup.sharedSecret(ctx, ns)
	if err != nil {
		return nil, err
	}
	if result != ResultOK || secret == "" {
		return nil, ErrKeyNotFound
	}
	return []byte(secret), nil
}

var _ KeyProvider = (*SharedSecretKeyProvider)(nil)

// NewSharedSecretJWTAuthenticator returns a JWT authenticator for tokens
// issued by SignSharedSecretToken.
func NewSharedSecretJWTAuthenticator(resolver ObjectResolver) *JWTAuthenticator {
	return NewJWTAuthenticator(JWTConfig{
		ValidMethods: []string{jwt.SigningMethodHS256.Alg()},
		KeyIDClaim:   "iss",
	}, NewSharedSecretKeyProvider(resolver))
}

// SignSharedSecretToken issues an HS256 token for the namespace domain,
// signed with its shared secret and valid for ttl. Extra claims are copied
// in but cannot override iss, sub, iat or exp.
func SignSharedSecretToken(domain, secret string, ttl time.Duration, extra map[string]any) (string, error) {
	ns := coid.NewRoot(domain)
	if ns.Kind() != coid.Root {
		return "", ErrInvalidCredentials
	}
	if secret == "" {
		return "", ErrMissingCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["iss"] = domain
	claims["sub"] = ns.String()
	claims["iat"] = now.Unix()
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = domain
	return token.SignedString([]byte(secret))
}
