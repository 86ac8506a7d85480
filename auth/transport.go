package auth

import (
	"errors"
	"net/http"

	"github.com/cloudobjects/cloudobjects-go/observe"
)

// WithAuthHeaders is HTTP middleware that extracts request headers
// into the context for use by authentication middleware.
//
// Usage:
//
//	mux.Handle("/api", auth.WithAuthHeaders(apiHandler))
func WithAuthHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithHeaders(r.Context(), r.Header)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Middleware authenticates each request with a and stores the identity in
// the request context. Unauthenticated requests get 401 with a Basic
// challenge; internal errors get 503.
func Middleware(a Authenticator, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithHeaders(r.Context(), r.Header)
			req := NewAuthRequest(r)

			if !a.Supports(ctx, req) {
				challenge(w)
				return
			}
			result, err := a.Authenticate(ctx, req)
			if err != nil {
				logger.Error(ctx, "authentication failed", observe.Field{Key: "error", Value: err.Error()})
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			if !result.Authenticated {
				if errors.Is(result.Error, ErrSecretUnavailable) {
					logger.Warn(ctx, "shared secret not retrievable", observe.Field{Key: "method", Value: result.Method})
				}
				challenge(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
		})
	}
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="CloudObjects"`)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
