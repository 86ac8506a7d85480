package accountgateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloudobjects/cloudobjects-go/observe"
)

type contextKey struct{}

// NewContext returns ctx carrying ac.
func NewContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// FromContext returns the account context stored by Middleware.
func FromContext(ctx context.Context) (*Context, bool) {
	ac, ok := ctx.Value(contextKey{}).(*Context)
	return ac, ok && ac != nil
}

// Middleware builds a Context for each gateway request and stores it in
// the request context. Requests without account headers pass through
// unchanged; requests with an invalid AAUID get 400. Gateway headers such
// as the log code are added to the response.
func Middleware(logger observe.Logger, opts ...Option) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, err := FromRequest(r, opts...)
			if errors.Is(err, ErrNoContext) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				logger.Warn(r.Context(), "invalid account context", observe.Field{Key: "error", Value: err.Error()})
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(&responseWriter{ResponseWriter: w, ac: ac}, r.WithContext(NewContext(r.Context(), ac)))
		})
	}
}

// responseWriter applies ProcessResponse before the header is written.
type responseWriter struct {
	http.ResponseWriter
	ac          *Context
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.ac.ProcessResponse(w.Header())
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
