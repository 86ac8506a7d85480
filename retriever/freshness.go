package retriever

import "context"

type freshnessKey struct{}

// WithFreshness attaches a freshness marker, typically the latest known
// revision of the object about to be resolved. Stored entries are served
// only when their marker equals it byte for byte.
func WithFreshness(ctx context.Context, marker string) context.Context {
	return context.WithValue(ctx, freshnessKey{}, marker)
}

// FreshnessFrom returns the marker attached by WithFreshness.
func FreshnessFrom(ctx context.Context) (string, bool) {
	marker, ok := ctx.Value(freshnessKey{}).(string)
	return marker, ok && marker != ""
}
