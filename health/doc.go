// Package health reports whether the collaborators of an SDK client are
// usable: the Object API and the external cache store.
//
// A Checker reports a Result with a Status. Aggregator runs registered
// checkers in parallel under one deadline and folds their results into a
// Report, which the CLI prints as text or JSON.
//
//	agg := health.NewAggregator(health.AggregatorConfig{Timeout: 5 * time.Second})
//	agg.Register(r.HealthChecker())
//	agg.Register(health.FromError("cache", func(ctx context.Context) error {
//	    return cache.HealthCheck(ctx, store)
//	}))
//	report := agg.Run(ctx)
package health
