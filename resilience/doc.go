// Package resilience guards calls to the CloudObjects API.
//
// Every remote fetch runs through an Executor that composes, outermost
// first, a Bulkhead capping concurrent requests, a CircuitBreaker that
// stops calling an API that keeps failing, and a Timeout bounding each
// attempt. There is deliberately no retry: a failed fetch is reported once
// and the resolver maps it to "not found" or a remote service error.
//
//	exec := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 8})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	    resilience.WithTimeout(20*time.Second),
//	)
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return fetch(ctx)
//	})
package resilience
