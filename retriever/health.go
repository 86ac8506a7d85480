package retriever

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/health"
	"github.com/cloudobjects/cloudobjects-go/resilience"
)

// HealthProbeID is resolved by HealthCheck.
var HealthProbeID = coid.MustParse("coid://cloudobjects.io")

// HealthCheck fetches the cloudobjects.io namespace from the API,
// bypassing every cache tier.
func (r *Retriever) HealthCheck(ctx context.Context) error {
	authority, _ := HealthProbeID.Authority()
	p := authority + "/object"
	status, body, err := r.fetcher.Fetch(ctx, r.prefix+p, http.Header{"Accept": {"application/ld+json"}})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteService, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: status %d", ErrRemoteService, status)
	}
	obj, err := parseObject(HealthProbeID, body, r.parseOpts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteService, err)
	}
	if obj == nil {
		return fmt.Errorf("%w: %s missing from response", ErrRemoteService, HealthProbeID)
	}
	return nil
}

// HealthChecker reports the Object API as a health.Checker. An open
// circuit is reported as degraded.
func (r *Retriever) HealthChecker() health.Checker {
	return health.NewCheckerFunc("api", func(ctx context.Context) health.Result {
		start := time.Now()
		err := r.HealthCheck(ctx)
		switch {
		case err == nil:
			return health.Healthy("object API reachable").WithDuration(time.Since(start))
		case errors.Is(err, resilience.ErrCircuitOpen):
			return health.Degraded("circuit open").WithDuration(time.Since(start))
		default:
			return health.Unhealthy("object API unreachable", err).WithDuration(time.Since(start))
		}
	})
}
