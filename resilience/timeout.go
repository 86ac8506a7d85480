package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout matches the SDK's overall request timeout.
const DefaultTimeout = 20 * time.Second

// Timeout bounds each operation. The operation receives a context with the
// deadline and must honor it.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a timeout wrapper. Non-positive durations use
// DefaultTimeout.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &Timeout{d: d}
}

// Duration returns the configured limit.
func (t *Timeout) Duration() time.Duration { return t.d }

// Execute runs op with a deadline. A deadline hit is reported as an error
// wrapping ErrTimeout; cancellation of the parent context is returned as is.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	tctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	err := op(tctx)
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, t.d, err)
	}
	return err
}
