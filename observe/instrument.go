package observe

import (
	"context"
	"time"
)

// OperationFunc performs an instrumented operation and reports which tier
// served it ("" when not applicable).
type OperationFunc func(ctx context.Context) (tier string, err error)

// Instrumenter wraps SDK operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Instrumenter struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewInstrumenter creates an Instrumenter. Nil components are replaced by
// no-ops.
func NewInstrumenter(tracer Tracer, metrics Metrics, logger Logger) *Instrumenter {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Instrumenter{tracer: tracer, metrics: metrics, logger: logger}
}

// NopInstrumenter returns an Instrumenter that records nothing.
func NopInstrumenter() *Instrumenter {
	return NewInstrumenter(nil, nil, nil)
}

// InstrumenterFromObserver builds an Instrumenter from an Observer.
func InstrumenterFromObserver(obs Observer) (*Instrumenter, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewInstrumenter(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Logger returns the instrumenter's logger.
func (i *Instrumenter) Logger() Logger { return i.logger }

// Instrument runs fn inside a span named after op.
func (i *Instrumenter) Instrument(ctx context.Context, op Operation, fn OperationFunc) error {
	ctx, span := i.tracer.StartSpan(ctx, op)
	start := time.Now()

	tier, err := fn(ctx)

	duration := time.Since(start)
	i.tracer.EndSpan(span, tier, err)
	i.metrics.RecordResolution(ctx, op, tier, duration, err)

	fields := []Field{
		{Key: "operation", Value: op.Name},
		{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
	}
	if op.Subject != "" {
		fields = append(fields, Field{Key: "subject", Value: op.Subject})
	}
	if tier != "" {
		fields = append(fields, Field{Key: "tier", Value: tier})
	}
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		i.logger.Error(ctx, "operation failed", fields...)
	} else {
		i.logger.Debug(ctx, "operation completed", fields...)
	}

	return err
}
