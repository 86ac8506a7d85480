package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SpanPrefix prefixes every span name.
const SpanPrefix = "cloudobjects."

// Operation describes one SDK call for telemetry purposes.
type Operation struct {
	Name    string // Operation name, e.g. "object", "attachment", "namespace.list" (required)
	Subject string // Identifier the call concerns (COID or AAUID, optional)
	Detail  string // Secondary argument such as a file name or type IRI (optional)
}

// SpanName returns the deterministic span name: cloudobjects.<name>
func (o Operation) SpanName() string {
	return SpanPrefix + o.Name
}

func (o Operation) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("cloudobjects.operation", o.Name),
	}
	if o.Subject != "" {
		attrs = append(attrs, attribute.String("cloudobjects.subject", o.Subject))
	}
	if o.Detail != "" {
		attrs = append(attrs, attribute.String("cloudobjects.detail", o.Detail))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with operation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an operation.
	StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span)

	// EndSpan ends the span, recording the serving tier and any error.
	EndSpan(span trace.Span, tier string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, op.SpanName(),
		trace.WithAttributes(op.attributes()...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, tier string, err error) {
	if tier != "" {
		span.SetAttributes(attribute.String("cache.tier", tier))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span) {
	return t.noop.Start(ctx, op.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ string, _ error) {
	span.End()
}
