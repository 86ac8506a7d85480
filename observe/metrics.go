package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricResolveTotal    = "cloudobjects.resolve.total"
	MetricResolveErrors   = "cloudobjects.resolve.errors"
	MetricResolveDuration = "cloudobjects.resolve.duration_ms"
)

// Metrics records resolution metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordResolution records one operation with its serving tier,
	// duration and error status.
	RecordResolution(ctx context.Context, op Operation, tier string, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates the resolution instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricResolveTotal,
		metric.WithDescription("Total number of SDK resolutions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricResolveErrors,
		metric.WithDescription("Total number of failed SDK resolutions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricResolveDuration,
		metric.WithDescription("SDK resolution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordResolution(ctx context.Context, op Operation, tier string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("cloudobjects.operation", op.Name),
	}
	if tier != "" {
		attrs = append(attrs, attribute.String("cache.tier", tier))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordResolution(context.Context, Operation, string, time.Duration, error) {}
