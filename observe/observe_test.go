package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"minimal", Config{ServiceName: "cloudobjects"}, nil},
		{"empty", Config{}, nil},
		{"bad trace exporter", Config{ServiceName: "s", Tracing: TracingConfig{Enabled: true, Exporter: "zipkin"}}, ErrInvalidTracingExporter},
		{"bad sample pct", Config{ServiceName: "s", Tracing: TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5}}, ErrInvalidSamplePct},
		{"bad metrics exporter", Config{ServiceName: "s", Metrics: MetricsConfig{Enabled: true, Exporter: "statsd"}}, ErrInvalidMetricsExporter},
		{"bad log level", Config{ServiceName: "s", Logging: LoggingConfig{Enabled: true, Level: "trace"}}, ErrInvalidLogLevel},
		{"disabled ignores values", Config{ServiceName: "s", Tracing: TracingConfig{Exporter: "zipkin"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_Noops(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "observe-test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("NewObserver() returned nil components")
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_StdoutToWriter(t *testing.T) {
	var out bytes.Buffer
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "observe-test",
		Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: true, Level: "info"},
		Output:      &out,
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	inst, err := InstrumenterFromObserver(obs)
	if err != nil {
		t.Fatalf("InstrumenterFromObserver() error = %v", err)
	}
	_ = inst.Instrument(context.Background(), Operation{Name: "object"}, func(context.Context) (string, error) {
		return "local", nil
	})
	obs.Logger().Info(context.Background(), "hello")

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("cloudobjects.object")) {
		t.Errorf("span not exported to Output:\n%s", out.String())
	}
	if !bytes.Contains(out.Bytes(), []byte(`"msg":"hello"`)) {
		t.Errorf("log line not written to Output:\n%s", out.String())
	}
	if !bytes.Contains(out.Bytes(), []byte(`"service":"observe-test"`)) {
		t.Errorf("log line lacks service field:\n%s", out.String())
	}
}

func TestNewObserver_DefaultServiceNameKeepsGlobals(t *testing.T) {
	before := otel.GetTracerProvider()
	var out bytes.Buffer
	obs, err := NewObserver(context.Background(), Config{
		Tracing: TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1},
		Logging: LoggingConfig{Enabled: true, Level: "info"},
		Output:  &out,
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	if otel.GetTracerProvider() != before {
		t.Error("NewObserver() replaced the global tracer provider")
	}
	obs.Logger().Info(context.Background(), "hello")
	if !bytes.Contains(out.Bytes(), []byte(`"service":"`+DefaultServiceName+`"`)) {
		t.Errorf("log line lacks default service name:\n%s", out.String())
	}
}
