package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		StatusHealthy:   "healthy",
		StatusDegraded:  "degraded",
		StatusUnhealthy: "unhealthy",
		Status(7):       "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	errDown := errors.New("down")

	tests := []struct {
		name   string
		result Result
		status Status
	}{
		{"healthy", Healthy("ok"), StatusHealthy},
		{"degraded", Degraded("slow"), StatusDegraded},
		{"unhealthy", Unhealthy("down", errDown), StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.status)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp not set")
			}
		})
	}

	r := Healthy("ok").WithDetails(map[string]any{"revision": "1"})
	if r.Details["revision"] != "1" {
		t.Errorf("WithDetails() = %v", r.Details)
	}
}

func TestFromError(t *testing.T) {
	errProbe := errors.New("connection refused")
	ctx := context.Background()

	ok := FromError("cache", func(context.Context) error { return nil })
	if ok.Name() != "cache" {
		t.Errorf("Name() = %q, want cache", ok.Name())
	}
	if r := ok.Check(ctx); r.Status != StatusHealthy {
		t.Errorf("Check() status = %v, want healthy", r.Status)
	}

	bad := FromError("cache", func(context.Context) error { return errProbe })
	r := bad.Check(ctx)
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, errProbe) {
		t.Errorf("Check() = %+v, want unhealthy with probe error", r)
	}
	if r.Message != "connection refused" {
		t.Errorf("Message = %q", r.Message)
	}
}
