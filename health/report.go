package health

import (
	"encoding/json"
	"time"
)

// NamedResult pairs a result with the checker that produced it.
type NamedResult struct {
	Name string
	Result
}

// Report is the outcome of an Aggregator run.
type Report struct {
	Status    Status
	Timestamp time.Time
	Checks    []NamedResult
}

type reportJSON struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Checks    []checkJSON `json:"checks,omitempty"`
}

type checkJSON struct {
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// MarshalJSON renders the report for machine consumption.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Status:    r.Status.String(),
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
	}
	for _, c := range r.Checks {
		check := checkJSON{
			Name:     c.Name,
			Status:   c.Status.String(),
			Message:  c.Message,
			Duration: c.Duration.String(),
			Details:  c.Details,
		}
		if c.Error != nil {
			check.Error = c.Error.Error()
		}
		out.Checks = append(out.Checks, check)
	}
	return json.Marshal(out)
}

// Healthy reports whether no check is unhealthy.
func (r Report) Healthy() bool {
	return r.Status != StatusUnhealthy
}
