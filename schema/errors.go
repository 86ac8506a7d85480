package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidData is wrapped by every ValidationError.
var ErrInvalidData = errors.New("schema: invalid data")

// ValidationError reports where data failed to match its description.
type ValidationError struct {
	// Path locates the offending value, "$" being the root.
	Path string

	// Reason describes the mismatch.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrInvalidData.
func (e *ValidationError) Unwrap() error { return ErrInvalidData }
