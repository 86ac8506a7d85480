package accountgateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContext is returned by FromRequest when the request carries no
	// C-AAUID or C-Access-Token header.
	ErrNoContext = errors.New("accountgateway: request has no account context")

	// ErrInvalidAAUID is returned when the account identifier is not a bare
	// account AAUID.
	ErrInvalidAAUID = errors.New("accountgateway: not a valid account AAUID")

	// ErrNotInRequest is returned by operations that need the incoming
	// request.
	ErrNotInRequest = errors.New("accountgateway: not in a request context")
)

// StatusError is returned for non-2xx gateway responses.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("accountgateway: unexpected status %d", e.StatusCode)
}
