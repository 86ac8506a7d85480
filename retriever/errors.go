package retriever

import "errors"

var (
	// ErrInvalidIdentifier is returned for identifiers of kind Invalid.
	ErrInvalidIdentifier = errors.New("retriever: invalid identifier")

	// ErrNotFound is returned by Require when an object does not exist.
	ErrNotFound = errors.New("retriever: not found")

	// ErrRemoteService is returned when a bulk listing fails.
	ErrRemoteService = errors.New("retriever: remote service error")

	// ErrConfiguration is returned when an operation needs configuration
	// that is missing.
	ErrConfiguration = errors.New("retriever: missing configuration")
)
