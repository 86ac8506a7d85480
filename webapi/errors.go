package webapi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCoreAPI reports that CloudObjects could not supply an object the
// client configuration depends on.
var ErrCoreAPI = errors.New("webapi: core API error")

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webapi: unexpected status %d", e.StatusCode)
}

// GraphQLError is a single entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// GraphQLErrors is returned when a GraphQL response carries errors.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Message
	}
	return "webapi: graphql: " + strings.Join(msgs, "; ")
}
