package jsonld

import "errors"

var (
	// ErrInvalidDocument is returned by Parse for input that is not valid
	// JSON-LD.
	ErrInvalidDocument = errors.New("jsonld: invalid document")

	// ErrInvalidObjectConfiguration reports an object that lacks a property
	// or type a helper requires.
	ErrInvalidObjectConfiguration = errors.New("jsonld: invalid object configuration")

	// ErrNodeNotFound is returned by Subgraph for unknown node ids.
	ErrNodeNotFound = errors.New("jsonld: node not found")
)
