package retriever

import (
	"bytes"
	"fmt"

	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
)

// RevisionProperty holds an object's revision token.
const RevisionProperty = jsonld.CloudObjectsNS + "isAtRevision"

// Object is a resolved object description. Objects are shared between
// callers and must not be modified.
type Object struct {
	id       coid.ID
	graph    *jsonld.Graph
	node     *jsonld.Node
	revision string
	document []byte
}

// parseObject reads a JSON-LD document and selects the node for id. A
// document without that node yields a nil Object.
func parseObject(id coid.ID, data []byte, opts jsonld.ParseOptions) (*Object, error) {
	g, err := jsonld.ParseWithOptions(data, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", id, err)
	}
	n := g.Node(id.String())
	if n == nil {
		return nil, nil
	}

	var revision string
	if vals := n.Property(RevisionProperty); len(vals) > 0 {
		revision = vals[0].String()
	}
	return &Object{
		id:       id,
		graph:    g,
		node:     n,
		revision: revision,
		document: data,
	}, nil
}

// NewObject parses a JSON-LD description of id obtained outside a
// Retriever. A document without a node for id yields ErrNotFound.
func NewObject(id string, data []byte) (*Object, error) {
	cid := coid.Normalize(id)
	if !cid.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	obj, err := parseObject(cid, data, jsonld.ParseOptions{})
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, cid)
	}
	return obj, nil
}

// ID returns the object's identifier.
func (o *Object) ID() coid.ID { return o.id }

// Node returns the graph node describing the object.
func (o *Object) Node() *jsonld.Node { return o.node }

// Graph returns the whole parsed document.
func (o *Object) Graph() *jsonld.Graph { return o.graph }

// Revision returns the revision token, if the description carries one.
func (o *Object) Revision() (string, bool) {
	return o.revision, o.revision != ""
}

// Document returns a copy of the JSON-LD source.
func (o *Object) Document() []byte { return bytes.Clone(o.document) }
