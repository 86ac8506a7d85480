package jsonld

import "strings"

// Well-known namespaces.
const (
	CloudObjectsNS = "coid://cloudobjects.io/"
	RDFSNS         = "http://www.w3.org/2000/01/rdf-schema#"
	JSONNS         = "coid://json.cloudobjects.io/"
	WebAPINS       = "coid://webapis.co-n.net/"
	OAuth2NS       = "coid://oauth2.co-n.net/"
	CommonNS       = "coid://common.cloudobjects.io/"
	GatewayNS      = "coid://accountgateways.cloudobjects.io/"
)

// DefaultPrefixes are the prefixes every Reader understands unless
// overridden.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"co":     CloudObjectsNS,
		"rdfs":   RDFSNS,
		"json":   JSONNS,
		"wa":     WebAPINS,
		"oauth2": OAuth2NS,
		"common": CommonNS,
		"agws":   GatewayNS,
	}
}

// Reader provides convenience accessors over nodes. Property and type
// arguments may use a registered prefix ("co:Namespace"). All methods
// accept a nil node.
type Reader struct {
	prefixes map[string]string
}

// NewReader returns a Reader with DefaultPrefixes merged with prefixes.
func NewReader(prefixes map[string]string) *Reader {
	merged := DefaultPrefixes()
	for k, v := range prefixes {
		merged[k] = v
	}
	return &Reader{prefixes: merged}
}

// Expand replaces a known prefix with its namespace.
func (r *Reader) Expand(iri string) string {
	scheme, rest, ok := strings.Cut(iri, ":")
	if !ok || strings.HasPrefix(rest, "//") {
		return iri
	}
	if ns, ok := r.prefixes[scheme]; ok {
		return ns + rest
	}
	return iri
}

// HasType reports whether the node carries the type.
func (r *Reader) HasType(n *Node, typeIRI string) bool {
	if n == nil {
		return false
	}
	return n.HasType(r.Expand(typeIRI))
}

// HasProperty reports whether the node has at least one value for the
// property.
func (r *Reader) HasProperty(n *Node, property string) bool {
	return len(r.values(n, property)) > 0
}

// FirstValueString returns the first value of a property as a string, or
// def when the node or property is missing. References yield the node id.
func (r *Reader) FirstValueString(n *Node, property, def string) string {
	values := r.values(n, property)
	if len(values) == 0 {
		return def
	}
	return values[0].String()
}

// FirstValueIRI returns the first referenced node id of a property.
func (r *Reader) FirstValueIRI(n *Node, property string) (string, bool) {
	for _, v := range r.values(n, property) {
		if iri, ok := v.IRI(); ok {
			return iri, true
		}
	}
	return "", false
}

// FirstValueNode returns the first referenced node of a property that
// exists in the node's graph.
func (r *Reader) FirstValueNode(n *Node, property string) *Node {
	for _, v := range r.values(n, property) {
		if ref := v.Node(); ref != nil {
			return ref
		}
	}
	return nil
}

// AllValuesString returns every value of a property as strings.
func (r *Reader) AllValuesString(n *Node, property string) []string {
	values := r.values(n, property)
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.String())
	}
	return out
}

// AllValuesNode returns every referenced node of a property found in the
// node's graph.
func (r *Reader) AllValuesNode(n *Node, property string) []*Node {
	var out []*Node
	for _, v := range r.values(n, property) {
		if ref := v.Node(); ref != nil {
			out = append(out, ref)
		}
	}
	return out
}

// HasPropertyValue reports whether any value of the property equals value.
// References compare against the expanded value, literals against the raw
// string form.
func (r *Reader) HasPropertyValue(n *Node, property, value string) bool {
	expanded := r.Expand(value)
	for _, v := range r.values(n, property) {
		if v.IsReference() {
			if iri, _ := v.IRI(); iri == expanded {
				return true
			}
			continue
		}
		if v.String() == value {
			return true
		}
	}
	return false
}

func (r *Reader) values(n *Node, property string) []Value {
	if n == nil {
		return nil
	}
	return n.Property(r.Expand(property))
}
