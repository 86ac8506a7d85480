package jsonld

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const (
	keyID       = "@id"
	keyType     = "@type"
	keyValue    = "@value"
	keyLanguage = "@language"
)

// Graph is a flattened set of nodes. It is safe for concurrent reads;
// CreateNode and Node.AddValue must not race with readers.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	if g == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[id]
}

// Nodes returns all nodes in document order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodesOfType returns the nodes carrying typeIRI among their types.
func (g *Graph) NodesOfType(typeIRI string) []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.HasType(typeIRI) {
			out = append(out, n)
		}
	}
	return out
}

// CreateNode returns the node for id, adding an empty one if missing.
func (g *Graph) CreateNode(id string) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &Node{graph: g, id: id, props: make(map[string][]Value)}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// Subgraph serializes the node with the given id together with every blank
// node reachable from it, as a standalone document that Parse accepts.
func (g *Graph) Subgraph(id string) ([]byte, error) {
	root := g.Node(id)
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	seen := map[string]bool{id: true}
	out := []map[string]any{root.object()}
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, prop := range n.propertyOrder() {
			for _, v := range n.props[prop] {
				ref, ok := v.IRI()
				if !ok || !isBlank(ref) || seen[ref] {
					continue
				}
				seen[ref] = true
				if child := g.Node(ref); child != nil {
					out = append(out, child.object())
					queue = append(queue, child)
				}
			}
		}
	}
	return json.Marshal(out)
}

// MarshalJSON writes the graph in flattened, expanded form.
func (g *Graph) MarshalJSON() ([]byte, error) {
	nodes := g.Nodes()
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.object())
	}
	return json.Marshal(out)
}

func isBlank(id string) bool {
	return strings.HasPrefix(id, "_:")
}

// Node is a subject in a Graph.
type Node struct {
	graph *Graph
	id    string
	types []string
	props map[string][]Value
	order []string
}

// ID returns the node IRI or blank node label.
func (n *Node) ID() string { return n.id }

// Graph returns the graph that owns the node.
func (n *Node) Graph() *Graph { return n.graph }

// Types returns the type IRIs of the node.
func (n *Node) Types() []string {
	return append([]string(nil), n.types...)
}

// HasType reports whether typeIRI is one of the node's types.
func (n *Node) HasType(typeIRI string) bool {
	for _, t := range n.types {
		if t == typeIRI {
			return true
		}
	}
	return false
}

// AddType appends a type unless already present.
func (n *Node) AddType(typeIRI string) {
	if !n.HasType(typeIRI) {
		n.types = append(n.types, typeIRI)
	}
}

// Property returns the values of a property, nil when absent.
func (n *Node) Property(iri string) []Value {
	return n.props[iri]
}

// Properties returns the property IRIs set on the node, sorted.
func (n *Node) Properties() []string {
	return n.propertyOrder()
}

// AddValue appends a value to a property.
func (n *Node) AddValue(iri string, v Value) {
	if v.graph == nil {
		v.graph = n.graph
	}
	if _, ok := n.props[iri]; !ok {
		n.order = append(n.order, iri)
	}
	n.props[iri] = append(n.props[iri], v)
}

func (n *Node) propertyOrder() []string {
	out := append([]string(nil), n.order...)
	sort.Strings(out)
	return out
}

func (n *Node) object() map[string]any {
	obj := map[string]any{keyID: n.id}
	if len(n.types) > 0 {
		obj[keyType] = n.Types()
	}
	for _, prop := range n.order {
		values := make([]any, 0, len(n.props[prop]))
		for _, v := range n.props[prop] {
			values = append(values, v.object())
		}
		obj[prop] = values
	}
	return obj
}

// Value is a property value: either a literal or a reference to a node.
type Value struct {
	graph    *Graph
	ref      string
	literal  any
	datatype string
	language string
}

// NewLiteral returns a plain literal value.
func NewLiteral(v any) Value {
	return Value{literal: v}
}

// NewTypedLiteral returns a literal with an explicit datatype IRI.
func NewTypedLiteral(v any, datatype string) Value {
	return Value{literal: v, datatype: datatype}
}

// NewReference returns a value pointing at the node with the given id.
func NewReference(id string) Value {
	return Value{ref: id}
}

// IsReference reports whether the value points at a node.
func (v Value) IsReference() bool { return v.ref != "" }

// IRI returns the referenced node id.
func (v Value) IRI() (string, bool) {
	return v.ref, v.ref != ""
}

// Node returns the referenced node within the owning graph, or nil for
// literals and dangling references.
func (v Value) Node() *Node {
	if v.ref == "" {
		return nil
	}
	return v.graph.Node(v.ref)
}

// Literal returns the literal value (string, float64, bool).
func (v Value) Literal() (any, bool) {
	if v.ref != "" {
		return nil, false
	}
	return v.literal, true
}

// Datatype returns the datatype IRI of a typed literal.
func (v Value) Datatype() string { return v.datatype }

// Language returns the language tag of a literal.
func (v Value) Language() string { return v.language }

// String returns the node id for references and the literal formatted with
// %v otherwise.
func (v Value) String() string {
	if v.ref != "" {
		return v.ref
	}
	switch lit := v.literal.(type) {
	case string:
		return lit
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(lit, 'f', -1, 64)
	default:
		return fmt.Sprint(lit)
	}
}

func (v Value) object() map[string]any {
	if v.ref != "" {
		return map[string]any{keyID: v.ref}
	}
	obj := map[string]any{keyValue: v.literal}
	if v.datatype != "" {
		obj[keyType] = v.datatype
	}
	if v.language != "" {
		obj[keyLanguage] = v.language
	}
	return obj
}
