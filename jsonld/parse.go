package jsonld

import (
	"encoding/json"
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// ParseOptions tunes Parse.
type ParseOptions struct {
	// Base is the base IRI for relative references.
	Base string

	// DocumentLoader resolves remote contexts. Nil uses json-gold's default
	// HTTP loader.
	DocumentLoader ld.DocumentLoader
}

// Parse reads a JSON-LD document into a flattened Graph.
func Parse(data []byte) (*Graph, error) {
	return ParseWithOptions(data, ParseOptions{})
}

// ParseWithOptions is Parse with explicit json-gold options.
func ParseWithOptions(data []byte, opts ParseOptions) (*Graph, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	keepIDOnlyNodes(doc)

	ldOpts := ld.NewJsonLdOptions(opts.Base)
	if opts.DocumentLoader != nil {
		ldOpts.DocumentLoader = opts.DocumentLoader
	}

	flat, err := ld.NewJsonLdProcessor().Flatten(doc, nil, ldOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	items, ok := flat.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected flattened form %T", ErrInvalidDocument, flat)
	}

	g := NewGraph()
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := obj[keyID].(string)
		if id == "" {
			continue
		}
		n := g.CreateNode(id)
		for key, raw := range obj {
			switch key {
			case keyID, keepProperty:
			case keyType:
				for _, t := range asList(raw) {
					if s, ok := t.(string); ok {
						n.AddType(s)
					}
				}
			default:
				for _, rv := range asList(raw) {
					if v, ok := decodeValue(rv); ok {
						n.AddValue(key, v)
					}
				}
			}
		}
	}
	return g, nil
}

// keepProperty marks node objects that carry nothing but an @id. JSON-LD
// expansion and flattening drop such nodes, but an object may be described
// by its identifier alone.
const keepProperty = "urn:x-cloudobjects:keep"

// keepIDOnlyNodes adds keepProperty to top-level node objects, including
// members of a top-level @graph, whose only key besides @context is @id.
func keepIDOnlyNodes(doc any) {
	switch v := doc.(type) {
	case []any:
		for _, item := range v {
			keepIDOnlyNodes(item)
		}
	case map[string]any:
		if graph, ok := v["@graph"]; ok {
			for _, item := range asList(graph) {
				keepIDOnlyNodes(item)
			}
			return
		}
		if _, ok := v[keyID].(string); !ok {
			return
		}
		for key := range v {
			if key != keyID && key != "@context" {
				return
			}
		}
		v[keepProperty] = true
	}
}

func asList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

func decodeValue(raw any) (Value, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Value{}, false
	}
	if ref, ok := obj[keyID].(string); ok {
		return NewReference(ref), true
	}
	lit, ok := obj[keyValue]
	if !ok {
		return Value{}, false
	}
	v := NewLiteral(lit)
	v.datatype, _ = obj[keyType].(string)
	v.language, _ = obj[keyLanguage].(string)
	return v, true
}
