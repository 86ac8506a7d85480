package schema

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/cloudobjects/cloudobjects-go/jsonld"
)

// Draft is the $schema URI of exported documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// JSONSchema converts the description in node to a JSON Schema document.
// Optional members additionally accept null, matching ValidateAgainstNode.
// rdfs:label and rdfs:comment become title and description.
func (v *Validator) JSONSchema(node *jsonld.Node) (*jsonschema.Schema, error) {
	s, err := v.convert(node, make(map[string]bool))
	if err != nil {
		return nil, err
	}
	s.Schema = Draft
	return s, nil
}

func (v *Validator) convert(node *jsonld.Node, visiting map[string]bool) (*jsonschema.Schema, error) {
	if visiting[node.ID()] {
		return nil, fmt.Errorf("%w: %s is recursive", jsonld.ErrInvalidObjectConfiguration, node.ID())
	}
	visiting[node.ID()] = true
	defer delete(visiting, node.ID())

	r := v.reader
	s := &jsonschema.Schema{
		Title:       r.FirstValueString(node, "rdfs:label", ""),
		Description: r.FirstValueString(node, "rdfs:comment", ""),
	}

	switch {
	case r.HasType(node, TypeString):
		s.Type = "string"
	case r.HasType(node, TypeBoolean):
		s.Type = "boolean"
	case r.HasType(node, TypeNumber):
		s.Type = "number"
	case r.HasType(node, TypeInteger):
		s.Type = "integer"
	case r.HasType(node, TypeArray):
		s.Type = "array"
	case r.HasType(node, TypeObject):
		s.Type = "object"
		if err := v.convertMembers(s, node, visiting); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (v *Validator) convertMembers(s *jsonschema.Schema, node *jsonld.Node, visiting map[string]bool) error {
	add := func(prop *jsonld.Node, required bool) error {
		key, err := v.key(prop)
		if err != nil {
			return err
		}
		member, err := v.convert(prop, visiting)
		if err != nil {
			return err
		}
		if required {
			s.Required = append(s.Required, key)
		} else if member.Type != "" {
			member.Types = []string{member.Type, "null"}
			member.Type = ""
		}
		if s.Properties == nil {
			s.Properties = make(map[string]*jsonschema.Schema)
		}
		s.Properties[key] = member
		return nil
	}

	for _, prop := range v.reader.AllValuesNode(node, PropertyRequires) {
		if err := add(prop, true); err != nil {
			return err
		}
	}
	for _, prop := range v.reader.AllValuesNode(node, PropertyOptional) {
		if err := add(prop, false); err != nil {
			return err
		}
	}
	return nil
}
