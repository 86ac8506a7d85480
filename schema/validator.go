package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"

	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

// Vocabulary terms, in Reader prefix form.
const (
	TypeElement = "json:Element"
	TypeString  = "json:String"
	TypeBoolean = "json:Boolean"
	TypeNumber  = "json:Number"
	TypeInteger = "json:Integer"
	TypeArray   = "json:Array"
	TypeObject  = "json:Object"

	PropertyRequires = "json:requiresProperty"
	PropertyOptional = "json:supportsOptionalProperty"
	PropertyKey      = "json:hasKey"
)

// ObjectResolver resolves element descriptions. *retriever.Retriever
// satisfies it.
type ObjectResolver interface {
	Object(ctx context.Context, id coid.ID) (*retriever.Object, error)
}

// Validator checks data against element descriptions.
type Validator struct {
	resolver ObjectResolver
	reader   *jsonld.Reader
}

// NewValidator creates a validator. resolver may be nil when only
// ValidateAgainstNode is used.
func NewValidator(resolver ObjectResolver) *Validator {
	return &Validator{resolver: resolver, reader: jsonld.NewReader(nil)}
}

// ValidateAgainstNode checks data against the description in node. Data is
// what encoding/json produces when decoding into any, or equivalent Go
// values (numeric kinds, slices, string-keyed maps).
//
// A mismatch is returned as *ValidationError. A member node lacking
// json:hasKey yields an error wrapping jsonld.ErrInvalidObjectConfiguration.
func (v *Validator) ValidateAgainstNode(data any, node *jsonld.Node) error {
	return v.validate(data, node, "$")
}

// ValidateAgainstCOID resolves the description and validates data against
// it. The object must be a json:Element.
func (v *Validator) ValidateAgainstCOID(ctx context.Context, data any, id coid.ID) error {
	node, err := v.element(ctx, id)
	if err != nil {
		return err
	}
	return v.validate(data, node, "$")
}

// ValidateJSON decodes raw and validates it against the description
// identified by id.
func (v *Validator) ValidateJSON(ctx context.Context, raw []byte, id coid.ID) error {
	data, err := decode(raw)
	if err != nil {
		return err
	}
	return v.ValidateAgainstCOID(ctx, data, id)
}

func (v *Validator) element(ctx context.Context, id coid.ID) (*jsonld.Node, error) {
	if v.resolver == nil {
		return nil, fmt.Errorf("%w: validator has no object resolver", retriever.ErrConfiguration)
	}
	obj, err := v.resolver.Object(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: %s", retriever.ErrNotFound, id)
	}
	if !v.reader.HasType(obj.Node(), TypeElement) {
		return nil, fmt.Errorf("%w: %s is not a JSON element", jsonld.ErrInvalidObjectConfiguration, id)
	}
	return obj.Node(), nil
}

func (v *Validator) validate(data any, node *jsonld.Node, path string) error {
	r := v.reader
	switch {
	case r.HasType(node, TypeString):
		if _, ok := data.(string); !ok {
			return mismatch(path, "string", data)
		}
	case r.HasType(node, TypeBoolean):
		if _, ok := data.(bool); !ok {
			return mismatch(path, "boolean", data)
		}
	case r.HasType(node, TypeNumber):
		if !isNumber(data) {
			return mismatch(path, "number", data)
		}
	case r.HasType(node, TypeInteger):
		if !isInteger(data) {
			return mismatch(path, "integer", data)
		}
	case r.HasType(node, TypeArray):
		if !isArray(data) {
			return mismatch(path, "array", data)
		}
	case r.HasType(node, TypeObject):
		obj, ok := asObject(data)
		if !ok {
			return mismatch(path, "object", data)
		}
		return v.validateMembers(obj, node, path)
	}
	return nil
}

func (v *Validator) validateMembers(obj map[string]any, node *jsonld.Node, path string) error {
	for _, prop := range v.reader.AllValuesNode(node, PropertyRequires) {
		key, err := v.key(prop)
		if err != nil {
			return err
		}
		value, ok := obj[key]
		if !ok {
			return &ValidationError{Path: childPath(path, key), Reason: "required property missing"}
		}
		if err := v.validate(value, prop, childPath(path, key)); err != nil {
			return err
		}
	}

	for _, prop := range v.reader.AllValuesNode(node, PropertyOptional) {
		key, err := v.key(prop)
		if err != nil {
			return err
		}
		if value, ok := obj[key]; ok && value != nil {
			if err := v.validate(value, prop, childPath(path, key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Validator) key(prop *jsonld.Node) (string, error) {
	key := v.reader.FirstValueString(prop, PropertyKey, "")
	if key == "" {
		return "", fmt.Errorf("%w: member %s lacks %s", jsonld.ErrInvalidObjectConfiguration, prop.ID(), PropertyKey)
	}
	return key, nil
}

func mismatch(path, want string, data any) error {
	return &ValidationError{Path: path, Reason: fmt.Sprintf("expected %s, got %s", want, typeName(data))}
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func childPath(path, key string) string {
	if identPattern.MatchString(key) {
		return path + "." + key
	}
	return path + "[" + strconv.Quote(key) + "]"
}

func decode(raw []byte) (any, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &ValidationError{Path: "$", Reason: "not JSON: " + err.Error()}
	}
	return data, nil
}

func isNumber(data any) bool {
	if _, ok := data.(json.Number); ok {
		return true
	}
	if data == nil {
		return false
	}
	switch reflect.TypeOf(data).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isInteger(data any) bool {
	if n, ok := data.(json.Number); ok {
		_, err := n.Int64()
		return err == nil
	}
	if data == nil {
		return false
	}
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return !math.IsInf(f, 0) && f == math.Trunc(f)
	}
	return false
}

func isArray(data any) bool {
	if data == nil {
		return false
	}
	switch reflect.TypeOf(data).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func asObject(data any) (map[string]any, bool) {
	if m, ok := data.(map[string]any); ok {
		return m, true
	}
	if data == nil {
		return nil, false
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func typeName(data any) string {
	switch {
	case data == nil:
		return "null"
	case isNumber(data):
		return "number"
	case isArray(data):
		return "array"
	}
	switch data.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := asObject(data); ok {
		return "object"
	}
	return fmt.Sprintf("%T", data)
}
