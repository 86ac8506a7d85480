package schema

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/config"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

func element(g *jsonld.Graph, id, typ string) *jsonld.Node {
	n := g.CreateNode(id)
	n.AddType(jsonld.JSONNS + typ)
	return n
}

func member(g *jsonld.Graph, id, typ, key string) *jsonld.Node {
	n := element(g, id, typ)
	n.AddValue(jsonld.JSONNS+"hasKey", jsonld.NewLiteral(key))
	return n
}

// objectWith builds an object description with a single member under the
// given relation ("requiresProperty" or "supportsOptionalProperty").
func objectWith(relation, typ, key string) *jsonld.Node {
	g := jsonld.NewGraph()
	m := member(g, "_:m", typ, key)
	obj := element(g, "_:o", "Object")
	obj.AddValue(jsonld.JSONNS+relation, jsonld.NewReference(m.ID()))
	return obj
}

func TestValidateAgainstNode_Scalars(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		typ     string
		data    any
		wantErr bool
	}{
		{"String", "Test", false},
		{"String", 9, true},
		{"Boolean", true, false},
		{"Boolean", "true", true},
		{"Number", 3.5, false},
		{"Number", 7, false},
		{"Number", "ABC", true},
		{"Integer", 12, false},
		{"Integer", float64(12), false},
		{"Integer", 1.4, true},
		{"Integer", "12", true},
		{"Array", []any{1, 2, "foo"}, false},
		{"Array", []string{"a"}, false},
		{"Array", "NANANA", true},
		{"Object", map[string]any{"a": "A", "b": "B"}, false},
		{"Object", map[string]string{"a": "A"}, false},
		{"Object", 5, true},
		{"Object", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			node := element(jsonld.NewGraph(), "_:n", tt.typ)
			err := v.ValidateAgainstNode(tt.data, node)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAgainstNode(%v) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidData) {
				t.Errorf("error %v does not wrap ErrInvalidData", err)
			}
		})
	}
}

func TestValidateAgainstNode_Untyped(t *testing.T) {
	node := jsonld.NewGraph().CreateNode("_:n")
	if err := NewValidator(nil).ValidateAgainstNode(42, node); err != nil {
		t.Errorf("ValidateAgainstNode() error = %v, want nil", err)
	}
}

func TestValidateAgainstNode_Members(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name     string
		relation string
		data     map[string]any
		wantPath string
	}{
		{"optional present", "supportsOptionalProperty", map[string]any{"a": "A", "b": "B"}, ""},
		{"optional absent", "supportsOptionalProperty", map[string]any{"b": "B"}, ""},
		{"optional null", "supportsOptionalProperty", map[string]any{"a": nil}, ""},
		{"optional type error", "supportsOptionalProperty", map[string]any{"a": 0.0, "b": "B"}, "$.a"},
		{"required present", "requiresProperty", map[string]any{"a": "A", "b": "B"}, ""},
		{"required type error", "requiresProperty", map[string]any{"a": 0.0, "b": "B"}, "$.a"},
		{"required missing", "requiresProperty", map[string]any{"b": "B", "c": "C"}, "$.a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAgainstNode(tt.data, objectWith(tt.relation, "String", "a"))
			if tt.wantPath == "" {
				if err != nil {
					t.Errorf("ValidateAgainstNode() error = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateAgainstNode() error = %v, want *ValidationError", err)
			}
			if verr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", verr.Path, tt.wantPath)
			}
		})
	}
}

func TestValidateAgainstNode_NestedPath(t *testing.T) {
	g := jsonld.NewGraph()
	count := member(g, "_:count", "Integer", "item count")
	inner := member(g, "_:inner", "Object", "order")
	inner.AddValue(jsonld.JSONNS+"requiresProperty", jsonld.NewReference(count.ID()))
	root := element(g, "_:root", "Object")
	root.AddValue(jsonld.JSONNS+"requiresProperty", jsonld.NewReference(inner.ID()))

	data := map[string]any{"order": map[string]any{"item count": "three"}}
	err := NewValidator(nil).ValidateAgainstNode(data, root)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ValidateAgainstNode() error = %v, want *ValidationError", err)
	}
	if want := `$.order["item count"]`; verr.Path != want {
		t.Errorf("Path = %q, want %q", verr.Path, want)
	}
	if verr.Reason != "expected integer, got string" {
		t.Errorf("Reason = %q", verr.Reason)
	}
}

func TestValidateAgainstNode_MissingKey(t *testing.T) {
	g := jsonld.NewGraph()
	m := element(g, "_:m", "String")
	obj := element(g, "_:o", "Object")
	obj.AddValue(jsonld.JSONNS+"requiresProperty", jsonld.NewReference(m.ID()))

	err := NewValidator(nil).ValidateAgainstNode(map[string]any{}, obj)
	if !errors.Is(err, jsonld.ErrInvalidObjectConfiguration) {
		t.Errorf("ValidateAgainstNode() error = %v, want ErrInvalidObjectConfiguration", err)
	}
}

const personDoc = `{
	"@context": {"json": "coid://json.cloudobjects.io/", "rdfs": "http://www.w3.org/2000/01/rdf-schema#"},
	"@id": "coid://example.com/Person",
	"@type": ["json:Element", "json:Object"],
	"rdfs:label": "Person",
	"json:requiresProperty": {"@type": "json:String", "json:hasKey": "name"},
	"json:supportsOptionalProperty": {"@type": "json:Integer", "json:hasKey": "age"}
}`

const plainDoc = `{
	"@context": {"json": "coid://json.cloudobjects.io/"},
	"@id": "coid://example.com/Plain",
	"@type": "json:Object"
}`

func newTestResolver(t *testing.T) *retriever.Retriever {
	t.Helper()
	docs := map[string]string{
		"example.com/Person/object": personDoc,
		"example.com/Plain/object":  plainDoc,
	}
	fetch := retriever.FetcherFunc(func(_ context.Context, path string, _ http.Header) (int, []byte, error) {
		doc, ok := docs[path]
		if !ok {
			return http.StatusNotFound, nil, nil
		}
		return http.StatusOK, []byte(doc), nil
	})
	r, err := retriever.New(config.Default(), retriever.WithFetcher(fetch))
	if err != nil {
		t.Fatalf("retriever.New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestValidateAgainstCOID(t *testing.T) {
	v := NewValidator(newTestResolver(t))
	ctx := context.Background()
	person := coid.MustParse("example.com/Person")

	if err := v.ValidateAgainstCOID(ctx, map[string]any{"name": "Ada", "age": 36.0}, person); err != nil {
		t.Errorf("ValidateAgainstCOID() error = %v", err)
	}
	if err := v.ValidateAgainstCOID(ctx, map[string]any{"age": 36.0}, person); !errors.Is(err, ErrInvalidData) {
		t.Errorf("ValidateAgainstCOID() error = %v, want ErrInvalidData", err)
	}
	if err := v.ValidateJSON(ctx, []byte(`{"name": "Ada", "age": 36.5}`), person); !errors.Is(err, ErrInvalidData) {
		t.Errorf("ValidateJSON() error = %v, want ErrInvalidData", err)
	}
	if err := v.ValidateJSON(ctx, []byte(`{"name":`), person); !errors.Is(err, ErrInvalidData) {
		t.Errorf("ValidateJSON() on broken JSON error = %v, want ErrInvalidData", err)
	}

	err := v.ValidateAgainstCOID(ctx, map[string]any{}, coid.MustParse("example.com/Plain"))
	if !errors.Is(err, jsonld.ErrInvalidObjectConfiguration) {
		t.Errorf("ValidateAgainstCOID() on non-element error = %v, want ErrInvalidObjectConfiguration", err)
	}

	err = v.ValidateAgainstCOID(ctx, map[string]any{}, coid.MustParse("example.com/Missing"))
	if !errors.Is(err, retriever.ErrNotFound) {
		t.Errorf("ValidateAgainstCOID() on missing object error = %v, want ErrNotFound", err)
	}

	err = NewValidator(nil).ValidateAgainstCOID(ctx, map[string]any{}, person)
	if !errors.Is(err, retriever.ErrConfiguration) || !strings.Contains(err.Error(), "resolver") {
		t.Errorf("ValidateAgainstCOID() without resolver error = %v, want ErrConfiguration", err)
	}
}
