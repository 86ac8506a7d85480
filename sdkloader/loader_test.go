package sdkloader

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

const nsDoc = `{
	"@context": {
		"aws": "coid://amazonws.cloudobjects.io/",
		"stream": "coid://getstreamio.cloudobjects.io/",
		"pusher": "coid://pusher.cloudobjects.io/"
	},
	"@id": "coid://example.com",
	"aws:accessKeyId": "AKIA123",
	"aws:secretAccessKey": "aws-secret",
	"stream:key": "stream-key",
	"stream:secret": "stream-secret",
	"pusher:key": "pusher-key",
	"pusher:secret": "pusher-secret",
	"pusher:appId": "4711"
}`

// staticResolver returns a fixed namespace and counts lookups.
type staticResolver struct {
	obj   *retriever.Object
	err   error
	calls int
}

func (s *staticResolver) AuthenticatingNamespace(context.Context) (*retriever.Object, error) {
	s.calls++
	return s.obj, s.err
}

func newResolver(t *testing.T, doc string) *staticResolver {
	t.Helper()
	obj, err := retriever.NewObject("coid://example.com", []byte(doc))
	if err != nil {
		t.Fatalf("NewObject() error = %v", err)
	}
	return &staticResolver{obj: obj}
}

func TestLoader_Builtins(t *testing.T) {
	l := NewLoader(newResolver(t, nsDoc))
	ctx := context.Background()

	aws, err := Load[*AWSCredentials](ctx, l, "aws", map[string]any{"region": "eu-central-1"})
	if err != nil {
		t.Fatalf("Load(aws) error = %v", err)
	}
	if aws.AccessKeyID != "AKIA123" || aws.SecretAccessKey != "aws-secret" {
		t.Errorf("aws = %+v", aws)
	}
	if aws.Options["region"] != "eu-central-1" {
		t.Errorf("aws options = %v, want region passed through", aws.Options)
	}

	stream, err := Load[*GetStreamCredentials](ctx, l, "getstream", nil)
	if err != nil {
		t.Fatalf("Load(getstream) error = %v", err)
	}
	if stream.Key != "stream-key" || stream.Secret != "stream-secret" {
		t.Errorf("getstream = %+v", stream)
	}

	pusher, err := Load[*PusherCredentials](ctx, l, "pusher", nil)
	if err != nil {
		t.Fatalf("Load(pusher) error = %v", err)
	}
	if pusher.Key != "pusher-key" || pusher.Secret != "pusher-secret" || pusher.AppID != "4711" {
		t.Errorf("pusher = %+v", pusher)
	}
}

func TestLoader_Memoizes(t *testing.T) {
	res := newResolver(t, nsDoc)
	l := NewLoader(res)
	ctx := context.Background()

	a, err := l.Get(ctx, "aws", map[string]any{"region": "eu", "version": "latest"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	b, _ := l.Get(ctx, "aws", map[string]any{"version": "latest", "region": "eu"})
	if a != b {
		t.Error("Get() with equal options returned different values")
	}
	c, _ := l.Get(ctx, "aws", map[string]any{"region": "us"})
	if a == c {
		t.Error("Get() with different options returned the same value")
	}
	if res.calls != 2 {
		t.Errorf("namespace lookups = %d, want 2", res.calls)
	}
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		resolver *staticResolver
		sdk      string
		wantErr  error
	}{
		{"unsupported", newResolver(t, nsDoc), "twilio", ErrUnsupported},
		{"missing credential", newResolver(t, `{"@id": "coid://example.com"}`), "pusher", jsonld.ErrInvalidObjectConfiguration},
		{"no namespace", &staticResolver{}, "aws", retriever.ErrNotFound},
		{"resolver error", &staticResolver{err: retriever.ErrConfiguration}, "aws", retriever.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.resolver).Get(ctx, tt.sdk, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Get() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_WrongType(t *testing.T) {
	l := NewLoader(newResolver(t, nsDoc))
	if _, err := Load[*PusherCredentials](context.Background(), l, "aws", nil); err == nil {
		t.Error("Load() error = nil, want type mismatch")
	}
}

func TestLoader_CustomFactory(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register("mailer", func(ns *jsonld.Node, r *jsonld.Reader, _ map[string]any) (any, error) {
		return r.FirstValueString(ns, "coid://pusher.cloudobjects.io/appId", ""), nil
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	v, err := Load[string](context.Background(), NewLoader(newResolver(t, nsDoc), WithRegistry(reg)), "mailer", nil)
	if err != nil || v != "4711" {
		t.Errorf("Load() = %q, %v, want 4711", v, err)
	}
}
