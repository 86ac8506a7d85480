package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/config"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

const testSecret = "0123456789abcdef0123456789abcdef01234567"

func namespaceDoc(domain string, secrets ...string) string {
	var parts []string
	for _, s := range secrets {
		parts = append(parts, fmt.Sprintf(`{"co:hasTokenValue": %q}`, s))
	}
	return fmt.Sprintf(`{
		"@context": {"co": "coid://cloudobjects.io/"},
		"@id": "coid://%s",
		"@type": "co:Namespace",
		"co:isAtRevision": "1-abc",
		"co:hasSharedSecret": [%s]
	}`, domain, strings.Join(parts, ","))
}

// newTestResolver serves namespace documents keyed by domain.
func newTestResolver(t *testing.T, docs map[string]string) *retriever.Retriever {
	t.Helper()
	fetch := retriever.FetcherFunc(func(_ context.Context, path string, _ http.Header) (int, []byte, error) {
		domain, ok := strings.CutSuffix(path, "/object")
		if !ok {
			return http.StatusNotFound, nil, nil
		}
		doc, ok := docs[domain]
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

// errResolver fails every lookup.
type errResolver struct{ err error }

func (e errResolver) Object(context.Context, coid.ID) (*retriever.Object, error) {
	return nil, e.err
}
