package webapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cloudobjects/cloudobjects-go/config"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef01234567"
	docContext = `{"co": "coid://cloudobjects.io/", "wa": "coid://webapis.co-n.net/", "oauth2": "coid://oauth2.co-n.net/"}`
)

// consumerDoc is the namespace credentials are read from.
var consumerDoc = fmt.Sprintf(`{
	"@context": %s,
	"@id": "coid://consumer.com",
	"@type": "co:Namespace",
	"coid://consumer.com/apiKey": "k-123",
	"coid://consumer.com/token": "tok-456",
	"coid://consumer.com/user": "alice",
	"coid://consumer.com/pass": "s3cret"
}`, docContext)

var providerDoc = fmt.Sprintf(`{
	"@context": %s,
	"@id": "coid://provider.com",
	"@type": "co:Namespace",
	"co:hasSharedSecret": {"co:hasTokenValue": %q}
}`, docContext, testSecret)

// apiDoc renders an API object; body holds the mechanism-specific members.
func apiDoc(name, types, baseURL, body string) string {
	doc := fmt.Sprintf(`{"@context": %s, "@id": "coid://provider.com/%s", "@type": [%s], "wa:hasBaseURL": %q`,
		docContext, name, types, baseURL)
	if body != "" {
		doc += ", " + body
	}
	return doc + "}"
}

// newTestResolver serves documents keyed by COID path without scheme and
// authenticates as consumer.com.
func newTestResolver(t *testing.T, docs map[string]string) *retriever.Retriever {
	t.Helper()
	fetch := retriever.FetcherFunc(func(_ context.Context, path string, _ http.Header) (int, []byte, error) {
		key, ok := strings.CutSuffix(path, "/object")
		if !ok {
			return http.StatusNotFound, nil, nil
		}
		doc, ok := docs[key]
		if !ok {
			return http.StatusNotFound, nil, nil
		}
		return http.StatusOK, []byte(doc), nil
	})

	cfg := config.Default()
	cfg.AuthNamespace = "consumer.com"
	cfg.AuthSecret = testSecret
	r, err := retriever.New(cfg, retriever.WithFetcher(fetch))
	if err != nil {
		t.Fatalf("retriever.New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// recorder is an API server that remembers the last request.
type recorder struct {
	*httptest.Server

	mu       sync.Mutex
	last     *http.Request
	lastBody []byte
	status   int
	body     string
}

func newRecorder(t *testing.T, body string) *recorder {
	t.Helper()
	rec := &recorder{status: http.StatusOK, body: body}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sent, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.last = r.Clone(context.Background())
		rec.lastBody = sent
		status, body := rec.status, rec.body
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(rec.Close)
	return rec
}

func (r *recorder) lastRequest() *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *recorder) lastRequestBody() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastBody
}

func (r *recorder) respond(status int, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status, r.body = status, body
}
