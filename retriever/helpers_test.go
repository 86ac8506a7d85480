package retriever

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cloudobjects/cloudobjects-go/config"
)

const docContext = `{"co": "coid://cloudobjects.io/", "rdfs": "http://www.w3.org/2000/01/rdf-schema#", "ex": "coid://example.com/"}`

func objectDoc(id, revision, label string) string {
	return fmt.Sprintf(`{"@context": %s, "@id": %q, "@type": "ex:Widget", "co:isAtRevision": %q, "rdfs:label": %q}`,
		docContext, id, revision, label)
}

// fakeAPI serves fixed responses by request path and counts requests.
type fakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string]string
	statuses map[string]int
	hits     map[string]int
	requests []*http.Request
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		bodies:   make(map[string]string),
		statuses: make(map[string]int),
		hits:     make(map[string]int),
	}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Close)
	return api
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.hits[r.URL.Path]++
	a.requests = append(a.requests, r.Clone(context.Background()))
	body, ok := a.bodies[r.URL.Path]
	status := a.statuses[r.URL.Path]
	a.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/ld+json")
	_, _ = w.Write([]byte(body))
}

func (a *fakeAPI) set(path, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bodies[path] = body
	delete(a.statuses, path)
}

func (a *fakeAPI) fail(path string, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statuses[path] = status
}

func (a *fakeAPI) count(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[path]
}

func (a *fakeAPI) lastRequest() *http.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return nil
	}
	return a.requests[len(a.requests)-1]
}

func testConfig(api *fakeAPI) config.Config {
	cfg := config.Default()
	cfg.APIBaseURL = api.URL + "/"
	return cfg
}

func newTestRetriever(t *testing.T, cfg config.Config, opts ...Option) *Retriever {
	t.Helper()
	r, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func label(obj *Object) string {
	if obj == nil {
		return ""
	}
	vals := obj.Node().Property("http://www.w3.org/2000/01/rdf-schema#label")
	if len(vals) == 0 {
		return ""
	}
	return vals[0].String()
}

func writeSnapshot(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
