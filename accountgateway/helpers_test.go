package accountgateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const testAAUID = "aauid:aaaabbbbccccdddd"

const graphDoc = `{
	"@context": {
		"agws": "coid://accountgateways.cloudobjects.io/",
		"schema": "http://schema.org/"
	},
	"@graph": [
		{
			"@id": "aauid:aaaabbbbccccdddd",
			"@type": "agws:Account",
			"agws:hasConnection": {"@id": "aauid:aaaabbbbccccdddd:connection:AA"}
		},
		{"@id": "aauid:aaaabbbbccccdddd:person", "schema:name": "Alice"},
		{
			"@id": "aauid:aaaabbbbccccdddd:connection:AA",
			"agws:connectsTo": {"@id": "aauid:aaaabbbbccccdddd:account:AA"}
		},
		{
			"@id": "aauid:aaaabbbbccccdddd:account:AA",
			"@type": "agws:Account",
			"agws:isForService": {"@id": "coid://service.example.com"}
		}
	]
}`

// gateway is a fake Account Gateway serving graphDoc at /~/.
type gateway struct {
	*httptest.Server

	mu       sync.Mutex
	gets     int
	posted   []byte
	last     *http.Request
	version  string
	postCode int
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	g := &gateway{postCode: http.StatusNoContent}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.Close)
	return g
}

func (g *gateway) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = r.Clone(context.Background())
	if g.version != "" {
		w.Header().Set(HeaderAccessorLatestVersion, g.version)
	}

	if r.URL.Path != "/~/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		g.gets++
		w.Header().Set("Content-Type", "application/ld+json")
		_, _ = w.Write([]byte(graphDoc))
	case http.MethodPost:
		g.posted = body
		w.WriteHeader(g.postCode)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (g *gateway) getCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gets
}

func (g *gateway) postedBody() []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.posted
}

func (g *gateway) setPostCode(code int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.postCode = code
}

func (g *gateway) setVersion(v string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.version = v
}

func (g *gateway) lastRequest() *http.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// gatewayRequest builds an incoming request as forwarded by the gateway.
func gatewayRequest(headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api", nil)
	r.Header.Set(HeaderAAUID, "aaaabbbbccccdddd")
	r.Header.Set(HeaderAccessToken, "DUMMY")
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}
