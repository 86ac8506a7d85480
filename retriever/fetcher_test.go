package retriever

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudobjects/cloudobjects-go/config"
	"github.com/cloudobjects/cloudobjects-go/resilience"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var (
		mu     sync.Mutex
		header http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		header = r.Header.Clone()
		mu.Unlock()
		switch r.URL.Path {
		case "/example.com/Foo/object":
			_, _ = w.Write([]byte("body"))
		case "/broken":
			http.Error(w, "boom", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.APIBaseURL = srv.URL
	cfg.AuthNamespace = "example.com"
	cfg.AuthSecret = "s3cr3t"
	f := NewHTTPFetcher(cfg)
	ctx := context.Background()

	if f.BaseURL() != srv.URL+"/" {
		t.Errorf("BaseURL() = %q, want trailing slash", f.BaseURL())
	}

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"example.com/Foo/object", 200, "body"},
		{"/example.com/Foo/object", 200, "body"},
		{"example.com/Missing/object", 404, "404 page not found\n"},
		{"broken", 502, "boom\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body, err := f.Fetch(ctx, tt.path, http.Header{"Accept": {"application/ld+json"}})
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if status != tt.status || string(body) != tt.body {
				t.Errorf("Fetch() = (%d, %q), want (%d, %q)", status, body, tt.status, tt.body)
			}
			mu.Lock()
			got := &http.Request{Header: header}
			mu.Unlock()
			if got.Header.Get("Accept") != "application/ld+json" {
				t.Errorf("Accept = %q", got.Header.Get("Accept"))
			}
			if got.Header.Get("User-Agent") != UserAgent {
				t.Errorf("User-Agent = %q, want %q", got.Header.Get("User-Agent"), UserAgent)
			}
			if user, pass, _ := got.BasicAuth(); user != "example.com" || pass != "s3cr3t" {
				t.Errorf("BasicAuth() = (%q, %q)", user, pass)
			}
		})
	}
}

func TestHTTPFetcher_Anonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); ok {
			t.Error("anonymous fetcher sent credentials")
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.APIBaseURL = srv.URL + "/"
	if _, _, err := NewHTTPFetcher(cfg).Fetch(context.Background(), "x", nil); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
}

func TestHTTPFetcher_ServerErrorsOpenCircuit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.APIBaseURL = srv.URL + "/"
	f := NewHTTPFetcher(cfg, WithExecutor(resilience.NewExecutor(
		resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 2})),
	)))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if status, _, err := f.Fetch(ctx, "x", nil); err != nil || status != 503 {
			t.Fatalf("Fetch() = (%d, %v), want (503, nil)", status, err)
		}
	}
	if _, _, err := f.Fetch(ctx, "x", nil); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("Fetch() error = %v, want ErrCircuitOpen", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := config.Default()
	cfg.APIBaseURL = srv.URL + "/"
	cfg.Timeout = 20 * time.Millisecond
	f := NewHTTPFetcher(cfg)

	_, _, err := f.Fetch(context.Background(), "slow", nil)
	if err == nil {
		t.Fatal("Fetch() error = nil, want timeout")
	}
}

func TestFetcherFunc(t *testing.T) {
	f := FetcherFunc(func(_ context.Context, path string, _ http.Header) (int, []byte, error) {
		return 200, []byte(path), nil
	})
	_, body, _ := f.Fetch(context.Background(), "p", nil)
	if string(body) != "p" {
		t.Errorf("Fetch() body = %q, want p", body)
	}
}
