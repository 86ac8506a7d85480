package retriever

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cloudobjects/cloudobjects-go/config"
	"github.com/cloudobjects/cloudobjects-go/resilience"
)

// MaxBodySize caps a response body read by HTTPFetcher.
const MaxBodySize = 32 << 20

// UserAgent is sent with every API request.
const UserAgent = "cloudobjects-go"

// Fetcher performs GET requests against the Object API. Path is relative
// to the API base URL and may carry a query. Transport failures are
// returned as errors; any HTTP response, including non-2xx, is not.
type Fetcher interface {
	Fetch(ctx context.Context, path string, header http.Header) (status int, body []byte, err error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, path string, header http.Header) (int, []byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, path string, header http.Header) (int, []byte, error) {
	return f(ctx, path, header)
}

// HTTPFetcher is the net/http Fetcher. Every request runs through a
// resilience.Executor; 5xx responses count as circuit failures.
type HTTPFetcher struct {
	base     string
	client   *http.Client
	exec     *resilience.Executor
	username string
	password string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithExecutor replaces the request guards.
func WithExecutor(e *resilience.Executor) HTTPOption {
	return func(f *HTTPFetcher) { f.exec = e }
}

// NewHTTPFetcher builds a fetcher for cfg.APIBaseURL. Requests are
// authenticated with HTTP Basic as the configured namespace.
func NewHTTPFetcher(cfg config.Config, opts ...HTTPOption) *HTTPFetcher {
	base := cfg.APIBaseURL
	if base == "" {
		base = config.DefaultAPIBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	f := &HTTPFetcher{
		base:   base,
		client: NewHTTPClient(cfg.ConnectTimeout, cfg.Timeout),
		exec: resilience.NewExecutor(
			resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
				MaxConcurrent: cfg.MaxConcurrentRequests,
			})),
			resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
			resilience.WithTimeout(cfg.Timeout),
		),
	}
	if cfg.AuthNamespace != "" {
		f.username, f.password = cfg.AuthNamespace, cfg.AuthSecret
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewHTTPClient returns a client whose dial is bounded by connect and whole
// requests by total. Zero values leave the bound off.
func NewHTTPClient(connect, total time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}).DialContext
	return &http.Client{Transport: transport, Timeout: total}
}

// BaseURL returns the URL every path is appended to.
func (f *HTTPFetcher) BaseURL() string { return f.base }

// Executor returns the request guards.
func (f *HTTPFetcher) Executor() *resilience.Executor { return f.exec }

type serverError struct {
	status int
	body   []byte
}

func (e *serverError) Error() string { return fmt.Sprintf("server error: %d", e.status) }

// Fetch performs a GET request.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string, header http.Header) (int, []byte, error) {
	var (
		status int
		body   []byte
	)
	err := f.exec.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.base+strings.TrimPrefix(path, "/"), nil)
		if err != nil {
			return err
		}
		for k, v := range header {
			req.Header[k] = v
		}
		req.Header.Set("User-Agent", UserAgent)
		if f.username != "" {
			req.SetBasicAuth(f.username, f.password)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode >= 500 {
			return &serverError{status: resp.StatusCode, body: data}
		}
		status, body = resp.StatusCode, data
		return nil
	})

	var se *serverError
	if errors.As(err, &se) {
		return se.status, se.body, nil
	}
	if err != nil {
		return 0, nil, err
	}
	return status, body, nil
}
