package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/resilience"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

// Client is an HTTP client bound to one API. Its HTTP client adds the
// API's credentials to every request.
type Client struct {
	api     coid.ID
	base    *url.URL
	http    *http.Client
	exec    *resilience.Executor
	graphQL bool
}

// API returns the API COID.
func (c *Client) API() coid.ID { return c.api }

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// HTTPClient returns the authenticated HTTP client.
func (c *Client) HTTPClient() *http.Client { return c.http }

// NewRequest creates a request for ref resolved against the base URL.
func (c *Client) NewRequest(ctx context.Context, method, ref string, body io.Reader) (*http.Request, error) {
	u, err := c.base.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("webapi: invalid reference %q: %w", ref, err)
	}
	return http.NewRequestWithContext(ctx, method, u.String(), body)
}

// Do sends req through the client's circuit breaker.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := c.exec.Execute(req.Context(), func(ctx context.Context) error {
		var err error
		resp, err = c.http.Do(req.WithContext(ctx))
		return err
	})
	return resp, err
}

// GetJSON fetches ref and decodes the JSON response into out. Non-2xx
// responses yield a *StatusError.
func (c *Client) GetJSON(ctx context.Context, ref string, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, retriever.MaxBodySize))
	if err != nil {
		return fmt.Errorf("webapi: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: data}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// credentials are applied to each outgoing request.
type credentials struct {
	header   http.Header
	query    url.Values
	username string
	password string
	basic    bool
}

type authTransport struct {
	base  http.RoundTripper
	creds credentials
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.creds.header {
		req.Header[k] = v
	}
	if len(t.creds.query) > 0 {
		if req.URL.RawQuery != "" {
			req.URL.RawQuery += "&"
		}
		req.URL.RawQuery += t.creds.query.Encode()
	}
	if t.creds.basic {
		req.SetBasicAuth(t.creds.username, t.creds.password)
	}
	return t.base.RoundTrip(req)
}
