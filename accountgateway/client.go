package accountgateway

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudobjects/cloudobjects-go/coid"
)

// DefaultBaseURLTemplate is the gateway URL; {aauid} is replaced by the
// 16-character account id.
const DefaultBaseURLTemplate = "https://{aauid}.aauid.net"

// Client calls the Account Gateway on behalf of an account.
type Client struct {
	base *url.URL
	http *http.Client
}

// BaseURL returns the gateway base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// HTTPClient returns the underlying client. It adds the bearer token and
// X-Forwarded-For to every request.
func (c *Client) HTTPClient() *http.Client { return c.http }

// NewRequest creates a request for ref resolved against the base URL.
func (c *Client) NewRequest(ctx context.Context, method, ref string, body io.Reader) (*http.Request, error) {
	u, err := c.base.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("accountgateway: invalid reference %q: %w", ref, err)
	}
	return http.NewRequestWithContext(ctx, method, u.String(), body)
}

// Do sends req.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}

// gatewayTransport authenticates outgoing requests and records accessor
// version hints from responses.
type gatewayTransport struct {
	base         http.RoundTripper
	token        string
	forwardedFor string
	ac           *Context
}

func (t *gatewayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	if t.forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", t.forwardedFor)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if v := resp.Header.Get(HeaderAccessorLatestVersion); v != "" {
		if id := coid.Normalize(v); id.IsValid() {
			t.ac.SetLatestAccessorVersion(id)
		}
	}
	return resp, nil
}

func baseURL(template, accountID string) (*url.URL, error) {
	u, err := url.Parse(strings.ReplaceAll(template, "{aauid}", accountID))
	if err != nil {
		return nil, fmt.Errorf("accountgateway: invalid base URL template %q: %w", template, err)
	}
	return u, nil
}

// forwardedFor returns the X-Forwarded-For of r or, without one, the
// client address.
func forwardedFor(r *http.Request) string {
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		return v
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
