package accountgateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cloudobjects/cloudobjects-go/aauid"
	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

// Client timeouts.
const (
	ConnectTimeout = 5 * time.Second
	Timeout        = 20 * time.Second
)

// Context is the account context of one request. It is safe for
// concurrent use.
type Context struct {
	aauid       aauid.ID
	accessToken string
	loader      *DataLoader
	base        *url.URL
	transport   http.RoundTripper
	reader      *jsonld.Reader

	request             *http.Request
	accessor            coid.ID
	accountDomain       string
	connectionQualifier string
	installQualifier    string

	mu             sync.Mutex
	latestAccessor coid.ID
	graph          *jsonld.Graph
	client         *Client
	logCode        string
}

// Option configures a Context.
type Option func(*contextOptions)

type contextOptions struct {
	loader    *DataLoader
	template  string
	transport http.RoundTripper
}

// WithDataLoader sets the loader for the Account Graph. The default loader
// does not cache.
func WithDataLoader(d *DataLoader) Option {
	return func(o *contextOptions) { o.loader = d }
}

// WithBaseURLTemplate replaces DefaultBaseURLTemplate. A template without
// the {aauid} placeholder is used verbatim.
func WithBaseURLTemplate(template string) Option {
	return func(o *contextOptions) { o.template = template }
}

// WithTransport sets the transport the gateway client sends through.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *contextOptions) { o.transport = rt }
}

// New creates a context for an account AAUID and OAuth 2.0 access token.
func New(id aauid.ID, accessToken string, opts ...Option) (*Context, error) {
	if id.Kind() != aauid.Account {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAAUID, id.String())
	}

	o := contextOptions{template: DefaultBaseURLTemplate}
	for _, opt := range opts {
		opt(&o)
	}
	if o.loader == nil {
		o.loader = NewDataLoader(nil)
	}

	accountID, _ := id.AccountID()
	base, err := baseURL(o.template, accountID)
	if err != nil {
		return nil, err
	}

	return &Context{
		aauid:       id,
		accessToken: accessToken,
		loader:      o.loader,
		base:        base,
		transport:   o.transport,
		reader:      jsonld.NewReader(nil),
	}, nil
}

// FromRequest creates a context from the C-* headers of an incoming
// gateway request. It returns ErrNoContext when C-AAUID or C-Access-Token
// is missing.
func FromRequest(r *http.Request, opts ...Option) (*Context, error) {
	rawID := r.Header.Get(HeaderAAUID)
	token := r.Header.Get(HeaderAccessToken)
	if rawID == "" || token == "" {
		return nil, ErrNoContext
	}

	ac, err := New(aauid.Normalize(rawID), token, opts...)
	if err != nil {
		return nil, err
	}
	ac.request = r

	if v := r.Header.Get(HeaderAccessor); v != "" {
		ac.accessor = coid.Normalize(v)
	}
	ac.accountDomain = r.Header.Get(HeaderAccountDomain)
	if v := r.Header.Get(HeaderAccessorLatestVersion); v != "" {
		ac.latestAccessor = coid.Normalize(v)
	}
	ac.connectionQualifier = r.Header.Get(HeaderAccountConnection)
	ac.installQualifier = r.Header.Get(HeaderInstallConnection)

	if v := r.Header.Get(HeaderConnectionData); v != "" {
		// Connection data replaces the Account Graph for this request.
		g := jsonld.NewGraph()
		ac.parseConnectionData(v, g.CreateNode(aauid.NewConnection(ac.aauid, ac.connectionQualifier).String()))
		ac.graph = g
	}
	return ac, nil
}

// parseConnectionData reads comma-separated key=value pairs with
// URL-encoded values.
func (ac *Context) parseConnectionData(header string, n *jsonld.Node) {
	for _, pair := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		n.AddValue(ac.reader.Expand(key), jsonld.NewLiteral(value))
	}
}

// AAUID returns the account AAUID.
func (ac *Context) AAUID() aauid.ID { return ac.aauid }

// AccessToken returns the bearer token for gateway calls.
func (ac *Context) AccessToken() string { return ac.accessToken }

// Request returns the incoming request, or nil.
func (ac *Context) Request() *http.Request { return ac.request }

// DataLoader returns the Account Graph loader.
func (ac *Context) DataLoader() *DataLoader { return ac.loader }

// Accessor returns the COID of the accessing service.
func (ac *Context) Accessor() (coid.ID, bool) {
	return ac.accessor, !ac.accessor.IsZero()
}

// AccountDomain returns the account's domain; set only for external API
// requests.
func (ac *Context) AccountDomain() string { return ac.accountDomain }

// UsesAccountConnection reports whether the request came from a connected
// account on another service.
func (ac *Context) UsesAccountConnection() bool { return ac.connectionQualifier != "" }

// ConnectionQualifier returns the qualifier of the account connection used
// for the request.
func (ac *Context) ConnectionQualifier() string { return ac.connectionQualifier }

// InstallQualifier returns the qualifier of the connection to the platform
// service; set only when the accessor is an application.
func (ac *Context) InstallQualifier() string { return ac.installQualifier }

// LatestAccessorVersion returns the COID of a newer accessor version, as
// announced by incoming or outgoing gateway traffic.
func (ac *Context) LatestAccessorVersion() (coid.ID, bool) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.latestAccessor, !ac.latestAccessor.IsZero()
}

// IsNewAccessorVersionAvailable reports whether LatestAccessorVersion is
// set.
func (ac *Context) IsNewAccessorVersionAvailable() bool {
	_, ok := ac.LatestAccessorVersion()
	return ok
}

// SetLatestAccessorVersion records a newer accessor version.
func (ac *Context) SetLatestAccessorVersion(id coid.ID) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.latestAccessor = id
}

// Client returns the gateway client, creating it on first use.
func (ac *Context) Client() *Client {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.client != nil {
		return ac.client
	}

	hc := retriever.NewHTTPClient(ConnectTimeout, Timeout)
	if ac.transport != nil {
		hc.Transport = ac.transport
	}
	t := &gatewayTransport{base: hc.Transport, token: ac.accessToken, ac: ac}
	if ac.request != nil {
		t.forwardedFor = forwardedFor(ac.request)
	}
	hc.Transport = t

	ac.client = &Client{base: ac.base, http: hc}
	return ac.client
}

// Graph returns the Account Graph, loading it on first use.
func (ac *Context) Graph(ctx context.Context) (*jsonld.Graph, error) {
	ac.mu.Lock()
	g := ac.graph
	ac.mu.Unlock()
	if g != nil {
		return g, nil
	}

	g, err := ac.loader.Fetch(ctx, ac)
	if err != nil {
		return nil, err
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.graph == nil {
		ac.graph = g
	}
	return ac.graph, nil
}

func (ac *Context) node(ctx context.Context, id string) (*jsonld.Node, error) {
	g, err := ac.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return g.Node(id), nil
}

// Account returns the account node.
func (ac *Context) Account(ctx context.Context) (*jsonld.Node, error) {
	return ac.node(ctx, ac.aauid.String())
}

// Person returns the node of the person owning the account.
func (ac *Context) Person(ctx context.Context) (*jsonld.Node, error) {
	return ac.node(ctx, ac.aauid.String()+":person")
}

// ConnectedAccount returns a connected account node. An empty qualifier
// means the connection qualifier of the request; without one the result
// is nil.
func (ac *Context) ConnectedAccount(ctx context.Context, qualifier string) (*jsonld.Node, error) {
	if qualifier == "" {
		qualifier = ac.connectionQualifier
	}
	if qualifier == "" {
		return nil, nil
	}
	return ac.node(ctx, aauid.NewConnectedAccount(ac.aauid, qualifier).String())
}

// AccountConnection returns an account connection node, with the same
// qualifier rules as ConnectedAccount.
func (ac *Context) AccountConnection(ctx context.Context, qualifier string) (*jsonld.Node, error) {
	if qualifier == "" {
		qualifier = ac.connectionQualifier
	}
	if qualifier == "" {
		return nil, nil
	}
	return ac.node(ctx, aauid.NewConnection(ac.aauid, qualifier).String())
}

// ConnectedAccountForService returns the agws:Account node whose
// agws:isForService is service, or nil.
func (ac *Context) ConnectedAccountForService(ctx context.Context, service coid.ID) (*jsonld.Node, error) {
	g, err := ac.Graph(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range g.NodesOfType(jsonld.GatewayNS + "Account") {
		if ac.reader.HasPropertyValue(n, "agws:isForService", service.String()) {
			return n, nil
		}
	}
	return nil, nil
}

// AllAccountConnections returns the agws:hasConnection nodes of the
// account.
func (ac *Context) AllAccountConnections(ctx context.Context) ([]*jsonld.Node, error) {
	account, err := ac.Account(ctx)
	if err != nil {
		return nil, err
	}
	return ac.reader.AllValuesNode(account, "agws:hasConnection"), nil
}

// AllConnectedAccounts returns the agws:connectsTo node of every account
// connection.
func (ac *Context) AllConnectedAccounts(ctx context.Context) ([]*jsonld.Node, error) {
	conns, err := ac.AllAccountConnections(ctx)
	if err != nil {
		return nil, err
	}
	var out []*jsonld.Node
	for _, c := range conns {
		if n := ac.reader.FirstValueNode(c, "agws:connectsTo"); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// PushGraphUpdates posts the Account Graph, including local changes, back
// to the gateway.
func (ac *Context) PushGraphUpdates(ctx context.Context) error {
	g, err := ac.Graph(ctx)
	if err != nil {
		return err
	}
	body, err := g.MarshalJSON()
	if err != nil {
		return fmt.Errorf("accountgateway: encode account graph: %w", err)
	}

	c := ac.Client()
	req, err := c.NewRequest(ctx, http.MethodPost, ac.loader.path(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/ld+json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, retriever.MaxBodySize))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: data}
	}
	return nil
}

// SetLogCode sets a code shown for the current request in the gateway
// logs. It requires a context built from a request.
func (ac *Context) SetLogCode(code string) error {
	if ac.request == nil {
		return ErrNotInRequest
	}
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.logCode = code
	return nil
}

// ProcessResponse adds gateway headers to an outgoing response.
func (ac *Context) ProcessResponse(h http.Header) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.logCode != "" {
		h.Set(HeaderCodeForLogger, ac.logCode)
	}
}
