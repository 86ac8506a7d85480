package webapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cloudobjects/cloudobjects-go/auth"
	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/observe"
	"github.com/cloudobjects/cloudobjects-go/resilience"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

// Default client timeouts.
const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultTimeout        = 20 * time.Second
)

// ObjectResolver resolves API and namespace objects. *retriever.Retriever
// satisfies it.
type ObjectResolver interface {
	Object(ctx context.Context, id coid.ID) (*retriever.Object, error)
	AuthenticatingNamespace(ctx context.Context) (*retriever.Object, error)
}

// Factory creates and memoizes API clients.
type Factory struct {
	resolver       ObjectResolver
	reader         *jsonld.Reader
	secrets        *auth.SharedSecretAuthenticator
	namespace      coid.ID
	connectTimeout time.Duration
	timeout        time.Duration
	transport      http.RoundTripper
	breaker        resilience.CircuitBreakerConfig
	logger         observe.Logger

	mu      sync.Mutex
	clients map[string]*Client
	group   singleflight.Group
}

// Option configures a Factory.
type Option func(*Factory)

// WithNamespace sets the consuming namespace whose properties supply
// credentials. It defaults to the resolver's authenticating namespace.
func WithNamespace(ns coid.ID) Option {
	return func(f *Factory) { f.namespace = ns }
}

// WithTimeouts sets the connect and total request timeouts.
func WithTimeouts(connect, total time.Duration) Option {
	return func(f *Factory) { f.connectTimeout, f.timeout = connect, total }
}

// WithTransport replaces the base transport credentials are added on top of.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Factory) { f.transport = rt }
}

// WithCircuitBreaker configures the per-client circuit breaker.
func WithCircuitBreaker(cfg resilience.CircuitBreakerConfig) Option {
	return func(f *Factory) { f.breaker = cfg }
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(f *Factory) { f.logger = l }
}

// NewFactory creates a Factory resolving objects through resolver.
func NewFactory(resolver ObjectResolver, opts ...Option) *Factory {
	f := &Factory{
		resolver:       resolver,
		reader:         jsonld.NewReader(nil),
		secrets:        auth.NewSharedSecretAuthenticator(resolver),
		connectTimeout: DefaultConnectTimeout,
		timeout:        DefaultTimeout,
		clients:        make(map[string]*Client),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = observe.NopLogger()
	}
	return f
}

// Client returns the client for the API object apiID, creating it on first
// use.
func (f *Factory) Client(ctx context.Context, apiID coid.ID) (*Client, error) {
	key := apiID.String()

	f.mu.Lock()
	c, ok := f.clients[key]
	f.mu.Unlock()
	if ok {
		return c, nil
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		c, err := f.createClient(ctx, apiID)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.clients[key] = c
		f.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}

// GraphQLClient returns a GraphQL client for a wa:GraphQLEndpoint API.
func (f *Factory) GraphQLClient(ctx context.Context, apiID coid.ID) (*GraphQLClient, error) {
	c, err := f.Client(ctx, apiID)
	if err != nil {
		return nil, err
	}
	if !c.graphQL {
		return nil, fmt.Errorf("%w: %s is not a wa:GraphQLEndpoint",
			jsonld.ErrInvalidObjectConfiguration, apiID)
	}
	return &GraphQLClient{client: c}, nil
}

func (f *Factory) createClient(ctx context.Context, apiID coid.ID) (*Client, error) {
	obj, err := f.resolver.Object(ctx, apiID)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: could not retrieve API %s", ErrCoreAPI, apiID)
	}
	api := obj.Node()

	if !f.reader.HasType(api, "wa:HTTPEndpoint") {
		return nil, fmt.Errorf("%w: %s is not a wa:HTTPEndpoint",
			jsonld.ErrInvalidObjectConfiguration, apiID)
	}
	rawBase := f.reader.FirstValueString(api, "wa:hasBaseURL", "")
	if rawBase == "" {
		return nil, fmt.Errorf("%w: %s has no wa:hasBaseURL",
			jsonld.ErrInvalidObjectConfiguration, apiID)
	}
	base, err := url.Parse(rawBase)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %s has an invalid base URL %q",
			jsonld.ErrInvalidObjectConfiguration, apiID, rawBase)
	}

	creds, err := f.credentials(ctx, apiID, api)
	if err != nil {
		return nil, err
	}

	hc := retriever.NewHTTPClient(f.connectTimeout, f.timeout)
	if f.transport != nil {
		hc.Transport = f.transport
	}
	hc.Transport = &authTransport{base: hc.Transport, creds: creds}

	f.logger.Debug(ctx, "api client created",
		observe.Field{Key: "api", Value: apiID.String()},
		observe.Field{Key: "base_url", Value: base.String()})

	return &Client{
		api:     apiID,
		base:    base,
		http:    hc,
		exec:    resilience.NewExecutor(resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(f.breaker))),
		graphQL: f.reader.HasType(api, "wa:GraphQLEndpoint"),
	}, nil
}

// credentials reads the first supported authentication mechanism of the
// API. An API without a supported mechanism gets no credentials.
func (f *Factory) credentials(ctx context.Context, apiID coid.ID, api *jsonld.Node) (credentials, error) {
	const mechanism = "wa:supportsAuthenticationMechanism"
	ns := &lazyNamespace{factory: f}

	switch {
	case f.reader.HasPropertyValue(api, mechanism, "wa:APIKeyAuthentication"):
		key, err := f.value(ctx, ns, api, "wa:hasFixedAPIKey", "wa:usesAPIKeyFrom", "API key")
		if err != nil {
			return credentials{}, err
		}
		param := f.reader.FirstValueNode(api, "wa:usesAuthenticationParameter")
		name := f.reader.FirstValueString(param, "wa:hasKey", "")
		if name == "" {
			return credentials{}, fmt.Errorf("%w: %s has no authentication parameter key",
				jsonld.ErrInvalidObjectConfiguration, apiID)
		}
		switch {
		case f.reader.HasType(param, "wa:HeaderParameter"):
			return credentials{header: http.Header{http.CanonicalHeaderKey(name): {key}}}, nil
		case f.reader.HasType(param, "wa:QueryParameter"):
			return credentials{query: url.Values{name: {key}}}, nil
		default:
			return credentials{}, fmt.Errorf("%w: %s has an authentication parameter of unknown kind",
				jsonld.ErrInvalidObjectConfiguration, apiID)
		}

	case f.reader.HasPropertyValue(api, mechanism, "oauth2:FixedBearerTokenAuthentication"):
		token, err := f.value(ctx, ns, api, "oauth2:hasFixedBearerToken", "oauth2:usesFixedBearerTokenFrom", "bearer token")
		if err != nil {
			return credentials{}, err
		}
		return credentials{header: http.Header{"Authorization": {"Bearer " + token}}}, nil

	case f.reader.HasPropertyValue(api, mechanism, "wa:HTTPBasicAuthentication"):
		username, err := f.value(ctx, ns, api, "wa:hasFixedUsername", "wa:usesUsernameFrom", "username")
		if err != nil {
			return credentials{}, err
		}
		password, err := f.value(ctx, ns, api, "wa:hasFixedPassword", "wa:usesPasswordFrom", "password")
		if err != nil {
			return credentials{}, err
		}
		return credentials{basic: true, username: username, password: password}, nil

	case f.reader.HasPropertyValue(api, mechanism, "wa:SharedSecretAuthenticationViaHTTPBasic"):
		node, err := ns.node(ctx)
		if err != nil {
			return credentials{}, err
		}
		consumer := coid.Normalize(node.ID())
		domain, ok := consumer.Authority()
		if !ok || consumer.Kind() != coid.Root {
			return credentials{}, fmt.Errorf("%w: namespace %q is not a root COID", ErrCoreAPI, node.ID())
		}
		provider, _ := apiID.Namespace()
		secret, err := f.secrets.SharedSecret(ctx, provider)
		if err != nil {
			return credentials{}, fmt.Errorf("%w: could not retrieve the shared secret of %s: %v", ErrCoreAPI, provider, err)
		}
		return credentials{basic: true, username: domain, password: secret}, nil
	}
	return credentials{}, nil
}

// value returns the fixed value of an API property, or reads the
// namespace property the API points to.
func (f *Factory) value(ctx context.Context, ns *lazyNamespace, api *jsonld.Node, fixed, from, what string) (string, error) {
	if v := f.reader.FirstValueString(api, fixed, ""); v != "" {
		return v, nil
	}
	property := f.reader.FirstValueString(api, from, "")
	if property == "" {
		return "", fmt.Errorf("%w: API must have either %s or %s for its %s",
			jsonld.ErrInvalidObjectConfiguration, fixed, from, what)
	}
	node, err := ns.node(ctx)
	if err != nil {
		return "", err
	}
	v := f.reader.FirstValueString(node, property, "")
	if v == "" {
		return "", fmt.Errorf("%w: namespace %s has no value for %s",
			jsonld.ErrInvalidObjectConfiguration, node.ID(), property)
	}
	return v, nil
}

// lazyNamespace resolves the consuming namespace at most once per client
// creation.
type lazyNamespace struct {
	factory *Factory
	n       *jsonld.Node
}

func (l *lazyNamespace) node(ctx context.Context) (*jsonld.Node, error) {
	if l.n != nil {
		return l.n, nil
	}
	var (
		obj *retriever.Object
		err error
	)
	if l.factory.namespace.IsZero() {
		obj, err = l.factory.resolver.AuthenticatingNamespace(ctx)
	} else {
		obj, err = l.factory.resolver.Object(ctx, l.factory.namespace)
	}
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: could not retrieve namespace", ErrCoreAPI)
	}
	l.n = obj.Node()
	return l.n, nil
}
