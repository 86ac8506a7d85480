package retriever

import (
	"context"
	"fmt"
	"net/http"

	"github.com/piprate/json-gold/ld"
	"golang.org/x/sync/singleflight"

	"github.com/cloudobjects/cloudobjects-go/cache"
	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/config"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/observe"
)

// ObjectFile is the snapshot file name of an object description.
const ObjectFile = "object.jsonld"

// Retriever resolves objects and attachments through the cache tiers.
//
// Contract:
// - Concurrency: safe for concurrent use; concurrent resolutions of the
//   same key share one remote fetch. The shared fetch ignores the
//   cancellation of the caller that started it and is bounded by the
//   HTTP timeouts instead.
// - Errors: absence is (nil, nil); errors are reserved for invalid input,
//   missing configuration and bulk listing failures.
type Retriever struct {
	cfg         config.Config
	policy      cache.Policy
	fetcher     Fetcher
	prefix      string
	tiers       *cache.Tiered
	ownsStore   bool
	objects     *cache.Local[*Object]
	attachments *cache.Local[[]byte]
	group       singleflight.Group
	inst        *observe.Instrumenter
	logger      observe.Logger
	reader      *jsonld.Reader
	parseOpts   jsonld.ParseOptions
}

type options struct {
	fetcher  Fetcher
	store    cache.Store
	storeSet bool
	snapshot cache.Snapshot
	snapSet  bool
	logger   observe.Logger
	observer observe.Observer
	inst     *observe.Instrumenter
	prefix   string
	loader   ld.DocumentLoader
	prefixes map[string]string
}

// Option configures a Retriever.
type Option func(*options)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithStore replaces the external store opened from the configuration. A
// nil store disables the tier. The Retriever does not close injected stores.
func WithStore(s cache.Store) Option {
	return func(o *options) { o.store, o.storeSet = s, true }
}

// WithSnapshot replaces the snapshot read from Config.StaticConfigPath. A
// nil snapshot disables the tier.
func WithSnapshot(s cache.Snapshot) Option {
	return func(o *options) { o.snapshot, o.snapSet = s, true }
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver instruments resolutions with the observer's tracer, meter
// and logger.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithInstrumenter sets a prebuilt instrumenter; it takes precedence over
// WithObserver.
func WithInstrumenter(i *observe.Instrumenter) Option {
	return func(o *options) { o.inst = i }
}

// WithPrefix prepends prefix to every API request path.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithPrefixes registers extra compact IRI prefixes for Reader.
func WithPrefixes(prefixes map[string]string) Option {
	return func(o *options) { o.prefixes = prefixes }
}

// WithDocumentLoader sets the loader json-gold uses for remote @context
// references.
func WithDocumentLoader(l ld.DocumentLoader) Option {
	return func(o *options) { o.loader = l }
}

// New creates a Retriever. Collaborators not injected through options are
// built from cfg.
func New(cfg config.Config, opts ...Option) (*Retriever, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	r := &Retriever{
		cfg:         cfg,
		policy:      cfg.CachePolicy(),
		fetcher:     o.fetcher,
		prefix:      o.prefix,
		objects:     cache.NewLocal[*Object](),
		attachments: cache.NewLocal[[]byte](),
		reader:      jsonld.NewReader(o.prefixes),
		parseOpts:   jsonld.ParseOptions{DocumentLoader: o.loader},
	}

	switch {
	case o.inst != nil:
		r.inst = o.inst
	case o.observer != nil:
		inst, err := observe.InstrumenterFromObserver(o.observer)
		if err != nil {
			return nil, err
		}
		r.inst = inst
	default:
		r.inst = observe.NewInstrumenter(nil, nil, o.logger)
	}
	r.logger = o.logger
	if r.logger == nil {
		r.logger = r.inst.Logger()
	}

	if r.fetcher == nil {
		r.fetcher = NewHTTPFetcher(cfg)
	}

	snapshot := o.snapshot
	if !o.snapSet {
		snapshot = cache.NewDirSnapshot(cfg.StaticConfigPath)
	}

	store := o.store
	if !o.storeSet {
		s, err := cache.Open(context.Background(), cfg.CacheProviderConfig())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		store, r.ownsStore = s, true
	}

	r.tiers = cache.NewTiered(snapshot, store)
	return r, nil
}

// Close releases the external store when the Retriever opened it.
func (r *Retriever) Close() error {
	if !r.ownsStore {
		return nil
	}
	return cache.Close(r.tiers.Store())
}

// Config returns the options the Retriever was built with.
func (r *Retriever) Config() config.Config { return r.cfg }

// Reader returns a node reader with the Retriever's prefixes.
func (r *Retriever) Reader() *jsonld.Reader { return r.reader }

// Logger returns the Retriever's logger.
func (r *Retriever) Logger() observe.Logger { return r.logger }

// Store returns the external store, or nil.
func (r *Retriever) Store() cache.Store { return r.tiers.Store() }

// Get normalizes s and resolves it.
func (r *Retriever) Get(ctx context.Context, s string) (*Object, error) {
	return r.Object(ctx, coid.Normalize(s))
}

// Require is Object with absence reported as ErrNotFound.
func (r *Retriever) Require(ctx context.Context, id coid.ID) (*Object, error) {
	obj, err := r.Object(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return obj, nil
}

// AuthenticatingNamespace resolves the namespace named by
// Config.AuthNamespace.
func (r *Retriever) AuthenticatingNamespace(ctx context.Context) (*Object, error) {
	if r.cfg.AuthNamespace == "" {
		return nil, fmt.Errorf("%w: no authenticating namespace", ErrConfiguration)
	}
	return r.Object(ctx, r.cfg.AuthNamespaceID())
}

// Object resolves an object description. It returns (nil, nil) when the
// object cannot be found.
func (r *Retriever) Object(ctx context.Context, id coid.ID) (*Object, error) {
	if !id.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id.String())
	}

	var obj *Object
	op := observe.Operation{Name: "object", Subject: id.String()}
	err := r.inst.Instrument(ctx, op, func(ctx context.Context) (string, error) {
		var tier cache.Tier
		obj, tier = r.object(ctx, id)
		return tier.String(), nil
	})
	return obj, err
}

func (r *Retriever) object(ctx context.Context, id coid.ID) (*Object, cache.Tier) {
	key := id.String()
	if obj, ok := r.objects.Get(key); ok {
		return obj, cache.TierLocal
	}

	type result struct {
		obj  *Object
		tier cache.Tier
	}
	marker, _ := FreshnessFrom(ctx)
	// The shared fetch outlives a canceled caller; the fetcher's timeouts
	// bound it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := r.group.Do("object\x00"+key+"\x00"+marker, func() (any, error) {
		obj, tier := r.resolveObject(shared, id, marker)
		return result{obj, tier}, nil
	})
	res := v.(result)
	return res.obj, res.tier
}

func (r *Retriever) resolveObject(ctx context.Context, id coid.ID, marker string) (*Object, cache.Tier) {
	key := id.String()
	if obj, ok := r.objects.Get(key); ok {
		return obj, cache.TierLocal
	}

	authority, _ := id.Authority()
	req := cache.Request{
		Key:          key,
		SnapshotName: cache.SnapshotPath(authority, id.Path(), ObjectFile),
		Marker:       marker,
		TrustStored:  r.cfg.TrustCache,
		Separator:    cache.ObjectSeparator,
		TTL:          r.policy.ObjectEntryTTL(),
	}

	var fetched *Object
	res, _ := r.tiers.Resolve(ctx, req, func(ctx context.Context) (cache.Entry, bool, error) {
		obj, ok := r.fetchObject(ctx, id)
		if !ok {
			return cache.Entry{}, false, nil
		}
		fetched = obj
		m := marker
		if m == "" {
			m = obj.revision
		}
		return cache.Entry{Marker: m, Payload: obj.document}, true, nil
	})

	if res.StoreErr != nil {
		r.storeFailed(ctx, key, res.StoreErr)
	}

	obj := fetched
	switch res.Tier {
	case cache.TierNone:
		return nil, cache.TierNone
	case cache.TierSnapshot, cache.TierStore:
		var err error
		obj, err = parseObject(id, res.Payload, r.parseOpts)
		if err != nil {
			r.logger.Warn(ctx, "cached object unparsable",
				observe.Field{Key: "coid", Value: key},
				observe.Field{Key: "tier", Value: res.Tier.String()},
				observe.Field{Key: "error", Value: err})
			return nil, cache.TierNone
		}
		if obj == nil {
			return nil, cache.TierNone
		}
	}
	return r.objects.Store(key, obj), res.Tier
}

// fetchObject loads and parses an object description from the API.
// Failures are logged and reported as absence.
func (r *Retriever) fetchObject(ctx context.Context, id coid.ID) (*Object, bool) {
	authority, _ := id.Authority()
	data, ok := r.fetch(ctx, id, authority+id.Path()+"/object", http.Header{"Accept": {"application/ld+json"}})
	if !ok {
		return nil, false
	}

	obj, err := parseObject(id, data, r.parseOpts)
	if err != nil {
		r.logger.Warn(ctx, "object description unparsable",
			observe.Field{Key: "coid", Value: id.String()},
			observe.Field{Key: "error", Value: err})
		return nil, false
	}
	if obj == nil {
		r.logger.Warn(ctx, "object description lacks object node",
			observe.Field{Key: "coid", Value: id.String()})
		return nil, false
	}
	return obj, true
}

// fetch performs a single-object or attachment request. Anything but a 2xx
// response is logged at warn and reported as absence.
func (r *Retriever) storeFailed(ctx context.Context, key string, err error) {
	r.logger.Warn(ctx, "cache store write failed",
		observe.Field{Key: "key", Value: key},
		observe.Field{Key: "error", Value: err})
}

func (r *Retriever) fetch(ctx context.Context, id coid.ID, path string, header http.Header) ([]byte, bool) {
	status, body, err := r.fetcher.Fetch(ctx, r.prefix+path, header)
	if err != nil {
		r.logger.Warn(ctx, "fetch failed",
			observe.Field{Key: "coid", Value: id.String()},
			observe.Field{Key: "path", Value: path},
			observe.Field{Key: "error", Value: err})
		return nil, false
	}
	if status < 200 || status > 299 {
		r.logger.Warn(ctx, "fetch returned non-success status",
			observe.Field{Key: "coid", Value: id.String()},
			observe.Field{Key: "path", Value: path},
			observe.Field{Key: "status", Value: status})
		return nil, false
	}
	return body, true
}
