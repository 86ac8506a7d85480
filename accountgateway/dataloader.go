package accountgateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudobjects/cloudobjects-go/cache"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/observe"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

// DataLoader defaults.
const (
	DefaultCachePrefix = "accdata:"
	DefaultMountPoint  = "~"
	DataTTL            = 48 * time.Hour
)

// DataLoader fetches the Account Graph document from the gateway. With a
// store, documents are cached under the C-Data-Updated timestamp of the
// incoming request and reused while the timestamp is unchanged.
type DataLoader struct {
	tiers  *cache.Tiered
	prefix string
	mount  string
	logger observe.Logger
}

// DataLoaderOption configures a DataLoader.
type DataLoaderOption func(*DataLoader)

// WithCachePrefix sets the store key prefix.
func WithCachePrefix(prefix string) DataLoaderOption {
	return func(d *DataLoader) { d.prefix = prefix }
}

// WithMountPoint sets the gateway mount point of the Account Graph.
func WithMountPoint(name string) DataLoaderOption {
	return func(d *DataLoader) { d.mount = name }
}

// WithDataLoaderLogger sets the logger for store failures.
func WithDataLoaderLogger(l observe.Logger) DataLoaderOption {
	return func(d *DataLoader) { d.logger = l }
}

// NewDataLoader creates a loader. A nil store disables caching.
func NewDataLoader(store cache.Store, opts ...DataLoaderOption) *DataLoader {
	d := &DataLoader{
		tiers:  cache.NewTiered(nil, store),
		prefix: DefaultCachePrefix,
		mount:  DefaultMountPoint,
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CachePrefix returns the store key prefix.
func (d *DataLoader) CachePrefix() string { return d.prefix }

// MountPoint returns the gateway mount point.
func (d *DataLoader) MountPoint() string { return d.mount }

func (d *DataLoader) path() string { return "/" + d.mount + "/" }

// Fetch returns the Account Graph of ac.
func (d *DataLoader) Fetch(ctx context.Context, ac *Context) (*jsonld.Graph, error) {
	var marker string
	if r := ac.Request(); r != nil {
		marker = r.Header.Get(HeaderDataUpdated)
	}

	fetch := func(ctx context.Context) (cache.Entry, bool, error) {
		data, err := d.fetchRemote(ctx, ac)
		if err != nil {
			return cache.Entry{}, false, err
		}
		return cache.Entry{Marker: marker, Payload: data}, true, nil
	}

	var data []byte
	if d.tiers.Store() == nil || marker == "" {
		entry, _, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		data = entry.Payload
	} else {
		res, err := d.tiers.Resolve(ctx, cache.Request{
			Key:       d.prefix + ac.AAUID().String(),
			Marker:    marker,
			Separator: cache.ObjectSeparator,
			TTL:       DataTTL,
		}, fetch)
		if err != nil {
			return nil, err
		}
		if res.StoreErr != nil {
			d.logger.Warn(ctx, "account graph cache write failed",
				observe.Field{Key: "aauid", Value: ac.AAUID().String()},
				observe.Field{Key: "error", Value: res.StoreErr})
		}
		data = res.Payload
	}

	g, err := jsonld.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("accountgateway: account graph: %w", err)
	}
	return g, nil
}

func (d *DataLoader) fetchRemote(ctx context.Context, ac *Context) ([]byte, error) {
	c := ac.Client()
	req, err := c.NewRequest(ctx, http.MethodGet, d.path(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/ld+json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, retriever.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("accountgateway: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: data}
	}
	return data, nil
}
