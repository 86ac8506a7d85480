package retriever

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cloudobjects/cloudobjects-go/cache"
	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/jsonld"
	"github.com/cloudobjects/cloudobjects-go/observe"
)

// ObjectsInNamespace lists every object of a namespace. Non-root
// identifiers list their namespace. The list itself is never cached; each
// object is stored in the local and external tiers.
func (r *Retriever) ObjectsInNamespace(ctx context.Context, ns coid.ID) ([]*Object, error) {
	return r.listNamespace(ctx, ns, "")
}

// ObjectsInNamespaceWithType is ObjectsInNamespace restricted to objects
// of the type typeIRI, which may be a compact IRI.
func (r *Retriever) ObjectsInNamespaceWithType(ctx context.Context, ns coid.ID, typeIRI string) ([]*Object, error) {
	return r.listNamespace(ctx, ns, r.reader.Expand(typeIRI))
}

func (r *Retriever) listNamespace(ctx context.Context, ns coid.ID, typeIRI string) ([]*Object, error) {
	root, ok := ns.Namespace()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, ns.String())
	}

	var objects []*Object
	op := observe.Operation{Name: "namespace.list", Subject: root.String(), Detail: typeIRI}
	err := r.inst.Instrument(ctx, op, func(ctx context.Context) (string, error) {
		var err error
		objects, err = r.fetchNamespace(ctx, root, typeIRI)
		return cache.TierRemote.String(), err
	})
	return objects, err
}

func (r *Retriever) fetchNamespace(ctx context.Context, root coid.ID, typeIRI string) ([]*Object, error) {
	authority, _ := root.Authority()
	p := authority + "/all"
	if typeIRI != "" {
		p += "?type=" + url.QueryEscape(typeIRI)
	}

	status, body, err := r.fetcher.Fetch(ctx, r.prefix+p, http.Header{"Accept": {"application/ld+json"}})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteService, p, err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrRemoteService, p, status)
	}

	g, err := jsonld.ParseWithOptions(body, r.parseOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteService, p, err)
	}

	objects := make([]*Object, 0)
	for _, n := range g.Nodes() {
		if coid.Classify(n.ID()) == coid.Invalid {
			continue
		}
		id := coid.Normalize(n.ID())
		if a, _ := id.Authority(); a != authority {
			r.logger.Warn(ctx, "namespace listing returned foreign object",
				observe.Field{Key: "coid", Value: id.String()},
				observe.Field{Key: "namespace", Value: root.String()})
			continue
		}
		if typeIRI != "" && !n.HasType(typeIRI) {
			continue
		}

		data, err := g.Subgraph(n.ID())
		if err != nil {
			return nil, fmt.Errorf("%w: serialize %s: %v", ErrRemoteService, id, err)
		}
		obj, err := parseObject(id, data, r.parseOpts)
		if err != nil || obj == nil {
			return nil, fmt.Errorf("%w: reparse %s: %v", ErrRemoteService, id, err)
		}

		if err := r.tiers.Put(ctx, id.String(), cache.ObjectSeparator,
			cache.Entry{Marker: obj.revision, Payload: data}, r.policy.ObjectEntryTTL()); err != nil {
			r.storeFailed(ctx, id.String(), err)
		}
		objects = append(objects, r.objects.Store(id.String(), obj))
	}
	return objects, nil
}
