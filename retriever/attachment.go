package retriever

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/cloudobjects/cloudobjects-go/cache"
	"github.com/cloudobjects/cloudobjects-go/coid"
	"github.com/cloudobjects/cloudobjects-go/observe"
)

// Attachment returns the content of a file attached to an object. Only the
// base name of filename is used. A stored copy is fresh while it carries the
// object's current revision.
func (r *Retriever) Attachment(ctx context.Context, id coid.ID, filename string) ([]byte, bool, error) {
	if !id.IsValid() {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id.String())
	}

	obj, err := r.Object(ctx, id)
	if err != nil || obj == nil {
		return nil, false, err
	}

	file := path.Base(filename)
	if file == "." || file == "/" || file == ".." {
		return nil, false, nil
	}

	var (
		content []byte
		found   bool
	)
	op := observe.Operation{Name: "attachment", Subject: id.String(), Detail: file}
	err = r.inst.Instrument(ctx, op, func(ctx context.Context) (string, error) {
		var tier cache.Tier
		content, tier = r.attachment(ctx, obj, file)
		found = tier != cache.TierNone
		return tier.String(), nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return bytes.Clone(content), true, nil
}

// AttachmentKey is the store key of an attachment.
func AttachmentKey(id coid.ID, file string) string {
	return id.String() + "#" + file
}

func (r *Retriever) attachment(ctx context.Context, obj *Object, file string) ([]byte, cache.Tier) {
	localKey := AttachmentKey(obj.id, file) + "#" + obj.revision
	if content, ok := r.attachments.Get(localKey); ok {
		return content, cache.TierLocal
	}

	type result struct {
		content []byte
		tier    cache.Tier
	}
	shared := context.WithoutCancel(ctx)
	v, _, _ := r.group.Do("attachment\x00"+localKey, func() (any, error) {
		content, tier := r.resolveAttachment(shared, obj, file, localKey)
		return result{content, tier}, nil
	})
	res := v.(result)
	return res.content, res.tier
}

func (r *Retriever) resolveAttachment(ctx context.Context, obj *Object, file, localKey string) ([]byte, cache.Tier) {
	if content, ok := r.attachments.Get(localKey); ok {
		return content, cache.TierLocal
	}

	authority, _ := obj.id.Authority()
	req := cache.Request{
		Key:          AttachmentKey(obj.id, file),
		SnapshotName: cache.SnapshotPath(authority, obj.id.Path(), file),
		Marker:       obj.revision,
		TrustStored:  obj.revision == "",
		ServeStale:   r.cfg.ServeStaleAttachments,
		Separator:    cache.AttachmentSeparator,
		TTL:          r.policy.AttachmentEntryTTL(),
	}

	res, _ := r.tiers.Resolve(ctx, req, func(ctx context.Context) (cache.Entry, bool, error) {
		content, ok := r.fetch(ctx, obj.id, authority+obj.id.Path()+"/"+file, nil)
		if !ok {
			return cache.Entry{}, false, nil
		}
		return cache.Entry{Marker: obj.revision, Payload: content}, true, nil
	})
	if res.StoreErr != nil {
		r.storeFailed(ctx, req.Key, res.StoreErr)
	}
	if res.Tier == cache.TierNone {
		return nil, cache.TierNone
	}
	if res.Stale {
		r.logger.Warn(ctx, "serving stale attachment",
			observe.Field{Key: "coid", Value: obj.id.String()},
			observe.Field{Key: "file", Value: file},
			observe.Field{Key: "stored_revision", Value: res.Marker})
		return res.Payload, res.Tier
	}
	return r.attachments.Store(localKey, res.Payload), res.Tier
}
