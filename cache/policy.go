package cache

import "time"

// Policy configures the TTLs written to the external store.
type Policy struct {
	// ObjectTTL applies to object descriptions. Zero means no expiry.
	ObjectTTL time.Duration

	// AttachmentTTL applies to attachments. Zero means no expiry.
	AttachmentTTL time.Duration

	// MaxTTL clamps every TTL, including "no expiry". Zero disables
	// clamping.
	MaxTTL time.Duration
}

// DefaultPolicy returns ObjectTTL 60s, AttachmentTTL 0, no MaxTTL.
func DefaultPolicy() Policy {
	return Policy{ObjectTTL: 60 * time.Second}
}

// EffectiveTTL clamps ttl to MaxTTL. Negative values are treated as zero.
func (p Policy) EffectiveTTL(ttl time.Duration) time.Duration {
	if ttl < 0 {
		ttl = 0
	}
	if p.MaxTTL > 0 && (ttl == 0 || ttl > p.MaxTTL) {
		ttl = p.MaxTTL
	}
	return ttl
}

// ObjectEntryTTL returns the effective TTL for objects.
func (p Policy) ObjectEntryTTL() time.Duration {
	return p.EffectiveTTL(p.ObjectTTL)
}

// AttachmentEntryTTL returns the effective TTL for attachments.
func (p Policy) AttachmentEntryTTL() time.Duration {
	return p.EffectiveTTL(p.AttachmentTTL)
}
