package cache

import (
	"context"
	"time"
)

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, pattern string) error
}

// QueueKey generates the cache key for a clinic's per-stage queue snapshot.
// The fingerprint covers the visit set's content, not wall-clock time, so
// the snapshot stays valid until a visit enters or leaves the stage.
func QueueKey(clinicID, stage, fingerprint string) string {
	return "queue:" + clinicID + ":" + stage + ":" + fingerprint
}

// WebhookSeenKey generates the fast-path marker key for an already-applied
// payment reference. The store's terminal-state check stays authoritative.
func WebhookSeenKey(reference string) string {
	return "webhook:seen:" + reference
}
