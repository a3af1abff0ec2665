package storage

import "context"

// KeyValue is the durable persistence port for store snapshots: opaque
// string payloads under namespace keys, the server-side rendering of
// browser-local storage. Implementations live in internal/infra/kv.
type KeyValue interface {
	// Get returns the payload under key. A missing key is reported as
	// domain.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
