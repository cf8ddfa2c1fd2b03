// Package db defines the key-value store abstraction used by the
// embedding cache. The search engine itself is stateless; the store only
// ever holds cached provider responses keyed by input hash.
package db

import (
	"context"
	"time"
)

// Store is the key-value facade the embedding cache depends on.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations the embedding cache uses.
// Writes always carry a TTL; cache entries expire rather than being
// deleted explicitly.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
