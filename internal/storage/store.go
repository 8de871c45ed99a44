// Package storage provides the key-value port behind which the console keeps
// per-device state: throttle counters, the mirrored cookie jar and CSRF tokens.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or expired
var ErrNotFound = errors.New("storage: key not found")

// Store is a small string key-value store. A zero ttl means the entry never expires.
// Implementations are safe for concurrent use; concurrent writers to the same key
// resolve last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Sweeper is implemented by stores that need expired entries removed periodically
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Pinger is implemented by stores backed by a remote service
type Pinger interface {
	Ping(ctx context.Context) error
}
