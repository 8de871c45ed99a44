package storage

import (
	"context"
	"time"
)

type namespaced struct {
	prefix string
	inner  Store
}

// Namespace returns a Store that prefixes every key with prefix
func Namespace(s Store, prefix string) Store {
	return &namespaced{prefix: prefix, inner: s}
}

// DeviceStore scopes s to the storage of a single browser
func DeviceStore(s Store, deviceID string) Store {
	return Namespace(s, "device:"+deviceID+":")
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return n.inner.Set(ctx, n.prefix+key, value, ttl)
}

func (n *namespaced) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = n.prefix + k
	}
	return n.inner.Delete(ctx, prefixed...)
}
