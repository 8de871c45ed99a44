package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/storage"
)

// ErrNoCookie is returned by a CookieReader for an absent cookie
var ErrNoCookie = errors.New("session: cookie not present")

// CookieReader reads one cookie by name
type CookieReader interface {
	Cookie(ctx context.Context, name string) (string, error)
}

// CookieRemover deletes cookies by name
type CookieRemover interface {
	Remove(ctx context.Context, names ...string) error
}

const jarPrefix = "cookie:"

// Jar mirrors a browser's session cookies into its device namespace, so
// background checks observe logouts and expiry made from any tab.
type Jar struct {
	store storage.Store
}

// NewJar creates a jar over a device-scoped store
func NewJar(store storage.Store) *Jar {
	return &Jar{store: store}
}

// Set stores a cookie that expires after ttl
func (j *Jar) Set(ctx context.Context, name, value string, ttl time.Duration) error {
	if err := j.store.Set(ctx, jarPrefix+name, value, ttl); err != nil {
		return fmt.Errorf("mirror cookie %s: %w", name, err)
	}
	return nil
}

func (j *Jar) Cookie(ctx context.Context, name string) (string, error) {
	value, err := j.store.Get(ctx, jarPrefix+name)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && value == "") {
		return "", ErrNoCookie
	}
	if err != nil {
		return "", fmt.Errorf("read cookie %s: %w", name, err)
	}
	return value, nil
}

func (j *Jar) Remove(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = jarPrefix + name
	}
	if err := j.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("remove cookies: %w", err)
	}
	return nil
}

// RequestCookies reads cookies from an incoming request
type RequestCookies struct {
	r *http.Request
}

func NewRequestCookies(r *http.Request) RequestCookies {
	return RequestCookies{r: r}
}

func (rc RequestCookies) Cookie(_ context.Context, name string) (string, error) {
	c, err := rc.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", ErrNoCookie
	}
	return c.Value, nil
}

var (
	_ CookieReader  = (*Jar)(nil)
	_ CookieRemover = (*Jar)(nil)
	_ CookieReader  = RequestCookies{}
)
