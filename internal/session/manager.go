package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/storage"
)

// Config holds session cookie settings
type Config struct {
	CookieNames   []string // the first name carries the token
	CookieTTL     time.Duration
	GuardInterval time.Duration
	Cookies       CookieConfig
}

// Manager issues and ends console sessions and keeps each device's cookie
// jar in step with the browser cookies
type Manager struct {
	store  storage.Store
	cfg    Config
	logger *slog.Logger
}

func NewManager(store storage.Store, cfg Config, logger *slog.Logger) *Manager {
	if cfg.CookieTTL <= 0 {
		cfg.CookieTTL = 7 * 24 * time.Hour
	}
	if cfg.GuardInterval <= 0 {
		cfg.GuardInterval = DefaultGuardInterval
	}
	return &Manager{store: store, cfg: cfg, logger: logger}
}

// Names returns the session cookie names, token cookie first
func (m *Manager) Names() []string {
	return m.cfg.CookieNames
}

func (m *Manager) GuardInterval() time.Duration {
	return m.cfg.GuardInterval
}

func (m *Manager) Cookies() CookieConfig {
	return m.cfg.Cookies
}

// Jar returns the cookie jar of one device
func (m *Manager) Jar(deviceID string) *Jar {
	return NewJar(storage.DeviceStore(m.store, deviceID))
}

// Begin sets the token cookie and mirrors it into the device jar
func (m *Manager) Begin(ctx context.Context, w http.ResponseWriter, deviceID, token string) error {
	name := m.cfg.CookieNames[0]
	SetTokenCookie(w, name, token, m.cfg.CookieTTL, m.cfg.Cookies)
	return m.Jar(deviceID).Set(ctx, name, token, m.cfg.CookieTTL)
}

// End clears every session cookie from the browser and the device jar
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, deviceID string) error {
	for _, name := range m.cfg.CookieNames {
		ClearTokenCookie(w, name, m.cfg.Cookies)
	}
	return m.Jar(deviceID).Remove(ctx, m.cfg.CookieNames...)
}

// Token returns the first present session cookie of the request
func (m *Manager) Token(r *http.Request) (string, bool) {
	reader := NewRequestCookies(r)
	for _, name := range m.cfg.CookieNames {
		if value, err := reader.Cookie(r.Context(), name); err == nil {
			return value, true
		}
	}
	return "", false
}

// OnExpired is the response written when every session cookie is absent
type OnExpired func(w http.ResponseWriter, r *http.Request)

// RequireSession is the per-request form of the guard. Requests with no
// session cookie get onExpired; otherwise the token is placed in the
// context and re-mirrored into the jar if the jar lost it.
func (m *Manager) RequireSession(onExpired OnExpired) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := m.Token(r)
			if !ok {
				onExpired(w, r)
				return
			}

			if deviceID := DeviceIDFromContext(r.Context()); deviceID != "" {
				m.remirror(r.Context(), deviceID, token)
			}

			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
		})
	}
}

func (m *Manager) remirror(ctx context.Context, deviceID, token string) {
	jar := m.Jar(deviceID)
	name := m.cfg.CookieNames[0]

	_, err := jar.Cookie(ctx, name)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrNoCookie) {
		m.logger.Warn("cookie jar unavailable", slog.Any("error", err))
		return
	}
	if err := jar.Set(ctx, name, token, m.cfg.CookieTTL); err != nil {
		m.logger.Warn("failed to restore cookie jar entry", slog.Any("error", err))
	}
}
