//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/superadmin-console/internal/backend"
	"github.com/BradenHooton/superadmin-console/internal/handlers"
	middlewareCustom "github.com/BradenHooton/superadmin-console/internal/middleware"
	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/notify"
	"github.com/BradenHooton/superadmin-console/internal/routes"
	"github.com/BradenHooton/superadmin-console/internal/services"
	"github.com/BradenHooton/superadmin-console/internal/session"
	"github.com/BradenHooton/superadmin-console/internal/storage"
	"github.com/BradenHooton/superadmin-console/internal/throttle"
	"github.com/BradenHooton/superadmin-console/internal/upload"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
)

// FakeBackend is an in-process stand-in for the school-management API
type FakeBackend struct {
	Server *httptest.Server

	mu            sync.Mutex
	tokens        map[string]string // token -> email
	schools       []models.School
	notifications []models.Notification
	admins        []string
}

func NewFakeBackend(schools []models.School, notifications []models.Notification) *FakeBackend {
	fb := &FakeBackend{
		tokens:        make(map[string]string),
		schools:       schools,
		notifications: notifications,
	}

	r := chi.NewRouter()
	r.Post("/login-super-admin", fb.login)
	r.Group(func(r chi.Router) {
		r.Use(fb.requireToken)
		r.Get("/super-admin-profile", fb.profile)
		r.Get("/super-admin-logout", fb.logout)
		r.Get("/all-school", fb.listSchools)
		r.Put("/school-status-update/{id}", fb.toggleSchool)
		r.Delete("/school-delete/{id}", fb.deleteSchool)
		r.Post("/create-admin", fb.createAdmin)
		r.Get("/all-notification", fb.allNotifications)
		r.Get("/unread-notification", fb.unreadNotifications)
		r.Put("/read-notification/{id}", fb.readNotification)
		r.Put("/read-all-notification", fb.readAllNotifications)
	})

	fb.Server = httptest.NewServer(r)
	return fb
}

func (fb *FakeBackend) Close() {
	fb.Server.Close()
}

// Revoke invalidates every issued token
func (fb *FakeBackend) Revoke() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.tokens = make(map[string]string)
}

// Admins returns the emails of the created admins
func (fb *FakeBackend) Admins() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.admins...)
}

func envelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status < 300,
		"message": message,
		"data":    data,
	})
}

func (fb *FakeBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		fb.mu.Lock()
		_, ok := fb.tokens[token]
		fb.mu.Unlock()
		if !ok {
			envelope(w, http.StatusUnauthorized, "Token expired", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		envelope(w, http.StatusBadRequest, "Invalid body", nil)
		return
	}

	role := models.RoleSuperAdmin
	switch {
	case body.Email == SuperAdminEmail && body.Password == SuperAdminPassword:
	case body.Email == SchoolAdminEmail && body.Password == SuperAdminPassword:
		role = "school-admin"
	default:
		envelope(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	token := uuid.NewString()
	fb.mu.Lock()
	fb.tokens[token] = body.Email
	fb.mu.Unlock()

	envelope(w, http.StatusOK, "Welcome back", map[string]any{
		"data": map[string]any{"token": token, "role": role},
	})
}

func (fb *FakeBackend) profile(w http.ResponseWriter, r *http.Request) {
	envelope(w, http.StatusOK, "", map[string]any{
		"name":  "Root",
		"email": SuperAdminEmail,
		"role":  models.RoleSuperAdmin,
	})
}

func (fb *FakeBackend) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	fb.mu.Lock()
	delete(fb.tokens, token)
	fb.mu.Unlock()
	envelope(w, http.StatusOK, "Signed out", nil)
}

func (fb *FakeBackend) listSchools(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	schools := append([]models.School(nil), fb.schools...)
	fb.mu.Unlock()
	envelope(w, http.StatusOK, "", schools)
}

func (fb *FakeBackend) toggleSchool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.schools {
		if fb.schools[i].ID == id {
			fb.schools[i].IsActive = !fb.schools[i].IsActive
			envelope(w, http.StatusOK, "Status updated", nil)
			return
		}
	}
	envelope(w, http.StatusNotFound, "School not found", nil)
}

func (fb *FakeBackend) deleteSchool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.schools {
		if fb.schools[i].ID == id {
			fb.schools = append(fb.schools[:i], fb.schools[i+1:]...)
			envelope(w, http.StatusOK, "School deleted", nil)
			return
		}
	}
	envelope(w, http.StatusNotFound, "School not found", nil)
}

func (fb *FakeBackend) createAdmin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		envelope(w, http.StatusBadRequest, "Invalid form", nil)
		return
	}
	fb.mu.Lock()
	fb.admins = append(fb.admins, r.FormValue("email"))
	fb.mu.Unlock()
	envelope(w, http.StatusCreated, "Admin created", nil)
}

func (fb *FakeBackend) allNotifications(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	items := append([]models.Notification(nil), fb.notifications...)
	fb.mu.Unlock()
	envelope(w, http.StatusOK, "", items)
}

func (fb *FakeBackend) unreadNotifications(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	var items []models.Notification
	for _, n := range fb.notifications {
		if !n.IsRead {
			items = append(items, n)
		}
	}
	fb.mu.Unlock()
	envelope(w, http.StatusOK, "", map[string]any{"data": items})
}

func (fb *FakeBackend) readNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.notifications {
		if fb.notifications[i].ID == id {
			fb.notifications[i].IsRead = true
			envelope(w, http.StatusOK, "", nil)
			return
		}
	}
	envelope(w, http.StatusNotFound, "Notification not found", nil)
}

func (fb *FakeBackend) readAllNotifications(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.notifications {
		fb.notifications[i].IsRead = true
	}
	envelope(w, http.StatusOK, "Inbox cleared", nil)
}

// TestServer wraps the console wired the way cmd/console wires it
type TestServer struct {
	Server   *httptest.Server
	Backend  *FakeBackend
	Store    storage.Store
	Sessions *session.Manager
}

// ServerOption adjusts the throttle before the server is built
type ServerOption func(*throttle.Config)

func WithLockDuration(d time.Duration) ServerOption {
	return func(c *throttle.Config) { c.LockDuration = d }
}

// NewTestServer builds the full console over store and fb
func NewTestServer(store storage.Store, fb *FakeBackend, opts ...ServerOption) *TestServer {
	logger := quietLogger()
	auditLogger := pkglogger.NewAuditLogger(logger)

	throttleConfig := throttle.DefaultConfig()
	for _, opt := range opts {
		opt(&throttleConfig)
	}

	client := backend.New(fb.Server.URL, backend.WithLogger(logger))

	cookieConfig := session.CookieConfig{SameSite: "lax"}
	sessions := session.NewManager(store, session.Config{
		CookieNames:   []string{"superAdminToken"},
		CookieTTL:     time.Hour,
		GuardInterval: 50 * time.Millisecond,
		Cookies:       cookieConfig,
	}, logger)
	csrfManager := session.NewCSRFTokenManager(store, time.Hour)

	throttles := func(deviceID string) *throttle.Throttle {
		return throttle.New(storage.DeviceStore(store, deviceID), throttleConfig, logger)
	}
	uploads := upload.NewProcessor(1<<20, 512)

	notificationService := services.NewNotificationService(func(token string) notify.Source {
		return client.Notifications(token)
	}, time.Hour, logger, auditLogger)

	respond := handlers.NewResponder(sessions, pkghttp.NewProxies(nil), logger, auditLogger)

	var pinger storage.Pinger
	if p, ok := store.(storage.Pinger); ok {
		pinger = p
	}

	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(services.NewAuthService(client, logger, auditLogger), throttles, sessions, respond, logger),
		CSRF:          handlers.NewCSRFHandler(csrfManager, cookieConfig, logger),
		Health:        handlers.NewHealthHandler(pinger, logger),
		Schools:       handlers.NewSchoolHandler(services.NewSchoolService(client, auditLogger), uploads, respond),
		Admins:        handlers.NewAdminHandler(services.NewAdminService(client, auditLogger), uploads, respond),
		Profile:       handlers.NewProfileHandler(services.NewProfileService(client, auditLogger), uploads, respond),
		Notifications: handlers.NewNotificationHandler(notificationService, respond),
		Events:        handlers.NewEventsHandler(notificationService, sessions, respond, logger, auditLogger),
	}

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(middlewareCustom.Device(cookieConfig))

	routes.RegisterRoutes(router, h, routes.Deps{
		Sessions:   sessions,
		CSRF:       csrfManager,
		Respond:    respond,
		LoginLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: 100},
		Metrics:    promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
	})

	return &TestServer{
		Server:   httptest.NewServer(router),
		Backend:  fb,
		Store:    store,
		Sessions: sessions,
	}
}

func (ts *TestServer) Close() {
	ts.Server.Close()
}

// Browser is a cookie-keeping client of the console, like one dashboard tab
type Browser struct {
	t      *testing.T
	base   string
	client *http.Client
	csrf   string
}

// NewBrowser opens a browser against ts and fetches a CSRF token
func (ts *TestServer) NewBrowser(t *testing.T) *Browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	b := &Browser{t: t, base: ts.Server.URL, client: &http.Client{Jar: jar, Timeout: 10 * time.Second}}

	var body struct {
		Data handlers.CSRFTokenResponse `json:"data"`
	}
	resp := b.Do(http.MethodGet, "/api/csrf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	DecodeBody(t, resp, &body)
	require.NotEmpty(t, body.Data.CSRFToken)
	b.csrf = body.Data.CSRFToken
	return b
}

// Do sends a JSON request with the CSRF header set
func (b *Browser) Do(method, path string, payload any) *http.Response {
	b.t.Helper()
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		require.NoError(b.t, err)
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, b.base+path, body)
	require.NoError(b.t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.csrf != "" {
		req.Header.Set("X-CSRF-Token", b.csrf)
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	return resp
}

// Login signs in and asserts the status
func (b *Browser) Login(email, password string, wantStatus int) map[string]any {
	b.t.Helper()
	resp := b.Do(http.MethodPost, "/api/login", map[string]string{"email": email, "password": password})
	require.Equal(b.t, wantStatus, resp.StatusCode)
	var body map[string]any
	DecodeBody(b.t, resp, &body)
	return body
}

// DecodeBody decodes and closes the response body
func DecodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}
