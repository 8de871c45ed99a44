package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/superadmin-console/internal/handlers"
	"github.com/BradenHooton/superadmin-console/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockPinger struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

func TestHealth(t *testing.T) {
	env := handlers.NewTestEnv()

	w := httptest.NewRecorder()
	handlers.NewHealthHandler(nil, env.Logger).Health(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "memory", handlers.DecodeResponse(t, w)["data"].(map[string]any)["storage"])

	pinger := &MockPinger{PingFunc: func(ctx context.Context) error { return errors.New("connection refused") }}
	w = httptest.NewRecorder()
	handlers.NewHealthHandler(pinger, env.Logger).Health(w, httptest.NewRequest("GET", "/health", nil))
	handlers.AssertErrorResponse(t, w, http.StatusServiceUnavailable, "unavailable")
}

func TestCSRFToken(t *testing.T) {
	env := handlers.NewTestEnv()
	csrf := session.NewCSRFTokenManager(env.Store, 0)
	h := handlers.NewCSRFHandler(csrf, session.CookieConfig{}, env.Logger)

	req := handlers.WithSession(httptest.NewRequest("GET", "/api/csrf", nil), "dev-1", "")
	w := httptest.NewRecorder()
	h.Token(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	token := handlers.DecodeResponse(t, w)["data"].(map[string]any)["csrfToken"].(string)
	assert.NotEmpty(t, token)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CSRFCookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.False(t, cookies[0].HttpOnly)

	ok, err := csrf.ValidateToken(context.Background(), "dev-1", token)
	require.NoError(t, err)
	assert.True(t, ok)
}
