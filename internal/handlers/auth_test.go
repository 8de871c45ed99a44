package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/backend"
	"github.com/BradenHooton/superadmin-console/internal/handlers"
	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/services"
	"github.com/BradenHooton/superadmin-console/internal/storage"
	"github.com/BradenHooton/superadmin-console/internal/throttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthHandler(env *handlers.TestEnv, svc handlers.AuthServiceInterface) *handlers.AuthHandler {
	return handlers.NewAuthHandler(svc, env.Throttles, env.Sessions, env.Respond, env.Logger)
}

func TestLogin_Success(t *testing.T) {
	env := handlers.NewTestEnv()
	mock := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, th *throttle.Throttle, req services.LoginRequest) (*services.LoginOutcome, error) {
			assert.Equal(t, "root@example.com", req.Email)
			assert.Equal(t, "dev-1", req.Actor.DeviceID)
			return &services.LoginOutcome{Token: "tok-123", Message: "Welcome", View: throttle.View{Label: throttle.LabelLogin}}, nil
		},
	}

	req := handlers.WithSession(handlers.NewTestRequest(t, "POST", "/api/login", handlers.LoginRequest{
		Email:    "root@example.com",
		Password: "secret1",
	}), "dev-1", "")
	w := httptest.NewRecorder()
	newAuthHandler(env, mock).Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := handlers.DecodeResponse(t, w)
	assert.Equal(t, "Welcome", resp["message"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "superAdminToken", cookies[0].Name)
	assert.Equal(t, "tok-123", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	mirrored, err := env.Sessions.Jar("dev-1").Cookie(context.Background(), "superAdminToken")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", mirrored)
}

func TestLogin_ValidationFailed(t *testing.T) {
	env := handlers.NewTestEnv()
	called := false
	mock := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, th *throttle.Throttle, req services.LoginRequest) (*services.LoginOutcome, error) {
			called = true
			return nil, nil
		},
	}

	req := handlers.NewTestRequest(t, "POST", "/api/login", handlers.LoginRequest{Email: "nope", Password: "123"})
	w := httptest.NewRecorder()
	newAuthHandler(env, mock).Login(w, req)

	resp := handlers.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "validation_failed")
	fields := resp["fields"].(map[string]any)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must have a minimum of 6 characters", fields["password"])
	assert.False(t, called)
}

func TestLogin_InvalidBody(t *testing.T) {
	env := handlers.NewTestEnv()
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader("{"))
	w := httptest.NewRecorder()

	newAuthHandler(env, &handlers.MockAuthService{}).Login(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestLogin_FailureStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid credentials", models.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"locked", models.ErrLoginLocked, http.StatusLocked, "login_locked"},
		{"not super admin", models.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"backend down", context.DeadlineExceeded, http.StatusBadGateway, "backend_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := handlers.NewTestEnv()
			mock := &handlers.MockAuthService{
				LoginFunc: func(ctx context.Context, th *throttle.Throttle, req services.LoginRequest) (*services.LoginOutcome, error) {
					return &services.LoginOutcome{View: throttle.View{Label: throttle.LabelLogin, AttemptsLeft: 2}}, tt.err
				},
			}

			req := handlers.NewTestRequest(t, "POST", "/api/login", handlers.LoginRequest{Email: "a@b.co", Password: "secret1"})
			w := httptest.NewRecorder()
			newAuthHandler(env, mock).Login(w, req)

			resp := handlers.AssertErrorResponse(t, w, tt.status, tt.code)
			assert.NotEmpty(t, resp["message"])
			view := resp["data"].(map[string]any)
			assert.Equal(t, float64(2), view["attemptsLeft"])
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestLogin_LocksAfterThreeRejections(t *testing.T) {
	env := handlers.NewTestEnv()
	mb := &services.MockAuthBackend{
		LoginFunc: func(ctx context.Context, email, password string) (*models.LoginResult, error) {
			return nil, &backend.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
		},
	}
	h := newAuthHandler(env, services.NewAuthService(mb, env.Logger, env.Audit))

	codes := []int{}
	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		req := handlers.WithSession(handlers.NewTestRequest(t, "POST", "/api/login", handlers.LoginRequest{Email: "a@b.co", Password: "secret1"}), "dev-1", "")
		last = httptest.NewRecorder()
		h.Login(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{401, 401, 423, 423}, codes)
	view := handlers.DecodeResponse(t, last)["data"].(map[string]any)
	assert.Equal(t, "Locked ⛔", view["label"])

	// Another device is unaffected
	req := handlers.WithSession(handlers.NewTestRequest(t, "POST", "/api/login", handlers.LoginRequest{Email: "a@b.co", Password: "secret1"}), "dev-2", "")
	w := httptest.NewRecorder()
	h.Login(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginState_Locked(t *testing.T) {
	env := handlers.NewTestEnv()
	th := env.Throttles("dev-1")
	for i := 0; i < 3; i++ {
		_, _ = th.RecordFailure(context.Background(), time.Now())
	}

	req := handlers.WithSession(httptest.NewRequest("GET", "/api/login/state", nil), "dev-1", "")
	w := httptest.NewRecorder()
	newAuthHandler(env, &handlers.MockAuthService{}).LoginState(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	view := handlers.DecodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, true, view["locked"])
	assert.Equal(t, throttle.LabelLocked, view["label"])
	assert.Equal(t, true, view["submitDisabled"])
	assert.Regexp(t, `^\d+:\d{2}$`, view["countdown"])
}

func TestCountdown_EndsOnUnlock(t *testing.T) {
	env := handlers.NewTestEnv()
	store := storage.NewMemoryStore()
	cfg := throttle.DefaultConfig()
	cfg.LockDuration = 1200 * time.Millisecond
	env.Throttles = func(deviceID string) *throttle.Throttle {
		return throttle.New(storage.DeviceStore(store, deviceID), cfg, env.Logger)
	}
	th := env.Throttles("dev-1")
	for i := 0; i < 3; i++ {
		_, _ = th.RecordFailure(context.Background(), time.Now())
	}

	req := handlers.WithSession(httptest.NewRequest("GET", "/api/login/countdown", nil), "dev-1", "")
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		newAuthHandler(env, &handlers.MockAuthService{}).Countdown(w, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("countdown stream did not end after unlock")
	}

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: countdown")
	assert.Contains(t, body, `"label":"Locked ⛔"`)
	assert.Contains(t, body, "event: unlocked")
	assert.False(t, th.IsLocked(context.Background(), time.Now()))
}

func TestCountdown_UnlockedDeviceGetsOnlyUnlocked(t *testing.T) {
	env := handlers.NewTestEnv()
	req := handlers.WithSession(httptest.NewRequest("GET", "/api/login/countdown", nil), "dev-1", "")
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		newAuthHandler(env, &handlers.MockAuthService{}).Countdown(w, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("countdown stream did not end for an unlocked device")
	}

	body := w.Body.String()
	assert.NotContains(t, body, "event: countdown")
	assert.Equal(t, 1, strings.Count(body, "event: unlocked"))
	assert.Contains(t, body, `"locked":false`)
}

func TestLogout_ClearsSession(t *testing.T) {
	env := handlers.NewTestEnv()
	require.NoError(t, env.Sessions.Jar("dev-1").Set(context.Background(), "superAdminToken", "tok", time.Hour))

	var gotToken string
	mock := &handlers.MockAuthService{
		LogoutFunc: func(ctx context.Context, token string, actor services.Actor) (string, error) {
			gotToken = token
			return "", context.DeadlineExceeded
		},
	}

	req := handlers.WithSession(httptest.NewRequest("POST", "/api/logout", nil), "dev-1", "tok")
	w := httptest.NewRecorder()
	newAuthHandler(env, mock).Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", gotToken)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	_, err := env.Sessions.Jar("dev-1").Cookie(context.Background(), "superAdminToken")
	assert.Error(t, err)
}

func TestSession(t *testing.T) {
	env := handlers.NewTestEnv()
	w := httptest.NewRecorder()

	newAuthHandler(env, &handlers.MockAuthService{}).Session(w, httptest.NewRequest("GET", "/api/session", nil))

	data := handlers.DecodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["authenticated"])
}
