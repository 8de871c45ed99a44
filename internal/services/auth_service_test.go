package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/backend"
	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/storage"
	"github.com/BradenHooton/superadmin-console/internal/throttle"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAudit() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}

func newAuthService(mb *MockAuthBackend, now time.Time) *AuthService {
	svc := NewAuthService(mb, testLogger(), testAudit())
	svc.now = func() time.Time { return now }
	return svc
}

func newThrottle() *throttle.Throttle {
	return throttle.New(storage.NewMemoryStore(), throttle.DefaultConfig(), testLogger())
}

var rejected = &backend.APIError{StatusCode: 401, Message: "Invalid credentials", Endpoint: "login-super-admin"}

func TestLogin_Success(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mb := &MockAuthBackend{LoginFunc: func(ctx context.Context, email, password string) (*models.LoginResult, error) {
		assert.Equal(t, "root@example.com", email)
		return &models.LoginResult{Token: "tok-123", Role: models.RoleSuperAdmin}, nil
	}}
	th := newThrottle()
	_, _ = th.RecordFailure(context.Background(), now)

	out, err := newAuthService(mb, now).Login(context.Background(), th, LoginRequest{Email: "  Root@Example.com ", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, "tok-123", out.Token)
	assert.Equal(t, MessageLoginSuccess, out.Message)
	assert.Equal(t, 0, out.View.Attempts)
	assert.Equal(t, 0, th.State(context.Background(), now).Count)
}

func TestLogin_LocksOnThirdFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	mb := &MockAuthBackend{LoginFunc: func(ctx context.Context, email, password string) (*models.LoginResult, error) {
		calls++
		return nil, rejected
	}}
	svc := newAuthService(mb, now)
	th := newThrottle()
	req := LoginRequest{Email: "root@example.com", Password: "wrong-pw"}

	for i := 1; i <= 2; i++ {
		out, err := svc.Login(context.Background(), th, req)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		assert.Equal(t, "Invalid credentials", out.Message)
		assert.False(t, out.View.Locked)
		assert.Equal(t, 3-i, out.View.AttemptsLeft)
	}

	out, err := svc.Login(context.Background(), th, req)
	assert.ErrorIs(t, err, models.ErrLoginLocked)
	assert.True(t, out.View.Locked)
	assert.Equal(t, throttle.LabelLocked, out.View.Label)
	assert.Equal(t, "10:00", out.View.Countdown)
	assert.True(t, out.View.SubmitDisabled)

	// Locked submissions never reach the backend
	_, err = svc.Login(context.Background(), th, req)
	assert.ErrorIs(t, err, models.ErrLoginLocked)
	assert.Equal(t, 3, calls)
}

func TestLogin_UnlocksAfterDuration(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mb := &MockAuthBackend{LoginFunc: func(ctx context.Context, email, password string) (*models.LoginResult, error) {
		return nil, rejected
	}}
	svc := newAuthService(mb, now)
	th := newThrottle()
	for i := 0; i < 3; i++ {
		_, _ = svc.Login(context.Background(), th, LoginRequest{Email: "a@b.co", Password: "x"})
	}

	svc.now = func() time.Time { return now.Add(10 * time.Minute) }
	mb.LoginFunc = func(ctx context.Context, email, password string) (*models.LoginResult, error) {
		return &models.LoginResult{Token: "t", Role: models.RoleSuperAdmin, Message: "Welcome back"}, nil
	}

	out, err := svc.Login(context.Background(), th, LoginRequest{Email: "a@b.co", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome back", out.Message)
	assert.False(t, out.View.Locked)
}

func TestLogin_ServerErrorDoesNotCount(t *testing.T) {
	now := time.Now()
	mb := &MockAuthBackend{LoginFunc: func(ctx context.Context, email, password string) (*models.LoginResult, error) {
		return nil, &backend.APIError{StatusCode: 503, Message: "maintenance", Endpoint: "login-super-admin"}
	}}
	th := newThrottle()

	out, err := newAuthService(mb, now).Login(context.Background(), th, LoginRequest{Email: "a@b.co", Password: "x"})

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "maintenance", out.Message)
	assert.Equal(t, 0, th.State(context.Background(), now).Count)
}

func TestLogin_TransportErrorHasNoMessage(t *testing.T) {
	mb := &MockAuthBackend{LoginFunc: func(ctx context.Context, email, password string) (*models.LoginResult, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}

	out, err := newAuthService(mb, time.Now()).Login(context.Background(), newThrottle(), LoginRequest{Email: "a@b.co", Password: "x"})

	assert.Error(t, err)
	assert.Empty(t, out.Message)
}

func TestLogin_RejectsNonSuperAdmin(t *testing.T) {
	now := time.Now()
	mb := &MockAuthBackend{LoginFunc: func(ctx context.Context, email, password string) (*models.LoginResult, error) {
		return &models.LoginResult{Token: "t", Role: "admin"}, nil
	}}
	th := newThrottle()

	out, err := newAuthService(mb, now).Login(context.Background(), th, LoginRequest{Email: "a@b.co", Password: "x"})

	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.Empty(t, out.Token)
	assert.Equal(t, MessageNotSuperAdmin, out.Message)
}

func TestLogout(t *testing.T) {
	svc := newAuthService(&MockAuthBackend{LogoutFunc: func(ctx context.Context, token string) (string, error) {
		assert.Equal(t, "tok", token)
		return "", nil
	}}, time.Now())

	msg, err := svc.Logout(context.Background(), "tok", Actor{DeviceID: "d"})
	require.NoError(t, err)
	assert.Equal(t, MessageLoggedOut, msg)

	svc.backend = &MockAuthBackend{LogoutFunc: func(ctx context.Context, token string) (string, error) {
		return "", errors.New("boom")
	}}
	msg, err = svc.Logout(context.Background(), "tok", Actor{})
	assert.Error(t, err)
	assert.Equal(t, MessageLoggedOut, msg)
}
