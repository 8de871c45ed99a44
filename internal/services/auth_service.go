package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/backend"
	"github.com/BradenHooton/superadmin-console/internal/metrics"
	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/throttle"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
)

// Login toast messages
const (
	MessageLoginSuccess       = "Login successful"
	MessageInvalidCredentials = "Invalid email or password"
	MessageLoginLocked        = "Too many failed attempts. Please wait for the countdown to finish"
	MessageNotSuperAdmin      = "Only super admins can sign in to this console"
	MessageLoggedOut          = "Logged out successfully"
)

// AuthBackend is the upstream side of sign in and sign out
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Logout(ctx context.Context, token string) (string, error)
}

// AuthService handles sign in against the backend behind the login throttle
type AuthService struct {
	backend     AuthBackend
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(backend AuthBackend, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		backend:     backend,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// LoginRequest is one submission of the login form
type LoginRequest struct {
	Email    string
	Password string
	Actor    Actor
}

// LoginOutcome is returned on success and failure alike so the form can
// always be re-rendered. Token is set only on success.
type LoginOutcome struct {
	Token   string        `json:"-"`
	Message string        `json:"message"`
	View    throttle.View `json:"view"`
}

// Login checks the lock, calls the backend and records the result on th.
// A rejected submission returns ErrUnauthorized, or ErrLoginLocked once the
// failure that reaches the attempt limit has been recorded. Backend 5xx and
// transport errors are returned as is and do not count as attempts.
func (s *AuthService) Login(ctx context.Context, th *throttle.Throttle, req LoginRequest) (*LoginOutcome, error) {
	now := s.now()

	if th.IsLocked(ctx, now) {
		metrics.RecordLoginAttempt(metrics.LoginLocked)
		s.audit(pkglogger.EventLoginLocked, req, false, "locked")
		return &LoginOutcome{Message: MessageLoginLocked, View: th.View(ctx, now)}, models.ErrLoginLocked
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	result, err := s.backend.Login(ctx, email, req.Password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.IsClientError() {
			return s.fail(ctx, th, req, now, err)
		}

		metrics.RecordLoginAttempt(metrics.LoginError)
		s.logger.Error("login backend call failed", slog.Any("error", err))
		return &LoginOutcome{Message: backend.MessageOf(err, ""), View: th.View(ctx, now)}, err
	}

	if result.Role != models.RoleSuperAdmin {
		metrics.RecordLoginAttempt(metrics.LoginForbidden)
		s.audit(pkglogger.EventLoginFailure, req, false, "role_not_allowed")
		return &LoginOutcome{Message: MessageNotSuperAdmin, View: th.View(ctx, now)}, models.ErrForbidden
	}

	if err := th.RecordSuccess(ctx); err != nil {
		s.logger.Warn("failed to reset login attempts", slog.Any("error", err))
	}
	metrics.RecordLoginAttempt(metrics.LoginSuccess)
	s.audit(pkglogger.EventLoginSuccess, req, true, "")

	msg := result.Message
	if msg == "" {
		msg = MessageLoginSuccess
	}
	return &LoginOutcome{Token: result.Token, Message: msg, View: th.View(ctx, now)}, nil
}

func (s *AuthService) fail(ctx context.Context, th *throttle.Throttle, req LoginRequest, now time.Time, cause error) (*LoginOutcome, error) {
	state, err := th.RecordFailure(ctx, now)
	switch {
	case errors.Is(err, models.ErrLoginLocked):
		// Another tab reached the limit first
		metrics.RecordLoginAttempt(metrics.LoginLocked)
		return &LoginOutcome{Message: MessageLoginLocked, View: th.View(ctx, now)}, models.ErrLoginLocked
	case err != nil:
		s.logger.Error("failed to record login attempt", slog.Any("error", err))
	}

	if state.IsLocked(now) {
		metrics.RecordLoginAttempt(metrics.LoginLocked)
		metrics.RecordLockout()
		s.audit(pkglogger.EventLoginLocked, req, false, "max_attempts")
		return &LoginOutcome{
			Message: MessageLoginLocked,
			View:    throttle.NewView(state, th.Config().MaxAttempts, now),
		}, models.ErrLoginLocked
	}

	metrics.RecordLoginAttempt(metrics.LoginFailure)
	s.audit(pkglogger.EventLoginFailure, req, false, "invalid_credentials")
	return &LoginOutcome{
		Message: backend.MessageOf(cause, MessageInvalidCredentials),
		View:    throttle.NewView(state, th.Config().MaxAttempts, now),
	}, fmt.Errorf("%w: %w", models.ErrUnauthorized, cause)
}

// Logout tells the backend the token is done. The console session is ended
// by the caller whatever the backend answers.
func (s *AuthService) Logout(ctx context.Context, token string, actor Actor) (string, error) {
	msg, err := s.backend.Logout(ctx, token)
	s.auditLogger.LogSessionEvent(pkglogger.EventLogout, actor.DeviceID, actor.IPAddress)
	if err != nil {
		s.logger.Warn("backend logout failed", slog.Any("error", err))
		return MessageLoggedOut, err
	}
	if msg == "" {
		msg = MessageLoggedOut
	}
	return msg, nil
}

func (s *AuthService) audit(eventType string, req LoginRequest, success bool, reason string) {
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     eventType,
		DeviceID:      req.Actor.DeviceID,
		Email:         req.Email,
		IPAddress:     req.Actor.IPAddress,
		UserAgent:     req.Actor.UserAgent,
		Success:       success,
		FailureReason: reason,
	})
}
