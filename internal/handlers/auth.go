package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/services"
	"github.com/BradenHooton/superadmin-console/internal/session"
	"github.com/BradenHooton/superadmin-console/internal/throttle"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, th *throttle.Throttle, req services.LoginRequest) (*services.LoginOutcome, error)
	Logout(ctx context.Context, token string, actor services.Actor) (string, error)
}

// ThrottleFactory returns the login throttle of one device
type ThrottleFactory func(deviceID string) *throttle.Throttle

// AuthHandler handles login, logout and the session check
type AuthHandler struct {
	service   AuthServiceInterface
	throttles ThrottleFactory
	sessions  *session.Manager
	respond   *Responder
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, throttles ThrottleFactory, sessions *session.Manager, respond *Responder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		throttles: throttles,
		sessions:  sessions,
		respond:   respond,
		logger:    logger,
		now:       time.Now,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SessionResponse tells the dashboard how often to expect guard checks
type SessionResponse struct {
	Authenticated        bool `json:"authenticated"`
	GuardIntervalSeconds int  `json:"guardIntervalSeconds"`
}

// LoginState renders the login form for this device
// @Router /api/login/state [get]
func (h *AuthHandler) LoginState(w http.ResponseWriter, r *http.Request) {
	th := h.throttles(session.DeviceIDFromContext(r.Context()))
	pkghttp.WriteJSON(w, http.StatusOK, "", th.View(r.Context(), h.now()))
}

// Countdown streams the lock countdown once a second until the device is
// unlocked
// @Router /api/login/countdown [get]
func (h *AuthHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	th := h.throttles(session.DeviceIDFromContext(ctx))

	stream, err := newSSEStream(w)
	if err != nil {
		h.logger.Error("failed to open countdown stream", slog.Any("error", err))
		return
	}

	views := make(chan throttle.View, 4)
	cd := throttle.NewCountdown(th, func(v throttle.View) {
		select {
		case views <- v:
		default:
		}
	})
	cd.Start(ctx)
	defer cd.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case v := <-views:
			if !sendCountdown(stream, v) {
				return
			}
		case <-cd.Done():
			for {
				select {
				case v := <-views:
					if !sendCountdown(stream, v) {
						return
					}
				default:
					_ = stream.Send(EventUnlocked, th.View(ctx, h.now()))
					return
				}
			}
		}
	}
}

// sendCountdown writes a locked view as a countdown frame and an unlocked
// view as the final unlocked frame. It reports whether the stream goes on.
func sendCountdown(stream *sseStream, v throttle.View) bool {
	if !v.Locked {
		_ = stream.Send(EventUnlocked, v)
		return false
	}
	return stream.Send(EventCountdown, v) == nil
}

// Login handles super admin login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} throttle.View
// @Failure 401,403,422,423,502 {object} pkghttp.Response
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	actor := h.respond.Actor(r)
	th := h.throttles(actor.DeviceID)

	outcome, err := h.service.Login(r.Context(), th, services.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Actor:    actor,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrLoginLocked):
			pkghttp.WriteLocked(w, outcome.Message, outcome.View)
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteErrorWithData(w, http.StatusUnauthorized, "unauthorized", outcome.Message, outcome.View)
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteErrorWithData(w, http.StatusForbidden, "forbidden", outcome.Message, outcome.View)
		default:
			pkghttp.WriteErrorWithData(w, http.StatusBadGateway, "backend_error", outcome.Message, outcome.View)
		}
		return
	}

	if err := h.sessions.Begin(r.Context(), w, actor.DeviceID, outcome.Token); err != nil {
		h.logger.Warn("failed to mirror session cookie", slog.Any("error", err))
	}

	pkghttp.WriteJSON(w, http.StatusOK, outcome.Message, outcome.View)
}

// Logout ends the console session. The cookies are cleared even when the
// backend call fails.
// @Router /api/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor := h.respond.Actor(r)
	msg, _ := h.service.Logout(r.Context(), session.TokenFromContext(r.Context()), actor)

	if err := h.sessions.End(r.Context(), w, actor.DeviceID); err != nil {
		h.logger.Warn("failed to clear cookie jar", slog.Any("error", err))
	}

	pkghttp.WriteJSON(w, http.StatusOK, msg, nil)
}

// Session reports an active session. Requests without one never reach it.
// @Router /api/session [get]
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, "", SessionResponse{
		Authenticated:        true,
		GuardIntervalSeconds: int(h.sessions.GuardInterval() / time.Second),
	})
}
