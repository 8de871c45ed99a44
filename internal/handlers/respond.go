package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/superadmin-console/internal/backend"
	"github.com/BradenHooton/superadmin-console/internal/metrics"
	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/services"
	"github.com/BradenHooton/superadmin-console/internal/session"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
)

// LoginPath is where an expired session is sent
const LoginPath = "/"

// Upload error messages
const (
	MessageImageTooLarge    = "Image is too large"
	MessageImageUnsupported = "Only PNG, JPEG, GIF and WebP images are allowed"
)

// Responder converts service results into console responses. It is shared
// by every handler.
type Responder struct {
	sessions    *session.Manager
	proxies     *pkghttp.Proxies
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewResponder(sessions *session.Manager, proxies *pkghttp.Proxies, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *Responder {
	return &Responder{
		sessions:    sessions,
		proxies:     proxies,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Actor describes the browser behind r
func (rs *Responder) Actor(r *http.Request) services.Actor {
	client := rs.proxies.ExtractClient(r)
	return services.Actor{
		DeviceID:  session.DeviceIDFromContext(r.Context()),
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
	}
}

// SessionExpired answers a request that carries no session cookie. It
// satisfies session.OnExpired.
func (rs *Responder) SessionExpired(w http.ResponseWriter, r *http.Request) {
	metrics.RecordSessionExpired("request")
	pkghttp.WriteSessionExpired(w, LoginPath)
}

// Error writes err with fallback as the message when the backend sent none.
// A backend 401 means the token is no longer valid and ends the session.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	msg := backend.MessageOf(err, fallback)

	var apiErr *backend.APIError
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		rs.endSession(w, r)
	case errors.Is(err, models.ErrPayloadTooLarge):
		pkghttp.WriteRequestTooLarge(w, MessageImageTooLarge)
	case errors.Is(err, models.ErrUnsupportedMedia):
		pkghttp.WriteUnsupportedMedia(w, MessageImageUnsupported)
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, msg)
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, msg)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, msg)
	case errors.As(err, &apiErr) && apiErr.IsClientError():
		pkghttp.WriteError(w, apiErr.StatusCode, "backend_error", msg)
	case errors.Is(err, context.Canceled):
		rs.logger.Debug("request canceled", slog.String("path", r.URL.Path))
	default:
		rs.logger.Error("backend request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		pkghttp.WriteBadGateway(w, msg)
	}
}

func (rs *Responder) endSession(w http.ResponseWriter, r *http.Request) {
	deviceID := session.DeviceIDFromContext(r.Context())
	if err := rs.sessions.End(r.Context(), w, deviceID); err != nil {
		rs.logger.Warn("failed to clear cookie jar", slog.Any("error", err))
	}
	metrics.RecordSessionExpired("backend")
	rs.auditLogger.LogSessionEvent(pkglogger.EventSessionExpiry, deviceID, rs.proxies.ClientIP(r))
	pkghttp.WriteSessionExpired(w, LoginPath)
}

func (rs *Responder) Logger() *slog.Logger {
	return rs.logger
}
