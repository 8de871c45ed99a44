package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/superadmin-console/internal/session"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
)

// CSRFValidator checks a token against the device it was issued to
type CSRFValidator interface {
	ValidateToken(ctx context.Context, deviceID, token string) (bool, error)
}

// CSRFProtection validates X-CSRF-Token on state-changing requests. The
// header must match the csrf_token cookie and the token stored for the device.
func CSRFProtection(validator CSRFValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isStateChangingMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			deviceID := session.DeviceIDFromContext(r.Context())
			token := r.Header.Get("X-CSRF-Token")
			if token == "" {
				logger.Warn("CSRF token missing in request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("device_id", deviceID))
				pkghttp.WriteForbidden(w, "CSRF token missing")
				return
			}

			cookie, err := r.Cookie(session.CSRFCookieName)
			if err != nil || cookie.Value != token {
				logger.Warn("CSRF double-submit mismatch",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("device_id", deviceID))
				pkghttp.WriteForbidden(w, "CSRF token invalid")
				return
			}

			ok, err := validator.ValidateToken(r.Context(), deviceID, token)
			if err != nil {
				logger.Error("CSRF token lookup failed", slog.Any("error", err))
				pkghttp.WriteInternalError(w, "")
				return
			}
			if !ok {
				logger.Warn("CSRF token validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("device_id", deviceID))
				pkghttp.WriteForbidden(w, "CSRF token invalid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isStateChangingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
