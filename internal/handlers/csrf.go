package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/session"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
)

// CSRFTokenIssuer issues per-device CSRF tokens
type CSRFTokenIssuer interface {
	GenerateToken(ctx context.Context, deviceID string) (string, error)
	TTL() time.Duration
}

// CSRFHandler hands out the token the dashboard echoes in X-CSRF-Token
type CSRFHandler struct {
	issuer  CSRFTokenIssuer
	cookies session.CookieConfig
	logger  *slog.Logger
}

func NewCSRFHandler(issuer CSRFTokenIssuer, cookies session.CookieConfig, logger *slog.Logger) *CSRFHandler {
	return &CSRFHandler{issuer: issuer, cookies: cookies, logger: logger}
}

// CSRFTokenResponse carries the issued token
type CSRFTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// Token issues a new token, replacing the previous one of the device
// @Router /api/csrf [get]
func (h *CSRFHandler) Token(w http.ResponseWriter, r *http.Request) {
	token, err := h.issuer.GenerateToken(r.Context(), session.DeviceIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("failed to issue CSRF token", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "")
		return
	}

	session.SetCSRFTokenCookie(w, token, h.issuer.TTL(), h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, "", CSRFTokenResponse{CSRFToken: token})
}
