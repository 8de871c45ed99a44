package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/storage"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
)

// HealthHandler reports liveness and storage reachability
type HealthHandler struct {
	pinger storage.Pinger // nil for the memory store
	logger *slog.Logger
}

func NewHealthHandler(pinger storage.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{pinger: pinger, logger: logger}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		pkghttp.WriteJSON(w, http.StatusOK, "", HealthResponse{Status: "ok", Storage: "memory"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Error("storage health check failed", slog.Any("error", err))
		pkghttp.WriteErrorWithData(w, http.StatusServiceUnavailable, "unavailable", "Storage unreachable",
			HealthResponse{Status: "degraded", Storage: "unreachable"})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, "", HealthResponse{Status: "ok", Storage: "ok"})
}
