package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/notify"
	"github.com/BradenHooton/superadmin-console/internal/services"
	"github.com/BradenHooton/superadmin-console/internal/session"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
	"github.com/go-chi/chi/v5"
)

// NotificationServiceInterface defines the interface for inbox operations
type NotificationServiceInterface interface {
	List(ctx context.Context, token string, mode notify.Mode) (notify.Summary, error)
	MarkRead(ctx context.Context, token string, actor services.Actor, mode notify.Mode, id string) (string, notify.Summary, error)
	MarkAllRead(ctx context.Context, token string, actor services.Actor, mode notify.Mode, confirmer notify.Confirmer) (string, notify.Summary, error)
	Watch(ctx context.Context, deviceID, token string, publish func(notify.Summary), onError func(error)) (stop func())
}

// NotificationHandler handles the notification page
type NotificationHandler struct {
	service NotificationServiceInterface
	respond *Responder
}

func NewNotificationHandler(service NotificationServiceInterface, respond *Responder) *NotificationHandler {
	return &NotificationHandler{service: service, respond: respond}
}

// ReadAllRequest carries the answer to the read-all confirmation
type ReadAllRequest struct {
	Confirm bool `json:"confirm"`
}

// ConfirmationRequired is returned when read-all is sent unconfirmed
type ConfirmationRequired struct {
	Prompt string `json:"prompt"`
}

// @Router /api/notifications [get]
func (h *NotificationHandler) All(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, notify.ModeAll)
}

// @Router /api/notifications/unread [get]
func (h *NotificationHandler) Unread(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, notify.ModeUnread)
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request, mode notify.Mode) {
	summary, err := h.service.List(r.Context(), session.TokenFromContext(r.Context()), mode)
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, "", summary)
}

// MarkRead marks one notification read and returns the refetched list
// @Param mode query string false "unread (default) or all"
// @Router /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	mode := notify.ParseMode(r.URL.Query().Get("mode"))

	msg, summary, err := h.service.MarkRead(r.Context(), session.TokenFromContext(r.Context()), h.respond.Actor(r), mode, chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, msg, summary)
}

// MarkAllRead requires {"confirm": true}. Without it nothing is sent to the
// backend and 428 carries the prompt to show.
// @Param mode query string false "unread (default) or all"
// @Router /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	var req ReadAllRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, pkghttp.ErrEmptyBody) {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	mode := notify.ParseMode(r.URL.Query().Get("mode"))

	msg, summary, err := h.service.MarkAllRead(r.Context(), session.TokenFromContext(r.Context()), h.respond.Actor(r), mode, notify.Confirmed(req.Confirm))
	if errors.Is(err, models.ErrConfirmationDeclined) {
		pkghttp.WriteErrorWithData(w, http.StatusPreconditionRequired, "confirmation_required", notify.ConfirmReadAll,
			ConfirmationRequired{Prompt: notify.ConfirmReadAll})
		return
	}
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, msg, summary)
}
