package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/backend"
	"github.com/BradenHooton/superadmin-console/internal/metrics"
	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/notify"
	"github.com/BradenHooton/superadmin-console/internal/session"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
)

// ExpiredEvent tells the dashboard to navigate away
type ExpiredEvent struct {
	Redirect string `json:"redirect"`
}

// NotifyErrorEvent carries the toast of a failed poll
type NotifyErrorEvent struct {
	Message string `json:"message"`
}

// EventsHandler streams the session guard and the notification poller of
// one dashboard view
type EventsHandler struct {
	notifications NotificationServiceInterface
	sessions      *session.Manager
	respond       *Responder
	logger        *slog.Logger
	auditLogger   *pkglogger.AuditLogger
}

func NewEventsHandler(notifications NotificationServiceInterface, sessions *session.Manager, respond *Responder, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *EventsHandler {
	return &EventsHandler{
		notifications: notifications,
		sessions:      sessions,
		respond:       respond,
		logger:        logger,
		auditLogger:   auditLogger,
	}
}

// Stream runs until the client disconnects or the session expires. The
// guard watches the device's cookie jar, so a logout from another tab or
// an expired mirror ends the stream with an "expired" event.
// @Produce text/event-stream
// @Router /api/events [get]
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := session.DeviceIDFromContext(ctx)
	token := session.TokenFromContext(ctx)

	stream, err := newSSEStream(w)
	if err != nil {
		h.logger.Error("failed to open event stream", slog.Any("error", err))
		return
	}

	events := make(chan sseEvent, 8)
	send := func(ev sseEvent) {
		select {
		case events <- ev:
		default:
			h.logger.Debug("event stream backlog full, dropping event", slog.String("event", ev.name))
		}
	}

	jar := h.sessions.Jar(deviceID)
	stopGuard := session.StartGuard(jar, h.sessions.Names(), func() {
		metrics.RecordSessionExpired("guard")
		h.auditLogger.LogSessionEvent(pkglogger.EventSessionExpiry, deviceID, h.respond.proxies.ClientIP(r))
		send(sseEvent{name: EventExpired, data: ExpiredEvent{Redirect: LoginPath}})
	}, h.sessions.GuardInterval(),
		session.WithRemover(jar),
		session.WithGuardLogger(h.logger))
	defer stopGuard()

	stopPoller := h.notifications.Watch(ctx, deviceID, token,
		func(s notify.Summary) {
			send(sseEvent{name: EventNotifications, data: s})
		},
		func(err error) {
			if errors.Is(err, models.ErrUnauthorized) {
				metrics.RecordSessionExpired("backend")
				send(sseEvent{name: EventExpired, data: ExpiredEvent{Redirect: LoginPath}})
				return
			}
			send(sseEvent{name: EventNotifyError, data: NotifyErrorEvent{Message: backend.MessageOf(err, pkghttp.GenericErrorMessage)}})
		})
	defer stopPoller()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		case ev := <-events:
			if err := stream.Send(ev.name, ev.data); err != nil {
				return
			}
			if ev.name == EventExpired {
				return
			}
		}
	}
}
