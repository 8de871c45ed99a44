package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/notify"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
)

// SourceFactory binds the notification API to a session token
type SourceFactory func(token string) notify.Source

// NotificationService runs inbox reads and mutations for one request and
// owns the pollers of open event streams. A successful mutation refreshes
// every stream of the same device.
type NotificationService struct {
	sources      SourceFactory
	pollInterval time.Duration
	logger       *slog.Logger
	auditLogger  *pkglogger.AuditLogger

	mu      sync.Mutex
	streams map[string]map[*notify.Poller]struct{}
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(sources SourceFactory, pollInterval time.Duration, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *NotificationService {
	return &NotificationService{
		sources:      sources,
		pollInterval: pollInterval,
		logger:       logger,
		auditLogger:  auditLogger,
		streams:      make(map[string]map[*notify.Poller]struct{}),
	}
}

// List fetches the unread or full list
func (s *NotificationService) List(ctx context.Context, token string, mode notify.Mode) (notify.Summary, error) {
	inbox := notify.NewInboxMode(s.sources(token), mode)
	if mode == notify.ModeAll {
		return inbox.FetchAll(ctx)
	}
	return inbox.FetchUnread(ctx)
}

// MarkRead marks one notification read and returns the refetched mode list
func (s *NotificationService) MarkRead(ctx context.Context, token string, actor Actor, mode notify.Mode, id string) (string, notify.Summary, error) {
	msg, summary, err := notify.NewInboxMode(s.sources(token), mode).MarkRead(ctx, id)
	if err == nil {
		s.refresh(actor.DeviceID)
	}
	return msg, summary, err
}

// MarkAllRead marks every notification read once confirmer agrees
func (s *NotificationService) MarkAllRead(ctx context.Context, token string, actor Actor, mode notify.Mode, confirmer notify.Confirmer) (string, notify.Summary, error) {
	msg, summary, err := notify.NewInboxMode(s.sources(token), mode).MarkAllRead(ctx, confirmer)
	if !errors.Is(err, models.ErrConfirmationDeclined) {
		s.auditLogger.LogAdminAction(pkglogger.EventReadAll, actor.DeviceID, actor.IPAddress, err == nil, nil)
	}
	if err == nil {
		s.refresh(actor.DeviceID)
	}
	return msg, summary, err
}

// Watch starts a poller for one event stream of deviceID. The returned stop
// func stops the poller and waits for it.
func (s *NotificationService) Watch(ctx context.Context, deviceID, token string, publish func(notify.Summary), onError func(error)) (stop func()) {
	p := notify.NewPoller(notify.NewInbox(s.sources(token)), s.pollInterval, publish,
		notify.WithLogger(s.logger),
		notify.WithErrorHandler(onError))

	s.mu.Lock()
	if s.streams[deviceID] == nil {
		s.streams[deviceID] = make(map[*notify.Poller]struct{})
	}
	s.streams[deviceID][p] = struct{}{}
	s.mu.Unlock()

	p.Start(ctx)

	return func() {
		s.mu.Lock()
		delete(s.streams[deviceID], p)
		if len(s.streams[deviceID]) == 0 {
			delete(s.streams, deviceID)
		}
		s.mu.Unlock()
		p.Stop()
	}
}

// Streams is the number of open streams of deviceID
func (s *NotificationService) Streams(deviceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams[deviceID])
}

func (s *NotificationService) refresh(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.streams[deviceID] {
		p.Refresh()
	}
}
