package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types
const (
	EventLoginSuccess  = "login_success"
	EventLoginFailure  = "login_failure"
	EventLoginLocked   = "login_locked"
	EventLogout        = "logout"
	EventSessionExpiry = "session_expired"
	EventReadAll       = "notifications_read_all"
	EventSchoolCreate  = "school_create"
	EventSchoolUpdate  = "school_update"
	EventSchoolDelete  = "school_delete"
	EventSchoolStatus  = "school_status"
	EventAdminCreate   = "admin_create"
	EventProfileUpdate = "profile_update"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	DeviceID      string
	Email         string // masked before logging
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger, now: time.Now}
}

// LogAuthAttempt logs login attempts and lockouts
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	al.log("auth", event)
}

// LogSessionEvent logs logouts and session expiry
func (al *AuditLogger) LogSessionEvent(eventType, deviceID, ipAddress string) {
	al.log("session", AuditEvent{
		EventType: eventType,
		DeviceID:  deviceID,
		IPAddress: ipAddress,
		Success:   true,
	})
}

// LogAdminAction logs mutating console actions against the backend
func (al *AuditLogger) LogAdminAction(eventType, deviceID, ipAddress string, success bool, metadata map[string]string) {
	al.log("action", AuditEvent{
		EventType: eventType,
		DeviceID:  deviceID,
		IPAddress: ipAddress,
		Success:   success,
		Metadata:  metadata,
	})
}

func (al *AuditLogger) log(auditType string, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	}

	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, slog.String("meta_"+k, v))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}
