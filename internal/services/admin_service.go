package services

import (
	"context"
	"fmt"

	"github.com/BradenHooton/superadmin-console/internal/models"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
)

const MessageAdminCreated = "Admin created successfully"

// AdminBackend is the upstream admin API
type AdminBackend interface {
	CreateAdmin(ctx context.Context, token string, in models.AdminInput) (string, error)
}

// AdminService creates school administrators
type AdminService struct {
	backend     AdminBackend
	auditLogger *pkglogger.AuditLogger
}

// NewAdminService creates a new AdminService
func NewAdminService(backend AdminBackend, auditLogger *pkglogger.AuditLogger) *AdminService {
	return &AdminService{backend: backend, auditLogger: auditLogger}
}

// Create adds an admin to a school
func (s *AdminService) Create(ctx context.Context, token string, actor Actor, in models.AdminInput) (string, error) {
	msg, err := s.backend.CreateAdmin(ctx, token, in)
	s.auditLogger.LogAdminAction(pkglogger.EventAdminCreate, actor.DeviceID, actor.IPAddress, err == nil,
		map[string]string{"school_id": in.SchoolID, "email": pkglogger.SanitizedEmail(in.Email)})
	if err != nil {
		return "", fmt.Errorf("create admin: %w", err)
	}
	return orDefault(msg, MessageAdminCreated), nil
}
