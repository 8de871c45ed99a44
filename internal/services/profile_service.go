package services

import (
	"context"
	"fmt"

	"github.com/BradenHooton/superadmin-console/internal/models"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
)

// Profile toast messages
const (
	MessageProfileUpdated = "Profile updated successfully"
	MessageImageUpdated   = "Profile image updated"
	MessageUpdateFailed   = "Update failed"
	MessageImageFailed    = "Image upload failed"
)

// ProfileBackend is the upstream profile API
type ProfileBackend interface {
	Profile(ctx context.Context, token string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (string, error)
	UpdateProfileImage(ctx context.Context, token string, image *models.FileUpload) (string, error)
}

// ProfileService reads and edits the signed-in super admin
type ProfileService struct {
	backend     ProfileBackend
	auditLogger *pkglogger.AuditLogger
}

// NewProfileService creates a new ProfileService
func NewProfileService(backend ProfileBackend, auditLogger *pkglogger.AuditLogger) *ProfileService {
	return &ProfileService{backend: backend, auditLogger: auditLogger}
}

func (s *ProfileService) Get(ctx context.Context, token string) (*models.Profile, error) {
	p, err := s.backend.Profile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Update changes the name and email
func (s *ProfileService) Update(ctx context.Context, token string, actor Actor, upd models.ProfileUpdate) (string, error) {
	msg, err := s.backend.UpdateProfile(ctx, token, upd)
	s.auditLogger.LogAdminAction(pkglogger.EventProfileUpdate, actor.DeviceID, actor.IPAddress, err == nil, map[string]string{"field": "details"})
	if err != nil {
		return "", fmt.Errorf("update profile: %w", err)
	}
	return orDefault(msg, MessageProfileUpdated), nil
}

// UpdateImage replaces the profile image
func (s *ProfileService) UpdateImage(ctx context.Context, token string, actor Actor, image *models.FileUpload) (string, error) {
	if image == nil {
		return "", fmt.Errorf("%w: image is required", models.ErrBadRequest)
	}

	msg, err := s.backend.UpdateProfileImage(ctx, token, image)
	s.auditLogger.LogAdminAction(pkglogger.EventProfileUpdate, actor.DeviceID, actor.IPAddress, err == nil, map[string]string{"field": "image"})
	if err != nil {
		return "", fmt.Errorf("update profile image: %w", err)
	}
	return orDefault(msg, MessageImageUpdated), nil
}
