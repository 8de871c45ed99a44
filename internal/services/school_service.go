package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/BradenHooton/superadmin-console/internal/models"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
)

// Pagination bounds of the school table
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Fallback toast messages
const (
	MessageSchoolCreated = "School created successfully"
	MessageSchoolUpdated = "School updated successfully"
	MessageSchoolDeleted = "School deleted successfully"
	MessageSchoolStatus  = "School status updated"
)

// SchoolBackend is the upstream school API
type SchoolBackend interface {
	ListSchools(ctx context.Context, token string) ([]models.School, error)
	CreateSchool(ctx context.Context, token string, in models.SchoolInput) (string, error)
	UpdateSchool(ctx context.Context, token, id string, in models.SchoolInput) (string, error)
	DeleteSchool(ctx context.Context, token, id string) (string, error)
	ToggleSchoolStatus(ctx context.Context, token, id string) (string, error)
}

// SchoolService serves the school table and its mutations
type SchoolService struct {
	backend     SchoolBackend
	auditLogger *pkglogger.AuditLogger
}

// NewSchoolService creates a new SchoolService
func NewSchoolService(backend SchoolBackend, auditLogger *pkglogger.AuditLogger) *SchoolService {
	return &SchoolService{backend: backend, auditLogger: auditLogger}
}

// List fetches every school, then filters by search over name, email and
// contact number (case-insensitive) and returns the requested page. Pages
// past the end are clamped to the last page.
func (s *SchoolService) List(ctx context.Context, token string, q models.SchoolQuery) (*models.SchoolPage, error) {
	schools, err := s.backend.ListSchools(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}

	filtered := FilterSchools(schools, q.Search)
	return Paginate(filtered, q.Page, q.PageSize), nil
}

// FilterSchools keeps the schools matching search in backend order
func FilterSchools(schools []models.School, search string) []models.School {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return schools
	}

	out := make([]models.School, 0, len(schools))
	for _, sc := range schools {
		if strings.Contains(strings.ToLower(sc.SchoolName), needle) ||
			strings.Contains(strings.ToLower(sc.SchoolEmail), needle) ||
			strings.Contains(strings.ToLower(sc.ContactNumber), needle) {
			out = append(out, sc)
		}
	}
	return out
}

// Paginate slices schools into one page, normalizing page and size
func Paginate(schools []models.School, page, size int) *models.SchoolPage {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	total := len(schools)
	totalPages := (total + size - 1) / size

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = max(totalPages, 1)
	}

	start := min((page-1)*size, total)
	end := min(start+size, total)

	items := make([]models.School, end-start)
	copy(items, schools[start:end])

	return &models.SchoolPage{
		Items:      items,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Create adds a school. A logo is required.
func (s *SchoolService) Create(ctx context.Context, token string, actor Actor, in models.SchoolInput) (string, error) {
	if in.Logo == nil {
		return "", fmt.Errorf("%w: school logo is required", models.ErrBadRequest)
	}

	msg, err := s.backend.CreateSchool(ctx, token, in)
	s.auditLogger.LogAdminAction(pkglogger.EventSchoolCreate, actor.DeviceID, actor.IPAddress, err == nil, nil)
	if err != nil {
		return "", fmt.Errorf("create school: %w", err)
	}
	return orDefault(msg, MessageSchoolCreated), nil
}

// Update edits a school. The logo is replaced only when one is given.
func (s *SchoolService) Update(ctx context.Context, token string, actor Actor, id string, in models.SchoolInput) (string, error) {
	msg, err := s.backend.UpdateSchool(ctx, token, id, in)
	s.auditLogger.LogAdminAction(pkglogger.EventSchoolUpdate, actor.DeviceID, actor.IPAddress, err == nil, map[string]string{"school_id": id})
	if err != nil {
		return "", fmt.Errorf("update school %s: %w", id, err)
	}
	return orDefault(msg, MessageSchoolUpdated), nil
}

// Delete removes a school
func (s *SchoolService) Delete(ctx context.Context, token string, actor Actor, id string) (string, error) {
	msg, err := s.backend.DeleteSchool(ctx, token, id)
	s.auditLogger.LogAdminAction(pkglogger.EventSchoolDelete, actor.DeviceID, actor.IPAddress, err == nil, map[string]string{"school_id": id})
	if err != nil {
		return "", fmt.Errorf("delete school %s: %w", id, err)
	}
	return orDefault(msg, MessageSchoolDeleted), nil
}

// ToggleStatus flips a school between active and inactive
func (s *SchoolService) ToggleStatus(ctx context.Context, token string, actor Actor, id string) (string, error) {
	msg, err := s.backend.ToggleSchoolStatus(ctx, token, id)
	s.auditLogger.LogAdminAction(pkglogger.EventSchoolStatus, actor.DeviceID, actor.IPAddress, err == nil, map[string]string{"school_id": id})
	if err != nil {
		return "", fmt.Errorf("toggle school %s status: %w", id, err)
	}
	return orDefault(msg, MessageSchoolStatus), nil
}

func orDefault(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
