package services

import (
	"context"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

// MockAuthBackend implements AuthBackend for testing
type MockAuthBackend struct {
	LoginFunc  func(ctx context.Context, email, password string) (*models.LoginResult, error)
	LogoutFunc func(ctx context.Context, token string) (string, error)
}

func (m *MockAuthBackend) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthBackend) Logout(ctx context.Context, token string) (string, error) {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return "", nil
}

// MockSchoolBackend implements SchoolBackend for testing
type MockSchoolBackend struct {
	ListSchoolsFunc        func(ctx context.Context, token string) ([]models.School, error)
	CreateSchoolFunc       func(ctx context.Context, token string, in models.SchoolInput) (string, error)
	UpdateSchoolFunc       func(ctx context.Context, token, id string, in models.SchoolInput) (string, error)
	DeleteSchoolFunc       func(ctx context.Context, token, id string) (string, error)
	ToggleSchoolStatusFunc func(ctx context.Context, token, id string) (string, error)
}

func (m *MockSchoolBackend) ListSchools(ctx context.Context, token string) ([]models.School, error) {
	if m.ListSchoolsFunc != nil {
		return m.ListSchoolsFunc(ctx, token)
	}
	return []models.School{}, nil
}

func (m *MockSchoolBackend) CreateSchool(ctx context.Context, token string, in models.SchoolInput) (string, error) {
	if m.CreateSchoolFunc != nil {
		return m.CreateSchoolFunc(ctx, token, in)
	}
	return "", nil
}

func (m *MockSchoolBackend) UpdateSchool(ctx context.Context, token, id string, in models.SchoolInput) (string, error) {
	if m.UpdateSchoolFunc != nil {
		return m.UpdateSchoolFunc(ctx, token, id, in)
	}
	return "", nil
}

func (m *MockSchoolBackend) DeleteSchool(ctx context.Context, token, id string) (string, error) {
	if m.DeleteSchoolFunc != nil {
		return m.DeleteSchoolFunc(ctx, token, id)
	}
	return "", nil
}

func (m *MockSchoolBackend) ToggleSchoolStatus(ctx context.Context, token, id string) (string, error) {
	if m.ToggleSchoolStatusFunc != nil {
		return m.ToggleSchoolStatusFunc(ctx, token, id)
	}
	return "", nil
}

// MockAdminBackend implements AdminBackend for testing
type MockAdminBackend struct {
	CreateAdminFunc func(ctx context.Context, token string, in models.AdminInput) (string, error)
}

func (m *MockAdminBackend) CreateAdmin(ctx context.Context, token string, in models.AdminInput) (string, error) {
	if m.CreateAdminFunc != nil {
		return m.CreateAdminFunc(ctx, token, in)
	}
	return "", nil
}

// MockProfileBackend implements ProfileBackend for testing
type MockProfileBackend struct {
	ProfileFunc            func(ctx context.Context, token string) (*models.Profile, error)
	UpdateProfileFunc      func(ctx context.Context, token string, upd models.ProfileUpdate) (string, error)
	UpdateProfileImageFunc func(ctx context.Context, token string, image *models.FileUpload) (string, error)
}

func (m *MockProfileBackend) Profile(ctx context.Context, token string) (*models.Profile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockProfileBackend) UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (string, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, token, upd)
	}
	return "", nil
}

func (m *MockProfileBackend) UpdateProfileImage(ctx context.Context, token string, image *models.FileUpload) (string, error) {
	if m.UpdateProfileImageFunc != nil {
		return m.UpdateProfileImageFunc(ctx, token, image)
	}
	return "", nil
}

// MockNotificationSource implements notify.Source for testing
type MockNotificationSource struct {
	UnreadFunc      func(ctx context.Context) ([]models.Notification, error)
	AllFunc         func(ctx context.Context) ([]models.Notification, error)
	MarkReadFunc    func(ctx context.Context, id string) (string, error)
	MarkAllReadFunc func(ctx context.Context) (string, error)
}

func (m *MockNotificationSource) Unread(ctx context.Context) ([]models.Notification, error) {
	if m.UnreadFunc != nil {
		return m.UnreadFunc(ctx)
	}
	return []models.Notification{}, nil
}

func (m *MockNotificationSource) All(ctx context.Context) ([]models.Notification, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx)
	}
	return []models.Notification{}, nil
}

func (m *MockNotificationSource) MarkRead(ctx context.Context, id string) (string, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, id)
	}
	return "", nil
}

func (m *MockNotificationSource) MarkAllRead(ctx context.Context) (string, error) {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx)
	}
	return "", nil
}
