package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/notify"
	"github.com/BradenHooton/superadmin-console/internal/services"
	"github.com/BradenHooton/superadmin-console/internal/session"
	"github.com/BradenHooton/superadmin-console/internal/storage"
	"github.com/BradenHooton/superadmin-console/internal/throttle"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
	"github.com/stretchr/testify/assert"
)

// TestEnv bundles the shared collaborators of the handlers under test
type TestEnv struct {
	Store     *storage.MemoryStore
	Sessions  *session.Manager
	Respond   *Responder
	Logger    *slog.Logger
	Audit     *pkglogger.AuditLogger
	Throttles ThrottleFactory
}

// NewTestEnv builds handlers' dependencies over an in-memory store
func NewTestEnv() *TestEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := pkglogger.NewAuditLogger(logger)
	store := storage.NewMemoryStore()
	sessions := session.NewManager(store, session.Config{
		CookieNames:   []string{"superAdminToken"},
		CookieTTL:     7 * 24 * time.Hour,
		GuardInterval: 20 * time.Millisecond,
	}, logger)

	return &TestEnv{
		Store:    store,
		Sessions: sessions,
		Respond:  NewResponder(sessions, pkghttp.NewProxies(nil), logger, audit),
		Logger:   logger,
		Audit:    audit,
		Throttles: func(deviceID string) *throttle.Throttle {
			return throttle.New(storage.DeviceStore(store, deviceID), throttle.DefaultConfig(), logger)
		},
	}
}

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewMultipartRequest creates a multipart request with text fields and files
func NewMultipartRequest(t *testing.T, method, url string, fields map[string]string, files map[string][]byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		if err != nil {
			t.Fatalf("failed to create file part %s: %v", field, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("failed to write file part %s: %v", field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// WithSession places a device id and token in the request context, as the
// device and session middleware do
func WithSession(req *http.Request, deviceID, token string) *http.Request {
	ctx := session.WithDeviceID(req.Context(), deviceID)
	if token != "" {
		ctx = session.WithToken(ctx, token)
	}
	return req.WithContext(ctx)
}

// DecodeResponse decodes the console envelope
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

// AssertErrorResponse checks the status and error code of a failed response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) map[string]any {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "body: %s", w.Body.String())
	resp := DecodeResponse(t, w)
	assert.Equal(t, false, resp["status"])
	assert.Equal(t, expectedError, resp["error"])
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc  func(ctx context.Context, th *throttle.Throttle, req services.LoginRequest) (*services.LoginOutcome, error)
	LogoutFunc func(ctx context.Context, token string, actor services.Actor) (string, error)
}

func (m *MockAuthService) Login(ctx context.Context, th *throttle.Throttle, req services.LoginRequest) (*services.LoginOutcome, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, th, req)
	}
	return &services.LoginOutcome{}, models.ErrUnauthorized
}

func (m *MockAuthService) Logout(ctx context.Context, token string, actor services.Actor) (string, error) {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token, actor)
	}
	return services.MessageLoggedOut, nil
}

// MockSchoolService implements SchoolServiceInterface for testing
type MockSchoolService struct {
	ListFunc         func(ctx context.Context, token string, q models.SchoolQuery) (*models.SchoolPage, error)
	CreateFunc       func(ctx context.Context, token string, actor services.Actor, in models.SchoolInput) (string, error)
	UpdateFunc       func(ctx context.Context, token string, actor services.Actor, id string, in models.SchoolInput) (string, error)
	DeleteFunc       func(ctx context.Context, token string, actor services.Actor, id string) (string, error)
	ToggleStatusFunc func(ctx context.Context, token string, actor services.Actor, id string) (string, error)
}

func (m *MockSchoolService) List(ctx context.Context, token string, q models.SchoolQuery) (*models.SchoolPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, token, q)
	}
	return &models.SchoolPage{Items: []models.School{}}, nil
}

func (m *MockSchoolService) Create(ctx context.Context, token string, actor services.Actor, in models.SchoolInput) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token, actor, in)
	}
	return services.MessageSchoolCreated, nil
}

func (m *MockSchoolService) Update(ctx context.Context, token string, actor services.Actor, id string, in models.SchoolInput) (string, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, token, actor, id, in)
	}
	return services.MessageSchoolUpdated, nil
}

func (m *MockSchoolService) Delete(ctx context.Context, token string, actor services.Actor, id string) (string, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, token, actor, id)
	}
	return services.MessageSchoolDeleted, nil
}

func (m *MockSchoolService) ToggleStatus(ctx context.Context, token string, actor services.Actor, id string) (string, error) {
	if m.ToggleStatusFunc != nil {
		return m.ToggleStatusFunc(ctx, token, actor, id)
	}
	return services.MessageSchoolStatus, nil
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	CreateFunc func(ctx context.Context, token string, actor services.Actor, in models.AdminInput) (string, error)
}

func (m *MockAdminService) Create(ctx context.Context, token string, actor services.Actor, in models.AdminInput) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token, actor, in)
	}
	return services.MessageAdminCreated, nil
}

// MockProfileService implements ProfileServiceInterface for testing
type MockProfileService struct {
	GetFunc         func(ctx context.Context, token string) (*models.Profile, error)
	UpdateFunc      func(ctx context.Context, token string, actor services.Actor, upd models.ProfileUpdate) (string, error)
	UpdateImageFunc func(ctx context.Context, token string, actor services.Actor, image *models.FileUpload) (string, error)
}

func (m *MockProfileService) Get(ctx context.Context, token string) (*models.Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockProfileService) Update(ctx context.Context, token string, actor services.Actor, upd models.ProfileUpdate) (string, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, token, actor, upd)
	}
	return services.MessageProfileUpdated, nil
}

func (m *MockProfileService) UpdateImage(ctx context.Context, token string, actor services.Actor, image *models.FileUpload) (string, error) {
	if m.UpdateImageFunc != nil {
		return m.UpdateImageFunc(ctx, token, actor, image)
	}
	return services.MessageImageUpdated, nil
}

// MockNotificationService implements NotificationServiceInterface for testing
type MockNotificationService struct {
	ListFunc        func(ctx context.Context, token string, mode notify.Mode) (notify.Summary, error)
	MarkReadFunc    func(ctx context.Context, token string, actor services.Actor, mode notify.Mode, id string) (string, notify.Summary, error)
	MarkAllReadFunc func(ctx context.Context, token string, actor services.Actor, mode notify.Mode, confirmer notify.Confirmer) (string, notify.Summary, error)
	WatchFunc       func(ctx context.Context, deviceID, token string, publish func(notify.Summary), onError func(error)) func()
}

func (m *MockNotificationService) List(ctx context.Context, token string, mode notify.Mode) (notify.Summary, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, token, mode)
	}
	return notify.Summary{Items: []models.Notification{}, Mode: mode}, nil
}

func (m *MockNotificationService) MarkRead(ctx context.Context, token string, actor services.Actor, mode notify.Mode, id string) (string, notify.Summary, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, token, actor, mode, id)
	}
	return notify.MessageMarkedRead, notify.Summary{Mode: mode}, nil
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, token string, actor services.Actor, mode notify.Mode, confirmer notify.Confirmer) (string, notify.Summary, error) {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, token, actor, mode, confirmer)
	}
	return notify.MessageAllMarkedRead, notify.Summary{Mode: mode}, nil
}

func (m *MockNotificationService) Watch(ctx context.Context, deviceID, token string, publish func(notify.Summary), onError func(error)) func() {
	if m.WatchFunc != nil {
		return m.WatchFunc(ctx, deviceID, token, publish, onError)
	}
	return func() {}
}
