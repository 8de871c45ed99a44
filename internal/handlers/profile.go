package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/services"
	"github.com/BradenHooton/superadmin-console/internal/session"
	"github.com/BradenHooton/superadmin-console/internal/upload"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
)

// ProfileServiceInterface defines the interface for profile business logic
type ProfileServiceInterface interface {
	Get(ctx context.Context, token string) (*models.Profile, error)
	Update(ctx context.Context, token string, actor services.Actor, upd models.ProfileUpdate) (string, error)
	UpdateImage(ctx context.Context, token string, actor services.Actor, image *models.FileUpload) (string, error)
}

// ProfileHandler handles the super admin's own profile
type ProfileHandler struct {
	service ProfileServiceInterface
	uploads *upload.Processor
	respond *Responder
}

func NewProfileHandler(service ProfileServiceInterface, uploads *upload.Processor, respond *Responder) *ProfileHandler {
	return &ProfileHandler{service: service, uploads: uploads, respond: respond}
}

// UpdateProfileRequest represents the request body for a profile update
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
}

// @Router /api/profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), session.TokenFromContext(r.Context()))
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, "", p)
}

// @Accept json
// @Router /api/profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	msg, err := h.service.Update(r.Context(), session.TokenFromContext(r.Context()), h.respond.Actor(r),
		models.ProfileUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		h.respond.Error(w, r, err, services.MessageUpdateFailed)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, msg, nil)
}

// UpdateImage replaces the profile image from the multipart field "image"
// @Accept multipart/form-data
// @Router /api/profile/image [put]
func (h *ProfileHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.uploads, 1); err != nil {
		h.respond.Error(w, r, err, "Invalid form")
		return
	}

	image, err := formFile(r, h.uploads, "image")
	if errors.Is(err, errNoFile) {
		pkghttp.WriteValidationError(w, map[string]string{"image": "this field is required"})
		return
	}
	if err != nil {
		h.respond.Error(w, r, err, services.MessageImageFailed)
		return
	}

	msg, err := h.service.UpdateImage(r.Context(), session.TokenFromContext(r.Context()), h.respond.Actor(r), image)
	if err != nil {
		h.respond.Error(w, r, err, services.MessageImageFailed)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, msg, nil)
}
