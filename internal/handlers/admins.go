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

// AdminServiceInterface defines the interface for admin business logic
type AdminServiceInterface interface {
	Create(ctx context.Context, token string, actor services.Actor, in models.AdminInput) (string, error)
}

// AdminHandler handles the create-admin form
type AdminHandler struct {
	service AdminServiceInterface
	uploads *upload.Processor
	respond *Responder
}

func NewAdminHandler(service AdminServiceInterface, uploads *upload.Processor, respond *Responder) *AdminHandler {
	return &AdminHandler{service: service, uploads: uploads, respond: respond}
}

// AdminForm is the text part of the create-admin form
type AdminForm struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Designation     string `json:"designation" validate:"required"`
	SchoolID        string `json:"schoolId" validate:"required"`
}

// Create adds a school admin with an optional image
// @Accept multipart/form-data
// @Router /api/admins [post]
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.uploads, 1); err != nil {
		h.respond.Error(w, r, err, "Invalid form")
		return
	}

	form := AdminForm{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
		Designation:     r.FormValue("designation"),
		SchoolID:        r.FormValue("schoolId"),
	}
	if fields := ValidateRequest(form); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	image, err := formFile(r, h.uploads, "image")
	if err != nil && !errors.Is(err, errNoFile) {
		h.respond.Error(w, r, err, "")
		return
	}

	msg, err := h.service.Create(r.Context(), session.TokenFromContext(r.Context()), h.respond.Actor(r), models.AdminInput{
		Name:        form.Name,
		Email:       form.Email,
		Password:    form.Password,
		Designation: form.Designation,
		SchoolID:    form.SchoolID,
		Image:       image,
	})
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, msg, nil)
}
