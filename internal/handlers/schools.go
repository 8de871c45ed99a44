package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/services"
	"github.com/BradenHooton/superadmin-console/internal/session"
	"github.com/BradenHooton/superadmin-console/internal/upload"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
	"github.com/go-chi/chi/v5"
)

// SchoolServiceInterface defines the interface for school business logic
type SchoolServiceInterface interface {
	List(ctx context.Context, token string, q models.SchoolQuery) (*models.SchoolPage, error)
	Create(ctx context.Context, token string, actor services.Actor, in models.SchoolInput) (string, error)
	Update(ctx context.Context, token string, actor services.Actor, id string, in models.SchoolInput) (string, error)
	Delete(ctx context.Context, token string, actor services.Actor, id string) (string, error)
	ToggleStatus(ctx context.Context, token string, actor services.Actor, id string) (string, error)
}

// SchoolHandler handles the school table and form
type SchoolHandler struct {
	service SchoolServiceInterface
	uploads *upload.Processor
	respond *Responder
}

func NewSchoolHandler(service SchoolServiceInterface, uploads *upload.Processor, respond *Responder) *SchoolHandler {
	return &SchoolHandler{service: service, uploads: uploads, respond: respond}
}

// SchoolForm is the text part of the school form
type SchoolForm struct {
	SchoolName    string `json:"schoolName" validate:"required"`
	SchoolEmail   string `json:"schoolEmail" validate:"required,email"`
	ContactNumber string `json:"contactNumber" validate:"required"`
}

// List returns one page of schools
// @Param search query string false "Matches name, email or contact number"
// @Param page query int false "1-based page"
// @Param pageSize query int false "Rows per page"
// @Router /api/schools [get]
func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	q := models.SchoolQuery{
		Search:   r.URL.Query().Get("search"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "pageSize", services.DefaultPageSize),
	}

	page, err := h.service.List(r.Context(), session.TokenFromContext(r.Context()), q)
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, "", page)
}

// Create adds a school from a multipart form with a required schoolLogo
// @Accept multipart/form-data
// @Router /api/schools [post]
func (h *SchoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readForm(w, r, true)
	if !ok {
		return
	}

	msg, err := h.service.Create(r.Context(), session.TokenFromContext(r.Context()), h.respond.Actor(r), in)
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, msg, nil)
}

// Update edits a school; schoolLogo is optional
// @Accept multipart/form-data
// @Router /api/schools/{id} [put]
func (h *SchoolHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readForm(w, r, false)
	if !ok {
		return
	}

	msg, err := h.service.Update(r.Context(), session.TokenFromContext(r.Context()), h.respond.Actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, msg, nil)
}

// @Router /api/schools/{id} [delete]
func (h *SchoolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.Delete(r.Context(), session.TokenFromContext(r.Context()), h.respond.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, msg, nil)
}

// @Router /api/schools/{id}/status [put]
func (h *SchoolHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.ToggleStatus(r.Context(), session.TokenFromContext(r.Context()), h.respond.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, r, err, "")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, msg, nil)
}

func (h *SchoolHandler) readForm(w http.ResponseWriter, r *http.Request, logoRequired bool) (models.SchoolInput, bool) {
	if err := parseMultipart(w, r, h.uploads, 1); err != nil {
		h.respond.Error(w, r, err, "Invalid form")
		return models.SchoolInput{}, false
	}

	form := SchoolForm{
		SchoolName:    r.FormValue("schoolName"),
		SchoolEmail:   r.FormValue("schoolEmail"),
		ContactNumber: r.FormValue("contactNumber"),
	}
	fields := ValidateRequest(form)

	logo, err := formFile(r, h.uploads, "schoolLogo")
	switch {
	case errors.Is(err, errNoFile):
		if logoRequired {
			if fields == nil {
				fields = map[string]string{}
			}
			fields["schoolLogo"] = "this field is required"
		}
	case err != nil:
		h.respond.Error(w, r, err, "")
		return models.SchoolInput{}, false
	}

	if fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return models.SchoolInput{}, false
	}

	return models.SchoolInput{
		SchoolName:    form.SchoolName,
		SchoolEmail:   form.SchoolEmail,
		ContactNumber: form.ContactNumber,
		Logo:          logo,
	}, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return fallback
}
