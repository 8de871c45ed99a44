package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/upload"
)

// formOverhead is added to the file limit for the text fields of a form
const formOverhead = 1 << 20

var errNoFile = errors.New("file missing")

// parseMultipart bounds the body by limit files and reads the form
func parseMultipart(w http.ResponseWriter, r *http.Request, proc *upload.Processor, files int) error {
	if proc.MaxBytes() > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, proc.MaxBytes()*int64(files)+formOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("form body: %w", models.ErrPayloadTooLarge)
		}
		return fmt.Errorf("parse form: %w", models.ErrBadRequest)
	}
	return nil
}

// formFile processes the file part named field. errNoFile is returned when
// the part is absent.
func formFile(r *http.Request, proc *upload.Processor, field string) (*models.FileUpload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, errNoFile
	}
	return proc.FromMultipart(field, r.MultipartForm.File[field][0])
}
