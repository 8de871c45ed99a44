package backend

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

type formField struct {
	name  string
	value string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartRequest encodes text fields and file parts into a request body.
// Nil files are skipped.
func multipartRequest(method, path, endpoint, token string, fields []formField, files ...*models.FileUpload) (request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return request{}, fmt.Errorf("encode field %s: %w", f.name, err)
		}
	}

	for _, file := range files {
		if file == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Filename)))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("encode file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return request{}, fmt.Errorf("encode file %s: %w", file.Field, err)
		}
	}

	if err := mw.Close(); err != nil {
		return request{}, fmt.Errorf("close multipart body: %w", err)
	}

	return request{
		method:      method,
		path:        path,
		endpoint:    endpoint,
		token:       token,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, nil
}
