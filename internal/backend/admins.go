package backend

import (
	"context"
	"net/http"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

const endpointAdminCreate = "/create-admin"

// CreateAdmin registers a school admin. The optional image goes in field "image".
func (c *Client) CreateAdmin(ctx context.Context, token string, in models.AdminInput) (string, error) {
	fields := []formField{
		{"name", in.Name},
		{"email", in.Email},
		{"password", in.Password},
		{"designation", in.Designation},
		{"schoolId", in.SchoolID},
	}
	var image *models.FileUpload
	if in.Image != nil {
		f := *in.Image
		f.Field = "image"
		image = &f
	}

	req, err := multipartRequest(http.MethodPost, endpointAdminCreate, endpointAdminCreate, token, fields, image)
	if err != nil {
		return "", err
	}
	return c.ack(ctx, req)
}
