package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

const (
	endpointSchools      = "/all-school"
	endpointSchoolCreate = "/school-create"
	endpointSchoolUpdate = "/school-update/:id"
	endpointSchoolDelete = "/school-delete/:id"
	endpointSchoolStatus = "/school-status-update/:id"
)

func (c *Client) ListSchools(ctx context.Context, token string) ([]models.School, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: endpointSchools, endpoint: endpointSchools, token: token})
	if err != nil {
		return nil, err
	}
	return decodeList[models.School](endpointSchools, env.Data)
}

func (c *Client) CreateSchool(ctx context.Context, token string, in models.SchoolInput) (string, error) {
	req, err := schoolRequest(http.MethodPost, endpointSchoolCreate, endpointSchoolCreate, token, in)
	if err != nil {
		return "", err
	}
	return c.ack(ctx, req)
}

func (c *Client) UpdateSchool(ctx context.Context, token, id string, in models.SchoolInput) (string, error) {
	req, err := schoolRequest(http.MethodPut, "/school-update/"+url.PathEscape(id), endpointSchoolUpdate, token, in)
	if err != nil {
		return "", err
	}
	return c.ack(ctx, req)
}

func (c *Client) DeleteSchool(ctx context.Context, token, id string) (string, error) {
	return c.ack(ctx, request{
		method:   http.MethodDelete,
		path:     "/school-delete/" + url.PathEscape(id),
		endpoint: endpointSchoolDelete,
		token:    token,
	})
}

// ToggleSchoolStatus flips the active flag of a school
func (c *Client) ToggleSchoolStatus(ctx context.Context, token, id string) (string, error) {
	return c.ack(ctx, request{
		method:   http.MethodPut,
		path:     "/school-status-update/" + url.PathEscape(id),
		endpoint: endpointSchoolStatus,
		token:    token,
	})
}

func schoolRequest(method, path, endpoint, token string, in models.SchoolInput) (request, error) {
	fields := []formField{
		{"schoolName", in.SchoolName},
		{"schoolEmail", in.SchoolEmail},
		{"contactNumber", in.ContactNumber},
	}
	var logo *models.FileUpload
	if in.Logo != nil {
		f := *in.Logo
		f.Field = "schoolLogo"
		logo = &f
	}
	return multipartRequest(method, path, endpoint, token, fields, logo)
}
