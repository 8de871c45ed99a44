package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

// Upstream endpoints
const (
	endpointLogin         = "/login-super-admin"
	endpointProfile       = "/super-admin-profile"
	endpointLogout        = "/super-admin-logout"
	endpointProfileUpdate = "/super-admin-profile-update"
	endpointProfileImage  = "/super-admin-img-update"
)

const maxNesting = 4

// loginPayload is one level of the login data; the token may sit at any
// level of data.data nesting
type loginPayload struct {
	Token *string         `json:"token"`
	Role  *string         `json:"role"`
	Data  json.RawMessage `json:"data"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	req, err := jsonRequest(http.MethodPost, endpointLogin, endpointLogin, "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	env, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	raw := env.Data
	for depth := 0; depth < maxNesting && len(raw) > 0; depth++ {
		var p loginPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &MalformedResponseError{Endpoint: endpointLogin, Reason: "login data is not an object"}
		}
		if p.Token != nil && *p.Token != "" {
			result := &models.LoginResult{Token: *p.Token, Message: env.Message}
			if p.Role != nil {
				result.Role = *p.Role
			}
			return result, nil
		}
		raw = p.Data
	}
	return nil, &MalformedResponseError{Endpoint: endpointLogin, Reason: "token missing"}
}

type profilePayload struct {
	Name      *string         `json:"name"`
	Email     *string         `json:"email"`
	Role      *string         `json:"role"`
	Img       *string         `json:"img"`
	CreatedAt *time.Time      `json:"createdAt"`
	Data      json.RawMessage `json:"data"`
}

func (c *Client) Profile(ctx context.Context, token string) (*models.Profile, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: endpointProfile, endpoint: endpointProfile, token: token})
	if err != nil {
		return nil, err
	}

	raw := env.Data
	for depth := 0; depth < maxNesting && len(raw) > 0; depth++ {
		var p profilePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &MalformedResponseError{Endpoint: endpointProfile, Reason: "profile data is not an object"}
		}
		if p.Email != nil {
			profile := &models.Profile{Email: *p.Email}
			if p.Name != nil {
				profile.Name = *p.Name
			}
			if p.Role != nil {
				profile.Role = *p.Role
			}
			if p.Img != nil {
				profile.Img = *p.Img
			}
			if p.CreatedAt != nil {
				profile.CreatedAt = *p.CreatedAt
			}
			return profile, nil
		}
		raw = p.Data
	}
	return nil, &MalformedResponseError{Endpoint: endpointProfile, Reason: "profile email missing"}
}

func (c *Client) Logout(ctx context.Context, token string) (string, error) {
	return c.ack(ctx, request{method: http.MethodGet, path: endpointLogout, endpoint: endpointLogout, token: token})
}

func (c *Client) UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (string, error) {
	req, err := jsonRequest(http.MethodPut, endpointProfileUpdate, endpointProfileUpdate, token, upd)
	if err != nil {
		return "", err
	}
	return c.ack(ctx, req)
}

// UpdateProfileImage uploads the image in multipart field "image"
func (c *Client) UpdateProfileImage(ctx context.Context, token string, image *models.FileUpload) (string, error) {
	file := *image
	file.Field = "image"
	req, err := multipartRequest(http.MethodPut, endpointProfileImage, endpointProfileImage, token, nil, &file)
	if err != nil {
		return "", err
	}
	return c.ack(ctx, req)
}
