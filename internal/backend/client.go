// Package backend is the typed client of the school-management REST API.
// Every response is an envelope {status, message, data}; non-2xx responses
// become *APIError carrying the server message.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/metrics"
	"github.com/BradenHooton/superadmin-console/internal/models"
)

const maxResponseBytes = 4 << 20

// Client calls the backend on behalf of a signed-in super admin
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *slog.Logger
	tokenCookie string
}

// Option configures Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client. The default has no timeout; callers
// bound requests through the context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTokenCookie names the cookie the token is also sent in
func WithTokenCookie(name string) Option {
	return func(c *Client) { c.tokenCookie = name }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{},
		logger:      slog.Default(),
		tokenCookie: "superAdminToken",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx backend response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s returned %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("backend %s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Is maps status codes onto the model sentinels
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return target == models.ErrBadRequest
	case http.StatusUnauthorized:
		return target == models.ErrUnauthorized
	case http.StatusForbidden:
		return target == models.ErrForbidden
	case http.StatusNotFound:
		return target == models.ErrNotFound
	}
	return false
}

// IsClientError reports a 4xx response
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// MalformedResponseError is a 2xx body that does not have the expected shape
type MalformedResponseError struct {
	Endpoint string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("backend %s: %s: %s", e.Endpoint, models.ErrMalformedResponse, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return models.ErrMalformedResponse
}

// MessageOf returns the backend message carried by err, or fallback
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type envelope struct {
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type request struct {
	method      string
	path        string // request path with ids filled in
	endpoint    string // path template used for metrics and errors
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path, endpoint, token string, payload any) (request, error) {
	req := request{method: method, path: path, endpoint: endpoint, token: token}
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		req.body = bytes.NewReader(buf)
		req.contentType = "application/json"
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, r request) (*envelope, error) {
	httpReq, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", r.endpoint, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.token)
		httpReq.AddCookie(&http.Cookie{Name: c.tokenCookie, Value: r.token})
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.ObserveBackend(r.endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("call %s: %w", r.endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	metrics.ObserveBackend(r.endpoint, resp.StatusCode, elapsed)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", r.endpoint, err)
	}

	c.logger.Debug("backend call",
		slog.String("method", r.method),
		slog.String("endpoint", r.endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", elapsed),
	)

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: r.endpoint}
		if decodeErr == nil {
			apiErr.Message = env.Message
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, &MalformedResponseError{Endpoint: r.endpoint, Reason: "body is not a JSON envelope"}
	}
	return &env, nil
}

// ack performs a call whose only meaningful output is the server message
func (c *Client) ack(ctx context.Context, r request) (string, error) {
	env, err := c.do(ctx, r)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// decodeList accepts null, a bare array or an object nesting the array
// under "data"
func decodeList[T any](endpoint string, raw json.RawMessage) ([]T, error) {
	for depth := 0; depth < 3; depth++ {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return []T{}, nil
		}

		switch trimmed[0] {
		case '[':
			var items []T
			if err := json.Unmarshal(trimmed, &items); err != nil {
				return nil, &MalformedResponseError{Endpoint: endpoint, Reason: err.Error()}
			}
			return items, nil
		case '{':
			var nested struct {
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(trimmed, &nested); err != nil || nested.Data == nil {
				return nil, &MalformedResponseError{Endpoint: endpoint, Reason: "object without a data list"}
			}
			raw = nested.Data
		default:
			return nil, &MalformedResponseError{Endpoint: endpoint, Reason: "data is not a list"}
		}
	}
	return nil, &MalformedResponseError{Endpoint: endpoint, Reason: "list nested too deeply"}
}
