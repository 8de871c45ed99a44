package http

import (
	"encoding/json"
	"net/http"
)

// GenericErrorMessage is shown when neither the console nor the backend
// produced a message for a failure
const GenericErrorMessage = "Something went wrong"

// Response is the envelope for every console JSON response
type Response struct {
	Status  bool              `json:"status"`
	Error   string            `json:"error,omitempty"`   // Machine-readable error code
	Message string            `json:"message,omitempty"` // Human-readable message (toast text)
	Data    any               `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"` // Per-field validation messages
}

// WriteJSON writes a successful envelope
func WriteJSON(w http.ResponseWriter, statusCode int, message string, data any) {
	write(w, statusCode, Response{Status: true, Message: message, Data: data})
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorWithData(w, statusCode, errorCode, message, nil)
}

// WriteErrorWithData writes an error response carrying a data payload
func WriteErrorWithData(w http.ResponseWriter, statusCode int, errorCode, message string, data any) {
	if message == "" {
		message = GenericErrorMessage
	}
	write(w, statusCode, Response{Error: errorCode, Message: message, Data: data})
}

// WriteValidationError writes a 422 with per-field messages
func WriteValidationError(w http.ResponseWriter, fields map[string]string) {
	write(w, http.StatusUnprocessableEntity, Response{
		Error:   "validation_failed",
		Message: "Please correct the highlighted fields",
		Fields:  fields,
	})
}

func write(w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Encoding errors are not exposed to the client
	_ = json.NewEncoder(w).Encode(resp)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

func WriteRequestTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", message)
}

func WriteUnsupportedMedia(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", message)
}

// WriteLocked reports an active login lockout along with the throttle view
func WriteLocked(w http.ResponseWriter, message string, view any) {
	WriteErrorWithData(w, http.StatusLocked, "login_locked", message, view)
}

// WriteBadGateway surfaces a backend failure, keeping the backend message
func WriteBadGateway(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, "backend_error", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}

// SessionExpired is the data payload of a session_expired response
type SessionExpired struct {
	Redirect string `json:"redirect"`
}

// WriteSessionExpired tells the dashboard to navigate to the login page.
// No toast message is attached.
func WriteSessionExpired(w http.ResponseWriter, redirect string) {
	write(w, http.StatusUnauthorized, Response{
		Error: "session_expired",
		Data:  SessionExpired{Redirect: redirect},
	})
}
