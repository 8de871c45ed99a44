package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Login and session state errors
	ErrLoginLocked    = errors.New("login is temporarily locked")
	ErrSessionExpired = errors.New("session expired")

	// Backend and flow errors
	ErrMalformedResponse    = errors.New("malformed backend response")
	ErrConfirmationDeclined = errors.New("confirmation declined")
	ErrUnsupportedMedia     = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
)
