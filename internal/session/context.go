package session

import "context"

type contextKey string

const (
	deviceIDKey contextKey = "device_id"
	tokenKey    contextKey = "session_token"
)

// WithDeviceID stores the browser's device id in ctx
func WithDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceIDKey, id)
}

// DeviceIDFromContext returns the device id, or "" outside the device middleware
func DeviceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(deviceIDKey).(string)
	return id
}

// WithToken stores the session token in ctx
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the token placed by RequireSession
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
