package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/storage"
)

const csrfKey = "csrf"

// CSRFTokenManager issues one CSRF token per device, kept in the device
// namespace so every console instance can validate it
type CSRFTokenManager struct {
	store    storage.Store
	tokenTTL time.Duration
}

func NewCSRFTokenManager(store storage.Store, tokenTTL time.Duration) *CSRFTokenManager {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &CSRFTokenManager{store: store, tokenTTL: tokenTTL}
}

func (m *CSRFTokenManager) TTL() time.Duration {
	return m.tokenTTL
}

// GenerateToken replaces the device token with a fresh random one
func (m *CSRFTokenManager) GenerateToken(ctx context.Context, deviceID string) (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(randomBytes)

	if err := storage.DeviceStore(m.store, deviceID).Set(ctx, csrfKey, token, m.tokenTTL); err != nil {
		return "", fmt.Errorf("store csrf token: %w", err)
	}
	return token, nil
}

// ValidateToken reports whether token is the live token of the device
func (m *CSRFTokenManager) ValidateToken(ctx context.Context, deviceID, token string) (bool, error) {
	if deviceID == "" || token == "" {
		return false, nil
	}
	stored, err := storage.DeviceStore(m.store, deviceID).Get(ctx, csrfKey)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load csrf token: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}
