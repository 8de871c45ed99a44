// Package throttle counts failed console logins per device and locks the
// login form for a fixed window once the limit is reached.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/storage"
)

// Device storage keys
const (
	KeyAttempts  = "loginAttempts"
	KeyLockUntil = "loginLockUntil"
)

// Config holds the lockout policy
type Config struct {
	MaxAttempts  int
	LockDuration time.Duration
	Retention    time.Duration // ttl of the persisted keys; must exceed LockDuration
}

// DefaultConfig is three attempts and a ten-minute lock
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		LockDuration: 10 * time.Minute,
		Retention:    30 * 24 * time.Hour,
	}
}

// Throttle is the login throttle of one device. All methods are safe for
// concurrent use; storage operations of one instance are serialized.
type Throttle struct {
	store  storage.Store
	cfg    Config
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a Throttle over a device-scoped store
func New(store storage.Store, cfg Config, logger *slog.Logger) *Throttle {
	if cfg.Retention < cfg.LockDuration {
		cfg.Retention = cfg.LockDuration
	}
	return &Throttle{store: store, cfg: cfg, logger: logger}
}

// Config returns the lockout policy in effect
func (t *Throttle) Config() Config {
	return t.cfg
}

// State returns the persisted attempt state. Absent or corrupted entries read
// as zero state. A lock that has elapsed is cleared as part of the read.
func (t *Throttle) State(ctx context.Context, now time.Time) models.AttemptState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx, now)
}

// RecordFailure counts one failed login. The lock is set when the count
// reaches MaxAttempts. While locked the state is left unchanged and
// ErrLoginLocked is returned.
func (t *Throttle) RecordFailure(ctx context.Context, now time.Time) (models.AttemptState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.load(ctx, now)
	if state.IsLocked(now) {
		return state, models.ErrLoginLocked
	}

	state.Count++
	if state.Count >= t.cfg.MaxAttempts {
		// persisted as epoch-ms; rounded up so a reload never shortens the lock
		until := now.Add(t.cfg.LockDuration).Add(time.Millisecond - 1).Truncate(time.Millisecond)
		state.LockUntil = &until
	}

	if err := t.save(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

// RecordSuccess clears the count and any lock
func (t *Throttle) RecordSuccess(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clear(ctx)
}

// IsLocked is true iff a lock is set and now is before it
func (t *Throttle) IsLocked(ctx context.Context, now time.Time) bool {
	return t.State(ctx, now).IsLocked(now)
}

// Remaining is the time left on the lock, clamped to zero
func (t *Throttle) Remaining(ctx context.Context, now time.Time) time.Duration {
	return t.State(ctx, now).Remaining(now)
}

// Tick is one countdown step: it self-clears an elapsed lock and returns the
// resulting view
func (t *Throttle) Tick(ctx context.Context, now time.Time) View {
	return t.View(ctx, now)
}

// View renders the login form state at now
func (t *Throttle) View(ctx context.Context, now time.Time) View {
	return NewView(t.State(ctx, now), t.cfg.MaxAttempts, now)
}

func (t *Throttle) load(ctx context.Context, now time.Time) models.AttemptState {
	var state models.AttemptState

	if raw, ok := t.read(ctx, KeyAttempts); ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			state.Count = n
		} else {
			t.logger.Warn("ignoring corrupted login attempt counter", slog.String("value", raw))
		}
	}

	if raw, ok := t.read(ctx, KeyLockUntil); ok {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
			until := time.UnixMilli(ms).UTC()
			state.LockUntil = &until
		} else {
			t.logger.Warn("ignoring corrupted login lock timestamp", slog.String("value", raw))
		}
	}

	if state.LockUntil != nil && !state.IsLocked(now) {
		if err := t.clear(ctx); err != nil {
			t.logger.Error("failed to clear elapsed login lock", slog.Any("error", err))
		}
		return models.AttemptState{}
	}

	return state
}

func (t *Throttle) read(ctx context.Context, key string) (string, bool) {
	raw, err := t.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.logger.Warn("login throttle storage unavailable", slog.String("key", key), slog.Any("error", err))
		}
		return "", false
	}
	return raw, true
}

func (t *Throttle) save(ctx context.Context, state models.AttemptState) error {
	if err := t.store.Set(ctx, KeyAttempts, strconv.Itoa(state.Count), t.cfg.Retention); err != nil {
		return fmt.Errorf("persist login attempts: %w", err)
	}
	if state.LockUntil != nil {
		ms := strconv.FormatInt(state.LockUntil.UnixMilli(), 10)
		if err := t.store.Set(ctx, KeyLockUntil, ms, t.cfg.Retention); err != nil {
			return fmt.Errorf("persist login lock: %w", err)
		}
	}
	return nil
}

func (t *Throttle) clear(ctx context.Context) error {
	if err := t.store.Delete(ctx, KeyAttempts, KeyLockUntil); err != nil {
		return fmt.Errorf("clear login throttle: %w", err)
	}
	return nil
}
