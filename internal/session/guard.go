// Package session keeps console sessions: the token cookie, its per-device
// mirror and the guard that notices when it disappears.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultGuardInterval is used when StartGuard is given a non-positive interval
const DefaultGuardInterval = 60 * time.Second

type guardConfig struct {
	remover CookieRemover
	logger  *slog.Logger
	onCheck func(expired bool)
}

type GuardOption func(*guardConfig)

// WithRemover deletes the named cookies when the guard fires
func WithRemover(r CookieRemover) GuardOption {
	return func(c *guardConfig) { c.remover = r }
}

// WithGuardLogger logs read failures
func WithGuardLogger(l *slog.Logger) GuardOption {
	return func(c *guardConfig) { c.logger = l }
}

// WithCheckHook is called after every check
func WithCheckHook(fn func(expired bool)) GuardOption {
	return func(c *guardConfig) { c.onCheck = fn }
}

// StartGuard checks the named cookies immediately and then every interval.
// When all of them are absent, onExpired is invoked once for that check. A
// cookie that cannot be read counts as absent.
//
// The returned stop cancels the timer and waits for an in-flight check. It is
// idempotent, and onExpired is never invoked after it returns. onExpired runs
// on the guard goroutine and must not call stop.
func StartGuard(reader CookieReader, names []string, onExpired func(), interval time.Duration, opts ...GuardOption) (stop func()) {
	if interval <= 0 {
		interval = DefaultGuardInterval
	}
	cfg := guardConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	var stopped atomic.Bool

	check := func() {
		expired := allAbsent(ctx, reader, names, cfg.logger)
		if cfg.onCheck != nil {
			cfg.onCheck(expired)
		}
		if !expired {
			return
		}
		if cfg.remover != nil {
			if err := cfg.remover.Remove(ctx, names...); err != nil {
				cfg.logger.Warn("session guard failed to remove cookies", slog.Any("error", err))
			}
		}

		if !stopped.Load() {
			onExpired()
		}
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		check()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopped.Store(true)
			cancel()
			<-done
		})
	}
}

func allAbsent(ctx context.Context, reader CookieReader, names []string, logger *slog.Logger) bool {
	for _, name := range names {
		value, err := reader.Cookie(ctx, name)
		if err == nil && value != "" {
			return false
		}
		if err != nil && !errors.Is(err, ErrNoCookie) && ctx.Err() == nil {
			logger.Warn("session guard could not read cookie", slog.String("cookie", name), slog.Any("error", err))
		}
	}
	return true
}
