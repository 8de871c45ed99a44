package throttle_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/storage"
	"github.com/BradenHooton/superadmin-console/internal/throttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newThrottle(t *testing.T) (*throttle.Throttle, storage.Store) {
	t.Helper()
	store := storage.DeviceStore(storage.NewMemoryStore(), "dev-1")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return throttle.New(store, throttle.DefaultConfig(), logger), store
}

func TestRecordFailure_LocksExactlyOnThirdFailure(t *testing.T) {
	th, _ := newThrottle(t)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		state, err := th.RecordFailure(ctx, t0)
		require.NoError(t, err)
		assert.Equal(t, i, state.Count)
		assert.False(t, th.IsLocked(ctx, t0), "locked after %d failures", i)
	}

	state, err := th.RecordFailure(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Count)
	require.NotNil(t, state.LockUntil)
	assert.True(t, t0.Add(10*time.Minute).Equal(*state.LockUntil))
	assert.True(t, th.IsLocked(ctx, t0))
}

func TestRecordFailure_WhileLocked(t *testing.T) {
	th, _ := newThrottle(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := th.RecordFailure(ctx, t0)
		require.NoError(t, err)
	}

	state, err := th.RecordFailure(ctx, t0.Add(time.Minute))

	assert.ErrorIs(t, err, models.ErrLoginLocked)
	assert.Equal(t, 3, state.Count)
	assert.True(t, t0.Add(10*time.Minute).Equal(*state.LockUntil), "lock is never extended")
}

func TestRecordFailure_SubMillisecondClock(t *testing.T) {
	th, _ := newThrottle(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 123456789, time.UTC)

	var state models.AttemptState
	for i := 0; i < 3; i++ {
		var err error
		state, err = th.RecordFailure(ctx, now)
		require.NoError(t, err)
	}
	require.NotNil(t, state.LockUntil)

	reloaded := th.State(ctx, now)
	require.NotNil(t, reloaded.LockUntil)
	assert.True(t, state.LockUntil.Equal(*reloaded.LockUntil), "stored lock matches the returned one")
	assert.False(t, reloaded.LockUntil.Before(now.Add(10*time.Minute)))

	view := th.View(ctx, now)
	assert.Equal(t, "10:00", view.Countdown)
	assert.Equal(t, int64(600000), view.RemainingMs)
}

func TestRecordSuccess_Resets(t *testing.T) {
	th, _ := newThrottle(t)
	ctx := context.Background()
	_, _ = th.RecordFailure(ctx, t0)
	_, _ = th.RecordFailure(ctx, t0)

	require.NoError(t, th.RecordSuccess(ctx))

	assert.Equal(t, models.AttemptState{}, th.State(ctx, t0))

	// The count starts over after a success
	_, _ = th.RecordFailure(ctx, t0)
	_, _ = th.RecordFailure(ctx, t0)
	assert.False(t, th.IsLocked(ctx, t0))
}

func TestRemaining_MonotonicAndAutoUnlock(t *testing.T) {
	th, store := newThrottle(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = th.RecordFailure(ctx, t0)
	}

	prev := th.Remaining(ctx, t0)
	assert.Equal(t, 10*time.Minute, prev)
	for s := 1; s < 600; s += 37 {
		r := th.Remaining(ctx, t0.Add(time.Duration(s)*time.Second))
		assert.LessOrEqual(t, r, prev)
		prev = r
	}

	view := th.Tick(ctx, t0.Add(10*time.Minute))

	assert.False(t, view.Locked)
	assert.Equal(t, 0, view.Attempts)
	_, err := store.Get(ctx, throttle.KeyAttempts)
	assert.ErrorIs(t, err, storage.ErrNotFound, "count cleared with the lock")
	_, err = store.Get(ctx, throttle.KeyLockUntil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestState_ElapsedLockClearedOnRead(t *testing.T) {
	th, store := newThrottle(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, throttle.KeyAttempts, "3", 0))
	require.NoError(t, store.Set(ctx, throttle.KeyLockUntil, strconv.FormatInt(t0.UnixMilli(), 10), 0))

	// A fresh failure after the lock elapsed starts from one
	state, err := th.RecordFailure(ctx, t0.Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, 1, state.Count)
	assert.Nil(t, state.LockUntil)
}

func TestState_CorruptedStorage(t *testing.T) {
	tests := []struct {
		name      string
		attempts  string
		lockUntil string
	}{
		{"non-numeric count", "three", ""},
		{"negative count", "-4", ""},
		{"garbage lock", "2", "tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, store := newThrottle(t)
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, throttle.KeyAttempts, tt.attempts, 0))
			if tt.lockUntil != "" {
				require.NoError(t, store.Set(ctx, throttle.KeyLockUntil, tt.lockUntil, 0))
			}

			state := th.State(ctx, t0)

			assert.False(t, state.IsLocked(t0))
			assert.Nil(t, state.LockUntil)
		})
	}
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("unavailable")
}
func (failingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("unavailable")
}
func (failingStore) Delete(ctx context.Context, keys ...string) error {
	return errors.New("unavailable")
}

func TestState_StorageAbsentIsUnlocked(t *testing.T) {
	th := throttle.New(failingStore{}, throttle.DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	assert.Equal(t, models.AttemptState{}, th.State(ctx, t0))
	assert.False(t, th.IsLocked(ctx, t0))

	_, err := th.RecordFailure(ctx, t0)
	assert.Error(t, err)
}

func TestView_LockedScenario(t *testing.T) {
	th, _ := newThrottle(t)
	ctx := context.Background()

	view := th.View(ctx, t0)
	assert.Equal(t, throttle.LabelLogin, view.Label)
	assert.Equal(t, 3, view.AttemptsLeft)
	assert.False(t, view.SubmitDisabled)

	for i := 0; i < 3; i++ {
		_, _ = th.RecordFailure(ctx, t0)
	}

	view = th.View(ctx, t0)
	assert.True(t, view.Locked)
	assert.Equal(t, "Locked ⛔", view.Label)
	assert.True(t, view.SubmitDisabled)
	assert.Equal(t, "10:00", view.Countdown)
	assert.Equal(t, int64(600000), view.RemainingMs)
	assert.Equal(t, 0, view.AttemptsLeft)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{600000 * time.Millisecond, "10:00"},
		{599999 * time.Millisecond, "9:59"},
		{61 * time.Second, "1:01"},
		{9 * time.Second, "0:09"},
		{0, "0:00"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, throttle.FormatRemaining(tt.in), tt.in.String())
	}
}

func TestSharedDeviceStorage_LastWriteWins(t *testing.T) {
	base := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tabA := throttle.New(storage.DeviceStore(base, "dev-1"), throttle.DefaultConfig(), logger)
	tabB := throttle.New(storage.DeviceStore(base, "dev-1"), throttle.DefaultConfig(), logger)
	other := throttle.New(storage.DeviceStore(base, "dev-2"), throttle.DefaultConfig(), logger)
	ctx := context.Background()

	_, _ = tabA.RecordFailure(ctx, t0)
	_, _ = tabB.RecordFailure(ctx, t0)
	_, _ = tabA.RecordFailure(ctx, t0)

	assert.True(t, tabB.IsLocked(ctx, t0), "tabs of one browser observe the same lock")
	assert.False(t, other.IsLocked(ctx, t0))
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCountdown_EndsAfterUnlock(t *testing.T) {
	th, _ := newThrottle(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = th.RecordFailure(ctx, t0)
	}

	clk := &clock{now: t0}
	var mu sync.Mutex
	var views []throttle.View
	cd := throttle.NewCountdown(th, func(v throttle.View) {
		mu.Lock()
		views = append(views, v)
		mu.Unlock()
		clk.Advance(4 * time.Minute)
	}, throttle.WithTickInterval(time.Millisecond), throttle.WithClock(clk.Now))

	cd.Start(ctx)

	select {
	case <-cd.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not end after unlock")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, views, 4)
	assert.Equal(t, "10:00", views[0].Countdown)
	assert.Equal(t, "6:00", views[1].Countdown)
	assert.Equal(t, "2:00", views[2].Countdown)
	assert.False(t, views[3].Locked)
	assert.Equal(t, throttle.LabelLogin, views[3].Label)

	cd.Stop()
}

func TestCountdown_StopHaltsPublishing(t *testing.T) {
	th, _ := newThrottle(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = th.RecordFailure(ctx, t0)
	}

	var mu sync.Mutex
	count := 0
	cd := throttle.NewCountdown(th, func(v throttle.View) {
		mu.Lock()
		count++
		mu.Unlock()
	}, throttle.WithTickInterval(time.Millisecond), throttle.WithClock(func() time.Time { return t0 }))

	cd.Start(ctx)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 2
	}, time.Second, time.Millisecond)

	cd.Stop()
	cd.Stop()

	mu.Lock()
	after := count
	mu.Unlock()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, after, count)
}
