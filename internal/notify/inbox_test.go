package notify_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/BradenHooton/superadmin-console/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	UnreadFunc      func(ctx context.Context) ([]models.Notification, error)
	AllFunc         func(ctx context.Context) ([]models.Notification, error)
	MarkReadFunc    func(ctx context.Context, id string) (string, error)
	MarkAllReadFunc func(ctx context.Context) (string, error)
}

func (m *MockSource) Unread(ctx context.Context) ([]models.Notification, error) {
	return m.UnreadFunc(ctx)
}

func (m *MockSource) All(ctx context.Context) ([]models.Notification, error) {
	return m.AllFunc(ctx)
}

func (m *MockSource) MarkRead(ctx context.Context, id string) (string, error) {
	return m.MarkReadFunc(ctx, id)
}

func (m *MockSource) MarkAllRead(ctx context.Context) (string, error) {
	return m.MarkAllReadFunc(ctx)
}

// fakeBackend keeps notification state the way the upstream does
type fakeBackend struct {
	mu    sync.Mutex
	items []models.Notification
	calls atomic.Int32
}

func (f *fakeBackend) source() *MockSource {
	return &MockSource{
		UnreadFunc: func(ctx context.Context) ([]models.Notification, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			var out []models.Notification
			for _, n := range f.items {
				if !n.IsRead {
					out = append(out, n)
				}
			}
			return out, nil
		},
		AllFunc: func(ctx context.Context) ([]models.Notification, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			return append([]models.Notification(nil), f.items...), nil
		},
		MarkReadFunc: func(ctx context.Context, id string) (string, error) {
			f.calls.Add(1)
			f.mu.Lock()
			defer f.mu.Unlock()
			for i := range f.items {
				if f.items[i].ID == id {
					f.items[i].IsRead = true
					return "", nil
				}
			}
			return "", errors.New("not found")
		},
		MarkAllReadFunc: func(ctx context.Context) (string, error) {
			f.calls.Add(1)
			f.mu.Lock()
			defer f.mu.Unlock()
			for i := range f.items {
				f.items[i].IsRead = true
			}
			return "Done", nil
		},
	}
}

func twoUnread() *fakeBackend {
	return &fakeBackend{items: []models.Notification{
		{ID: "1", Title: "New school"},
		{ID: "2", Title: "New admin"},
	}}
}

func TestMarkRead_ThenFetchUnread(t *testing.T) {
	fb := twoUnread()
	inbox := notify.NewInbox(fb.source())
	ctx := context.Background()

	s, err := inbox.FetchUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Unread)
	assert.Equal(t, "2", s.Badge)

	msg, s, err := inbox.MarkRead(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, notify.MessageMarkedRead, msg)

	s, err = inbox.FetchUnread(ctx)
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "2", s.Items[0].ID)
	assert.False(t, s.Items[0].IsRead)
	assert.Equal(t, "1", inbox.Badge())
}

func TestMarkRead_FailureLeavesCache(t *testing.T) {
	fb := twoUnread()
	src := fb.source()
	src.MarkReadFunc = func(ctx context.Context, id string) (string, error) {
		return "", errors.New("backend down")
	}
	inbox := notify.NewInbox(src)
	ctx := context.Background()
	before, err := inbox.FetchUnread(ctx)
	require.NoError(t, err)

	_, after, err := inbox.MarkRead(ctx, "1")

	assert.Error(t, err)
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Items, inbox.Summary().Items, "no optimistic flip")
}

func TestMarkAllRead_Declined(t *testing.T) {
	fb := twoUnread()
	inbox := notify.NewInbox(fb.source())
	ctx := context.Background()
	before, _ := inbox.FetchUnread(ctx)

	_, after, err := inbox.MarkAllRead(ctx, notify.Confirmed(false))

	assert.ErrorIs(t, err, models.ErrConfirmationDeclined)
	assert.Zero(t, fb.calls.Load(), "declined confirmation makes no call")
	assert.Equal(t, before, after)
}

func TestMarkAllRead_Confirmed(t *testing.T) {
	fb := twoUnread()
	inbox := notify.NewInbox(fb.source())
	ctx := context.Background()
	_, _ = inbox.FetchAll(ctx)

	var prompt string
	msg, s, err := inbox.MarkAllRead(ctx, notify.ConfirmFunc(func(ctx context.Context, p string) (bool, error) {
		prompt = p
		return true, nil
	}))

	require.NoError(t, err)
	assert.Equal(t, notify.ConfirmReadAll, prompt)
	assert.Equal(t, "Done", msg, "server message wins over the fallback")
	assert.Equal(t, notify.ModeAll, s.Mode, "refetch keeps the loaded list")
	assert.Len(t, s.Items, 2)
	assert.Zero(t, s.Unread)
	assert.Equal(t, "", s.Badge)
}

func TestFetch_FailureKeepsPreviousSummary(t *testing.T) {
	fb := twoUnread()
	src := fb.source()
	inbox := notify.NewInbox(src)
	ctx := context.Background()
	_, _ = inbox.FetchUnread(ctx)

	src.UnreadFunc = func(ctx context.Context) ([]models.Notification, error) {
		return nil, errors.New("timeout")
	}
	s, err := inbox.FetchUnread(ctx)

	assert.Error(t, err)
	assert.Len(t, s.Items, 2)
}

func TestBadge(t *testing.T) {
	assert.Equal(t, "", notify.Badge(0))
	assert.Equal(t, "1", notify.Badge(1))
	assert.Equal(t, "99", notify.Badge(99))
	assert.Equal(t, "99+", notify.Badge(100))
}

func TestPoller_PublishesAndStops(t *testing.T) {
	fb := twoUnread()
	inbox := notify.NewInbox(fb.source())

	var mu sync.Mutex
	var published []notify.Summary
	p := notify.NewPoller(inbox, 5*time.Millisecond, func(s notify.Summary) {
		mu.Lock()
		published = append(published, s)
		mu.Unlock()
	})

	p.Start(context.Background())
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(published) >= 3
	}, time.Second, time.Millisecond)

	p.Stop()
	p.Stop()

	mu.Lock()
	n := len(published)
	assert.Equal(t, "2", published[0].Badge)
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, n, len(published))
}

func TestPoller_Refresh(t *testing.T) {
	fb := twoUnread()
	inbox := notify.NewInbox(fb.source())

	updates := make(chan notify.Summary, 4)
	p := notify.NewPoller(inbox, time.Hour, func(s notify.Summary) { updates <- s })
	p.Start(context.Background())
	defer p.Stop()

	first := <-updates
	assert.Equal(t, 2, first.Unread)

	_, _, err := inbox.MarkRead(context.Background(), "1")
	require.NoError(t, err)
	p.Refresh()

	select {
	case s := <-updates:
		assert.Equal(t, 1, s.Unread)
	case <-time.After(time.Second):
		t.Fatal("refresh did not trigger a fetch")
	}
}

func TestPoller_ReportsErrors(t *testing.T) {
	src := &MockSource{UnreadFunc: func(ctx context.Context) ([]models.Notification, error) {
		return nil, errors.New("backend down")
	}}
	errs := make(chan error, 1)
	p := notify.NewPoller(notify.NewInbox(src), time.Hour, func(notify.Summary) {
		t.Error("published on failure")
	}, notify.WithErrorHandler(func(err error) {
		select {
		case errs <- err:
		default:
		}
	}))

	p.Start(context.Background())
	defer p.Stop()

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("error handler not called")
	}
}
