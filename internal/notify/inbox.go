// Package notify keeps a read-through cache of the super admin's
// notifications and polls the backend for the unread count.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

// Source is the backend side of the inbox
type Source interface {
	Unread(ctx context.Context) ([]models.Notification, error)
	All(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) (string, error)
	MarkAllRead(ctx context.Context) (string, error)
}

// Mode records which list the cache holds
type Mode string

const (
	ModeUnread Mode = "unread"
	ModeAll    Mode = "all"
)

// Fallback toast messages
const (
	MessageMarkedRead    = "Notification marked as read"
	MessageAllMarkedRead = "All notifications marked as read"
)

// Summary is the cached result of the last fetch
type Summary struct {
	Items     []models.Notification `json:"items"`
	Unread    int                   `json:"unread"`
	Badge     string                `json:"badge"`
	Mode      Mode                  `json:"mode"`
	FetchedAt time.Time             `json:"fetchedAt"`
}

// Inbox holds the cached summary. Mutations refetch the list the cache was
// last loaded with; a failed mutation leaves the cache untouched.
type Inbox struct {
	src Source
	now func() time.Time

	mu      sync.Mutex
	summary Summary
}

func NewInbox(src Source) *Inbox {
	return NewInboxMode(src, ModeUnread)
}

// NewInboxMode starts an empty inbox that refetches mode after mutations
func NewInboxMode(src Source, mode Mode) *Inbox {
	return &Inbox{src: src, now: time.Now, summary: Summary{Items: []models.Notification{}, Mode: mode}}
}

// ParseMode maps a query value onto a Mode, defaulting to ModeUnread
func ParseMode(s string) Mode {
	if Mode(s) == ModeAll {
		return ModeAll
	}
	return ModeUnread
}

// Summary returns a copy of the cached summary
func (in *Inbox) Summary() Summary {
	in.mu.Lock()
	defer in.mu.Unlock()
	s := in.summary
	s.Items = append([]models.Notification(nil), in.summary.Items...)
	return s
}

// Badge renders the unread count of the last fetch
func (in *Inbox) Badge() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.summary.Badge
}

// FetchUnread replaces the cache with the unread list
func (in *Inbox) FetchUnread(ctx context.Context) (Summary, error) {
	return in.fetch(ctx, ModeUnread)
}

// FetchAll replaces the cache with the full list
func (in *Inbox) FetchAll(ctx context.Context) (Summary, error) {
	return in.fetch(ctx, ModeAll)
}

// MarkRead marks one notification read and refetches. The returned message
// is the server's, or MessageMarkedRead.
func (in *Inbox) MarkRead(ctx context.Context, id string) (string, Summary, error) {
	msg, err := in.src.MarkRead(ctx, id)
	if err != nil {
		return "", in.Summary(), fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return in.afterMutation(ctx, msg, MessageMarkedRead)
}

// MarkAllRead asks confirmer first. A declined confirmation returns
// ErrConfirmationDeclined without calling the backend.
func (in *Inbox) MarkAllRead(ctx context.Context, confirmer Confirmer) (string, Summary, error) {
	ok, err := confirmer.Confirm(ctx, ConfirmReadAll)
	if err != nil {
		return "", in.Summary(), fmt.Errorf("confirm read all: %w", err)
	}
	if !ok {
		return "", in.Summary(), models.ErrConfirmationDeclined
	}

	msg, err := in.src.MarkAllRead(ctx)
	if err != nil {
		return "", in.Summary(), fmt.Errorf("mark all notifications read: %w", err)
	}
	return in.afterMutation(ctx, msg, MessageAllMarkedRead)
}

func (in *Inbox) afterMutation(ctx context.Context, msg, fallback string) (string, Summary, error) {
	if msg == "" {
		msg = fallback
	}

	in.mu.Lock()
	mode := in.summary.Mode
	in.mu.Unlock()

	summary, err := in.fetch(ctx, mode)
	return msg, summary, err
}

func (in *Inbox) fetch(ctx context.Context, mode Mode) (Summary, error) {
	var (
		items []models.Notification
		err   error
	)
	if mode == ModeAll {
		items, err = in.src.All(ctx)
	} else {
		items, err = in.src.Unread(ctx)
	}
	if err != nil {
		return in.Summary(), fmt.Errorf("fetch %s notifications: %w", mode, err)
	}
	if items == nil {
		items = []models.Notification{}
	}

	unread := CountUnread(items)
	s := Summary{
		Items:     items,
		Unread:    unread,
		Badge:     Badge(unread),
		Mode:      mode,
		FetchedAt: in.now(),
	}

	in.mu.Lock()
	in.summary = s
	in.mu.Unlock()

	return in.Summary(), nil
}
