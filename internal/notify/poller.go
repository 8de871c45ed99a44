package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/metrics"
)

// DefaultPollInterval is used for non-positive intervals
const DefaultPollInterval = 30 * time.Second

// Poller fetches the unread list every interval and on Refresh, publishing
// each new summary. Fetch failures are logged and reported to onError; the
// next tick tries again.
type Poller struct {
	inbox    *Inbox
	interval time.Duration
	publish  func(Summary)
	onError  func(error)
	logger   *slog.Logger

	refresh chan struct{}

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

type PollerOption func(*Poller)

// WithErrorHandler is called after every failed fetch
func WithErrorHandler(fn func(error)) PollerOption {
	return func(p *Poller) {
		if fn != nil {
			p.onError = fn
		}
	}
}

func WithLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) { p.logger = l }
}

func NewPoller(inbox *Inbox, interval time.Duration, publish func(Summary), opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p := &Poller{
		inbox:    inbox,
		interval: interval,
		publish:  publish,
		onError:  func(error) {},
		logger:   slog.Default(),
		refresh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start fetches once and then polls in the background. It returns
// immediately; calling it twice or after Stop is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.cancel != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	go p.run(ctx)
}

// Refresh requests a fetch ahead of the next tick. Requests made while one
// is pending collapse into it.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Stop ends polling and waits for an in-flight fetch. Nothing is published
// after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	cancel := p.cancel
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		case <-p.refresh:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	summary, err := p.inbox.FetchUnread(ctx)
	if ctx.Err() != nil {
		return
	}
	metrics.RecordNotificationPoll(err)
	if err != nil {
		p.logger.Warn("notification poll failed", slog.Any("error", err))
		p.onError(err)
		return
	}
	p.publish(summary)
}
