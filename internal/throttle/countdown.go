package throttle

import (
	"context"
	"sync"
	"time"
)

// Countdown republishes the throttle view every second while the device is
// locked. It publishes a final unlocked view and ends itself once the lock
// elapses.
type Countdown struct {
	th       *Throttle
	publish  func(View)
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

type CountdownOption func(*Countdown)

// WithTickInterval overrides the one-second tick
func WithTickInterval(d time.Duration) CountdownOption {
	return func(c *Countdown) { c.interval = d }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) CountdownOption {
	return func(c *Countdown) { c.now = now }
}

func NewCountdown(th *Throttle, publish func(View), opts ...CountdownOption) *Countdown {
	c := &Countdown{
		th:       th,
		publish:  publish,
		interval: time.Second,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the ticker and returns immediately. The current view is
// published before the first tick. Start after Stop is a no-op.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.cancel != nil {
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)
}

func (c *Countdown) run(ctx context.Context) {
	defer close(c.done)

	if !c.step(ctx) {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.step(ctx) {
				return
			}
		}
	}
}

// step publishes one view and reports whether the lock is still active
func (c *Countdown) step(ctx context.Context) bool {
	view := c.th.Tick(ctx, c.now())
	if ctx.Err() != nil {
		return false
	}
	c.publish(view)
	return view.Locked
}

// Stop cancels the ticker and waits for it to exit. No view is published
// after Stop returns. Stop is idempotent.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopped = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-c.done
}

// Done is closed when the countdown has ended, either by unlock or Stop
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
