package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dm/cmm-go/internal/model"
)

// Coordinator schedules poll cycles. It owns the polling interval, which can
// be changed while running, and lets callers force an out-of-band cycle and
// wait for its result.
type Coordinator struct {
	fetcher Fetcher
	health  HealthChecker
	target  string
	log     zerolog.Logger

	cycleMu sync.Mutex // one cycle at a time

	mu          sync.RWMutex
	interval    time.Duration
	latest      model.PollResult
	hasLatest   bool
	subscribers []func(model.PollResult)

	intervalChanged chan struct{}
}

// NewCoordinator returns a Coordinator polling f every interval. When h is
// non-nil every cycle also runs a health check against target.
func NewCoordinator(f Fetcher, h HealthChecker, target string, interval time.Duration, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		fetcher:         f,
		health:          h,
		target:          target,
		interval:        interval,
		log:             log,
		intervalChanged: make(chan struct{}, 1),
	}
}

// Interval returns the current polling interval.
func (c *Coordinator) Interval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interval
}

// SetInterval changes the polling interval. A running loop re-arms its timer
// with the new value immediately.
func (c *Coordinator) SetInterval(d time.Duration) {
	c.mu.Lock()
	old := c.interval
	c.interval = d
	c.mu.Unlock()

	if old != d {
		c.log.Debug().Dur("from", old).Dur("to", d).Msg("Polling interval changed")
	}
	select {
	case c.intervalChanged <- struct{}{}:
	default:
	}
}

// OnUpdate registers fn to be called after every cycle. Callbacks run on the
// goroutine that ran the cycle and must not block.
func (c *Coordinator) OnUpdate(fn func(model.PollResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// RequestRefresh runs a cycle now and returns its fetch outcome.
func (c *Coordinator) RequestRefresh(ctx context.Context) (*model.Snapshot, error) {
	res := c.cycle(ctx)
	return res.Snapshot, res.Err
}

// LastUpdateSuccess reports whether the most recent cycle fetched data.
func (c *Coordinator) LastUpdateSuccess() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasLatest && c.latest.Success()
}

// Latest returns the most recent cycle result.
func (c *Coordinator) Latest() (model.PollResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest, c.hasLatest
}

// Run polls immediately and then once per interval until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	c.cycle(ctx)

	timer := time.NewTimer(c.Interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.intervalChanged:
			timer.Reset(c.Interval())
		case <-timer.C:
			c.cycle(ctx)
			timer.Reset(c.Interval())
		}
	}
}

func (c *Coordinator) cycle(ctx context.Context) model.PollResult {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	res := Poll(ctx, c.fetcher, c.health, c.target)
	if res.Err != nil {
		c.log.Warn().Err(res.Err).Str("reason", string(ReasonOf(res.Err))).Msg("Modem update failed")
	}

	c.mu.Lock()
	c.latest = res
	c.hasLatest = true
	subs := append(([]func(model.PollResult))(nil), c.subscribers...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(res)
	}
	return res
}
