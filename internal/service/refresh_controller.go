package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/TomRob62/GSSDA-Web-App/pkg/config"
)

// RefreshCycle runs one refresh pass and reports the state that drives the
// next polling interval: whether a locked profile is showing and whether
// rotation is enabled at all.
type RefreshCycle func(ctx context.Context) (lockedShowing, rotationEnabled bool)

// RefreshController runs the adaptive polling loop. It polls fast while
// rotation is enabled and no lock is showing, and falls back to the standard
// interval otherwise. A cycle that is still running when the next tick fires
// is skipped, not queued.
type RefreshController struct {
	standard      time.Duration
	fast          time.Duration
	skipThreshold int

	cycle RefreshCycle

	mu       sync.Mutex
	interval time.Duration
	restart  chan struct{}

	inFlight int32
	skips    int32

	logger  *zap.Logger
	metrics *MetricsService
}

// NewRefreshController constructs a controller starting at the standard
// interval.
func NewRefreshController(cfg config.RefreshConfig, cycle RefreshCycle, metrics *MetricsService, logger *zap.Logger) *RefreshController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshController{
		standard:      cfg.StandardInterval,
		fast:          cfg.FastInterval,
		skipThreshold: cfg.SkipWarnThreshold,
		cycle:         cycle,
		interval:      cfg.StandardInterval,
		restart:       make(chan struct{}, 1),
		logger:        logger,
		metrics:       metrics,
	}
}

// Run executes an immediate first cycle, then loops on the current interval
// until the context is cancelled. Interval changes take effect by restarting
// the wait, so switching from 60s to 15s never waits out the old timer.
func (c *RefreshController) Run(ctx context.Context) {
	c.RunCycle(ctx)

	for {
		c.mu.Lock()
		interval := c.interval
		c.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-c.restart:
			timer.Stop()
		case <-timer.C:
			c.RunCycle(ctx)
		}
	}
}

// RunCycle executes one refresh pass unless the previous one is still in
// flight. Skipped cycles are counted; crossing the threshold logs a warning
// since a healthy cycle finishes well inside the fast interval.
func (c *RefreshController) RunCycle(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&c.inFlight, 0, 1) {
		skips := atomic.AddInt32(&c.skips, 1)
		if c.metrics != nil {
			c.metrics.RecordRefreshSkip()
		}
		if int(skips) > c.skipThreshold {
			c.logger.Warn("refresh cycle still in flight, skipping",
				zap.Int32("consecutive_skips", skips))
		}
		return
	}
	defer atomic.StoreInt32(&c.inFlight, 0)

	locked, rotating := c.cycle(ctx)
	atomic.StoreInt32(&c.skips, 0)
	if c.metrics != nil {
		c.metrics.RecordRefreshCycle()
	}

	next := c.standard
	if rotating && !locked {
		next = c.fast
	}
	c.setInterval(next)
}

// Interval reports the current polling interval.
func (c *RefreshController) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

func (c *RefreshController) setInterval(d time.Duration) {
	c.mu.Lock()
	if c.interval == d {
		c.mu.Unlock()
		return
	}
	c.interval = d
	c.mu.Unlock()

	select {
	case c.restart <- struct{}{}:
	default:
	}
}
