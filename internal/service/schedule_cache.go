package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	appErrors "github.com/TomRob62/GSSDA-Web-App/pkg/errors"
)

type scheduleEventSource interface {
	ListByRoom(ctx context.Context, roomID int64) ([]models.Event, error)
}

type scheduleMCSource interface {
	ListByRoom(ctx context.Context, roomID int64) ([]models.MCAssignment, error)
}

// ScheduleCache keeps the last fetched schedule snapshot per room. Writes are
// last-write-wins per room key; each fetch carries a monotonically increasing
// sequence number so callers can discard responses that arrive after the room
// selection moved on.
type ScheduleCache struct {
	events scheduleEventSource
	mcs    scheduleMCSource

	mu        sync.RWMutex
	snapshots map[int64]*models.ScheduleSnapshot
	seq       uint64

	now     func() time.Time
	logger  *zap.Logger
	metrics *MetricsService
}

// NewScheduleCache constructs a schedule cache over the event and MC sources.
func NewScheduleCache(events scheduleEventSource, mcs scheduleMCSource, clock func() time.Time, metrics *MetricsService, logger *zap.Logger) *ScheduleCache {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleCache{
		events:    events,
		mcs:       mcs,
		snapshots: make(map[int64]*models.ScheduleSnapshot),
		now:       clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Get returns the room's snapshot. Without refresh it serves the cached copy
// or ErrNoSnapshot. With refresh it fetches events and MC assignments, stores
// the result under the room key, and returns it; the previous snapshot stays
// in place when the fetch fails.
func (c *ScheduleCache) Get(ctx context.Context, roomID int64, refresh bool) (*models.ScheduleSnapshot, error) {
	if !refresh {
		c.mu.RLock()
		snap, ok := c.snapshots[roomID]
		c.mu.RUnlock()
		if !ok {
			return nil, appErrors.ErrNoSnapshot
		}
		return snap, nil
	}

	seq := atomic.AddUint64(&c.seq, 1)

	events, err := c.events.ListByRoom(ctx, roomID)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordScheduleLoad(false)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrScheduleUnavailable.Code, appErrors.ErrScheduleUnavailable.Status, "failed to load events")
	}
	mcs, err := c.mcs.ListByRoom(ctx, roomID)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordScheduleLoad(false)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrScheduleUnavailable.Code, appErrors.ErrScheduleUnavailable.Status, "failed to load mc assignments")
	}

	snap := &models.ScheduleSnapshot{
		RoomID:    roomID,
		Events:    events,
		MCs:       mcs,
		FetchedAt: c.now(),
		Seq:       seq,
	}

	c.mu.Lock()
	c.snapshots[roomID] = snap
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordScheduleLoad(true)
	}
	return snap, nil
}

// Clear drops the cached snapshot for a room.
func (c *ScheduleCache) Clear(roomID int64) {
	c.mu.Lock()
	delete(c.snapshots, roomID)
	c.mu.Unlock()
}
