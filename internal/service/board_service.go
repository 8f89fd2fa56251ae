package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	"github.com/TomRob62/GSSDA-Web-App/pkg/config"
	"github.com/TomRob62/GSSDA-Web-App/pkg/jobs"
)

// Broadcaster pushes board events to every display watching a room.
type Broadcaster interface {
	BroadcastToRoom(roomID int64, event string, payload interface{})
}

type roomSource interface {
	FindByID(ctx context.Context, id int64) (*models.Room, error)
	ListDescriptions(ctx context.Context, roomID int64) ([]models.RoomDescription, error)
}

type callerSource interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.CallerCuer, error)
}

// BoardSession drives one room's board: it owns the rotation engine and the
// refresh controller, reloads the schedule and catalog on the adaptive
// cadence, and pushes the resulting state to connected displays.
type BoardSession struct {
	roomID int64
	cfg    *config.Config

	engine     *RotationEngine
	controller *RefreshController
	schedule   *ScheduleCache
	catalog    *CatalogService
	rooms      roomSource
	callers    callerSource
	broadcast  Broadcaster

	mu            sync.Mutex
	lastSeq       uint64
	lastCatalogAt time.Time
	scheduleDown  bool
	cancel        context.CancelFunc
	wg            sync.WaitGroup

	now     func() time.Time
	logger  *zap.Logger
	metrics *MetricsService
}

// NewBoardSession wires a session for one room. Start must be called before
// the session does anything.
func NewBoardSession(roomID int64, cfg *config.Config, schedule *ScheduleCache, catalog *CatalogService, rooms roomSource, callers callerSource, broadcast Broadcaster, clock func() time.Time, metrics *MetricsService, logger *zap.Logger) *BoardSession {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &BoardSession{
		roomID:    roomID,
		cfg:       cfg,
		schedule:  schedule,
		catalog:   catalog,
		rooms:     rooms,
		callers:   callers,
		broadcast: broadcast,
		now:       clock,
		logger:    logger.With(zap.Int64("room_id", roomID)),
		metrics:   metrics,
	}
	s.engine = NewRotationEngine(cfg.Rotation, s.renderProfile, clock, metrics, s.logger)
	s.controller = NewRefreshController(cfg.Refresh, s.refreshCycle, metrics, s.logger)
	return s
}

// Start launches the rotation ticker and the refresh loop.
func (s *BoardSession) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionStarted()
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.controller.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Rotation.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.engine.Tick()
			}
		}
	}()

	s.logger.Info("board session started")
}

// Stop tears the session down and waits for its goroutines to exit.
func (s *BoardSession) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	if s.metrics != nil {
		s.metrics.SessionStopped()
	}
	s.logger.Info("board session stopped")
}

// Options returns the session's current rotation options.
func (s *BoardSession) Options() models.RotationOptions {
	return s.engine.Options()
}

// SetOptions applies new rotation options and kicks an immediate refresh so
// the polling interval adapts straight away.
func (s *BoardSession) SetOptions(ctx context.Context, opts models.RotationOptions) {
	s.engine.SetOptions(opts)
	s.broadcast.BroadcastToRoom(s.roomID, "options_changed", opts)
	s.controller.RunCycle(ctx)
}

// ForceRefresh runs one refresh cycle outside the regular cadence. The shared
// catalog cache entry is dropped and the catalog clock reset so the cycle
// reloads profiles too, not just the schedule.
func (s *BoardSession) ForceRefresh(ctx context.Context) {
	s.catalog.Invalidate(ctx)
	s.mu.Lock()
	s.lastCatalogAt = time.Time{}
	s.mu.Unlock()
	s.controller.RunCycle(ctx)
}

// Snapshot assembles the full board read model, fetching the schedule first
// when no snapshot exists yet.
func (s *BoardSession) Snapshot(ctx context.Context) (*models.BoardSnapshot, error) {
	snap, err := s.schedule.Get(ctx, s.roomID, false)
	if err != nil {
		snap, err = s.schedule.Get(ctx, s.roomID, true)
		if err != nil {
			return nil, err
		}
	}
	return s.buildSnapshot(ctx, snap, s.now())
}

// renderProfile is the engine's render sink: every visible profile change is
// pushed to the room's displays exactly once.
func (s *BoardSession) renderProfile(profile *models.Profile) {
	s.broadcast.BroadcastToRoom(s.roomID, "profile_changed", profile)
}

// refreshCycle is one pass of the adaptive refresh loop.
func (s *BoardSession) refreshCycle(ctx context.Context) (lockedShowing, rotationEnabled bool) {
	now := s.now()

	snap, err := s.loadSchedule(ctx)
	if err != nil {
		s.markScheduleDown(true)
		// without a trustworthy schedule there is no active event either
		s.engine.UpdateActiveContext(models.ActiveContext{})
		s.broadcast.BroadcastToRoom(s.roomID, "schedule_error", map[string]string{"error": "schedule unavailable"})
		// a failing schedule source is polled at the standard cadence, not
		// hammered on the fast interval
		return false, false
	}
	s.markScheduleDown(false)

	s.mu.Lock()
	if snap.Seq < s.lastSeq {
		s.mu.Unlock()
		return s.engine.Locked(), s.engine.Options().RotationEnabled()
	}
	s.lastSeq = snap.Seq
	needCatalog := s.lastCatalogAt.IsZero() || now.Sub(s.lastCatalogAt) >= s.cfg.Catalog.RefreshInterval
	s.mu.Unlock()

	if needCatalog {
		if cat, err := s.catalog.Load(ctx, false); err != nil {
			s.logger.Warn("catalog load failed", zap.Error(err))
		} else {
			s.engine.SetProfiles(cat.CallerProfiles, cat.AdvertisementProfiles)
			s.mu.Lock()
			s.lastCatalogAt = now
			s.mu.Unlock()
		}
	}

	if active := ResolveActiveEvent(snap.Events, now); active != nil {
		s.engine.UpdateActiveContext(models.ActiveContext{
			EventID:   active.ID,
			CallerIDs: active.CallerIDs,
			StartsAt:  active.Start,
			EndsAt:    active.End,
		})
	} else {
		s.engine.UpdateActiveContext(models.ActiveContext{})
	}

	if board, err := s.buildSnapshot(ctx, snap, now); err != nil {
		s.logger.Warn("board snapshot assembly failed", zap.Error(err))
	} else {
		s.broadcast.BroadcastToRoom(s.roomID, "board", board)
	}

	return s.engine.Locked(), s.engine.Options().RotationEnabled()
}

// loadSchedule fetches the room schedule with retries. The first failure is
// logged; the remaining attempts stay quiet to keep one outage from flooding
// the log.
func (s *BoardSession) loadSchedule(ctx context.Context) (*models.ScheduleSnapshot, error) {
	attempts := s.cfg.Refresh.MaxLoadAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		snap, err := s.schedule.Get(ctx, s.roomID, true)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		if i == 0 {
			s.logger.Error("schedule load failed, retrying", zap.Int("attempts", attempts), zap.Error(err))
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (s *BoardSession) markScheduleDown(down bool) {
	s.mu.Lock()
	changed := s.scheduleDown != down
	s.scheduleDown = down
	s.mu.Unlock()
	if changed && !down {
		s.logger.Info("schedule load recovered")
	}
}

func (s *BoardSession) buildSnapshot(ctx context.Context, snap *models.ScheduleSnapshot, now time.Time) (*models.BoardSnapshot, error) {
	room, err := s.rooms.FindByID(ctx, s.roomID)
	if err != nil {
		return nil, err
	}

	visible := VisibleEvents(snap.Events, now)
	currentMC, nextMC := SplitAssignments(snap.MCs, now)

	names, err := s.lookupCallerNames(ctx, visible, snap.MCs)
	if err != nil {
		s.logger.Warn("caller name lookup failed", zap.Error(err))
		names = map[int64]string{}
	}

	var activeEventID int64
	if active := ResolveActiveEvent(snap.Events, now); active != nil {
		activeEventID = active.ID
	}

	boardEvents := make([]models.BoardEvent, 0, len(visible))
	for _, ev := range visible {
		be := models.BoardEvent{Event: ev, DanceTypes: ev.DanceTypeList(), Active: ev.ID == activeEventID}
		for _, id := range ev.CallerIDs {
			if name, ok := names[id]; ok {
				be.CallerNames = append(be.CallerNames, name)
			}
		}
		boardEvents = append(boardEvents, be)
	}

	board := &models.BoardSnapshot{
		RoomID:         snap.RoomID,
		RoomNumber:     room.RoomNumber,
		VisibleEvents:  boardEvents,
		NoEvents:       len(boardEvents) == 0,
		ActiveEventID:  activeEventID,
		CurrentProfile: s.engine.CurrentProfile(),
		Options:        s.engine.Options(),
		Days:           EventDays(snap.Events),
		FetchedAt:      snap.FetchedAt,
	}
	if currentMC != nil {
		board.CurrentMC = &models.BoardMC{MCAssignment: *currentMC, CallerName: names[currentMC.CallerCuerID]}
	}
	if nextMC != nil {
		board.NextMC = &models.BoardMC{MCAssignment: *nextMC, CallerName: names[nextMC.CallerCuerID]}
	}

	if descriptions, err := s.rooms.ListDescriptions(ctx, s.roomID); err == nil {
		for _, d := range descriptions {
			if d.ActiveAt(now) {
				board.RoomDescription = d.Description
				break
			}
		}
	}

	return board, nil
}

func (s *BoardSession) lookupCallerNames(ctx context.Context, events []models.Event, mcs []models.MCAssignment) (map[int64]string, error) {
	var ids []int64
	for _, ev := range events {
		ids = append(ids, ev.CallerIDs...)
	}
	for _, mc := range mcs {
		ids = append(ids, mc.CallerCuerID)
	}
	ids = models.NormalizeCallerIDs(ids)
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	callers, err := s.callers.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(callers))
	for id, caller := range callers {
		names[id] = caller.DisplayName()
	}
	return names, nil
}

// BoardRegistry keeps at most one running session per room and starts or
// stops them as displays connect and disconnect.
type BoardRegistry struct {
	cfg      *config.Config
	schedule *ScheduleCache
	catalog  *CatalogService
	rooms    roomSource
	callers  callerSource
	hub      Broadcaster

	baseCtx context.Context
	now     func() time.Time
	logger  *zap.Logger
	metrics *MetricsService

	mu       sync.Mutex
	sessions map[int64]*BoardSession

	refreshes *jobs.Queue
}

// NewBoardRegistry constructs the registry. Sessions it starts are children
// of baseCtx and die with it.
func NewBoardRegistry(baseCtx context.Context, cfg *config.Config, schedule *ScheduleCache, catalog *CatalogService, rooms roomSource, callers callerSource, hub Broadcaster, clock func() time.Time, metrics *MetricsService, logger *zap.Logger) *BoardRegistry {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &BoardRegistry{
		cfg:      cfg,
		schedule: schedule,
		catalog:  catalog,
		rooms:    rooms,
		callers:  callers,
		hub:      hub,
		baseCtx:  baseCtx,
		now:      clock,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[int64]*BoardSession),
	}
	r.refreshes = jobs.NewQueue("board-refresh", r.handleRefreshJob, jobs.QueueConfig{
		Workers:    2,
		BufferSize: 16,
		MaxRetries: 1,
		Logger:     logger,
	})
	r.refreshes.Start(baseCtx)
	return r
}

// Ensure returns the room's session, starting one if none is running. The
// room must exist: a session polls until the room is deselected, so starting
// one for an arbitrary id would leak goroutines and DB load.
func (r *BoardRegistry) Ensure(ctx context.Context, roomID int64) (*BoardSession, error) {
	r.mu.Lock()
	if s, ok := r.sessions[roomID]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	if _, err := r.rooms.FindByID(ctx, roomID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[roomID]; ok {
		return s, nil
	}
	s := NewBoardSession(roomID, r.cfg, r.schedule, r.catalog, r.rooms, r.callers, r.hub, r.now, r.metrics, r.logger)
	r.sessions[roomID] = s
	s.Start(r.baseCtx)
	return s, nil
}

// Session returns the room's session when one is running.
func (r *BoardRegistry) Session(roomID int64) (*BoardSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[roomID]
	return s, ok
}

// Stop removes and stops the room's session. The schedule snapshot is dropped
// with it so a late in-flight fetch cannot resurface on reselect.
func (r *BoardRegistry) Stop(roomID int64) {
	r.mu.Lock()
	s, ok := r.sessions[roomID]
	delete(r.sessions, roomID)
	r.mu.Unlock()
	if !ok {
		return
	}
	s.Stop()
	r.schedule.Clear(roomID)
}

// StopAll stops the refresh queue and every running session, used on shutdown.
func (r *BoardRegistry) StopAll() {
	r.refreshes.Stop()
	r.mu.Lock()
	sessions := make([]*BoardSession, 0, len(r.sessions))
	ids := make([]int64, 0, len(r.sessions))
	for id, s := range r.sessions {
		sessions = append(sessions, s)
		ids = append(ids, id)
	}
	r.sessions = make(map[int64]*BoardSession)
	r.mu.Unlock()
	for i, s := range sessions {
		s.Stop()
		r.schedule.Clear(ids[i])
	}
}

// HandleWatch reacts to display connect/disconnect counts from the hub.
func (r *BoardRegistry) HandleWatch(roomID int64, count int) {
	if count > 0 {
		if _, err := r.Ensure(r.baseCtx, roomID); err != nil {
			r.logger.Warn("watch for unknown room ignored", zap.Int64("room_id", roomID), zap.Error(err))
		}
		return
	}
	r.Stop(roomID)
}

// ForceRefresh satisfies the realtime board control surface. Requests go
// through a bounded worker queue; when it is full a refresh is already
// pending and the request is dropped.
func (r *BoardRegistry) ForceRefresh(roomID int64) {
	r.refreshes.TryEnqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "force_refresh",
		Payload: roomID,
	})
}

func (r *BoardRegistry) handleRefreshJob(ctx context.Context, job jobs.Job) error {
	roomID, ok := job.Payload.(int64)
	if !ok {
		return nil
	}
	if s, running := r.Session(roomID); running {
		s.ForceRefresh(ctx)
	}
	return nil
}
