package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	"github.com/TomRob62/GSSDA-Web-App/pkg/config"
)

// RenderFunc receives the profile to display, or nil for "no profile".
type RenderFunc func(profile *models.Profile)

type displaySource int

const (
	sourceNone displaySource = iota
	sourceQueue
	sourceLock
	sourceOverride
)

// RotationEngine decides which profile a room's board displays. It owns the
// alternating caller/advertisement queue, the lock on the active event's
// caller profile, and the time-boxed advertisement override that interrupts a
// long lock. All public methods are synchronous and run to completion under
// the engine mutex; timers live outside the engine and drive it via Tick.
type RotationEngine struct {
	mu sync.Mutex

	opts    models.RotationOptions
	catalog models.ProfileCatalog

	queue      []models.Profile
	queueIndex int

	current *models.Profile
	source  displaySource

	activeEventID   int64
	activeCallerIDs []int64

	lockedSince       time.Time
	lastAdShownAt     time.Time
	overrideRemaining int

	overrideAfter time.Duration
	overrideCount int

	now     func() time.Time
	render  RenderFunc
	logger  *zap.Logger
	metrics *MetricsService
}

// NewRotationEngine constructs an engine. A nil clock defaults to time.Now;
// tests inject a virtual one. The render callback may be nil until a display
// attaches.
func NewRotationEngine(cfg config.RotationConfig, render RenderFunc, clock func() time.Time, metrics *MetricsService, logger *zap.Logger) *RotationEngine {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	overrideAfter := cfg.AdOverrideAfter
	if overrideAfter <= 0 {
		overrideAfter = 5 * time.Minute
	}
	overrideCount := cfg.AdOverrideCount
	if overrideCount <= 0 {
		overrideCount = 2
	}
	return &RotationEngine{
		queueIndex:    -1,
		overrideAfter: overrideAfter,
		overrideCount: overrideCount,
		now:           clock,
		render:        render,
		logger:        logger,
		metrics:       metrics,
	}
}

// SetRender replaces the render callback.
func (e *RotationEngine) SetRender(render RenderFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.render = render
}

// Options returns the current toggle state.
func (e *RotationEngine) Options() models.RotationOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// CurrentProfile returns the profile currently displayed, or nil.
func (e *RotationEngine) CurrentProfile() *models.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Locked reports whether a caller profile for the active event is pinned.
func (e *RotationEngine) Locked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source == sourceLock
}

// HasProfileForCaller reports whether the catalog holds a caller profile for
// the given caller/cuer id.
func (e *RotationEngine) HasProfileForCaller(callerID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.FindByCaller(callerID) != nil
}

// SetProfiles replaces the catalog wholesale. The displayed profile is looked
// up by id in the new catalog: found, it is re-rendered in place so content
// edits show up; gone, the engine falls back to the queue or to nothing. It
// never keeps displaying a profile that vanished from the catalog.
func (e *RotationEngine) SetProfiles(callerProfiles, advertisementProfiles []models.Profile) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.catalog = models.ProfileCatalog{
		CallerProfiles:        callerProfiles,
		AdvertisementProfiles: advertisementProfiles,
		LoadedAt:              e.now(),
	}
	e.rebuildQueue()

	if e.current != nil {
		if refreshed := e.catalog.FindByID(e.current.ID); refreshed != nil {
			e.current = refreshed
			e.renderCurrent()
		} else {
			switch e.source {
			case sourceLock, sourceOverride:
				e.overrideRemaining = 0
				e.leaveLock()
			default:
				e.showNone()
			}
		}
	}

	if e.overrideRemaining == 0 && e.source != sourceOverride {
		e.evaluateLock()
	}
}

// SetOptions toggles which content classes participate and whether the active
// event locks its caller's profile.
func (e *RotationEngine) SetOptions(opts models.RotationOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts = opts
	e.rebuildQueue()

	if e.overrideRemaining > 0 && !e.queueHasAdvertisement() {
		e.overrideRemaining = 0
	}
	if e.overrideRemaining == 0 {
		e.evaluateLock()
	}
}

// UpdateActiveContext informs the engine of the event currently airing (empty
// caller ids when none). Lock evaluation is deferred while an advertisement
// override is in flight.
func (e *RotationEngine) UpdateActiveContext(ctx models.ActiveContext) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.activeEventID = ctx.EventID
	e.activeCallerIDs = models.NormalizeCallerIDs(ctx.CallerIDs)

	if e.overrideRemaining > 0 || e.source == sourceOverride {
		return
	}
	e.evaluateLock()
}

// Tick advances the rotation one step: the override countdown first, then the
// override trigger check while locked, then the normal queue advance.
func (e *RotationEngine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.RecordRotationTick()
	}

	if e.overrideRemaining > 0 {
		e.showNextAdvertisement()
		return
	}
	if e.source == sourceOverride {
		// Override played out; fall back into lock (or the queue).
		e.evaluateLock()
		return
	}
	if e.source == sourceLock {
		if e.shouldTriggerOverride() {
			e.overrideRemaining = e.overrideCount
			if e.metrics != nil {
				e.metrics.RecordAdOverride()
			}
			e.logger.Info("advertisement override triggered",
				zap.Duration("locked_for", e.now().Sub(e.lockedSince)),
				zap.Int("ads", e.overrideCount))
			e.showNextAdvertisement()
		}
		return
	}

	e.advanceQueue()
}

// rebuildQueue derives the rotation queue from the catalog and options. With
// both classes enabled the queue alternates strictly, wrapping the shorter
// list so every pass keeps the caller/ad cadence. Queue position is preserved
// by profile id when the displayed item came from the queue.
func (e *RotationEngine) rebuildQueue() {
	callers := e.catalog.CallerProfiles
	ads := e.catalog.AdvertisementProfiles

	var queue []models.Profile
	switch {
	case e.opts.ShowCallers && e.opts.ShowAdvertisements:
		pairs := len(callers)
		if len(ads) > pairs {
			pairs = len(ads)
		}
		for i := 0; i < pairs; i++ {
			if len(callers) > 0 {
				queue = append(queue, callers[i%len(callers)])
			}
			if len(ads) > 0 {
				queue = append(queue, ads[i%len(ads)])
			}
		}
	case e.opts.ShowCallers:
		queue = append(queue, callers...)
	case e.opts.ShowAdvertisements:
		queue = append(queue, ads...)
	}
	e.queue = queue

	if e.source == sourceQueue && e.current != nil {
		e.queueIndex = -1
		for i := range e.queue {
			if e.queue[i].ID == e.current.ID {
				e.queueIndex = i
				break
			}
		}
	}
	if len(e.queue) == 0 {
		e.queueIndex = -1
	}
}

// evaluateLock pins the first active caller (in supplied order) that has a
// catalog profile. lockedSince is recorded only on the transition into lock
// so a long lock cannot indefinitely postpone the advertisement override.
func (e *RotationEngine) evaluateLock() {
	if e.opts.LockActive {
		for _, callerID := range e.activeCallerIDs {
			if profile := e.catalog.FindByCaller(callerID); profile != nil {
				e.enterLock(profile)
				return
			}
		}
	}
	if e.source == sourceLock || e.source == sourceOverride {
		e.leaveLock()
	}
}

func (e *RotationEngine) enterLock(profile *models.Profile) {
	sameLock := e.source == sourceLock && e.current != nil && e.current.ID == profile.ID
	if !sameLock {
		e.lockedSince = e.now()
		if e.metrics != nil {
			e.metrics.RecordLockTransition(true)
		}
	}
	e.source = sourceLock
	if e.current == nil || e.current.ID != profile.ID || e.current != profile {
		e.current = profile
		e.renderCurrent()
	}
}

func (e *RotationEngine) leaveLock() {
	if e.source == sourceLock || e.source == sourceOverride {
		if e.metrics != nil {
			e.metrics.RecordLockTransition(false)
		}
	}
	e.lockedSince = time.Time{}
	if len(e.queue) > 0 {
		e.source = sourceQueue
		e.advanceQueue()
		return
	}
	e.showNone()
}

func (e *RotationEngine) shouldTriggerOverride() bool {
	if e.lockedSince.IsZero() {
		return false
	}
	if e.now().Sub(e.lockedSince) < e.overrideAfter {
		return false
	}
	if !e.lastAdShownAt.Before(e.lockedSince) {
		return false
	}
	return e.queueHasAdvertisement()
}

func (e *RotationEngine) queueHasAdvertisement() bool {
	for i := range e.queue {
		if e.queue[i].Advertisement {
			return true
		}
	}
	return false
}

// showNextAdvertisement scans forward in the queue (wrapping) for the next
// advertisement and displays it. Runs only while an override is in flight.
func (e *RotationEngine) showNextAdvertisement() {
	n := len(e.queue)
	for step := 1; step <= n; step++ {
		idx := (e.queueIndex + step) % n
		if idx < 0 {
			idx += n
		}
		if e.queue[idx].Advertisement {
			e.queueIndex = idx
			e.current = &e.queue[idx]
			e.source = sourceOverride
			e.lastAdShownAt = e.now()
			e.overrideRemaining--
			e.renderCurrent()
			return
		}
	}
	// No advertisement left in the queue; abandon the override.
	e.overrideRemaining = 0
	e.evaluateLock()
}

// advanceQueue steps the cursor one position (cyclic) and displays that item.
// An empty queue is a no-op beyond clearing a leftover display.
func (e *RotationEngine) advanceQueue() {
	if len(e.queue) == 0 {
		if e.current != nil {
			e.showNone()
		}
		return
	}
	e.queueIndex = (e.queueIndex + 1) % len(e.queue)
	if e.queueIndex < 0 {
		e.queueIndex += len(e.queue)
	}
	e.current = &e.queue[e.queueIndex]
	e.source = sourceQueue
	if e.current.Advertisement {
		e.lastAdShownAt = e.now()
	}
	e.renderCurrent()
}

func (e *RotationEngine) showNone() {
	e.current = nil
	e.source = sourceNone
	e.queueIndex = -1
	if e.render != nil {
		e.render(nil)
	}
}

func (e *RotationEngine) renderCurrent() {
	if e.render != nil {
		e.render(e.current)
	}
}
