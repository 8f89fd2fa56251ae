package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
)

// IntervalState classifies an interval relative to a reference instant.
type IntervalState int

const (
	IntervalPast IntervalState = iota
	IntervalCurrent
	IntervalUpcoming
)

// ClassifyInterval reports whether [start, end] is past, current, or upcoming
// at now. A nil end is open-ended and never past once started. Malformed
// intervals (end before start) fall out of the comparisons as never-current,
// which is the tolerated behaviour: they classify as past once start has gone
// by and upcoming before that.
func ClassifyInterval(start time.Time, end *time.Time, now time.Time) IntervalState {
	if now.Before(start) {
		return IntervalUpcoming
	}
	if end == nil || !now.After(*end) {
		return IntervalCurrent
	}
	return IntervalPast
}

// IntervalContains reports whether now lies within the closed interval.
func IntervalContains(start time.Time, end *time.Time, now time.Time) bool {
	return ClassifyInterval(start, end, now) == IntervalCurrent
}

// VisibleEvents drops events that have already ended. The remaining list keeps
// the input's start ordering, so the board shows the current event first.
func VisibleEvents(events []models.Event, now time.Time) []models.Event {
	visible := make([]models.Event, 0, len(events))
	for _, e := range events {
		if ClassifyInterval(e.Start, e.End, now) != IntervalPast {
			visible = append(visible, e)
		}
	}
	return visible
}

// SplitAssignments partitions MC assignments into the one currently on shift
// and the soonest upcoming one. Current is the first assignment in list order
// whose closed interval contains now; ties on the next shift's start keep list
// order. Pure function, no memory between calls.
func SplitAssignments(mcs []models.MCAssignment, now time.Time) (current, next *models.MCAssignment) {
	for i := range mcs {
		mc := mcs[i]
		if current == nil && IntervalContains(mc.Start, &mc.End, now) {
			current = &mcs[i]
			continue
		}
		if mc.Start.After(now) {
			if next == nil || mc.Start.Before(next.Start) {
				next = &mcs[i]
			}
		}
	}
	return current, next
}

// ResolveActiveEvent returns the event airing at now, or nil. Events must be
// pre-sorted by start ascending; the resolver does not sort.
func ResolveActiveEvent(events []models.Event, now time.Time) *models.Event {
	for i := range events {
		e := events[i]
		if e.Start.After(now) {
			continue
		}
		if e.End == nil || !now.After(*e.End) {
			return &events[i]
		}
	}
	return nil
}

// EventDays aggregates events into unique MM/DD day options with counts,
// ordered by each day's earliest start.
func EventDays(events []models.Event) []models.EventDayOption {
	type bucket struct {
		count      int
		firstStart time.Time
	}
	buckets := make(map[string]*bucket)
	for _, e := range events {
		key := e.Start.Format("01-02")
		b, ok := buckets[key]
		if !ok {
			buckets[key] = &bucket{count: 1, firstStart: e.Start}
			continue
		}
		b.count++
		if e.Start.Before(b.firstStart) {
			b.firstStart = e.Start
		}
	}

	options := make([]models.EventDayOption, 0, len(buckets))
	for key, b := range buckets {
		label := fmt.Sprintf("%s (%d events)", b.firstStart.Format("01/02"), b.count)
		if b.count == 1 {
			label = fmt.Sprintf("%s (1 event)", b.firstStart.Format("01/02"))
		}
		options = append(options, models.EventDayOption{
			Value:      b.firstStart.Format("01/02"),
			Label:      label,
			Count:      b.count,
			DayKey:     key,
			FirstStart: b.firstStart,
		})
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].FirstStart.Before(options[j].FirstStart)
	})
	return options
}
