package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	appErrors "github.com/TomRob62/GSSDA-Web-App/pkg/errors"
)

type fakeEventSource struct {
	events map[int64][]models.Event
	err    error
	calls  int
}

func (f *fakeEventSource) ListByRoom(_ context.Context, roomID int64) ([]models.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events[roomID], nil
}

type fakeMCSource struct {
	mcs map[int64][]models.MCAssignment
	err error
}

func (f *fakeMCSource) ListByRoom(_ context.Context, roomID int64) ([]models.MCAssignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.mcs[roomID], nil
}

func TestScheduleCacheMissWithoutRefresh(t *testing.T) {
	cache := NewScheduleCache(&fakeEventSource{}, &fakeMCSource{}, nil, nil, nil)

	_, err := cache.Get(context.Background(), 1, false)
	assert.ErrorIs(t, err, appErrors.ErrNoSnapshot)
}

func TestScheduleCacheRefreshAndReuse(t *testing.T) {
	events := &fakeEventSource{events: map[int64][]models.Event{
		1: {{ID: 10, RoomID: 1, Start: ts(11, 0), End: tsp(12, 0)}},
	}}
	mcs := &fakeMCSource{mcs: map[int64][]models.MCAssignment{
		1: {{ID: 20, RoomID: 1, CallerCuerID: 101, Start: ts(9, 0), End: ts(13, 0)}},
	}}
	cache := NewScheduleCache(events, mcs, nil, nil, nil)

	snap, err := cache.Get(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.RoomID)
	require.Len(t, snap.Events, 1)
	require.Len(t, snap.MCs, 1)
	assert.Equal(t, 1, events.calls)

	cached, err := cache.Get(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Same(t, snap, cached)
	assert.Equal(t, 1, events.calls, "cached read does not refetch")
}

func TestScheduleCacheSequenceIncreases(t *testing.T) {
	cache := NewScheduleCache(&fakeEventSource{}, &fakeMCSource{}, nil, nil, nil)

	first, err := cache.Get(context.Background(), 1, true)
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), 1, true)
	require.NoError(t, err)

	assert.Greater(t, second.Seq, first.Seq)
}

func TestScheduleCacheFetchFailureKeepsOldSnapshot(t *testing.T) {
	events := &fakeEventSource{events: map[int64][]models.Event{1: {{ID: 10, RoomID: 1}}}}
	cache := NewScheduleCache(events, &fakeMCSource{}, nil, nil, nil)

	good, err := cache.Get(context.Background(), 1, true)
	require.NoError(t, err)

	events.err = errors.New("connection refused")
	_, err = cache.Get(context.Background(), 1, true)
	require.Error(t, err)

	kept, err := cache.Get(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Same(t, good, kept)
}

func TestScheduleCacheClear(t *testing.T) {
	cache := NewScheduleCache(&fakeEventSource{}, &fakeMCSource{}, nil, nil, nil)

	_, err := cache.Get(context.Background(), 1, true)
	require.NoError(t, err)

	cache.Clear(1)
	_, err = cache.Get(context.Background(), 1, false)
	assert.ErrorIs(t, err, appErrors.ErrNoSnapshot)
}

func TestScheduleCachePerRoomIsolation(t *testing.T) {
	events := &fakeEventSource{events: map[int64][]models.Event{
		1: {{ID: 10, RoomID: 1}},
		2: {{ID: 11, RoomID: 2}},
	}}
	cache := NewScheduleCache(events, &fakeMCSource{}, func() time.Time { return ts(12, 0) }, nil, nil)

	one, err := cache.Get(context.Background(), 1, true)
	require.NoError(t, err)
	two, err := cache.Get(context.Background(), 2, true)
	require.NoError(t, err)

	assert.Equal(t, int64(10), one.Events[0].ID)
	assert.Equal(t, int64(11), two.Events[0].ID)
	assert.Equal(t, ts(12, 0), one.FetchedAt)
}
