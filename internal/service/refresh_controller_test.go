package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TomRob62/GSSDA-Web-App/pkg/config"
)

func testRefreshConfig() config.RefreshConfig {
	return config.RefreshConfig{
		StandardInterval:  60 * time.Second,
		FastInterval:      15 * time.Second,
		MaxLoadAttempts:   4,
		SkipWarnThreshold: 4,
	}
}

func TestRefreshControllerIntervalAdaptation(t *testing.T) {
	locked := false
	rotating := true
	cycle := func(context.Context) (bool, bool) { return locked, rotating }
	c := NewRefreshController(testRefreshConfig(), cycle, nil, nil)

	assert.Equal(t, 60*time.Second, c.Interval())

	// rotating and unlocked: fast polling
	c.RunCycle(context.Background())
	assert.Equal(t, 15*time.Second, c.Interval())

	// a lock appears: back to standard
	locked = true
	c.RunCycle(context.Background())
	assert.Equal(t, 60*time.Second, c.Interval())

	// rotation disabled entirely: standard regardless of lock
	locked = false
	rotating = false
	c.RunCycle(context.Background())
	assert.Equal(t, 60*time.Second, c.Interval())
}

func TestRefreshControllerSkipsOverlappingCycles(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var completed int
	var mu sync.Mutex

	cycle := func(context.Context) (bool, bool) {
		close(started)
		<-release
		mu.Lock()
		completed++
		mu.Unlock()
		return false, true
	}
	c := NewRefreshController(testRefreshConfig(), cycle, nil, nil)

	go c.RunCycle(context.Background())
	<-started

	// these fire while the first cycle is still running and must be dropped
	c.RunCycle(context.Background())
	c.RunCycle(context.Background())

	close(release)
	// wait for the first cycle to finish
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return completed == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRefreshControllerRunStopsOnCancel(t *testing.T) {
	var mu sync.Mutex
	var cycles int
	cycle := func(context.Context) (bool, bool) {
		mu.Lock()
		cycles++
		mu.Unlock()
		return false, false
	}
	c := NewRefreshController(testRefreshConfig(), cycle, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	// Run performs one immediate cycle before waiting on the interval
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return cycles == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
