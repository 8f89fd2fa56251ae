package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(roomID int64, id string) *Client {
	return &Client{ID: id, RoomID: roomID, send: make(chan WSMessage, 4)}
}

func TestHubRegisterUnregisterCounts(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)

	var mu sync.Mutex
	counts := make(map[int64][]int)
	hub.SetRoomWatchHandler(func(roomID int64, count int) {
		mu.Lock()
		counts[roomID] = append(counts[roomID], count)
		mu.Unlock()
	})

	a := newTestClient(1, "a")
	b := newTestClient(1, "b")
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 2, hub.WatcherCount(1))

	hub.Unregister(a)
	assert.Equal(t, 1, hub.WatcherCount(1))
	hub.Unregister(b)
	assert.Equal(t, 0, hub.WatcherCount(1))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 1, 0}, counts[1])
}

func TestHubBroadcastReachesRoomOnly(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)

	a := newTestClient(1, "a")
	b := newTestClient(2, "b")
	hub.Register(a)
	hub.Register(b)

	hub.BroadcastToRoom(1, "profile_changed", map[string]int{"id": 7})

	select {
	case msg := <-a.send:
		assert.Equal(t, "profile_changed", msg.Event)
	default:
		t.Fatal("room 1 client received nothing")
	}
	select {
	case <-b.send:
		t.Fatal("room 2 client should not receive room 1 events")
	default:
	}
}

type clientGaugeRecorder struct {
	mu           sync.Mutex
	connected    int
	disconnected int
}

func (g *clientGaugeRecorder) WebsocketClientConnected() {
	g.mu.Lock()
	g.connected++
	g.mu.Unlock()
}

func (g *clientGaugeRecorder) WebsocketClientDisconnected() {
	g.mu.Lock()
	g.disconnected++
	g.mu.Unlock()
}

func TestHubTracksClientGauge(t *testing.T) {
	gauge := &clientGaugeRecorder{}
	hub := NewHub(zap.NewNop(), gauge)

	a := newTestClient(1, "a")
	b := newTestClient(2, "b")
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 2, gauge.connected)

	hub.Unregister(a)
	hub.Unregister(b)
	// a second unregister of the same client must not drive the gauge negative
	hub.Unregister(a)
	assert.Equal(t, 2, gauge.disconnected)
}

func TestHubBroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)

	c := &Client{ID: "slow", RoomID: 1, send: make(chan WSMessage)}
	hub.Register(c)

	// client never reads; the broadcast must not block
	done := make(chan struct{})
	go func() {
		hub.BroadcastToRoom(1, "board", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client buffer")
	}
	require.Equal(t, 1, hub.WatcherCount(1))
}
