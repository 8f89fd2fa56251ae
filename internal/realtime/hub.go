package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// RoomWatchHandler is called when the watcher count for a room changes. The
// board registry uses it to start a session when the first display connects
// and stop it when the last one leaves.
type RoomWatchHandler func(roomID int64, count int)

// ClientMetrics tracks the connected display population.
type ClientMetrics interface {
	WebsocketClientConnected()
	WebsocketClientDisconnected()
}

// Hub maintains room_id -> set of display connections and broadcasts board
// events to them.
type Hub struct {
	rooms   map[int64]map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
	metrics ClientMetrics
	onWatch RoomWatchHandler
}

// NewHub creates a new WebSocket hub. metrics may be nil.
func NewHub(logger *zap.Logger, metrics ClientMetrics) *Hub {
	return &Hub{
		rooms:   make(map[int64]map[string]*Client),
		logger:  logger,
		metrics: metrics,
	}
}

// SetRoomWatchHandler sets the callback for watcher count changes.
func (h *Hub) SetRoomWatchHandler(fn RoomWatchHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onWatch = fn
}

// Register adds a display client to a room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.RoomID] == nil {
		h.rooms[c.RoomID] = make(map[string]*Client)
	}
	h.rooms[c.RoomID][c.ID] = c
	count := len(h.rooms[c.RoomID])
	onWatch := h.onWatch
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WebsocketClientConnected()
	}
	if onWatch != nil {
		onWatch(c.RoomID, count)
	}
	h.logger.Debug("display joined room", zap.String("client_id", c.ID), zap.Int64("room_id", c.RoomID))
}

// Unregister removes a display client from a room.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	var count int
	var removed bool
	if m, ok := h.rooms[c.RoomID]; ok {
		if _, present := m[c.ID]; present {
			delete(m, c.ID)
			removed = true
		}
		count = len(m)
		if count == 0 {
			delete(h.rooms, c.RoomID)
		}
	}
	onWatch := h.onWatch
	h.mu.Unlock()
	if removed && h.metrics != nil {
		h.metrics.WebsocketClientDisconnected()
	}
	if onWatch != nil {
		onWatch(c.RoomID, count)
	}
	h.logger.Debug("display left room", zap.String("client_id", c.ID), zap.Int64("room_id", c.RoomID))
}

// BroadcastToRoom sends a message to all displays watching a room. Clients
// with a full send buffer are skipped rather than blocked on.
func (h *Hub) BroadcastToRoom(roomID int64, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.rooms[roomID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// WatcherCount returns the number of connected displays for a room.
func (h *Hub) WatcherCount(roomID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
