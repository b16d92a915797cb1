package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gminsights/roadmap-api/internal/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

type connection struct {
	mu     sync.Mutex // websocket writes must not interleave
	conn   Conn
	userID uuid.UUID
}

func (c *connection) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub manages websocket connections per project.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*connection]bool // projectID -> set of connections
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	log = logger.OrNop(log)
	return &Hub{
		rooms: make(map[uuid.UUID]map[*connection]bool),
		log:   log,
	}
}

// Join registers conn in the project's room and returns a function that
// removes it again.
func (h *Hub) Join(projectID, userID uuid.UUID, conn Conn) (leave func()) {
	c := &connection{conn: conn, userID: userID}

	h.mu.Lock()
	if h.rooms[projectID] == nil {
		h.rooms[projectID] = make(map[*connection]bool)
	}
	h.rooms[projectID][c] = true
	total := len(h.rooms[projectID])
	h.mu.Unlock()

	h.log.Debug("ws join", zap.Stringer("user", userID), zap.Stringer("project", projectID), zap.Int("total", total))

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if conns, ok := h.rooms[projectID]; ok {
			delete(conns, c)
			if len(conns) == 0 {
				delete(h.rooms, projectID)
			}
		}
	}
}

// Size returns the number of connections in a project room.
func (h *Hub) Size(projectID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[projectID])
}

// Publish sends the event to every connection in the project's room except
// those belonging to the user who caused it.
func (h *Hub) Publish(_ context.Context, e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.rooms[e.ProjectID]
	if !ok {
		return
	}

	msg, err := json.Marshal(e)
	if err != nil {
		h.log.Warn("ws marshal failed", zap.Error(err))
		return
	}

	for c := range conns {
		if c.userID == e.UserID {
			continue
		}
		if err := c.write(msg); err != nil {
			h.log.Warn("ws write failed", zap.Stringer("user", c.userID), zap.Error(err))
		}
	}
}
