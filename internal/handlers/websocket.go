package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebSocketUpgrade rejects plain HTTP requests on the websocket routes.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}
}

// HandleWebSocket subscribes the connection to one project's events until
// the client disconnects.
func (h *Handler) HandleWebSocket(c *websocket.Conn) {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		c.Close()
		return
	}

	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	leave := h.hub.Join(projectID, userID, c)
	defer leave()

	// Keep connection alive; clients send pings/keepalives.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			h.log.Debug("ws closed", zap.Stringer("user", userID), zap.Error(err))
			break
		}
	}
}
