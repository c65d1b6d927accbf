package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade ensures that requests to WebSocket endpoints are valid
// WebSocket connection attempts by a known player. It must be mounted on
// the route itself so that route parameters are visible.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// Set by EnsurePlayerID
		playerID, _ := c.Locals("playerID").(string)
		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player ID is required",
			})
		}

		// The connection context is different from the upgrade context, so
		// carry the ids over in locals.
		c.Locals("wsPlayerID", playerID)
		if gameID := c.Params("gameId"); gameID != "" {
			c.Locals("wsGameID", gameID)
		}
		return c.Next()
	}
}
