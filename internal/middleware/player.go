package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// MaxPlayerIDLen bounds client supplied ids, which end up in logs and
// archived records.
const MaxPlayerIDLen = 64

// EnsurePlayerID takes the player id from the X-Player-ID header or the
// playerId query parameter and stores it in locals as "playerID".
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Check if playerID is already set
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		// Check header first
		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		if len(playerID) > MaxPlayerIDLen {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Player ID is too long.",
			})
		}

		// Store in context for this request
		c.Locals("playerID", playerID)
		return c.Next()
	}
}
