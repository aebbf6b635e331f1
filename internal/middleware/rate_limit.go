package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/school-ledger-api/internal/utils"
)

// RateLimit limits requests per authenticated user, falling back to the client IP
// for anonymous callers such as students on the scan page.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			caller := c.IP()
			if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
				caller = userID
			}
			return fmt.Sprintf("%s:%s", identifier, caller)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, slow down")
		},
	})
}
