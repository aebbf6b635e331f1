package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/school-ledger-api/internal/observability"
)

const (
	correlationHeader = "X-Correlation-ID"
	correlationLocal  = "correlation_id"
	// Longer caller supplied ids are replaced so they cannot bloat logs and event headers.
	maxCorrelationLength = 64
)

// CorrelationID tags every request with an X-Correlation-ID, reusing X-Request-ID when the caller sent one.
// The id is also bound to the user context so services can stamp it on published events.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(correlationHeader))
		if id == "" {
			id = strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		}
		if id == "" || len(id) > maxCorrelationLength {
			id = uuid.NewString()
		}

		c.Locals(correlationLocal, id)
		c.Set(correlationHeader, id)
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))
		return c.Next()
	}
}

// GetCorrelationID returns the correlation id of the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(correlationLocal).(string); ok {
		return id
	}
	return observability.CorrelationID(c.UserContext())
}
