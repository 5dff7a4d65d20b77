package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docingest/internal/sanitize"
)

const (
	// RequestIDHeader is the header used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the Fiber locals key holding the request ID.
	RequestIDLocalKey = "request_id"

	maxRequestIDLen = 128
)

// RequestID reuses a well-formed incoming X-Request-ID or generates a UUID, stores it in
// locals under RequestIDLocalKey and echoes it on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := sanitize.Text(c.Get(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
