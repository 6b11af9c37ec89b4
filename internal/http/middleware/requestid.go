package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request ID on requests and responses.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is where the request ID lives in Fiber locals.
	RequestIDLocalKey = "request_id"
)

// RequestID propagates the caller's X-Request-ID, minting a fresh UUID when
// the header is absent. The ID is stored in locals for downstream handlers
// and echoed on the response header.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}
