package middleware

import "github.com/gofiber/fiber/v2"

// Noop simply calls the next handler. It exists as a wiring placeholder for
// environments that disable one of the optional middlewares.
func Noop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
