package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"kyccase/internal/auth"
)

// UserIDLocalKey is the key under which the authenticated user's ID is stored
// in Fiber's context locals.
const UserIDLocalKey = "user_id"

// RequireAuth verifies the Bearer token on the request and stores the
// authenticated user ID in context locals. Requests without a valid token get
// a 401 through the app's error handler.
func RequireAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		uid, err := auth.UserIDFromToken(token, secret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(UserIDLocalKey, uid)
		return c.Next()
	}
}

// UserID returns the authenticated user's ID set by RequireAuth, or "".
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(UserIDLocalKey).(string)
	return uid
}
