package handler

import (
	"github.com/gofiber/fiber/v2"

	"kyccase/internal/http/middleware"
	"kyccase/internal/service"
)

// Register handles POST /api/auth/register.
func Register(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		sess, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// Login handles POST /api/auth/login.
func Login(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		sess, err := svc.Login(c.UserContext(), body.Email, body.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sess)
	}
}

// Me handles GET /api/auth/me for the authenticated user.
func Me(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Get(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"user": u.Ref()})
	}
}
