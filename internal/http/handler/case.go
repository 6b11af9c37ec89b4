package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kyccase/internal/http/middleware"
	"kyccase/internal/model"
	"kyccase/internal/service"
)

// CreateCase handles POST /api/cases. The authenticated user becomes the
// case's relationship manager.
func CreateCase(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateCaseInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}

		out, err := svc.Create(c.UserContext(), in, middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"case": out})
	}
}

// ListCases handles GET /api/cases with search, status, sorting and paging.
func ListCases(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		limit, err := strconv.Atoi(c.Query("limit", "20"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		res, err := svc.List(c.UserContext(), service.CaseListQuery{
			Search:    c.Query("search"),
			Status:    c.Query("status"),
			SortBy:    c.Query("sortBy"),
			SortOrder: c.Query("sortOrder"),
			Page:      page,
			Limit:     limit,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetCase handles GET /api/cases/:id and returns the full case detail.
func GetCase(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		out, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"case": out})
	}
}

// UpdateCase handles PUT /api/cases/:id. Immutable fields in the body are
// ignored, not rejected.
func UpdateCase(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var in service.UpdateCaseInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}

		out, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"case": out})
	}
}

// UpdateCaseStatus handles PATCH /api/cases/:id/status.
func UpdateCaseStatus(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var body struct {
			Status model.CaseStatus `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}

		out, err := svc.UpdateStatus(c.UserContext(), id, body.Status, middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"case": out})
	}
}

// DeleteCase handles DELETE /api/cases/:id.
func DeleteCase(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "deleted"})
	}
}
