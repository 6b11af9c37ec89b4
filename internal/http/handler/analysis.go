package handler

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kyccase/internal/service"
)

// apiKeyHeader is the shared-secret header the analyzer sends on callbacks.
const apiKeyHeader = "X-API-Key"

// TriggerAnalysis handles POST /api/cases/:id/trigger-analysis.
func TriggerAnalysis(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Trigger(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "triggered"})
	}
}

// GetCaseSummary handles GET /api/cases/:id/summary.
func GetCaseSummary(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		sum, err := svc.Summary(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"summary": sum})
	}
}

// AnalyzerWebhook handles POST /api/webhook/analyzer. The route is not
// behind user auth; when a shared API key is configured the analyzer must
// present it. With no key configured the callback is open.
func AnalyzerWebhook(svc service.AnalysisService, apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey != "" {
			got := c.Get(apiKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				return writeError(c, fiber.StatusUnauthorized, "INVALID_API_KEY", "invalid api key")
			}
		}

		var in service.IngestInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}

		sum, err := svc.Ingest(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"summary": sum})
	}
}
