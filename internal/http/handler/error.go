package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"kyccase/internal/http/middleware"
	"kyccase/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceErrorStatus maps the service error taxonomy onto HTTP responses.
// Unknown errors fall through to a 500 so internals never leak.
var serviceErrorStatus = map[error]struct {
	status  int
	code    string
	message string
}{
	service.ErrIDRequired:          {fiber.StatusBadRequest, "INVALID_ID", "id is required"},
	service.ErrReaderNil:           {fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"},
	service.ErrCaseNotFound:        {fiber.StatusNotFound, "NOT_FOUND", "case not found"},
	service.ErrDocumentNotFound:    {fiber.StatusNotFound, "NOT_FOUND", "document not found"},
	service.ErrSummaryNotFound:     {fiber.StatusNotFound, "NOT_FOUND", "analysis summary not found"},
	service.ErrUserNotFound:        {fiber.StatusNotFound, "NOT_FOUND", "user not found"},
	service.ErrMissingFields:       {fiber.StatusBadRequest, "MISSING_FIELDS", "required fields are missing"},
	service.ErrInvalidClientType:   {fiber.StatusBadRequest, "INVALID_CLIENT_TYPE", "clientType must be individual or corporate"},
	service.ErrClientDateConflict:  {fiber.StatusBadRequest, "CLIENT_DATE_CONFLICT", "date field does not match client type"},
	service.ErrInvalidStatus:       {fiber.StatusBadRequest, "INVALID_STATUS", "unknown case status"},
	service.ErrInvalidTransition:   {fiber.StatusBadRequest, "INVALID_TRANSITION", "status transition not allowed"},
	service.ErrStatusAnalyzerOnly:  {fiber.StatusBadRequest, "INVALID_TRANSITION", "ai_ready is set by the analyzer only"},
	service.ErrInvalidDocumentType: {fiber.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "unknown document type"},
	service.ErrNoScreeningReport:   {fiber.StatusBadRequest, "NO_SCREENING_REPORT", "case has no screening report"},
	service.ErrMissingResultFields: {fiber.StatusBadRequest, "MISSING_FIELDS", "required result fields are missing"},
	service.ErrInvalidRiskScore:    {fiber.StatusBadRequest, "INVALID_RISK_SCORE", "riskScore must be between 1 and 5"},
	service.ErrAnalysisTrigger:     {fiber.StatusBadGateway, "ANALYZER_ERROR", "analyzer request failed"},
	service.ErrUserExists:          {fiber.StatusConflict, "USER_EXISTS", "email already registered"},
	service.ErrInvalidCredentials:  {fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"},
}

// writeServiceError translates a service error into the standard payload.
func writeServiceError(c *fiber.Ctx, err error) error {
	for sentinel, m := range serviceErrorStatus {
		if errors.Is(err, sentinel) {
			return writeError(c, m.status, m.code, m.message)
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
