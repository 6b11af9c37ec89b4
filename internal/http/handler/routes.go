package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"kyccase/internal/http/middleware"
	"kyccase/internal/service"
)

// Deps bundles everything the route table needs.
type Deps struct {
	DB             *sql.DB
	Cases          service.CaseService
	Documents      service.DocumentService
	Analysis       service.AnalysisService
	Users          service.UserService
	JWTSecret      []byte
	AnalyzerAPIKey string
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
// Handlers stay thin; business rules live in the service layer.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	api.Post("/auth/register", Register(d.Users))
	api.Post("/auth/login", Login(d.Users))

	// The analyzer calls back with the shared API key, not a user token.
	api.Post("/webhook/analyzer", AnalyzerWebhook(d.Analysis, d.AnalyzerAPIKey))

	authed := api.Group("", middleware.RequireAuth(d.JWTSecret))

	authed.Get("/auth/me", Me(d.Users))

	authed.Post("/cases", CreateCase(d.Cases))
	authed.Get("/cases", ListCases(d.Cases))
	authed.Get("/cases/:id", GetCase(d.Cases))
	authed.Put("/cases/:id", UpdateCase(d.Cases))
	authed.Delete("/cases/:id", DeleteCase(d.Cases))
	authed.Patch("/cases/:id/status", UpdateCaseStatus(d.Cases))

	authed.Post("/cases/:id/documents", UploadDocument(d.Documents))
	authed.Get("/cases/:id/documents", ListCaseDocuments(d.Documents))
	authed.Get("/documents/:id", GetDocument(d.Documents))
	authed.Get("/documents/:id/download", DownloadDocument(d.Documents))
	authed.Delete("/documents/:id", DeleteDocument(d.Documents))

	authed.Post("/cases/:id/trigger-analysis", TriggerAnalysis(d.Analysis))
	authed.Get("/cases/:id/summary", GetCaseSummary(d.Analysis))
}
