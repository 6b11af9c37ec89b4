package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kyccase/docs"
	"kyccase/internal/analyzer"
	"kyccase/internal/config"
	"kyccase/internal/database"
	"kyccase/internal/database/migration"
	handlers "kyccase/internal/http/handler"
	"kyccase/internal/http/middleware"
	kotel "kyccase/internal/otel"
	"kyccase/internal/repository/postgres"
	"kyccase/internal/service"
	"kyccase/internal/storage"
)

// @title KYC Case API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	shutdownTracing, err := kotel.Init(context.Background(), loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// PostgreSQL connection with pooling via database/sql
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(context.Background(), db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// S3-compatible object storage for evidence files
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	analyzerClient, err := analyzer.NewHTTP(cfg.Analyzer)
	if err != nil {
		log.Fatalf("failed to initialize analyzer client: %v", err)
	}

	// Repositories and services
	caseRepo := postgres.NewCasePostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)
	summaryRepo := postgres.NewSummaryPostgres(db)
	userRepo := postgres.NewUserPostgres(db)

	analysisSvc := service.NewAnalysisService(caseRepo, docRepo, summaryRepo, analyzerClient)
	caseSvc := service.NewCaseService(caseRepo, docRepo, summaryRepo, userRepo, objStore)
	docSvc := service.NewDocumentService(docRepo, caseRepo, objStore, analysisSvc)
	userSvc := service.NewUserService(userRepo, cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLHour)*time.Hour)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:             db,
		Cases:          caseSvc,
		Documents:      docSvc,
		Analysis:       analysisSvc,
		Users:          userSvc,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		AnalyzerAPIKey: cfg.Analyzer.APIKey,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
