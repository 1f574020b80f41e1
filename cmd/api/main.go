package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assetcat/internal/config"
	"assetcat/internal/database"
	"assetcat/internal/database/migration"
	handlers "assetcat/internal/http/handler"
	"assetcat/internal/http/middleware"
	"assetcat/internal/logging"
	"assetcat/internal/otel"
	"assetcat/internal/repository/postgres"
	"assetcat/internal/service"
	"assetcat/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Tracing: no-op when OTEL_SDK_DISABLED=true or the exporter cannot start
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize reusable S3-compatible object storage gateway (MinIO-supported)
	store, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Initialize repositories and services
	assetRepo := postgres.NewAssetPostgres(db)
	versionRepo := postgres.NewVersionPostgres(db)
	archiveRepo := postgres.NewArchivePostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	projectRepo := postgres.NewProjectPostgres(db)
	sphereRepo := postgres.NewSpherePostgres(db)

	assetSvc := service.NewAssetService(assetRepo, versionRepo, auditRepo, projectRepo, sphereRepo, userRepo, store)
	deletionSvc := service.NewDeletionService(assetRepo, versionRepo, archiveRepo, auditRepo, userRepo, store)
	archiveSvc := service.NewArchiveService(archiveRepo, store)
	sphereSvc := service.NewSphereService(sphereRepo, auditRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    256 * 1024 * 1024, // model archives are large
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, handlers.Services{
		DB:       db,
		Users:    userRepo,
		Assets:   assetSvc,
		Deletion: deletionSvc,
		Archive:  archiveSvc,
		Spheres:  sphereSvc,
	})

	addr := ":" + cfg.Port
	logging.Info("server starting", map[string]any{"addr": addr})

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
