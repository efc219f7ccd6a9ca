package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bmr-backend/internal/audit"
	"bmr-backend/internal/auth"
	"bmr-backend/internal/bmr"
	"bmr-backend/internal/config"
	"bmr-backend/internal/database"
	"bmr-backend/internal/documents"
	"bmr-backend/internal/logging"
	"bmr-backend/internal/masterdata"
	"bmr-backend/internal/metrics"
	"bmr-backend/internal/models"
	"bmr-backend/internal/production"
	"bmr-backend/internal/quality"
	"bmr-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	db, err := database.Init(cfg, logger)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	st := store.New(db)
	generator := documents.NewGenerator(documents.NewPDFExporter(), nil, metrics.Documents{}, logger)
	trail := audit.NewTrail(st, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logging.FromCtx(c, logger).Error("unexpected error", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(logging.Middleware(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Origins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	lookupLimit := limiter.New(limiter.Config{
		Max:        cfg.SearchRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many search requests")
		},
	})

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(st))
	api.Post("/auth/login", auth.LoginHandler(st, cfg.JWTSecret))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler(st))

	// User management
	users := protected.Group("/users")
	users.Use(auth.RequireRole(models.RoleAdmin))
	users.Get("/", auth.ListUsersHandler(st))
	users.Post("/", auth.CreateUserHandler(st))

	// Audit trail
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler(st))

	// Batch manufacturing records
	pd := production.Deps{
		Records:   st,
		Mapper:    bmr.NewMapper(cfg.Assignees),
		Generator: generator,
		Audit:     trail,
		Logger:    logger,
	}
	protected.Get("/bmr", production.ListBMRHandler(pd))
	protected.Get("/bmr/new", production.NewBMRHandler(pd))
	protected.Get("/bmr/export.xlsx", production.ExportRegisterHandler(pd))
	protected.Get("/bmr/specifications", lookupLimit, production.SearchSpecificationsHandler(pd))
	protected.Post("/bmr/form", production.FormStepHandler(pd))
	protected.Post("/bmr", production.CreateBMRHandler(pd))
	protected.Get("/bmr/:id", production.GetBMRHandler(pd))
	protected.Put("/bmr/:id", production.UpdateBMRHandler(pd))
	protected.Delete("/bmr/:id", production.DeleteBMRHandler(pd))
	protected.Get("/bmr/:id/documents/:kind", production.DownloadDocumentHandler(pd))
	protected.Get("/bmr/:id/print/:kind", production.PrintDocumentHandler(pd))

	// Raw material test reports
	qd := quality.Deps{
		Reports:             st,
		Defaults:            cfg.ReportDefaults,
		Generator:           generator,
		Audit:               trail,
		TestedBySignature:   cfg.TestedBySignature,
		ReviewedBySignature: cfg.ReviewedBySignature,
		Logger:              logger,
	}
	protected.Get("/rm-test-reports", quality.ListReportsHandler(qd))
	protected.Get("/rm-test-reports/search", lookupLimit, quality.SearchReportsHandler(qd))
	protected.Get("/rm-test-reports/new", quality.NewReportHandler(qd))
	protected.Get("/rm-test-reports/fabric", lookupLimit, quality.FabricAutofillHandler(qd))
	protected.Post("/rm-test-reports/level", quality.ApplyLevelHandler())
	protected.Post("/rm-test-reports", quality.CreateReportHandler(qd))
	protected.Get("/rm-test-reports/:id", quality.GetReportHandler(qd))
	protected.Put("/rm-test-reports/:id", quality.UpdateReportHandler(qd))
	protected.Delete("/rm-test-reports/:id", quality.DeleteReportHandler(qd))
	protected.Get("/rm-test-reports/:id/certificate", quality.CertificateHandler(qd))

	// Master data
	md := masterdata.Deps{Catalog: st, Audit: trail, Logger: logger}
	protected.Get("/suppliers", masterdata.ListSuppliersHandler(md))
	protected.Post("/suppliers", masterdata.CreateSupplierHandler(md))
	protected.Post("/suppliers/import", masterdata.ImportSuppliersHandler(md))
	protected.Get("/suppliers/:id", masterdata.GetSupplierHandler(md))
	protected.Put("/suppliers/:id", masterdata.UpdateSupplierHandler(md))
	protected.Delete("/suppliers/:id", masterdata.DeleteSupplierHandler(md))
	protected.Get("/fabrics", masterdata.ListFabricsHandler(md))
	protected.Post("/fabrics", masterdata.CreateFabricHandler(md))
	protected.Get("/fabrics/:id", masterdata.GetFabricHandler(md))
	protected.Put("/fabrics/:id", masterdata.UpdateFabricHandler(md))
	protected.Delete("/fabrics/:id", masterdata.DeleteFabricHandler(md))

	logger.Info("server starting", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
