package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/school-ledger-api/internal/config"
	"github.com/noah-isme/school-ledger-api/internal/handler"
	"github.com/noah-isme/school-ledger-api/internal/middleware"
	"github.com/noah-isme/school-ledger-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AttendanceHandler *handler.AttendanceHandler
	ScoreHandler      *handler.ScoreHandler
	GradeHandler      *handler.GradeHandler
	QRSessionHandler  *handler.QRSessionHandler
	CheckInHandler    *handler.CheckInHandler
	BackupHandler     *handler.BackupHandler
	JWTMiddleware     fiber.Handler
	// StoreProbe backs the health endpoint; nil reports healthy without touching the store.
	StoreProbe func(ctx context.Context) error
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.StoreProbe))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	staff := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleTeacher)

	// Students reach the scan endpoints from the QR code without an account.
	if deps.CheckInHandler != nil {
		scan := api.Group("/scan", middleware.RateLimit("scan", cfg.ScanRateLimit, time.Minute))
		deps.CheckInHandler.Register(scan)
	}

	classes := api.Group("/classes", jwtMiddleware, staff)
	if deps.AttendanceHandler != nil {
		deps.AttendanceHandler.Register(classes)
	}
	if deps.ScoreHandler != nil {
		deps.ScoreHandler.RegisterClassRoutes(classes)
		deps.ScoreHandler.RegisterUnits(api.Group("/score-units", jwtMiddleware, staff))
	}
	if deps.GradeHandler != nil {
		deps.GradeHandler.RegisterGradebook(classes)
		deps.GradeHandler.RegisterScale(api.Group("/grade-scale", jwtMiddleware, staff))
	}
	if deps.QRSessionHandler != nil {
		deps.QRSessionHandler.RegisterClassRoutes(classes)
		deps.QRSessionHandler.Register(api.Group("/qr-sessions", jwtMiddleware, staff))
	}

	if deps.BackupHandler != nil {
		backup := api.Group("/backup", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin))
		deps.BackupHandler.Register(backup)
	}
}
