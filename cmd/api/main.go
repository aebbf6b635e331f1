package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/config"
	"github.com/noah-isme/school-ledger-api/internal/database"
	"github.com/noah-isme/school-ledger-api/internal/events"
	"github.com/noah-isme/school-ledger-api/internal/handler"
	"github.com/noah-isme/school-ledger-api/internal/middleware"
	"github.com/noah-isme/school-ledger-api/internal/repository"
	"github.com/noah-isme/school-ledger-api/internal/router"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logger.With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	ctx := context.Background()
	recordStore, closeStore, err := database.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open record store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn().Err(err).Msg("failed to close record store")
		}
	}()

	broker := events.NewBroker()
	publishers := events.Multi{broker}
	if cfg.NATSURL != "" {
		conn, err := events.Connect(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer conn.Drain()
		publishers = append(publishers, events.NewNATSPublisher(conn, cfg.NATSSubject))
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	attendanceRepo := repository.NewAttendanceRepository(recordStore)
	unitRepo := repository.NewScoreUnitRepository(recordStore)
	scoreRepo := repository.NewScoreRepository(recordStore)
	sessionRepo := repository.NewQRSessionRepository(recordStore)
	rosterRepo := repository.NewRosterRepository(recordStore)
	settingsRepo := repository.NewSettingsRepository(recordStore)

	attendanceService := service.NewAttendanceService(attendanceRepo, logger)
	scoreService := service.NewScoreService(unitRepo, scoreRepo, rosterRepo, validate, logger)
	gradeScaleService := service.NewGradeScaleService(settingsRepo, validate, logger)
	gradebookService := service.NewGradebookService(rosterRepo, unitRepo, scoreRepo, attendanceRepo, gradeScaleService, logger)
	sessionService := service.NewQRSessionService(sessionRepo, cfg.ScanBaseURL, logger)
	checkInService := service.NewCheckInService(sessionService, attendanceService, rosterRepo, publishers, logger)
	backupService, err := service.NewBackupService(recordStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise backup service")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    16 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		AttendanceHandler: handler.NewAttendanceHandler(attendanceService, validate, logger),
		ScoreHandler:      handler.NewScoreHandler(scoreService, gradeScaleService, validate, logger),
		GradeHandler:      handler.NewGradeHandler(gradeScaleService, gradebookService, validate, logger),
		QRSessionHandler:  handler.NewQRSessionHandler(sessionService, broker, validate, cfg.QRSessionTTL, logger),
		CheckInHandler:    handler.NewCheckInHandler(checkInService, validate, logger),
		BackupHandler:     handler.NewBackupHandler(backupService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		StoreProbe: func(ctx context.Context) error {
			return store.Probe(ctx, recordStore)
		},
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("store", cfg.StoreDriver).Msg("ledger api listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
