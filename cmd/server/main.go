package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/database"
	"github.com/campusworks/review-portal/internal/handler"
	"github.com/campusworks/review-portal/internal/logger"
	"github.com/campusworks/review-portal/internal/repository"
	"github.com/campusworks/review-portal/internal/router"
	"github.com/campusworks/review-portal/internal/service"
	"github.com/campusworks/review-portal/internal/validator"
	"github.com/campusworks/review-portal/internal/worker"
	"github.com/campusworks/review-portal/internal/ws"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Review Portal")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	marksRepo := repository.NewMarksRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	panelRepo := repository.NewPanelRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	finalSheetRepo := repository.NewFinalSheetRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	otpService := service.NewOTPService(cfg, rdb)
	mailer := service.NewMailer(cfg)
	reviewService := service.NewReviewService(projectRepo, memberRepo, marksRepo, responseRepo, rdb)
	finalSheetService := service.NewFinalSheetService(projectRepo, memberRepo, marksRepo, finalSheetRepo)
	reportService := service.NewReportService(cfg, reviewService, finalSheetService, projectRepo, memberRepo, reportRepo)
	rosterService := service.NewRosterService(cfg, projectRepo, memberRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	hub := ws.NewHub(rdb)
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, otpService, mailer, userRepo),
		Group:      handler.NewGroupHandler(projectRepo, memberRepo, panelRepo),
		Review:     handler.NewReviewHandler(reviewService),
		Report:     handler.NewReportHandler(reportService),
		FinalSheet: handler.NewFinalSheetHandler(finalSheetService),
		Roster:     handler.NewRosterHandler(cfg, rosterService),
		WS:         handler.NewWSHandler(hub, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	go hub.Run(workerCtx)

	janitor := worker.NewReportJanitor(cfg, reportRepo, log)
	go janitor.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()

	log.Info().Msg("Shutdown complete")
}
