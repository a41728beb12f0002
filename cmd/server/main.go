package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/config"
	"github.com/stemsi/exstem-enroll/internal/database"
	"github.com/stemsi/exstem-enroll/internal/handler"
	"github.com/stemsi/exstem-enroll/internal/logger"
	"github.com/stemsi/exstem-enroll/internal/middleware"
	"github.com/stemsi/exstem-enroll/internal/monitoring"
	"github.com/stemsi/exstem-enroll/internal/quiz"
	"github.com/stemsi/exstem-enroll/internal/repository"
	"github.com/stemsi/exstem-enroll/internal/router"
	"github.com/stemsi/exstem-enroll/internal/service"
	"github.com/stemsi/exstem-enroll/internal/session"
	"github.com/stemsi/exstem-enroll/internal/validator"
	"github.com/stemsi/exstem-enroll/web"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("assessment_mode", string(cfg.AssessmentMode)).
		Str("store", cfg.StoreDriver).
		Str("session_store", cfg.SessionStore).
		Msg("Starting ExStem Enroll")

	// ─── Initialize Validator & Metrics ────────────────────────────────
	validator.Setup()
	monitoring.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handler.HealthCheck{}

	// ─── Student Store ─────────────────────────────────────────────────
	store, pool, err := repository.OpenStudentStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to open student store")
	}
	if pool != nil {
		defer pool.Close()
		checks["postgres"] = pool.Ping
	}

	// ─── Session Store ─────────────────────────────────────────────────
	var sessions session.Store
	switch cfg.SessionStore {
	case "redis":
		var rdb *redis.Client
		rdb, err = database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	default:
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	// ─── File Storage ──────────────────────────────────────────────────
	photos, err := service.NewStorageProvider(ctx, cfg, cfg.UploadDir, "/static/uploads/photos", "photos")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize photo storage")
	}
	snapshots, err := service.NewStorageProvider(ctx, cfg, cfg.SnapshotDir, "", "snapshots")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize snapshot storage")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	mediaService := service.NewMediaService(photos, snapshots, cfg.MaxUploadBytes, log)
	studentService := service.NewStudentService(store, authService, mediaService, log)
	assessmentService := service.NewAssessmentService(
		quiz.Default(),
		service.NewAttemptTracker(cfg.AssessmentMode, store),
		log,
	)

	sessionManager := middleware.NewSessionManager(authService, sessions, cfg.CookieSecure, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(studentService, sessionManager, log),
		Portal:     handler.NewStudentPortalHandler(studentService, assessmentService, sessionManager, log),
		Assessment: handler.NewAssessmentHandler(assessmentService, log),
		Media:      handler.NewMediaHandler(mediaService, log),
		System:     handler.NewSystemHandler(checks, log),
	}

	templates, err := web.Templates()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit)
	limiterDone := make(chan struct{})
	go authLimiter.RunCleanup(limiterDone, time.Minute)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, router.Options{
		Sessions:    sessionManager,
		AuthLimiter: authLimiter,
		Templates:   templates,
		Log:         log,
	}, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
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
	close(limiterDone)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
