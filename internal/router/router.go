package router

import (
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/config"
	"github.com/stemsi/exstem-enroll/internal/handler"
	"github.com/stemsi/exstem-enroll/internal/middleware"
	"github.com/stemsi/exstem-enroll/internal/monitoring"
	"github.com/stemsi/exstem-enroll/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Portal     *handler.StudentPortalHandler
	Assessment *handler.AssessmentHandler
	Media      *handler.MediaHandler
	System     *handler.SystemHandler
}

// Options carries the pieces the router wires into middleware.
type Options struct {
	Sessions    *middleware.SessionManager
	AuthLimiter *middleware.RateLimiter
	Templates   *template.Template
	Log         zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, opts Options, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	// Request ID first so recovery and access logs can reference it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.AccessLog(opts.Log))
	router.Use(middleware.Recovery(opts.Log))
	router.Use(monitoring.MetricsMiddleware())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:       middleware.DefaultBrotliConfig.Quality,
		MinLength:     middleware.DefaultBrotliConfig.MinLength,
		ExcludedPaths: []string{"/static/uploads"},
	}))

	router.SetHTMLTemplate(opts.Templates)

	// Registration photos, when stored locally. Snapshots are never served.
	if cfg.StorageType == "" || cfg.StorageType == "local" {
		uploads := router.Group("/static/uploads")
		uploads.Use(middleware.CacheControl(31536000))
		{
			uploads.Static("/photos", cfg.UploadDir)
		}
	}

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", monitoring.PrometheusHandler())

	// ─── Pages (browser session) ───────────────────────────────────────
	pages := router.Group("/")
	pages.Use(opts.Sessions.Middleware(), middleware.NoStore())
	{
		pages.GET("/", handlers.Auth.RegisterForm)
		pages.POST("/",
			opts.AuthLimiter.Middleware(),
			middleware.BodyLimit(cfg.MaxUploadBytes+formOverheadBytes),
			handlers.Auth.Register,
		)
		pages.GET("/login", handlers.Auth.LoginForm)
		pages.POST("/login", opts.AuthLimiter.Middleware(), handlers.Auth.Login)
		pages.GET("/logout", handlers.Auth.Logout)
	}

	student := pages.Group("/")
	student.Use(middleware.RequireLogin())
	{
		student.GET("/dashboard", handlers.Portal.Dashboard)
		student.GET("/assessment", handlers.Assessment.Show)
		student.POST("/assessment", handlers.Assessment.Submit)
		student.GET("/result", handlers.Assessment.Result)
	}

	// Snapshot capture only exists when the attempt lives in the session.
	if cfg.AssessmentMode == config.AssessmentModeSession {
		student.GET("/continue", handlers.Portal.Continue)
		router.POST("/save_snapshot",
			middleware.BodyLimit(snapshotBodyLimit(cfg.MaxUploadBytes)),
			handlers.Media.SaveSnapshot,
		)
	}

	return router
}

// formOverheadBytes covers the text fields sent next to the photo.
const formOverheadBytes = 64 << 10

// snapshotBodyLimit allows for base64 growth (4/3) and the data URL prefix.
func snapshotBodyLimit(maxImage int64) int64 {
	if maxImage <= 0 {
		return 0
	}
	return maxImage*4/3 + formOverheadBytes
}
