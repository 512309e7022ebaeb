package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/config"
	"github.com/smb564/21-points/internal/handler"
	"github.com/smb564/21-points/internal/middleware"
	"github.com/smb564/21-points/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	UserSettings *handler.UserSettingsHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// The rate limiter is owned by the caller so it can be stopped on shutdown.
func SetupRouter(handlers *Handlers, limiter *middleware.RateLimiter, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	ns := cfg.AppNamespace
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{
		response.HeaderRequestID,
		"X-Total-Count",
		"Link",
		"Location",
		config.Key.AlertHeader(ns),
		config.Key.ErrorHeader(ns),
		config.Key.ParamsHeader(ns),
	}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware(log))

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── REST API ──────────────────────────────────────────────────────
	api := router.Group("/api")
	api.Use(middleware.NoCache())
	if limiter != nil {
		api.Use(limiter.Middleware())
	}
	{
		us := handlers.UserSettings
		api.POST("/user-settings", us.Create)
		api.PUT("/user-settings", us.Update)
		api.PUT("/user-settings/:id", us.Update)
		api.GET("/user-settings", us.GetAll)
		api.GET("/user-settings/:id", us.GetByID)
		api.DELETE("/user-settings/:id", us.Delete)

		api.GET("/_search/user-settings", us.Search)
		api.GET("/_search/user-settings/:id", us.SearchByID)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	router.GET("/ws/user-settings/updates", handlers.WS.UserSettingsUpdates)

	return router
}
