package router

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/appeals-backend/internal/config"
	"github.com/ignatzorin/appeals-backend/internal/http/handlers"
	"github.com/ignatzorin/appeals-backend/internal/http/middleware"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/handler"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/response"
)

func SetupRouter(
	cfg *config.Config,
	rateLimitStore limiter.Store,
	authenticator middleware.Authenticator,
	authHandler *handler.AuthHandler,
	appealHandler *handler.AppealHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	if cfg.SentryDSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true, WaitForDelivery: false}))
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "маршрут не найден")
	})

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authRateLimit := middleware.RateLimitMiddleware(rateLimitStore, "auth", cfg.RateLimitLimit, cfg.RateLimitPeriod)
		authGroup.POST("/google", authRateLimit, authHandler.Google)
		authGroup.POST("/guest", authRateLimit, authHandler.Guest)
		authGroup.GET("/me", middleware.AuthMiddleware(authenticator), authHandler.Me)
	}

	appeals := api.Group("/appeals")
	appeals.Use(middleware.AuthMiddleware(authenticator))
	{
		submitRateLimit := middleware.RateLimitMiddleware(rateLimitStore, "submit", cfg.RateLimitLimit, cfg.RateLimitPeriod)
		appeals.POST("", submitRateLimit, appealHandler.Submit)
		appeals.GET("", appealHandler.List)
		appeals.GET("/:id", middleware.UUIDValidator("id"), appealHandler.Get)
		appeals.POST("/:id/decision", middleware.UUIDValidator("id"), appealHandler.Decide)
		appeals.POST("/:id/insight", middleware.UUIDValidator("id"), appealHandler.Insight)
	}

	// Токен в query: браузерный WebSocket не передаёт заголовок Authorization.
	api.GET("/ws", wsHandler.Handle)

	return r
}
