package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/freshtrack-backend/internal/handlers"
	"github.com/yungbote/freshtrack-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName     string
	AllowedOrigins  []string
	AuthMiddleware  *middleware.AuthMiddleware
	SessionHandler  *handlers.SessionHandler
	ActivityHandler *handlers.ActivityHandler
	StreamHandler   *handlers.StreamHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-User-ID", "X-Session-ID"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/", handlers.ServiceDescriptor)
	router.GET("/healthcheck", handlers.HealthCheck)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireIdentity())
	{
		api.POST("/sessions/start", cfg.SessionHandler.Start)
		api.POST("/sessions/:sessionId/end", cfg.SessionHandler.End)
		api.POST("/sessions/:sessionId/pause", cfg.SessionHandler.Pause)
		api.POST("/sessions/:sessionId/resume", cfg.SessionHandler.Resume)
		api.GET("/sessions", cfg.SessionHandler.List)
		api.GET("/sessions/:sessionId", cfg.SessionHandler.Get)
		api.GET("/sessions/:sessionId/activities", cfg.SessionHandler.Activities)
		api.GET("/sessions/:sessionId/summary", cfg.SessionHandler.Summary)
		api.GET("/sessions/:sessionId/status", cfg.SessionHandler.Status)
		api.GET("/sessions/:sessionId/stream", cfg.StreamHandler.Stream)
		api.POST("/sessions/:sessionId/stream/control", cfg.StreamHandler.Control)
		api.POST("/activity", cfg.ActivityHandler.Track)
		api.POST("/webhooks/github", cfg.ActivityHandler.GitHubWebhook)
	}

	return router
}
