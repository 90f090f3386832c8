package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/pinfield/backend/internal/api/handlers"
	"github.com/pinfield/backend/internal/config"
	"github.com/pinfield/backend/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.WebSocketCORSCheck(cfg))

	// CRITICAL: No-cache middleware MUST be first in development
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			// Aggressive no-cache for development
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] Aggressive no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Health check (also available at /api/v1/health)
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(cfg))

		// Layout endpoints
		layouts := v1.Group("/layouts")
		{
			layouts.GET("", handlers.ListLayouts(db))
			layouts.POST("", handlers.CreateLayout(db))
			layouts.GET("/:id", handlers.GetLayout(db))
			layouts.PUT("/:id", handlers.UpdateLayout(db))
			layouts.DELETE("/:id", handlers.DeleteLayout(db))
		}

		// Session endpoints
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(db))
			sessions.GET("", handlers.ListSessions())
			sessions.GET("/:token", handlers.GetSession(db))
			sessions.DELETE("/:token", handlers.CloseSession())
			sessions.GET("/:token/events", handlers.GetSessionEvents(db))
			sessions.GET("/:token/ws", handlers.HandleSessionWebSocket())
		}

		// Operator endpoints
		operator := v1.Group("/operator")
		{
			operator.POST("/login", handlers.OperatorLogin(db, cfg))

			authed := operator.Group("")
			authed.Use(handlers.OperatorAuthMiddleware(cfg))
			{
				authed.GET("/me", handlers.OperatorMe(db))
				authed.GET("/config", handlers.GetOperatorRuntimeConfig(db))
				authed.PUT("/config/:key", handlers.UpdateOperatorRuntimeConfig(db, cfg))
				authed.GET("/audit", handlers.GetOperatorAuditLogs(db))
			}
		}
	}
}
