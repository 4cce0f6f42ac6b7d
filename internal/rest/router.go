package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/remindly/remindly/internal/api/v1"
	"github.com/remindly/remindly/internal/config"
	"github.com/remindly/remindly/internal/logger"
	"github.com/remindly/remindly/internal/rest/middleware"
	"github.com/remindly/remindly/internal/types"
)

// NewRouter wires the HTTP surface the mobile settings UI talks to.
func NewRouter(
	cfg *config.Configuration,
	log *logger.Logger,
	entitlementHandler *v1.EntitlementHandler,
) *gin.Engine {
	if cfg.Deployment.Mode != types.DeploymentModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.RecoveryWithWriter(log.GetGinLogger()),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.SentryUserContextMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandlerMiddleware(log),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	entitlements := router.Group("/v1/entitlements")
	{
		entitlements.POST("/refresh", entitlementHandler.Refresh)
		entitlements.POST("/clear", entitlementHandler.Clear)
		entitlements.GET("/debug", entitlementHandler.Debug)
		entitlements.GET("/:user_id", entitlementHandler.GetEffectiveStatus)
		entitlements.GET("/:user_id/features/:key", entitlementHandler.CheckFeature)
	}

	return router
}
