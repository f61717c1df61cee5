package http

import (
	"github.com/gin-gonic/gin"

	"github.com/xrpyield/bridge-backend/internal/handler"
	"github.com/xrpyield/bridge-backend/internal/utils/config"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler, appConfig *config.AppConfig, logger *logger.Logger) {
	v1 := r.Group("/api/v1")

	bridge := v1.Group("/bridge")
	{
		bridge.POST("", h.BridgeHandler.Execute)
		bridge.GET("/:id", h.BridgeHandler.GetStatus)
		bridge.GET("/history/:address", h.BridgeHandler.GetHistory)
		bridge.POST("/:id/resume", h.BridgeHandler.Resume)
		bridge.POST("/:id/cancel", h.BridgeHandler.Cancel)
	}

	deposits := v1.Group("/deposits")
	{
		deposits.GET("/:address", h.BridgeHandler.GetDepositBalance)
	}

	healthGroup := v1.Group("/health")
	{
		healthGroup.GET("/db", h.HealthHandler.Database)
		healthGroup.GET("/external", h.HealthHandler.External)
	}

	r.GET("/healthz", h.HealthHandler.Basic)
	r.GET("/metrics", h.MetricsHandler.Handler())
}
