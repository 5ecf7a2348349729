package routes

import (
	"pharmacy_backend/internal/handlers"
	"pharmacy_backend/internal/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes mounts the HTTP API under /api/v1 and the swagger UI.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	guards handlers.RouteGuards,
) {
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.HealthHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api, guards)
		appHandlers.PrescriptionHandler.RegisterRoutes(api, guards)
		appHandlers.ResponseHandler.RegisterRoutes(api, guards)
	}

	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logger.Info("HTTP routes registered", "count", len(ginRouter.Routes()))
}
