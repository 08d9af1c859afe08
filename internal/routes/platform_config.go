package routes

import (
	"artvault/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPlatformConfigRoutes sets up all routes related to platform governance
func SetupPlatformConfigRoutes(r *gin.Engine) {
	platform := r.Group("/platform-config")
	{
		platform.GET("", handlers.GetPlatformConfig)
		platform.POST("", handlers.InitializePlatformConfig)
		platform.PUT("", handlers.UpdatePlatformConfig)
	}
}
