package routes

import (
	"artvault/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupArtworkRoutes sets up all routes related to artwork metadata
func SetupArtworkRoutes(r *gin.Engine) {
	artwork := r.Group("/artwork-metadata")
	{
		artwork.GET("", handlers.ListArtworkMetadata)
		artwork.GET("/:mint", handlers.GetArtworkMetadata)
		artwork.POST("", handlers.UpsertArtworkMetadata)
	}
}
