package routes

import (
	"artvault/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupVaultRoutes sets up all routes related to vault lifecycle management
func SetupVaultRoutes(r *gin.Engine) {
	vault := r.Group("/vault")
	{
		vault.GET("", handlers.ListVaults)
		vault.GET("/slice", handlers.ListVaultsSlice)
		vault.GET("/:mint", handlers.GetVault)
		vault.GET("/:mint/ownership", handlers.GetVaultOwnership)
		vault.GET("/:mint/purchases", handlers.ListVaultPurchases)
		vault.POST("/fractionalize", handlers.FractionalizeVault)
		vault.POST("/buy", handlers.BuyFractions)
		vault.POST("/redeem", handlers.RedeemVault)
	}
}
