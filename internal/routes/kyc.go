package routes

import (
	"artvault/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupKycRoutes sets up all routes related to KYC and compliance
func SetupKycRoutes(r *gin.Engine) {
	kyc := r.Group("/kyc")
	{
		kyc.GET("/:user", handlers.GetKycStatus)
		kyc.GET("/:user/validate", handlers.ValidateTransaction)
		kyc.POST("/register", handlers.RegisterKyc)
		kyc.POST("/verify", handlers.VerifyKyc)
		kyc.POST("/initiate", handlers.InitiateKycVerification)
		kyc.POST("/result", handlers.ProcessKycResult)
		kyc.POST("/manual", handlers.ManualKycVerification)
		kyc.POST("/suspend", handlers.SuspendKyc)
		kyc.POST("/refresh", handlers.RefreshKyc)
	}

	provider := r.Group("/kyc-provider-config")
	{
		provider.GET("", handlers.GetKycProviderConfig)
		provider.PUT("", handlers.UpdateKycProviderConfig)
	}
}
