package routes

import (
	"os"
	"strings"

	"artvault/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Any("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	// CORS: only origins listed in ALLOWED_ORIGINS (comma-separated) are echoed back.
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS")
		var allowedOrigins []string
		if allowedOriginsStr != "" {
			for _, o := range strings.Split(allowedOriginsStr, ",") {
				trimmed := strings.TrimSpace(o)
				if trimmed != "" {
					allowedOrigins = append(allowedOrigins, trimmed)
				}
			}
		}

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}
		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Use(middleware.RateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 20,
		Burst:             40,
	}))

	SetupVaultRoutes(r)
	SetupKycRoutes(r)
	SetupPlatformConfigRoutes(r)
	SetupArtworkRoutes(r)

	return r
}
