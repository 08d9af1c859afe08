package handlers

import (
	"net/http"

	"artvault/internal/handlers/business"
	"artvault/internal/models"
	dbconfig "artvault/pkg/config"

	"github.com/gin-gonic/gin"
)

// RegisterKycRequest creates an unverified minimal KYC record.
type RegisterKycRequest struct {
	User               string  `json:"user" binding:"required"`
	VerificationMethod string  `json:"verification_method" binding:"required"`
	Email              *string `json:"email"`
	Country            *string `json:"country"`
}

// VerifyKycRequest marks a minimal record verified. Admin action.
type VerifyKycRequest struct {
	Admin              string `json:"admin" binding:"required"`
	User               string `json:"user" binding:"required"`
	VerificationMethod string `json:"verification_method" binding:"required"`
	VerificationLevel  uint8  `json:"verification_level"`
}

// InitiateKycRequest opens a provider verification session. Contact details
// are handed to the provider for notifications.
type InitiateKycRequest struct {
	User     string  `json:"user" binding:"required"`
	Provider string  `json:"provider" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    *string `json:"phone"`
}

// KycResultRequest carries a provider callback outcome. Admin action.
type KycResultRequest struct {
	Admin          string                 `json:"admin" binding:"required"`
	User           string                 `json:"user" binding:"required"`
	VerificationID string                 `json:"verification_id" binding:"required"`
	Verified       bool                   `json:"verified"`
	RiskScore      *uint8                 `json:"risk_score"`
	Flags          models.ComplianceFlags `json:"flags"`
	Metadata       *string                `json:"metadata"`
}

// ManualKycRequest settles a record directly. Admin action.
type ManualKycRequest struct {
	Admin     string                 `json:"admin" binding:"required"`
	User      string                 `json:"user" binding:"required"`
	Verified  bool                   `json:"verified"`
	RiskScore *uint8                 `json:"risk_score"`
	Flags     models.ComplianceFlags `json:"flags"`
	Notes     *string                `json:"notes"`
}

// SuspendKycRequest forces a record into the suspended state. Admin action.
type SuspendKycRequest struct {
	Admin  string  `json:"admin" binding:"required"`
	User   string  `json:"user" binding:"required"`
	Reason *string `json:"reason"`
}

// RefreshKycRequest resets an expired or failed record.
type RefreshKycRequest struct {
	User     string  `json:"user" binding:"required"`
	Provider *string `json:"provider"`
}

// ProviderConfigRequest replaces the provider governance row. Admin action.
type ProviderConfigRequest struct {
	Admin           string                 `json:"admin" binding:"required"`
	ActiveProviders []string               `json:"active_providers" binding:"required"`
	DefaultProvider string                 `json:"default_provider" binding:"required"`
	Requirements    models.KycRequirements `json:"requirements"`
}

// RegisterKyc creates a minimal KYC record for a user.
func RegisterKyc(c *gin.Context) {
	var req RegisterKycRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := complianceEngine.RegisterSimple(c.Request.Context(), req.User,
		models.VerificationMethod(req.VerificationMethod), req.Email, req.Country)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// VerifyKyc marks a minimal record verified at a level.
func VerifyKyc(c *gin.Context) {
	var req VerifyKycRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := complianceEngine.VerifySimple(req.Admin, req.User,
		models.VerificationMethod(req.VerificationMethod), req.VerificationLevel)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// InitiateKycVerification opens a provider session and returns the record
// with its verification id.
func InitiateKycVerification(c *gin.Context) {
	var req InitiateKycRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := complianceEngine.InitiateVerification(c.Request.Context(), req.User, models.KycProvider(req.Provider), req.Email, req.Phone)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ProcessKycResult applies a provider callback outcome.
func ProcessKycResult(c *gin.Context) {
	var req KycResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := complianceEngine.ProcessVerificationResult(req.Admin, business.ProcessResultParams{
		User:           req.User,
		VerificationID: req.VerificationID,
		Verified:       req.Verified,
		RiskScore:      req.RiskScore,
		Flags:          req.Flags,
		Metadata:       req.Metadata,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ManualKycVerification settles a record without a provider.
func ManualKycVerification(c *gin.Context) {
	var req ManualKycRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := complianceEngine.ManualVerification(req.Admin, req.User, req.Verified, req.RiskScore, req.Flags, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SuspendKyc forces a record into the suspended state.
func SuspendKyc(c *gin.Context) {
	var req SuspendKycRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := complianceEngine.Suspend(req.Admin, req.User, req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// RefreshKyc resets an expired or failed record to pending.
func RefreshKyc(c *gin.Context) {
	var req RefreshKycRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var provider *models.KycProvider
	if req.Provider != nil {
		p := models.KycProvider(*req.Provider)
		provider = &p
	}
	record, err := complianceEngine.Refresh(req.User, provider)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// UpdateKycProviderConfig replaces the provider governance row.
func UpdateKycProviderConfig(c *gin.Context) {
	var req ProviderConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	providers := make([]models.KycProvider, 0, len(req.ActiveProviders))
	for _, p := range req.ActiveProviders {
		providers = append(providers, models.KycProvider(p))
	}
	cfg, err := complianceEngine.UpdateProviderConfig(req.Admin, providers, models.KycProvider(req.DefaultProvider), req.Requirements)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetKycStatus returns the strongest compliance record for a user plus the
// derived validity summary.
func GetKycStatus(c *gin.Context) {
	user := c.Param("user")
	record, err := complianceEngine.ComplianceRecord(user)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"record":          record,
		"is_valid":        record.IsValid(),
		"fully_compliant": record.IsFullyCompliant(),
		"risk_level":      record.RiskLevel(),
		"flags":           record.Flags(),
	})
}

// ValidateTransaction checks whether a user may perform a gated operation.
func ValidateTransaction(c *gin.Context) {
	user := c.Param("user")
	txType := business.TransactionType(c.DefaultQuery("type", string(business.TransactionPurchase)))

	if err := complianceEngine.ValidateForTransaction(user, txType); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user, "type": txType, "allowed": false, "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "type": txType, "allowed": true})
}

// GetKycProviderConfig returns the provider governance row.
func GetKycProviderConfig(c *gin.Context) {
	var cfg models.KycProviderConfig
	if err := dbconfig.DB.First(&cfg).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
