package handlers

import (
	"net/http"

	"artvault/internal/handlers/business"

	"github.com/gin-gonic/gin"
)

// PlatformConfigRequest is the request body for initializing or updating the
// platform configuration.
type PlatformConfigRequest struct {
	Admin               string `json:"admin" binding:"required"`
	PlatformFeeBps      uint16 `json:"platform_fee_bps"`
	CreatorFeeBps       uint16 `json:"creator_fee_bps"`
	DefaultRoyaltyBps   uint16 `json:"default_royalty_bps"`
	Treasury            string `json:"treasury" binding:"required"`
	MinInvestmentAmount uint64 `json:"min_investment_amount"`
	MaxInvestmentAmount uint64 `json:"max_investment_amount"`
	FeeNumerator        uint16 `json:"platform_fee_numerator"`
	FeeDenominator      uint16 `json:"platform_fee_denominator"`
	IsActive            *bool  `json:"is_active"`
}

func platformParams(req PlatformConfigRequest) business.PlatformParams {
	return business.PlatformParams{
		PlatformFeeBps:      req.PlatformFeeBps,
		CreatorFeeBps:       req.CreatorFeeBps,
		DefaultRoyaltyBps:   req.DefaultRoyaltyBps,
		Treasury:            req.Treasury,
		MinInvestmentAmount: req.MinInvestmentAmount,
		MaxInvestmentAmount: req.MaxInvestmentAmount,

		PlatformFeeNumerator:   req.FeeNumerator,
		PlatformFeeDenominator: req.FeeDenominator,
	}
}

// InitializePlatformConfig creates the singleton platform configuration.
func InitializePlatformConfig(c *gin.Context) {
	var req PlatformConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := platformEngine.Initialize(c.Request.Context(), req.Admin, platformParams(req))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// UpdatePlatformConfig replaces the fee schedule and bounds.
func UpdatePlatformConfig(c *gin.Context) {
	var req PlatformConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := platformEngine.Update(req.Admin, platformParams(req), req.IsActive)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetPlatformConfig returns the platform configuration.
func GetPlatformConfig(c *gin.Context) {
	cfg, err := platformEngine.Get()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
