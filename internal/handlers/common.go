package handlers

import (
	"errors"
	"net/http"

	"artvault/internal/handlers/business"
	"artvault/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Engines shared by all handlers. Wired once at startup via Init.
var (
	vaultEngine      *business.VaultEngine
	complianceEngine *business.ComplianceEngine
	platformEngine   *business.PlatformEngine
)

// Init wires the handler layer to its business engines.
func Init(vault *business.VaultEngine, compliance *business.ComplianceEngine, platform *business.PlatformEngine) {
	vaultEngine = vault
	complianceEngine = compliance
	platformEngine = platform
}

// statusFor maps a domain error onto an HTTP status code. Unknown errors are
// treated as internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, business.ErrKycAccountNotFound),
		errors.Is(err, business.ErrPlatformNotInitialized):
		return http.StatusNotFound
	case errors.Is(err, business.ErrUnauthorizedAccess),
		errors.Is(err, business.ErrPlatformAuthorityMismatch),
		errors.Is(err, business.ErrKycNotVerified),
		errors.Is(err, business.ErrKycComplianceIncomplete),
		errors.Is(err, business.ErrKycRiskLevelTooHigh):
		return http.StatusForbidden
	case errors.Is(err, business.ErrKycAccountAlreadyExists),
		errors.Is(err, business.ErrVaultAccountAlreadyExists),
		errors.Is(err, business.ErrFractionalMintAlreadyExists),
		errors.Is(err, business.ErrPlatformAlreadyInitialized),
		errors.Is(err, business.ErrInvalidVaultState):
		return http.StatusConflict
	case errors.Is(err, business.ErrInvalidTotalFractions),
		errors.Is(err, business.ErrInvalidPrice),
		errors.Is(err, business.ErrInvalidAmount),
		errors.Is(err, business.ErrSaleNotActive),
		errors.Is(err, business.ErrInsufficientFractions),
		errors.Is(err, business.ErrInsufficientTokens),
		errors.Is(err, business.ErrVaultNotReadyForRedemption),
		errors.Is(err, business.ErrKycVerificationLimitExceeded),
		errors.Is(err, business.ErrKycRefreshNotAllowed),
		errors.Is(err, business.ErrKycVerificationNotAllowed),
		errors.Is(err, business.ErrInvalidVerificationId),
		errors.Is(err, business.ErrInvalidKycProvider),
		errors.Is(err, utils.ErrMathOverflow),
		errors.Is(err, utils.ErrInvalidRoyaltyFee):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
