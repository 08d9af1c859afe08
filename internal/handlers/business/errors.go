package business

import (
	"errors"

	"artvault/pkg/utils"
)

// Domain errors surfaced verbatim to callers. Every operation either fully
// applies its state changes or fails with one of these; nothing is retried
// internally.
var (
	// Input validation
	ErrInvalidTotalFractions = errors.New("invalid total fractions - must be greater than 0")
	ErrInvalidPrice          = errors.New("invalid price per fraction - must be greater than 0")
	ErrInvalidAmount         = errors.New("invalid amount - must be greater than 0")
	ErrInvalidRoyaltyFee     = utils.ErrInvalidRoyaltyFee

	// State preconditions
	ErrSaleNotActive              = errors.New("sale is not active")
	ErrInsufficientFractions      = errors.New("insufficient fractions available for purchase")
	ErrInsufficientTokens         = errors.New("insufficient tokens for redemption - must own all fractional tokens")
	ErrVaultNotReadyForRedemption = errors.New("vault is not ready for redemption - not all fractions sold")
	ErrInvalidVaultState          = errors.New("invalid vault state")

	// Arithmetic
	ErrMathOverflow = utils.ErrMathOverflow

	// Authorization
	ErrUnauthorizedAccess        = errors.New("unauthorized access - admin authority required")
	ErrPlatformAuthorityMismatch = errors.New("platform authority mismatch")

	// Compliance
	ErrKycNotVerified               = errors.New("KYC verification required to perform this transaction")
	ErrKycComplianceIncomplete      = errors.New("KYC compliance incomplete")
	ErrKycRiskLevelTooHigh          = errors.New("KYC risk level too high")
	ErrKycVerificationLimitExceeded = errors.New("KYC verification limit exceeded")
	ErrKycRefreshNotAllowed         = errors.New("KYC refresh not allowed")
	ErrKycVerificationNotAllowed    = errors.New("KYC verification cannot be initiated from the current status")
	ErrInvalidVerificationId        = errors.New("invalid verification ID")
	ErrInvalidKycProvider           = errors.New("invalid KYC provider")
	ErrKycAccountNotFound           = errors.New("KYC account not found")

	// Duplication
	ErrKycAccountAlreadyExists     = errors.New("KYC account already exists")
	ErrVaultAccountAlreadyExists   = errors.New("vault account already exists")
	ErrFractionalMintAlreadyExists = errors.New("fractional token mint already exists")
	ErrPlatformAlreadyInitialized  = errors.New("platform configuration already initialized")
	ErrPlatformNotInitialized      = errors.New("platform configuration not initialized")
)
