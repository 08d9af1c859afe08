package models

import (
	"time"
)

// KycStatus enumerates the verification state machine:
// Pending -> InProgress -> {Verified, Rejected}; Verified -> {Expired, Suspended};
// {Expired, Failed} -> Pending via refresh. Rejected and Suspended are only
// recoverable through explicit admin action.
type KycStatus string

const (
	KycStatusPending    KycStatus = "pending"
	KycStatusInProgress KycStatus = "in_progress"
	KycStatusVerified   KycStatus = "verified"
	KycStatusRejected   KycStatus = "rejected"
	KycStatusExpired    KycStatus = "expired"
	KycStatusSuspended  KycStatus = "suspended"
	KycStatusFailed     KycStatus = "failed"
)

// KycProvider enumerates supported verification providers.
type KycProvider string

const (
	ProviderJumio   KycProvider = "jumio"
	ProviderOnfido  KycProvider = "onfido"
	ProviderSumsub  KycProvider = "sumsub"
	ProviderPersona KycProvider = "persona"
	ProviderManual  KycProvider = "manual"
)

// RiskLevel is derived from the provider risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ComplianceFlags is the set of per-check clearances a provider reports.
// Stored flattened in the kyc row; each flag is one byte on-chain.
type ComplianceFlags struct {
	AmlCleared       bool `gorm:"not null;default:false" json:"aml_cleared"`
	SanctionsCleared bool `gorm:"not null;default:false" json:"sanctions_cleared"`
	IdentityVerified bool `gorm:"not null;default:false" json:"identity_verified"`
	DocumentVerified bool `gorm:"not null;default:false" json:"document_verified"`
	AddressVerified  bool `gorm:"not null;default:false" json:"address_verified"`
}

// AllSet reports whether every compliance check has cleared.
func (f ComplianceFlags) AllSet() bool {
	return f.AmlCleared && f.SanctionsCleared && f.IdentityVerified &&
		f.DocumentVerified && f.AddressVerified
}

// EnhancedKycAccount is the full provider-backed compliance record: status
// machine, provider session, risk score, clearance flags and expiry. One row
// per user identity.
type EnhancedKycAccount struct {
	ID                     uint            `gorm:"primarykey" json:"id"`
	User                   string          `gorm:"size:64;uniqueIndex;not null" json:"user"`
	Status                 KycStatus       `gorm:"size:16;not null;default:'pending'" json:"status"`
	Provider               KycProvider     `gorm:"size:16;not null" json:"provider"`
	RegisteredAt           time.Time       `gorm:"not null" json:"registered_at"`
	VerifiedAt             *time.Time      `json:"verified_at"`
	ExpiresAt              *time.Time      `json:"expires_at"`
	LastAttemptAt          *time.Time      `json:"last_attempt_at"`
	VerificationAttempts   uint8           `gorm:"not null;default:0" json:"verification_attempts"`
	ProviderVerificationID *string         `gorm:"size:128" json:"provider_verification_id"`
	RiskScore              *uint8          `json:"risk_score"`
	ComplianceFlags        ComplianceFlags `gorm:"embedded" json:"compliance_flags"`
	ProviderMetadata       *string         `gorm:"size:256" json:"provider_metadata"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EnhancedKycAccount) TableName() string {
	return "enhanced_kyc_accounts"
}

// EnhancedKycAccountLen is the serialized byte length of the mirrored on-chain account.
const EnhancedKycAccountLen = 8 + // discriminator
	32 + // user
	1 + // status
	1 + // provider
	8 + // registered_at
	9 + // verified_at (optional i64)
	9 + // expires_at (optional i64)
	9 + // last_attempt_at (optional i64)
	1 + // verification_attempts
	4 + 128 + // provider_verification_id length prefix + string (max 128)
	2 + // risk_score (optional u8: flag + value)
	5 + // compliance flags (5 bools)
	4 + 256 // provider_metadata length prefix + string (max 256)

// Space returns the on-chain account size for an enhanced KYC record.
func (EnhancedKycAccount) Space() int {
	return EnhancedKycAccountLen
}

// IsValid reports whether the record authorizes gated transactions. A record
// in any status other than Verified never authorizes, and an expiry in the
// past invalidates a Verified record even before the sweep marks it Expired.
func (k *EnhancedKycAccount) IsValid() bool {
	if k.Status != KycStatusVerified {
		return false
	}
	if k.VerifiedAt == nil {
		return false
	}
	if k.ExpiresAt != nil && time.Now().After(*k.ExpiresAt) {
		return false
	}
	return true
}

// IsFullyCompliant requires every clearance flag.
func (k *EnhancedKycAccount) IsFullyCompliant() bool {
	return k.ComplianceFlags.AllSet()
}

// Flags returns the record's clearance flags.
func (k *EnhancedKycAccount) Flags() ComplianceFlags {
	return k.ComplianceFlags
}

// RiskLevel derives the risk band from the provider score using the given
// thresholds. A record with no score defaults to medium: the provider did not
// vouch either way.
func (k *EnhancedKycAccount) RiskLevelWith(req KycRequirements) RiskLevel {
	if k.RiskScore == nil {
		return RiskMedium
	}
	score := *k.RiskScore
	switch {
	case score >= req.RiskScoreHighThreshold:
		return RiskHigh
	case score >= req.RiskScoreMediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskLevel uses the default thresholds.
func (k *EnhancedKycAccount) RiskLevel() RiskLevel {
	return k.RiskLevelWith(DefaultKycRequirements())
}

// CanAttemptVerification checks the bounded attempt counter.
func (k *EnhancedKycAccount) CanAttemptVerification(maxAttempts uint8) bool {
	return k.VerificationAttempts < maxAttempts
}

// KycRequirements holds provider-level policy knobs: how long a verification
// stays valid, how many attempts a user gets, and where the risk bands sit.
// Stored as part of the provider configuration row.
type KycRequirements struct {
	ExpirationDays           *uint16 `json:"expiration_days"`
	MaxVerificationAttempts  uint8   `gorm:"not null;default:3" json:"max_verification_attempts"`
	RiskScoreMediumThreshold uint8   `gorm:"not null;default:40" json:"risk_score_medium_threshold"`
	RiskScoreHighThreshold   uint8   `gorm:"not null;default:70" json:"risk_score_high_threshold"`
}

// DefaultKycRequirements returns the policy used before an admin configures one.
func DefaultKycRequirements() KycRequirements {
	return KycRequirements{
		MaxVerificationAttempts:  3,
		RiskScoreMediumThreshold: 40,
		RiskScoreHighThreshold:   70,
	}
}

// KycProviderConfig is the singleton provider governance row. Mutated only by
// the platform admin.
type KycProviderConfig struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	Admin           string          `gorm:"size:64;not null" json:"admin"`
	ActiveProviders ProviderList    `gorm:"type:text;not null" json:"active_providers"`
	DefaultProvider KycProvider     `gorm:"size:16;not null" json:"default_provider"`
	Requirements    KycRequirements `gorm:"embedded;embeddedPrefix:req_" json:"requirements"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KycProviderConfig) TableName() string {
	return "kyc_provider_configs"
}

// IsProviderActive reports whether a provider may be used for new sessions.
func (c *KycProviderConfig) IsProviderActive(p KycProvider) bool {
	for _, active := range c.ActiveProviders {
		if active == p {
			return true
		}
	}
	return false
}
