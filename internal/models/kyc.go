package models

import (
	"time"
)

// VerificationMethod enumerates how a simple KYC record was verified.
type VerificationMethod string

const (
	MethodAdminApproval      VerificationMethod = "admin_approval"
	MethodEmailVerification  VerificationMethod = "email_verification"
	MethodSocialVerification VerificationMethod = "social_verification"
	MethodDocumentUpload     VerificationMethod = "document_upload"
	MethodPhoneVerification  VerificationMethod = "phone_verification"
)

// Description returns a human-readable label for the verification method.
func (m VerificationMethod) Description() string {
	switch m {
	case MethodAdminApproval:
		return "Admin Approved"
	case MethodEmailVerification:
		return "Email Verified"
	case MethodSocialVerification:
		return "Social Media Verified"
	case MethodDocumentUpload:
		return "Document Verified"
	case MethodPhoneVerification:
		return "Phone Verified"
	default:
		return "Unknown"
	}
}

// MaxVerificationLevel caps simple KYC levels at 3.
const MaxVerificationLevel = 3

// SimpleKycAccount is the minimal compliance record: a verified flag plus a
// 0-3 verification level. One row per user identity.
type SimpleKycAccount struct {
	ID                 uint               `gorm:"primarykey" json:"id"`
	User               string             `gorm:"size:64;uniqueIndex;not null" json:"user"`
	IsVerified         bool               `gorm:"not null;default:false" json:"is_verified"`
	VerificationMethod VerificationMethod `gorm:"size:32;not null" json:"verification_method"`
	VerifiedAt         *time.Time         `json:"verified_at"`
	Email              *string            `gorm:"size:64" json:"email"`
	Country            *string            `gorm:"size:32" json:"country"`
	VerificationLevel  uint8              `gorm:"not null;default:0" json:"verification_level"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SimpleKycAccount) TableName() string {
	return "simple_kyc_accounts"
}

// SimpleKycAccountLen is the serialized byte length of the mirrored on-chain account.
const SimpleKycAccountLen = 8 + // discriminator
	32 + // user
	1 + // is_verified
	1 + // verification_method
	8 + // verified_at
	4 + 64 + // email length prefix + string (max 64)
	4 + 32 + // country length prefix + string (max 32)
	1 + // verification_level
	8 // padding

// Space returns the on-chain account size for a simple KYC record.
func (SimpleKycAccount) Space() int {
	return SimpleKycAccountLen
}

// IsValid reports whether the record authorizes gated transactions: the user
// must be verified at level 1 or above.
func (k *SimpleKycAccount) IsValid() bool {
	return k.IsVerified && k.VerificationLevel >= 1
}

// CanPerformHighValueTransactions requires verification level 2 or above.
func (k *SimpleKycAccount) CanPerformHighValueTransactions() bool {
	return k.IsVerified && k.VerificationLevel >= 2
}

// RiskLevel for the minimal record derives only from the verified flag: an
// unverified user is always treated as high risk, a verified one as low.
func (k *SimpleKycAccount) RiskLevel() RiskLevel {
	if !k.IsVerified {
		return RiskHigh
	}
	return RiskLow
}

// Flags maps the minimal record onto the extended flag set. A verified simple
// account clears only the identity check; all provider-driven flags stay unset.
func (k *SimpleKycAccount) Flags() ComplianceFlags {
	return ComplianceFlags{IdentityVerified: k.IsVerified, AmlCleared: k.IsVerified}
}

// IsFullyCompliant for the minimal record requires high-value clearance.
func (k *SimpleKycAccount) IsFullyCompliant() bool {
	return k.CanPerformHighValueTransactions()
}
