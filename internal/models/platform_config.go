package models

import (
	"time"

	"artvault/pkg/utils"
)

// PlatformConfig is the singleton governance record: admin authority, the fee
// schedule (both the basis-point pair and the legacy numerator/denominator
// pair), treasury and investment bounds. Mutated only by the admin.
type PlatformConfig struct {
	ID                     uint      `gorm:"primarykey" json:"id"`
	Admin                  string    `gorm:"size:64;not null" json:"admin"`
	PlatformFeeBps         uint16    `gorm:"not null" json:"platform_fee_bps"`
	CreatorFeeBps          uint16    `gorm:"not null" json:"creator_fee_bps"`
	DefaultRoyaltyBps      uint16    `gorm:"not null" json:"default_royalty_bps"`
	Treasury               string    `gorm:"size:64;not null" json:"treasury"`
	IsActive               bool      `gorm:"not null;default:true" json:"is_active"`
	PlatformFeeNumerator   uint16    `gorm:"not null" json:"platform_fee_numerator"`
	PlatformFeeDenominator uint16    `gorm:"not null" json:"platform_fee_denominator"`
	MinInvestmentAmount    uint64    `gorm:"not null" json:"min_investment_amount"`
	MaxInvestmentAmount    uint64    `gorm:"not null" json:"max_investment_amount"`
	InitializedAt          time.Time `gorm:"not null" json:"initialized_at"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PlatformConfig) TableName() string {
	return "platform_configs"
}

// PlatformConfigLen is the serialized byte length of the mirrored on-chain account.
const PlatformConfigLen = 8 + // discriminator
	32 + // admin
	2 + // platform_fee_bps
	2 + // creator_fee_bps
	2 + // default_royalty_bps
	32 + // treasury
	1 + // is_active
	8 + // initialized_at
	2 + // platform_fee_numerator
	2 + // platform_fee_denominator
	8 + // min_investment_amount
	8 + // max_investment_amount
	8 + // updated_at
	8 // created_at

// Space returns the on-chain account size for the platform config record.
func (PlatformConfig) Space() int {
	return PlatformConfigLen
}

// ValidateFeeStructure checks that platform and creator bps sum to 100%.
func (c *PlatformConfig) ValidateFeeStructure() bool {
	return int(c.PlatformFeeBps)+int(c.CreatorFeeBps) == utils.BpsDenominator
}

// CalculatePlatformFee returns the platform cut of a payment, floored.
func (c *PlatformConfig) CalculatePlatformFee(totalAmount uint64) (uint64, error) {
	return utils.CalculateRoyaltyAmount(totalAmount, c.PlatformFeeBps, utils.BpsDenominator)
}

// CalculateCreatorFee returns the creator cut of a payment, floored.
func (c *PlatformConfig) CalculateCreatorFee(totalAmount uint64) (uint64, error) {
	return utils.CalculateRoyaltyAmount(totalAmount, c.CreatorFeeBps, utils.BpsDenominator)
}
