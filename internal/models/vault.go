package models

import (
	"time"

	"artvault/pkg/utils"
)

// Vault tracks a fractionalized asset: the original NFT held in custody, the
// fractional mint created for it, and the progress of the share sale. One row
// per asset, keyed by the original NFT mint. Never deleted; a redeemed vault
// is terminally closed via IsSaleActive = false.
type Vault struct {
	ID                    uint       `gorm:"primarykey" json:"id"`
	Creator               string     `gorm:"size:64;not null;index" json:"creator"`
	OriginalNftMint       string     `gorm:"size:64;uniqueIndex;not null" json:"original_nft_mint"`
	FractionalTokenMint   string     `gorm:"size:64;uniqueIndex;not null" json:"fractional_token_mint"`
	CustodyAuthority      string     `gorm:"size:64;not null" json:"custody_authority"`
	CustodyAuthorityBump  uint8      `gorm:"not null" json:"custody_authority_bump"`
	TotalFractions        uint64     `gorm:"not null" json:"total_fractions"`
	PricePerFraction      uint64     `gorm:"not null" json:"price_per_fraction"`
	FractionsSold         uint64     `gorm:"not null;default:0" json:"fractions_sold"`
	IsSaleActive          bool       `gorm:"not null;default:true" json:"is_sale_active"`
	CreatorPaymentAccount string     `gorm:"size:64;not null" json:"creator_payment_account"`
	SaleEndedAt           *time.Time `json:"sale_ended_at"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vault) TableName() string {
	return "vaults"
}

// VaultAccountLen is the serialized byte length reserved for the mirrored on-chain vault
// account. The layout must match exactly or account creation fails.
const VaultAccountLen = 8 + // discriminator
	32 + // creator
	32 + // original_nft_mint
	32 + // fractional_token_mint
	8 + // total_fractions
	8 + // price_per_fraction
	8 + // fractions_sold
	1 + // is_sale_active
	8 + // created_at
	9 // sale_ended_at (optional i64: flag + value)

// Space returns the on-chain account size for a vault record.
func (Vault) Space() int {
	return VaultAccountLen
}

// IsFullySold reports whether every fraction has been sold.
func (v *Vault) IsFullySold() bool {
	return v.FractionsSold >= v.TotalFractions
}

// RemainingFractions returns the unsold fraction count, saturating at zero.
func (v *Vault) RemainingFractions() uint64 {
	if v.FractionsSold >= v.TotalFractions {
		return 0
	}
	return v.TotalFractions - v.FractionsSold
}

// TotalValue returns total_fractions * price_per_fraction with overflow
// checking. A vault sized so large that its value wraps a uint64 must fail
// here, not silently truncate.
func (v *Vault) TotalValue() (uint64, error) {
	return utils.CheckedMul(v.TotalFractions, v.PricePerFraction)
}

// SoldValue returns fractions_sold * price_per_fraction with overflow checking.
func (v *Vault) SoldValue() (uint64, error) {
	return utils.CheckedMul(v.FractionsSold, v.PricePerFraction)
}

// PurchaseRecord is the audit trail row written for every completed buy.
type PurchaseRecord struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	VaultID       uint      `gorm:"not null;index" json:"vault_id"`
	Buyer         string    `gorm:"size:64;not null;index" json:"buyer"`
	NumFractions  uint64    `gorm:"not null" json:"num_fractions"`
	TotalCost     uint64    `gorm:"not null" json:"total_cost"`
	PlatformFee   uint64    `gorm:"not null" json:"platform_fee"`
	CreatorAmount uint64    `gorm:"not null" json:"creator_amount"`
	TxSignature   string    `gorm:"size:128;default:''" json:"tx_signature"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PurchaseRecord) TableName() string {
	return "purchase_records"
}

// VaultSaleSnapshot records periodic sale progress for reporting.
type VaultSaleSnapshot struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	VaultID        uint      `gorm:"not null;index" json:"vault_id"`
	FractionsSold  uint64    `gorm:"not null" json:"fractions_sold"`
	TotalFractions uint64    `gorm:"not null" json:"total_fractions"`
	SoldValue      uint64    `gorm:"not null" json:"sold_value"`
	IsSaleActive   bool      `gorm:"not null" json:"is_sale_active"`
	RecordedAt     time.Time `gorm:"autoCreateTime" json:"recorded_at"`
}

func (VaultSaleSnapshot) TableName() string {
	return "vault_sale_snapshots"
}
