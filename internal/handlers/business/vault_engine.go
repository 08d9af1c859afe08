package business

import (
	"context"
	"errors"
	"time"

	"artvault/internal/models"
	"artvault/pkg/chain"
	dbconfig "artvault/pkg/config"
	"artvault/pkg/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Purchase fee taken on every fraction sale, independent of the
// configurable basis-point split used for payment distribution.
const (
	PurchaseFeeNumerator   = 5
	PurchaseFeeDenominator = 100
)

// Investment bounds applied when the platform is initialized without
// explicit values.
const (
	DefaultMinInvestmentAmount = 1
	DefaultMaxInvestmentAmount = 10000
)

// SettlementPublisher pushes post-commit settlement events to the worker
// queue. Publishing is best effort; a publish failure never rolls back a
// committed purchase.
type SettlementPublisher interface {
	Publish(queueName string, message interface{}) error
}

// SettlementEvent is the payload written to the vault_settlements queue
// after a successful purchase or redemption.
type SettlementEvent struct {
	Kind           string    `json:"kind"` // "purchase" or "redemption"
	VaultID        uint      `json:"vault_id"`
	NftMint        string    `json:"nft_mint"`
	Wallet         string    `json:"wallet"`
	Fractions      uint64    `json:"fractions"`
	TotalCost      uint64    `json:"total_cost"`
	PlatformFee    uint64    `json:"platform_fee"`
	CreatorPayment uint64    `json:"creator_payment"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// VaultEngine drives the vault lifecycle: fractionalization, unit sale and
// redemption. All token movement goes through the ledger; all bookkeeping
// goes through the database, inside a transaction so a ledger failure
// retains no partial state.
type VaultEngine struct {
	db          *gorm.DB
	ledger      chain.Ledger
	compliance  *ComplianceEngine
	publisher   SettlementPublisher
	paymentMint string
}

func NewVaultEngine(db *gorm.DB, ledger chain.Ledger, compliance *ComplianceEngine, publisher SettlementPublisher, paymentMint string) *VaultEngine {
	return &VaultEngine{
		db:          db,
		ledger:      ledger,
		compliance:  compliance,
		publisher:   publisher,
		paymentMint: paymentMint,
	}
}

// DefaultVaultEngine wires the engine against the global database handle.
func DefaultVaultEngine(ledger chain.Ledger, compliance *ComplianceEngine, publisher SettlementPublisher, paymentMint string) *VaultEngine {
	return NewVaultEngine(dbconfig.DB, ledger, compliance, publisher, paymentMint)
}

type FractionalizeParams struct {
	Creator               string
	OriginalNftMint       string
	CreatorPaymentAccount string
	TotalFractions        uint64
	PricePerFraction      uint64
}

type BuyParams struct {
	Buyer           string
	OriginalNftMint string
	Amount          uint64
}

type RedeemParams struct {
	Redeemer        string
	OriginalNftMint string
}

// ValidateSaleAvailability checks a prospective purchase against the vault's
// current sale state without mutating anything.
func ValidateSaleAvailability(vault *models.Vault, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if !vault.IsSaleActive {
		return ErrSaleNotActive
	}
	newSold, err := utils.CheckedAdd(vault.FractionsSold, amount)
	if err != nil {
		return ErrMathOverflow
	}
	if newSold > vault.TotalFractions {
		return ErrInsufficientFractions
	}
	return nil
}

// ValidateRedemptionEligibility requires the redeemer to hold the complete
// fraction supply of a fully sold vault.
func ValidateRedemptionEligibility(vault *models.Vault, holderBalance uint64) error {
	if holderBalance != vault.TotalFractions {
		return ErrInsufficientTokens
	}
	if !vault.IsFullySold() {
		return ErrVaultNotReadyForRedemption
	}
	return nil
}

// Fractionalize locks an artwork token in custody, mints the full fraction
// supply to the custody authority and opens the sale.
func (e *VaultEngine) Fractionalize(ctx context.Context, params FractionalizeParams) (*models.Vault, error) {
	if params.TotalFractions == 0 {
		return nil, ErrInvalidTotalFractions
	}
	if params.PricePerFraction == 0 {
		return nil, ErrInvalidPrice
	}

	var existing models.Vault
	err := e.db.Where("original_nft_mint = ?", params.OriginalNftMint).First(&existing).Error
	if err == nil {
		return nil, ErrVaultAccountAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	authority, err := chain.DeriveVaultAuthority(params.OriginalNftMint)
	if err != nil {
		return nil, err
	}
	custody := authority.Address.String()
	mintKey, _, err := chain.DeriveFractionalMint(params.OriginalNftMint)
	if err != nil {
		return nil, err
	}
	fractionalMint := mintKey.String()

	var mintClash int64
	if err := e.db.Model(&models.Vault{}).Where("fractional_token_mint = ?", fractionalMint).Count(&mintClash).Error; err != nil {
		return nil, err
	}
	if mintClash > 0 {
		return nil, ErrFractionalMintAlreadyExists
	}

	vault := &models.Vault{
		Creator:               params.Creator,
		OriginalNftMint:       params.OriginalNftMint,
		FractionalTokenMint:   fractionalMint,
		CustodyAuthority:      custody,
		CustodyAuthorityBump:  authority.Bump,
		TotalFractions:        params.TotalFractions,
		PricePerFraction:      params.PricePerFraction,
		FractionsSold:         0,
		IsSaleActive:          true,
		CreatorPaymentAccount: params.CreatorPaymentAccount,
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vault).Error; err != nil {
			return err
		}
		if err := e.ledger.CreateRecordAccount(ctx, custody, vault.Space()); err != nil {
			if errors.Is(err, chain.ErrAccountExists) {
				return ErrVaultAccountAlreadyExists
			}
			return err
		}
		// Custody takes the artwork token, then receives the entire
		// fraction supply for later distribution.
		if _, err := e.ledger.Transfer(ctx, params.OriginalNftMint, 1, params.Creator, custody, params.Creator); err != nil {
			return err
		}
		if _, err := e.ledger.Issue(ctx, fractionalMint, params.TotalFractions, custody); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"vault_id":        vault.ID,
		"nft_mint":        vault.OriginalNftMint,
		"fractional_mint": vault.FractionalTokenMint,
		"total_fractions": vault.TotalFractions,
		"price":           vault.PricePerFraction,
	}).Info("vault fractionalized")

	return vault, nil
}

// BuyFractions sells `amount` fractions to a compliant buyer. Payment splits
// into a platform fee (retained on the buyer side) and a creator payment,
// which together cover the full cost exactly.
func (e *VaultEngine) BuyFractions(ctx context.Context, params BuyParams) (*models.PurchaseRecord, error) {
	var vault models.Vault
	if err := e.db.Where("original_nft_mint = ?", params.OriginalNftMint).First(&vault).Error; err != nil {
		return nil, err
	}

	if err := ValidateSaleAvailability(&vault, params.Amount); err != nil {
		return nil, err
	}

	if e.compliance != nil {
		if err := e.compliance.ValidateForTransaction(params.Buyer, TransactionPurchase); err != nil {
			return nil, err
		}
	}

	totalCost, err := utils.CheckedMul(params.Amount, vault.PricePerFraction)
	if err != nil {
		return nil, ErrMathOverflow
	}
	feeBase, err := utils.CheckedMul(totalCost, PurchaseFeeNumerator)
	if err != nil {
		return nil, ErrMathOverflow
	}
	platformFee := feeBase / PurchaseFeeDenominator
	creatorAmount, err := utils.CheckedSub(totalCost, platformFee)
	if err != nil {
		return nil, ErrMathOverflow
	}

	record := &models.PurchaseRecord{
		VaultID:       vault.ID,
		Buyer:         params.Buyer,
		NumFractions:  params.Amount,
		TotalCost:     totalCost,
		PlatformFee:   platformFee,
		CreatorAmount: creatorAmount,
	}

	prevSold := vault.FractionsSold
	err = e.db.Transaction(func(tx *gorm.DB) error {
		// Guarded increment: the sale counter only advances from the
		// value validated above, so concurrent purchases cannot
		// oversell the supply.
		res := tx.Model(&models.Vault{}).
			Where("id = ? AND fractions_sold = ? AND is_sale_active = ?", vault.ID, prevSold, true).
			Update("fractions_sold", prevSold+params.Amount)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrInvalidVaultState
		}
		if _, err := e.ledger.Transfer(ctx, e.paymentMint, creatorAmount, params.Buyer, vault.CreatorPaymentAccount, params.Buyer); err != nil {
			return err
		}
		sig, err := e.ledger.Transfer(ctx, vault.FractionalTokenMint, params.Amount, vault.CustodyAuthority, params.Buyer, vault.CustodyAuthority)
		if err != nil {
			return err
		}
		record.TxSignature = sig
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"vault_id":     vault.ID,
		"buyer":        params.Buyer,
		"fractions":    params.Amount,
		"total_cost":   totalCost,
		"platform_fee": platformFee,
	}).Info("fractions purchased")

	e.publishSettlement(SettlementEvent{
		Kind:           "purchase",
		VaultID:        vault.ID,
		NftMint:        vault.OriginalNftMint,
		Wallet:         params.Buyer,
		Fractions:      params.Amount,
		TotalCost:      totalCost,
		PlatformFee:    platformFee,
		CreatorPayment: creatorAmount,
		OccurredAt:     time.Now().UTC(),
	})

	return record, nil
}

// Redeem lets a holder of the complete fraction supply burn it and withdraw
// the artwork token from custody. The vault is terminal afterwards.
func (e *VaultEngine) Redeem(ctx context.Context, params RedeemParams) (*models.Vault, error) {
	var vault models.Vault
	if err := e.db.Where("original_nft_mint = ?", params.OriginalNftMint).First(&vault).Error; err != nil {
		return nil, err
	}

	balance, err := e.ledger.Balance(ctx, vault.FractionalTokenMint, params.Redeemer)
	if err != nil {
		return nil, err
	}
	if err := ValidateRedemptionEligibility(&vault, balance); err != nil {
		return nil, err
	}

	if e.compliance != nil {
		if err := e.compliance.ValidateForTransaction(params.Redeemer, TransactionRedemption); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	err = e.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Vault{}).
			Where("id = ? AND is_sale_active = ?", vault.ID, true).
			Updates(map[string]interface{}{"is_sale_active": false, "sale_ended_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrSaleNotActive
		}
		if _, err := e.ledger.Burn(ctx, vault.FractionalTokenMint, vault.TotalFractions, params.Redeemer, params.Redeemer); err != nil {
			return err
		}
		if _, err := e.ledger.Transfer(ctx, vault.OriginalNftMint, 1, vault.CustodyAuthority, params.Redeemer, vault.CustodyAuthority); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	vault.IsSaleActive = false
	vault.SaleEndedAt = &now

	logrus.WithFields(logrus.Fields{
		"vault_id": vault.ID,
		"redeemer": params.Redeemer,
		"nft_mint": vault.OriginalNftMint,
	}).Info("vault redeemed")

	e.publishSettlement(SettlementEvent{
		Kind:       "redemption",
		VaultID:    vault.ID,
		NftMint:    vault.OriginalNftMint,
		Wallet:     params.Redeemer,
		Fractions:  vault.TotalFractions,
		OccurredAt: now,
	})

	return &vault, nil
}

// Ownership reports a holder's fraction balance and percentage for a vault.
func (e *VaultEngine) Ownership(ctx context.Context, nftMint, holder string) (uint64, float64, error) {
	var vault models.Vault
	if err := e.db.Where("original_nft_mint = ?", nftMint).First(&vault).Error; err != nil {
		return 0, 0, err
	}
	balance, err := e.ledger.Balance(ctx, vault.FractionalTokenMint, holder)
	if err != nil {
		return 0, 0, err
	}
	return balance, utils.CalculateOwnershipPercentage(balance, vault.TotalFractions), nil
}

func (e *VaultEngine) publishSettlement(event SettlementEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(dbconfig.QueueVaultSettlements, event); err != nil {
		logrus.WithError(err).WithField("vault_id", event.VaultID).Error("failed to publish settlement event")
	}
}
