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

// PlatformEngine manages the singleton platform configuration record.
type PlatformEngine struct {
	db     *gorm.DB
	ledger chain.Ledger
}

func NewPlatformEngine(db *gorm.DB, ledger chain.Ledger) *PlatformEngine {
	return &PlatformEngine{db: db, ledger: ledger}
}

func DefaultPlatformEngine(ledger chain.Ledger) *PlatformEngine {
	return NewPlatformEngine(dbconfig.DB, ledger)
}

type PlatformParams struct {
	PlatformFeeBps      uint16
	CreatorFeeBps       uint16
	DefaultRoyaltyBps   uint16
	Treasury            string
	MinInvestmentAmount uint64
	MaxInvestmentAmount uint64

	// Purchase fee fraction. Zero values mean "leave unchanged" on update
	// and "use the defaults" on initialize.
	PlatformFeeNumerator   uint16
	PlatformFeeDenominator uint16
}

func validatePlatformParams(params PlatformParams) error {
	if int(params.PlatformFeeBps)+int(params.CreatorFeeBps) != utils.BpsDenominator {
		return utils.ErrInvalidRoyaltyFee
	}
	if err := utils.ValidateRoyaltyFee(params.DefaultRoyaltyBps, utils.BpsDenominator); err != nil {
		return err
	}
	if params.MaxInvestmentAmount > 0 && params.MinInvestmentAmount > params.MaxInvestmentAmount {
		return ErrInvalidAmount
	}
	return nil
}

// Initialize creates the platform configuration with the caller as admin.
func (e *PlatformEngine) Initialize(ctx context.Context, admin string, params PlatformParams) (*models.PlatformConfig, error) {
	if err := validatePlatformParams(params); err != nil {
		return nil, err
	}
	if params.MinInvestmentAmount == 0 && params.MaxInvestmentAmount == 0 {
		params.MinInvestmentAmount = DefaultMinInvestmentAmount
		params.MaxInvestmentAmount = DefaultMaxInvestmentAmount
	}
	if params.PlatformFeeDenominator == 0 {
		params.PlatformFeeNumerator = PurchaseFeeNumerator
		params.PlatformFeeDenominator = PurchaseFeeDenominator
	}

	var existing models.PlatformConfig
	err := e.db.First(&existing).Error
	if err == nil {
		return nil, ErrPlatformAlreadyInitialized
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cfg := &models.PlatformConfig{
		Admin:                  admin,
		PlatformFeeBps:         params.PlatformFeeBps,
		CreatorFeeBps:          params.CreatorFeeBps,
		DefaultRoyaltyBps:      params.DefaultRoyaltyBps,
		Treasury:               params.Treasury,
		IsActive:               true,
		PlatformFeeNumerator:   params.PlatformFeeNumerator,
		PlatformFeeDenominator: params.PlatformFeeDenominator,
		MinInvestmentAmount:    params.MinInvestmentAmount,
		MaxInvestmentAmount:    params.MaxInvestmentAmount,
		InitializedAt:          time.Now().UTC(),
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cfg).Error; err != nil {
			return err
		}
		address, _, err := chain.DerivePlatformConfigAddress()
		if err != nil {
			return err
		}
		if err := e.ledger.CreateRecordAccount(ctx, address.String(), cfg.Space()); err != nil && !errors.Is(err, chain.ErrAccountExists) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"admin":            admin,
		"platform_fee_bps": params.PlatformFeeBps,
		"treasury":         params.Treasury,
	}).Info("platform config initialized")
	return cfg, nil
}

// Update replaces the fee schedule and bounds. Admin only.
func (e *PlatformEngine) Update(caller string, params PlatformParams, isActive *bool) (*models.PlatformConfig, error) {
	if err := validatePlatformParams(params); err != nil {
		return nil, err
	}
	if params.PlatformFeeNumerator != 0 || params.PlatformFeeDenominator != 0 {
		if params.PlatformFeeDenominator == 0 || params.PlatformFeeNumerator > params.PlatformFeeDenominator {
			return nil, ErrInvalidPrice
		}
	}
	if params.MinInvestmentAmount == 0 || params.MaxInvestmentAmount <= params.MinInvestmentAmount {
		return nil, ErrInvalidAmount
	}

	var cfg models.PlatformConfig
	if err := e.db.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlatformNotInitialized
		}
		return nil, err
	}
	if cfg.Admin != caller {
		return nil, ErrUnauthorizedAccess
	}

	cfg.PlatformFeeBps = params.PlatformFeeBps
	cfg.CreatorFeeBps = params.CreatorFeeBps
	cfg.DefaultRoyaltyBps = params.DefaultRoyaltyBps
	cfg.Treasury = params.Treasury
	cfg.MinInvestmentAmount = params.MinInvestmentAmount
	cfg.MaxInvestmentAmount = params.MaxInvestmentAmount
	if params.PlatformFeeDenominator != 0 {
		cfg.PlatformFeeNumerator = params.PlatformFeeNumerator
		cfg.PlatformFeeDenominator = params.PlatformFeeDenominator
	}
	if isActive != nil {
		cfg.IsActive = *isActive
	}
	if err := e.db.Save(&cfg).Error; err != nil {
		return nil, err
	}

	logrus.WithField("admin", caller).Info("platform config updated")
	return &cfg, nil
}

// Get returns the platform configuration.
func (e *PlatformEngine) Get() (*models.PlatformConfig, error) {
	var cfg models.PlatformConfig
	if err := e.db.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlatformNotInitialized
		}
		return nil, err
	}
	return &cfg, nil
}
