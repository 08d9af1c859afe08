package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	"artvault/internal/models"
	"artvault/pkg/chain"
	dbconfig "artvault/pkg/config"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TransactionType classifies the gated operations for compliance checks.
type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionRedemption TransactionType = "redemption"
	TransactionTransfer   TransactionType = "transfer"
)

// ComplianceEngine owns both KYC record kinds and the verification state
// machine. Admin-gated mutations check the caller against the provider
// configuration before touching any record.
type ComplianceEngine struct {
	db     *gorm.DB
	ledger chain.Ledger
}

func NewComplianceEngine(db *gorm.DB, ledger chain.Ledger) *ComplianceEngine {
	return &ComplianceEngine{db: db, ledger: ledger}
}

// DefaultComplianceEngine wires the engine against the global database handle.
func DefaultComplianceEngine(ledger chain.Ledger) *ComplianceEngine {
	return NewComplianceEngine(dbconfig.DB, ledger)
}

// providerConfig loads the singleton provider configuration, falling back to
// the built-in policy when no admin has configured one yet.
func (e *ComplianceEngine) providerConfig() (*models.KycProviderConfig, error) {
	var cfg models.KycProviderConfig
	err := e.db.First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (e *ComplianceEngine) requirements() (models.KycRequirements, error) {
	cfg, err := e.providerConfig()
	if err != nil {
		return models.KycRequirements{}, err
	}
	if cfg == nil {
		return models.DefaultKycRequirements(), nil
	}
	return cfg.Requirements, nil
}

func (e *ComplianceEngine) requireAdmin(caller string) error {
	cfg, err := e.providerConfig()
	if err != nil {
		return err
	}
	if cfg != nil {
		if cfg.Admin != caller {
			return ErrUnauthorizedAccess
		}
		return nil
	}
	// Before a provider config exists, fall back to the platform admin.
	var platform models.PlatformConfig
	if err := e.db.First(&platform).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnauthorizedAccess
		}
		return err
	}
	if platform.Admin != caller {
		return ErrUnauthorizedAccess
	}
	return nil
}

// RegisterSimple creates an unverified minimal KYC record for a user.
func (e *ComplianceEngine) RegisterSimple(ctx context.Context, user string, method models.VerificationMethod, email, country *string) (*models.SimpleKycAccount, error) {
	var existing models.SimpleKycAccount
	err := e.db.Where("\"user\" = ?", user).First(&existing).Error
	if err == nil {
		return nil, ErrKycAccountAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record := &models.SimpleKycAccount{
		User:               user,
		IsVerified:         false,
		VerificationMethod: method,
		Email:              email,
		Country:            country,
		VerificationLevel:  0,
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		address, _, err := chain.DeriveSimpleKycAddress(user)
		if err != nil {
			return err
		}
		if err := e.ledger.CreateRecordAccount(ctx, address.String(), record.Space()); err != nil {
			if errors.Is(err, chain.ErrAccountExists) {
				return ErrKycAccountAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user": user, "method": method}).Info("simple kyc registered")
	return record, nil
}

// VerifySimple marks a minimal record verified at the given level. Admin only.
func (e *ComplianceEngine) VerifySimple(caller, user string, method models.VerificationMethod, level uint8) (*models.SimpleKycAccount, error) {
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if level > models.MaxVerificationLevel {
		level = models.MaxVerificationLevel
	}

	var record models.SimpleKycAccount
	if err := e.db.Where("\"user\" = ?", user).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKycAccountNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	record.IsVerified = true
	record.VerificationMethod = method
	record.VerificationLevel = level
	record.VerifiedAt = &now
	if err := e.db.Save(&record).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user": user, "level": level}).Info("simple kyc verified")
	return &record, nil
}

// InitiateVerification opens (or reopens) a provider verification session.
// The record moves to InProgress, the bounded attempt counter advances, and a
// deterministic session identifier is handed to the provider. Only Pending
// and InProgress records may open a session: Expired and Failed go through
// Refresh first, and Rejected or Suspended records are released only by an
// admin.
func (e *ComplianceEngine) InitiateVerification(ctx context.Context, user string, provider models.KycProvider, email string, phone *string) (*models.EnhancedKycAccount, error) {
	cfg, err := e.providerConfig()
	if err != nil {
		return nil, err
	}
	if cfg != nil && !cfg.IsProviderActive(provider) {
		return nil, ErrInvalidKycProvider
	}
	req, err := e.requirements()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var record models.EnhancedKycAccount
	err = e.db.Where("\"user\" = ?", user).First(&record).Error
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.EnhancedKycAccount{
			User:         user,
			Status:       models.KycStatusPending,
			Provider:     provider,
			RegisteredAt: now,
		}
		created = true
	case err != nil:
		return nil, err
	}

	if record.Status != models.KycStatusPending && record.Status != models.KycStatusInProgress {
		return nil, ErrKycVerificationNotAllowed
	}
	if !record.CanAttemptVerification(req.MaxVerificationAttempts) {
		return nil, ErrKycVerificationLimitExceeded
	}

	verificationID := buildVerificationID(provider, user, now)
	record.Status = models.KycStatusInProgress
	record.Provider = provider
	if email != "" {
		contact := email
		if phone != nil && *phone != "" {
			contact = contact + " " + *phone
		}
		record.ProviderMetadata = &contact
	}
	record.VerificationAttempts++
	record.LastAttemptAt = &now
	record.ProviderVerificationID = &verificationID
	record.VerifiedAt = nil
	record.ExpiresAt = nil
	record.RiskScore = nil
	record.ComplianceFlags = models.ComplianceFlags{}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if created {
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			address, _, err := chain.DeriveKycAddress(user)
			if err != nil {
				return err
			}
			if err := e.ledger.CreateRecordAccount(ctx, address.String(), record.Space()); err != nil && !errors.Is(err, chain.ErrAccountExists) {
				return err
			}
			return nil
		}
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user":            user,
		"provider":        provider,
		"attempt":         record.VerificationAttempts,
		"verification_id": verificationID,
	}).Info("kyc verification initiated")
	return &record, nil
}

// ProcessResultParams carries a provider callback. The verification id must
// match the open session exactly.
type ProcessResultParams struct {
	User           string
	VerificationID string
	Verified       bool
	RiskScore      *uint8
	Flags          models.ComplianceFlags
	Metadata       *string
}

// ProcessVerificationResult applies a provider outcome after checking the
// caller against the configured admin.
func (e *ComplianceEngine) ProcessVerificationResult(caller string, params ProcessResultParams) (*models.EnhancedKycAccount, error) {
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	return e.ApplyVerificationResult(params)
}

// ApplyVerificationResult applies a provider outcome to an InProgress
// session: Verified with an expiry on success, Failed otherwise. Callers are
// trusted; HTTP traffic goes through ProcessVerificationResult instead.
func (e *ComplianceEngine) ApplyVerificationResult(params ProcessResultParams) (*models.EnhancedKycAccount, error) {
	var record models.EnhancedKycAccount
	if err := e.db.Where("\"user\" = ?", params.User).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKycAccountNotFound
		}
		return nil, err
	}
	if record.ProviderVerificationID == nil || *record.ProviderVerificationID != params.VerificationID {
		return nil, ErrInvalidVerificationId
	}
	if record.Status != models.KycStatusInProgress {
		return nil, ErrInvalidVerificationId
	}

	now := time.Now().UTC()
	record.RiskScore = params.RiskScore
	record.ComplianceFlags = params.Flags
	record.ProviderMetadata = params.Metadata
	if params.Verified {
		record.Status = models.KycStatusVerified
		record.VerifiedAt = &now
		record.ExpiresAt = e.expiryFrom(now)
	} else {
		record.Status = models.KycStatusFailed
		record.VerifiedAt = nil
		record.ExpiresAt = nil
	}

	if err := e.db.Save(&record).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user":   params.User,
		"status": record.Status,
	}).Info("kyc verification result processed")
	return &record, nil
}

// ManualVerification lets the admin settle a record directly, bypassing the
// provider flow.
func (e *ComplianceEngine) ManualVerification(caller, user string, verified bool, riskScore *uint8, flags models.ComplianceFlags, notes *string) (*models.EnhancedKycAccount, error) {
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}

	var record models.EnhancedKycAccount
	if err := e.db.Where("\"user\" = ?", user).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKycAccountNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	record.Provider = models.ProviderManual
	record.RiskScore = riskScore
	record.ComplianceFlags = flags
	record.ProviderMetadata = notes
	if verified {
		record.Status = models.KycStatusVerified
		record.VerifiedAt = &now
		record.ExpiresAt = e.expiryFrom(now)
	} else {
		record.Status = models.KycStatusRejected
		record.VerifiedAt = nil
		record.ExpiresAt = nil
	}

	if err := e.db.Save(&record).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user": user, "verified": verified}).Info("manual kyc verification applied")
	return &record, nil
}

// Suspend forces a record into the Suspended state. Admin only.
func (e *ComplianceEngine) Suspend(caller, user string, reason *string) (*models.EnhancedKycAccount, error) {
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}

	var record models.EnhancedKycAccount
	if err := e.db.Where("\"user\" = ?", user).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKycAccountNotFound
		}
		return nil, err
	}

	record.Status = models.KycStatusSuspended
	record.ProviderMetadata = reason
	if err := e.db.Save(&record).Error; err != nil {
		return nil, err
	}

	logrus.WithField("user", user).Warn("kyc record suspended")
	return &record, nil
}

// Refresh resets an Expired or Failed record to Pending so the user can
// initiate a new session. Attempt counters carry over.
func (e *ComplianceEngine) Refresh(user string, provider *models.KycProvider) (*models.EnhancedKycAccount, error) {
	var record models.EnhancedKycAccount
	if err := e.db.Where("\"user\" = ?", user).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKycAccountNotFound
		}
		return nil, err
	}

	if record.Status != models.KycStatusExpired && record.Status != models.KycStatusFailed {
		return nil, ErrKycRefreshNotAllowed
	}

	if provider != nil {
		cfg, err := e.providerConfig()
		if err != nil {
			return nil, err
		}
		if cfg != nil && !cfg.IsProviderActive(*provider) {
			return nil, ErrInvalidKycProvider
		}
		record.Provider = *provider
	}

	record.Status = models.KycStatusPending
	record.VerifiedAt = nil
	record.ExpiresAt = nil
	record.ProviderVerificationID = nil
	record.RiskScore = nil
	record.ComplianceFlags = models.ComplianceFlags{}
	record.ProviderMetadata = nil

	if err := e.db.Save(&record).Error; err != nil {
		return nil, err
	}

	logrus.WithField("user", user).Info("kyc record refreshed")
	return &record, nil
}

// UpdateProviderConfig creates or replaces the provider governance row.
// Creation is gated on the platform admin; updates on the configured admin.
func (e *ComplianceEngine) UpdateProviderConfig(caller string, providers []models.KycProvider, defaultProvider models.KycProvider, req models.KycRequirements) (*models.KycProviderConfig, error) {
	if len(providers) == 0 {
		return nil, ErrInvalidKycProvider
	}
	found := false
	for _, p := range providers {
		if p == defaultProvider {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrInvalidKycProvider
	}
	if req.RiskScoreHighThreshold <= req.RiskScoreMediumThreshold {
		return nil, ErrInvalidKycProvider
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}

	cfg, err := e.providerConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &models.KycProviderConfig{Admin: caller}
	}
	cfg.ActiveProviders = models.ProviderList(providers)
	cfg.DefaultProvider = defaultProvider
	cfg.Requirements = req
	if err := e.db.Save(cfg).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"providers": providers,
		"default":   defaultProvider,
	}).Info("kyc provider config updated")
	return cfg, nil
}

// ComplianceRecord returns the strongest record available for a user: the
// enhanced record when one exists, otherwise the simple one.
func (e *ComplianceEngine) ComplianceRecord(user string) (models.Compliance, error) {
	var enhanced models.EnhancedKycAccount
	err := e.db.Where("\"user\" = ?", user).First(&enhanced).Error
	if err == nil {
		return &enhanced, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var simple models.SimpleKycAccount
	err = e.db.Where("\"user\" = ?", user).First(&simple).Error
	if err == nil {
		return &simple, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, ErrKycAccountNotFound
}

// ValidateForTransaction gates an operation on the user's compliance record.
// High risk always fails. Purchases and transfers require a valid record with
// the full clearance set; redemptions only require a valid record with AML
// clearance, since the user is exiting the position.
func (e *ComplianceEngine) ValidateForTransaction(user string, txType TransactionType) error {
	record, err := e.ComplianceRecord(user)
	if err != nil {
		if errors.Is(err, ErrKycAccountNotFound) {
			return ErrKycNotVerified
		}
		return err
	}

	if !record.IsValid() {
		return ErrKycNotVerified
	}

	risk := record.RiskLevel()
	if enhanced, ok := record.(*models.EnhancedKycAccount); ok {
		req, err := e.requirements()
		if err != nil {
			return err
		}
		risk = enhanced.RiskLevelWith(req)
	}
	if risk == models.RiskHigh {
		return ErrKycRiskLevelTooHigh
	}

	switch txType {
	case TransactionPurchase, TransactionTransfer:
		if !record.IsFullyCompliant() {
			return ErrKycComplianceIncomplete
		}
	case TransactionRedemption:
		if !record.Flags().AmlCleared {
			return ErrKycComplianceIncomplete
		}
	default:
		return ErrKycComplianceIncomplete
	}
	return nil
}

// MarkExpired sweeps Verified records whose expiry has passed into the
// Expired state. Returns the number of records moved.
func (e *ComplianceEngine) MarkExpired() (int64, error) {
	res := e.db.Model(&models.EnhancedKycAccount{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.KycStatusVerified, time.Now().UTC()).
		Update("status", models.KycStatusExpired)
	return res.RowsAffected, res.Error
}

func (e *ComplianceEngine) expiryFrom(verifiedAt time.Time) *time.Time {
	req, err := e.requirements()
	if err != nil || req.ExpirationDays == nil {
		return nil
	}
	expiry := verifiedAt.AddDate(0, 0, int(*req.ExpirationDays))
	return &expiry
}

// buildVerificationID derives the deterministic provider session identifier
// from the provider name, a user prefix and the initiation timestamp.
func buildVerificationID(provider models.KycProvider, user string, at time.Time) string {
	prefix := user
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("%s_%s_%d", provider, prefix, at.Unix())
}
