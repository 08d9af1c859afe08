package business

import (
	"context"
	"testing"
	"time"

	"artvault/internal/models"
	"artvault/pkg/chain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testAdmin = "4rL4RCWHz3iNCdCaveD8KcHfV9YWGsqSHFPo7X2zBNwa"

type complianceFixture struct {
	db     *gorm.DB
	engine *ComplianceEngine
}

func newComplianceFixture(t *testing.T) *complianceFixture {
	t.Helper()
	db := newTestDB(t)
	engine := NewComplianceEngine(db, chain.NewMemoryLedger())

	expiration := uint16(365)
	require.NoError(t, db.Create(&models.KycProviderConfig{
		Admin:           testAdmin,
		ActiveProviders: models.ProviderList{models.ProviderJumio, models.ProviderOnfido, models.ProviderManual},
		DefaultProvider: models.ProviderJumio,
		Requirements: models.KycRequirements{
			ExpirationDays:           &expiration,
			MaxVerificationAttempts:  3,
			RiskScoreMediumThreshold: 40,
			RiskScoreHighThreshold:   70,
		},
	}).Error)
	return &complianceFixture{db: db, engine: engine}
}

func clearedFlags() models.ComplianceFlags {
	return models.ComplianceFlags{
		AmlCleared:       true,
		SanctionsCleared: true,
		IdentityVerified: true,
		DocumentVerified: true,
		AddressVerified:  true,
	}
}

// verifyUser walks a user through initiate and a successful provider result.
func (f *complianceFixture) verifyUser(t *testing.T, user string) *models.EnhancedKycAccount {
	t.Helper()
	record, err := f.engine.InitiateVerification(context.Background(), user, models.ProviderJumio, "", nil)
	require.NoError(t, err)

	low := uint8(10)
	record, err = f.engine.ApplyVerificationResult(ProcessResultParams{
		User:           user,
		VerificationID: *record.ProviderVerificationID,
		Verified:       true,
		RiskScore:      &low,
		Flags:          clearedFlags(),
	})
	require.NoError(t, err)
	return record
}

func TestRegisterSimple(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()

	record, err := f.engine.RegisterSimple(ctx, user, models.MethodEmailVerification, nil, nil)
	require.NoError(t, err)
	assert.False(t, record.IsVerified)
	assert.Equal(t, uint8(0), record.VerificationLevel)

	_, err = f.engine.RegisterSimple(ctx, user, models.MethodEmailVerification, nil, nil)
	assert.ErrorIs(t, err, ErrKycAccountAlreadyExists)
}

func TestVerifySimple(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()
	_, err := f.engine.RegisterSimple(ctx, user, models.MethodEmailVerification, nil, nil)
	require.NoError(t, err)

	_, err = f.engine.VerifySimple(newAddress(), user, models.MethodAdminApproval, 2)
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)

	record, err := f.engine.VerifySimple(testAdmin, user, models.MethodAdminApproval, 2)
	require.NoError(t, err)
	assert.True(t, record.IsVerified)
	assert.Equal(t, uint8(2), record.VerificationLevel)
	assert.NotNil(t, record.VerifiedAt)

	// Levels cap at the maximum.
	record, err = f.engine.VerifySimple(testAdmin, user, models.MethodAdminApproval, 9)
	require.NoError(t, err)
	assert.Equal(t, uint8(models.MaxVerificationLevel), record.VerificationLevel)
}

func TestInitiateVerification(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()

	record, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.KycStatusInProgress, record.Status)
	assert.Equal(t, uint8(1), record.VerificationAttempts)
	require.NotNil(t, record.ProviderVerificationID)

	// Deterministic id shape: provider, user prefix, unix timestamp.
	assert.Contains(t, *record.ProviderVerificationID, "jumio_"+user[:8]+"_")

	_, err = f.engine.InitiateVerification(ctx, user, models.KycProvider("acme"), "", nil)
	assert.ErrorIs(t, err, ErrInvalidKycProvider)
}

func TestInitiateVerificationAttemptLimit(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()

	for i := 0; i < 3; i++ {
		_, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
		require.NoError(t, err)
	}
	_, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	assert.ErrorIs(t, err, ErrKycVerificationLimitExceeded)
}

func TestProcessVerificationResult(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()

	record, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	require.NoError(t, err)

	_, err = f.engine.ApplyVerificationResult(ProcessResultParams{
		User: user, VerificationID: "bogus", Verified: true,
	})
	assert.ErrorIs(t, err, ErrInvalidVerificationId)

	low := uint8(10)
	verified, err := f.engine.ProcessVerificationResult(testAdmin, ProcessResultParams{
		User:           user,
		VerificationID: *record.ProviderVerificationID,
		Verified:       true,
		RiskScore:      &low,
		Flags:          clearedFlags(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.KycStatusVerified, verified.Status)
	assert.NotNil(t, verified.VerifiedAt)
	assert.NotNil(t, verified.ExpiresAt)
	assert.True(t, verified.ExpiresAt.After(time.Now()))

	// The session is consumed; a replay of the same result fails.
	_, err = f.engine.ApplyVerificationResult(ProcessResultParams{
		User: user, VerificationID: *record.ProviderVerificationID, Verified: true,
	})
	assert.ErrorIs(t, err, ErrInvalidVerificationId)
}

func TestProcessVerificationResultRejection(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()

	record, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	require.NoError(t, err)

	failed, err := f.engine.ApplyVerificationResult(ProcessResultParams{
		User:           user,
		VerificationID: *record.ProviderVerificationID,
		Verified:       false,
	})
	require.NoError(t, err)
	assert.Equal(t, models.KycStatusFailed, failed.Status)
	assert.Nil(t, failed.VerifiedAt)
}

func TestManualVerification(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()
	_, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	require.NoError(t, err)

	low := uint8(5)
	record, err := f.engine.ManualVerification(testAdmin, user, true, &low, clearedFlags(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.KycStatusVerified, record.Status)
	assert.Equal(t, models.ProviderManual, record.Provider)

	_, err = f.engine.ManualVerification(newAddress(), user, true, &low, clearedFlags(), nil)
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)
}

func TestSuspendAndRefresh(t *testing.T) {
	f := newComplianceFixture(t)
	user := newAddress()
	f.verifyUser(t, user)

	record, err := f.engine.Suspend(testAdmin, user, nil)
	require.NoError(t, err)
	assert.Equal(t, models.KycStatusSuspended, record.Status)

	// Suspended records cannot be refreshed by the user.
	_, err = f.engine.Refresh(user, nil)
	assert.ErrorIs(t, err, ErrKycRefreshNotAllowed)
}

func TestSuspendBlocksReverification(t *testing.T) {
	f := newComplianceFixture(t)
	user := newAddress()
	f.verifyUser(t, user)

	_, err := f.engine.Suspend(testAdmin, user, nil)
	require.NoError(t, err)

	// A suspended user cannot reopen a session and verify themselves; the
	// record stays suspended and keeps failing gated transactions.
	_, err = f.engine.InitiateVerification(context.Background(), user, models.ProviderJumio, "", nil)
	assert.ErrorIs(t, err, ErrKycVerificationNotAllowed)

	var record models.EnhancedKycAccount
	require.NoError(t, f.db.Where("\"user\" = ?", user).First(&record).Error)
	assert.Equal(t, models.KycStatusSuspended, record.Status)
	assert.ErrorIs(t, f.engine.ValidateForTransaction(user, TransactionPurchase), ErrKycNotVerified)
}

func TestRejectedBlocksReverification(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()

	_, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	require.NoError(t, err)
	_, err = f.engine.ManualVerification(testAdmin, user, false, nil, models.ComplianceFlags{}, nil)
	require.NoError(t, err)

	_, err = f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	assert.ErrorIs(t, err, ErrKycVerificationNotAllowed)

	// Rejection is terminal for refresh as well.
	_, err = f.engine.Refresh(user, nil)
	assert.ErrorIs(t, err, ErrKycRefreshNotAllowed)
}

func TestFailedSessionRequiresRefreshBeforeRetry(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()

	record, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	require.NoError(t, err)
	_, err = f.engine.ApplyVerificationResult(ProcessResultParams{
		User:           user,
		VerificationID: *record.ProviderVerificationID,
		Verified:       false,
	})
	require.NoError(t, err)

	_, err = f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	assert.ErrorIs(t, err, ErrKycVerificationNotAllowed)

	_, err = f.engine.Refresh(user, nil)
	require.NoError(t, err)
	reopened, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.KycStatusInProgress, reopened.Status)
	assert.Equal(t, uint8(2), reopened.VerificationAttempts)
}

func TestInitiateVerificationRetainsContact(t *testing.T) {
	f := newComplianceFixture(t)
	user := newAddress()

	phone := "+15551234567"
	record, err := f.engine.InitiateVerification(context.Background(), user, models.ProviderJumio, "ana@example.com", &phone)
	require.NoError(t, err)
	require.NotNil(t, record.ProviderMetadata)
	assert.Equal(t, "ana@example.com +15551234567", *record.ProviderMetadata)
}

func TestRefreshFromExpired(t *testing.T) {
	f := newComplianceFixture(t)
	user := newAddress()
	f.verifyUser(t, user)

	// Force the expiry into the past and run the sweep.
	past := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, f.db.Model(&models.EnhancedKycAccount{}).
		Where("\"user\" = ?", user).Update("expires_at", past).Error)

	moved, err := f.engine.MarkExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	record, err := f.engine.Refresh(user, nil)
	require.NoError(t, err)
	assert.Equal(t, models.KycStatusPending, record.Status)
	assert.Nil(t, record.VerifiedAt)
	assert.Nil(t, record.ProviderVerificationID)

	// A fresh session can be opened again afterwards.
	reopened, err := f.engine.InitiateVerification(context.Background(), user, models.ProviderOnfido, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.KycStatusInProgress, reopened.Status)
}

func TestRefreshRequiresExpiredOrFailed(t *testing.T) {
	f := newComplianceFixture(t)
	user := newAddress()
	f.verifyUser(t, user)

	_, err := f.engine.Refresh(user, nil)
	assert.ErrorIs(t, err, ErrKycRefreshNotAllowed)
}

func TestValidateForTransaction(t *testing.T) {
	f := newComplianceFixture(t)
	user := newAddress()

	// No record at all.
	assert.ErrorIs(t, f.engine.ValidateForTransaction(user, TransactionPurchase), ErrKycNotVerified)

	f.verifyUser(t, user)
	assert.NoError(t, f.engine.ValidateForTransaction(user, TransactionPurchase))
	assert.NoError(t, f.engine.ValidateForTransaction(user, TransactionTransfer))
	assert.NoError(t, f.engine.ValidateForTransaction(user, TransactionRedemption))
}

func TestValidateForTransactionIncompleteFlags(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()

	record, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	require.NoError(t, err)

	// AML cleared but sanctions screening still outstanding.
	low := uint8(10)
	flags := clearedFlags()
	flags.SanctionsCleared = false
	_, err = f.engine.ApplyVerificationResult(ProcessResultParams{
		User:           user,
		VerificationID: *record.ProviderVerificationID,
		Verified:       true,
		RiskScore:      &low,
		Flags:          flags,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.engine.ValidateForTransaction(user, TransactionPurchase), ErrKycComplianceIncomplete)
	assert.NoError(t, f.engine.ValidateForTransaction(user, TransactionRedemption))
}

func TestValidateForTransactionHighRisk(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := context.Background()
	user := newAddress()

	record, err := f.engine.InitiateVerification(ctx, user, models.ProviderJumio, "", nil)
	require.NoError(t, err)

	high := uint8(85)
	_, err = f.engine.ApplyVerificationResult(ProcessResultParams{
		User:           user,
		VerificationID: *record.ProviderVerificationID,
		Verified:       true,
		RiskScore:      &high,
		Flags:          clearedFlags(),
	})
	require.NoError(t, err)

	// High risk fails every transaction type, even exits.
	assert.ErrorIs(t, f.engine.ValidateForTransaction(user, TransactionPurchase), ErrKycRiskLevelTooHigh)
	assert.ErrorIs(t, f.engine.ValidateForTransaction(user, TransactionRedemption), ErrKycRiskLevelTooHigh)
}

func TestUpdateProviderConfig(t *testing.T) {
	f := newComplianceFixture(t)

	req := models.DefaultKycRequirements()
	_, err := f.engine.UpdateProviderConfig(newAddress(), []models.KycProvider{models.ProviderJumio}, models.ProviderJumio, req)
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)

	// Default provider must be in the active set.
	_, err = f.engine.UpdateProviderConfig(testAdmin, []models.KycProvider{models.ProviderJumio}, models.ProviderSumsub, req)
	assert.ErrorIs(t, err, ErrInvalidKycProvider)

	cfg, err := f.engine.UpdateProviderConfig(testAdmin, []models.KycProvider{models.ProviderSumsub}, models.ProviderSumsub, req)
	require.NoError(t, err)
	assert.True(t, cfg.IsProviderActive(models.ProviderSumsub))
	assert.False(t, cfg.IsProviderActive(models.ProviderJumio))
}
