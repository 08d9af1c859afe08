package business

import (
	"context"
	"testing"

	"artvault/pkg/chain"
	"artvault/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPlatformParams() PlatformParams {
	return PlatformParams{
		PlatformFeeBps:      250,
		CreatorFeeBps:       9750,
		DefaultRoyaltyBps:   500,
		Treasury:            newAddress(),
		MinInvestmentAmount: 10,
		MaxInvestmentAmount: 1000000,
	}
}

func TestPlatformInitialize(t *testing.T) {
	engine := NewPlatformEngine(newTestDB(t), chain.NewMemoryLedger())
	ctx := context.Background()
	admin := newAddress()

	cfg, err := engine.Initialize(ctx, admin, defaultPlatformParams())
	require.NoError(t, err)
	assert.Equal(t, admin, cfg.Admin)
	assert.True(t, cfg.IsActive)
	assert.Equal(t, uint16(PurchaseFeeNumerator), cfg.PlatformFeeNumerator)
	assert.Equal(t, uint16(PurchaseFeeDenominator), cfg.PlatformFeeDenominator)

	_, err = engine.Initialize(ctx, admin, defaultPlatformParams())
	assert.ErrorIs(t, err, ErrPlatformAlreadyInitialized)
}

func TestPlatformInitializeValidation(t *testing.T) {
	engine := NewPlatformEngine(newTestDB(t), chain.NewMemoryLedger())
	ctx := context.Background()

	params := defaultPlatformParams()
	params.CreatorFeeBps = 9000 // does not sum to 10000 with 250
	_, err := engine.Initialize(ctx, newAddress(), params)
	assert.ErrorIs(t, err, utils.ErrInvalidRoyaltyFee)

	params = defaultPlatformParams()
	params.MinInvestmentAmount = 100
	params.MaxInvestmentAmount = 10
	_, err = engine.Initialize(ctx, newAddress(), params)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPlatformUpdate(t *testing.T) {
	engine := NewPlatformEngine(newTestDB(t), chain.NewMemoryLedger())
	ctx := context.Background()
	admin := newAddress()

	_, err := engine.Update(admin, defaultPlatformParams(), nil)
	assert.ErrorIs(t, err, ErrPlatformNotInitialized)

	_, err = engine.Initialize(ctx, admin, defaultPlatformParams())
	require.NoError(t, err)

	_, err = engine.Update(newAddress(), defaultPlatformParams(), nil)
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)

	params := defaultPlatformParams()
	params.PlatformFeeBps = 500
	params.CreatorFeeBps = 9500
	inactive := false
	cfg, err := engine.Update(admin, params, &inactive)
	require.NoError(t, err)
	assert.Equal(t, uint16(500), cfg.PlatformFeeBps)
	assert.False(t, cfg.IsActive)

	got, err := engine.Get()
	require.NoError(t, err)
	assert.Equal(t, uint16(500), got.PlatformFeeBps)
}

func TestPlatformUpdateFeeFractionAndBounds(t *testing.T) {
	engine := NewPlatformEngine(newTestDB(t), chain.NewMemoryLedger())
	ctx := context.Background()
	admin := newAddress()

	_, err := engine.Initialize(ctx, admin, defaultPlatformParams())
	require.NoError(t, err)

	params := defaultPlatformParams()
	params.PlatformFeeNumerator = 3
	params.PlatformFeeDenominator = 100
	cfg, err := engine.Update(admin, params, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), cfg.PlatformFeeNumerator)
	assert.Equal(t, uint16(100), cfg.PlatformFeeDenominator)

	// Zero fee pair leaves the stored fraction untouched.
	cfg, err = engine.Update(admin, defaultPlatformParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), cfg.PlatformFeeNumerator)

	params = defaultPlatformParams()
	params.PlatformFeeNumerator = 7
	params.PlatformFeeDenominator = 0
	_, err = engine.Update(admin, params, nil)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	params = defaultPlatformParams()
	params.PlatformFeeNumerator = 101
	params.PlatformFeeDenominator = 100
	_, err = engine.Update(admin, params, nil)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	params = defaultPlatformParams()
	params.MinInvestmentAmount = 0
	_, err = engine.Update(admin, params, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	params = defaultPlatformParams()
	params.MinInvestmentAmount = 50
	params.MaxInvestmentAmount = 50
	_, err = engine.Update(admin, params, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPlatformInitializeDefaultBounds(t *testing.T) {
	engine := NewPlatformEngine(newTestDB(t), chain.NewMemoryLedger())

	params := defaultPlatformParams()
	params.MinInvestmentAmount = 0
	params.MaxInvestmentAmount = 0
	cfg, err := engine.Initialize(context.Background(), newAddress(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(DefaultMinInvestmentAmount), cfg.MinInvestmentAmount)
	assert.Equal(t, uint64(DefaultMaxInvestmentAmount), cfg.MaxInvestmentAmount)
}
