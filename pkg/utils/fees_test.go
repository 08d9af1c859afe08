package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedMul(t *testing.T) {
	result, err := CheckedMul(1000, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), result)

	result, err = CheckedMul(0, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result)

	_, err = CheckedMul(math.MaxUint64, 2)
	assert.ErrorIs(t, err, ErrMathOverflow)
}

func TestCheckedAdd(t *testing.T) {
	result, err := CheckedAdd(math.MaxUint64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), result)

	_, err = CheckedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrMathOverflow)
}

func TestCheckedSub(t *testing.T) {
	result, err := CheckedSub(10, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result)

	_, err = CheckedSub(5, 6)
	assert.ErrorIs(t, err, ErrMathOverflow)
}

func TestCheckedDiv(t *testing.T) {
	result, err := CheckedDiv(7, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result)

	_, err = CheckedDiv(1, 0)
	assert.ErrorIs(t, err, ErrMathOverflow)
}

func TestCalculateRoyaltyAmount(t *testing.T) {
	// 2.5% of 10000
	amount, err := CalculateRoyaltyAmount(10000, 250, BpsDenominator)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), amount)

	// Floors rather than rounds.
	amount, err = CalculateRoyaltyAmount(999, 250, BpsDenominator)
	require.NoError(t, err)
	assert.Equal(t, uint64(24), amount)

	_, err = CalculateRoyaltyAmount(math.MaxUint64, 250, BpsDenominator)
	assert.ErrorIs(t, err, ErrMathOverflow)
}

func TestCalculatePaymentDistribution(t *testing.T) {
	creator, platform, err := CalculatePaymentDistribution(10000, 9750, 250)
	require.NoError(t, err)
	assert.Equal(t, uint64(9750), creator)
	assert.Equal(t, uint64(250), platform)

	// Odd totals still split exactly: the platform absorbs the remainder.
	creator, platform, err = CalculatePaymentDistribution(999, 9750, 250)
	require.NoError(t, err)
	assert.Equal(t, creator+platform, uint64(999))
	assert.Equal(t, uint64(974), creator)
	assert.Equal(t, uint64(25), platform)
}

func TestCalculateOwnershipPercentage(t *testing.T) {
	assert.Equal(t, 25.0, CalculateOwnershipPercentage(250, 1000))
	assert.Equal(t, 100.0, CalculateOwnershipPercentage(1000, 1000))
	assert.Equal(t, 0.0, CalculateOwnershipPercentage(100, 0))
}

func TestValidateRoyaltyFee(t *testing.T) {
	assert.NoError(t, ValidateRoyaltyFee(250, BpsDenominator))
	assert.ErrorIs(t, ValidateRoyaltyFee(250, 0), ErrInvalidRoyaltyFee)
	assert.ErrorIs(t, ValidateRoyaltyFee(101, 100), ErrInvalidRoyaltyFee)
	assert.ErrorIs(t, ValidateRoyaltyFee(5001, BpsDenominator), ErrInvalidRoyaltyFee)
}
