package utils

import (
	"errors"
)

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

// MaxRoyaltyBps caps any royalty-style fee at 50% of its denominator.
const MaxRoyaltyBps = 5000

// ErrMathOverflow is returned when a checked arithmetic operation would wrap.
var ErrMathOverflow = errors.New("math overflow occurred during calculation")

// ErrInvalidRoyaltyFee is returned for malformed fee fractions.
var ErrInvalidRoyaltyFee = errors.New("invalid royalty fee - numerator must be <= denominator and denominator > 0")

// CheckedMul multiplies two uint64 values, failing instead of wrapping.
func CheckedMul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	result := a * b
	if result/a != b {
		return 0, ErrMathOverflow
	}
	return result, nil
}

// CheckedAdd adds two uint64 values, failing instead of wrapping.
func CheckedAdd(a, b uint64) (uint64, error) {
	result := a + b
	if result < a {
		return 0, ErrMathOverflow
	}
	return result, nil
}

// CheckedSub subtracts b from a, failing instead of wrapping below zero.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}

// CheckedDiv divides a by b with an explicit zero-divisor failure.
func CheckedDiv(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrMathOverflow
	}
	return a / b, nil
}

// CalculateRoyaltyAmount returns floor(amount * numerator / denominator).
func CalculateRoyaltyAmount(amount uint64, numerator, denominator uint16) (uint64, error) {
	product, err := CheckedMul(amount, uint64(numerator))
	if err != nil {
		return 0, err
	}
	return CheckedDiv(product, uint64(denominator))
}

// CalculateNetAmount returns amount minus its royalty cut.
func CalculateNetAmount(amount uint64, numerator, denominator uint16) (uint64, error) {
	royalty, err := CalculateRoyaltyAmount(amount, numerator, denominator)
	if err != nil {
		return 0, err
	}
	return CheckedSub(amount, royalty)
}

// CalculatePurchaseCost returns the total cost for a number of fractional units.
func CalculatePurchaseCost(numFractions, pricePerFraction uint64) (uint64, error) {
	return CheckedMul(numFractions, pricePerFraction)
}

// CalculatePaymentDistribution splits a payment between creator and platform.
// The platform share is computed subtractively so the two amounts always sum
// exactly to the total, even when the creator share rounds down.
func CalculatePaymentDistribution(totalAmount uint64, creatorFeeBps, platformFeeBps uint16) (creatorAmount, platformAmount uint64, err error) {
	creatorAmount, err = CalculateRoyaltyAmount(totalAmount, creatorFeeBps, BpsDenominator)
	if err != nil {
		return 0, 0, err
	}
	platformAmount, err = CheckedSub(totalAmount, creatorAmount)
	if err != nil {
		return 0, 0, err
	}
	return creatorAmount, platformAmount, nil
}

// CalculateOwnershipPercentage returns the percentage of a vault owned by a
// holder of fractionalAmount units. A vault with zero total fractions yields 0.
func CalculateOwnershipPercentage(fractionalAmount, totalFractions uint64) float64 {
	if totalFractions == 0 {
		return 0
	}
	return float64(fractionalAmount) / float64(totalFractions) * 100.0
}

// ValidateRoyaltyFee checks a numerator/denominator fee pair. Royalties above
// 50% are rejected outright.
func ValidateRoyaltyFee(numerator, denominator uint16) error {
	if denominator == 0 {
		return ErrInvalidRoyaltyFee
	}
	if numerator > denominator {
		return ErrInvalidRoyaltyFee
	}
	if numerator > MaxRoyaltyBps {
		return ErrInvalidRoyaltyFee
	}
	return nil
}
