package service

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Price returns reserveOut/reserveIn with each reserve scaled by its
// token's decimals. A zero denominator is an invalid-amount error, never a
// division attempt.
func Price(reserveOut, reserveIn *big.Int, decimalsOut, decimalsIn uint8) (decimal.Decimal, error) {
	if reserveIn == nil || reserveIn.Sign() == 0 {
		return decimal.Zero, newError(ErrInvalidAmount, "division by zero")
	}

	num := ToDecimal(reserveOut, decimalsOut)
	den := ToDecimal(reserveIn, decimalsIn)
	if den.IsZero() {
		return decimal.Zero, newError(ErrInvalidAmount, "division by zero")
	}
	return num.Div(den), nil
}

// PriceImpact returns the percentage move of the pool price caused by a
// swap: |1 - priceAfter/priceBefore| * 100, where priceAfter uses the
// post-swap reserves with a saturating reserveOut - amountOut. Zero
// reserves or zero input yield 0; rejecting illiquid pools is the caller's
// job. Both sides are treated at one common scale; any per-token decimal
// factor cancels in the ratio of the two prices.
func PriceImpact(amountIn, amountOut, reserveIn, reserveOut *big.Int) decimal.Decimal {
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 || amountIn.Sign() == 0 {
		return decimal.Zero
	}

	priceBefore, err := Price(reserveOut, reserveIn, 18, 18)
	if err != nil || priceBefore.IsZero() {
		return decimal.Zero
	}

	newReserveOut := new(big.Int).Sub(reserveOut, amountOut)
	if newReserveOut.Sign() < 0 {
		newReserveOut.SetUint64(0)
	}
	newReserveIn := new(big.Int).Add(reserveIn, amountIn)

	priceAfter, err := Price(newReserveOut, newReserveIn, 18, 18)
	if err != nil {
		return decimal.Zero
	}

	return decimal.New(1, 0).Sub(priceAfter.Div(priceBefore)).Abs().Mul(hundred)
}

// ExchangeRate returns the realized output per unit of input, scaled by
// each token's real decimals. A zero input yields zero without error.
func ExchangeRate(amountIn, amountOut *big.Int, decimalsIn, decimalsOut uint8) decimal.Decimal {
	if amountIn == nil || amountIn.Sign() == 0 {
		return decimal.Zero
	}
	rate, err := Price(amountOut, amountIn, decimalsOut, decimalsIn)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// MinimumOutput returns floor(amountOut * (100 - slippage) / 100). The
// slippage percentage must be in [0, 100); out-of-range values are a
// caller error, not clamped. The result never exceeds amountOut.
func MinimumOutput(amountOut *big.Int, slippage decimal.Decimal) (*big.Int, error) {
	if slippage.IsNegative() || slippage.GreaterThanOrEqual(hundred) {
		return nil, newError(ErrInvalidAmount, "slippage must be in [0, 100): %s", slippage.String())
	}

	minimum := decimal.NewFromBigInt(amountOut, 0).
		Mul(hundred.Sub(slippage)).
		Div(hundred).
		Floor()
	return minimum.BigInt(), nil
}

// ApplyPercentage returns floor(value * percent / 100).
func ApplyPercentage(value *big.Int, percent decimal.Decimal) *big.Int {
	return decimal.NewFromBigInt(value, 0).
		Mul(percent).
		Div(hundred).
		Floor().
		BigInt()
}
