package service

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Conversion between raw on-chain integers (smallest-unit *big.Int) and
// human decimal values. All arithmetic is exact; binary floating point is
// never used on this path.

// ToDecimal scales a raw amount down by the token's decimals. The result
// is normalized: String renders it without trailing fractional zeros.
func ToDecimal(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// FromDecimal scales a decimal value up by the token's decimals and
// truncates toward zero. Negative values are rejected.
func FromDecimal(value decimal.Decimal, decimals uint8) (*big.Int, error) {
	scaled := value.Shift(int32(decimals)).Truncate(0)
	if scaled.Sign() < 0 {
		return nil, newError(ErrInvalidAmount, "amount must not be negative: %s", value.String())
	}
	return scaled.BigInt(), nil
}

// ParseAmount converts user input into a raw smallest-unit amount. The
// decimal interpretation is preferred: "1.5" with 18 decimals yields
// 1.5e18. Input that does not parse as a decimal is treated as a raw
// integer already in smallest units. Integer-looking input is therefore
// always read as whole tokens, never as a raw amount.
func ParseAmount(text string, decimals uint8) (*big.Int, error) {
	if value, err := decimal.NewFromString(text); err == nil {
		return FromDecimal(value, decimals)
	}

	raw, ok := new(big.Int).SetString(text, 10)
	if !ok || raw.Sign() < 0 {
		return nil, newError(ErrInvalidAmount, "invalid amount format: %q", text)
	}
	return raw, nil
}

// FormatAmount renders a raw amount as the shortest human decimal string:
// trailing zeros are stripped and whole values print with no fractional
// part. A nil amount formats as "0".
func FormatAmount(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}
