package service

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func bigFromString(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big int literal %q", s)
	}
	return v
}

func TestPrice(t *testing.T) {
	cases := []struct {
		name        string
		reserveOut  string
		reserveIn   string
		decimalsOut uint8
		decimalsIn  uint8
		want        string
	}{
		{
			// 2000 USDC (6dp) per 1 WETH (18dp).
			name:        "usdc per weth",
			reserveOut:  "2000000000",
			reserveIn:   "1000000000000000000",
			decimalsOut: 6,
			decimalsIn:  18,
			want:        "2000",
		},
		{
			name:        "equal decimals",
			reserveOut:  "3000000000000000000",
			reserveIn:   "2000000000000000000",
			decimalsOut: 18,
			decimalsIn:  18,
			want:        "1.5",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Price(bigFromString(t, tc.reserveOut), bigFromString(t, tc.reserveIn), tc.decimalsOut, tc.decimalsIn)
			if err != nil {
				t.Fatalf("Price: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("price mismatch: %s != %s", got.String(), tc.want)
			}
		})
	}
}

func TestPriceZeroDenominator(t *testing.T) {
	_, err := Price(big.NewInt(100), big.NewInt(0), 18, 18)
	if err == nil {
		t.Fatal("expected error for zero reserve")
	}
	if svcErr, ok := AsError(err); !ok || svcErr.Kind != ErrInvalidAmount {
		t.Fatalf("kind mismatch: %v != %v", err, ErrInvalidAmount)
	}
}

func TestPriceImpact(t *testing.T) {
	// Pool of 100 in / 200 out. Swapping 10 in for 18 out moves the price
	// from 2.0 to 182/110, an impact of |1 - 0.8272..| * 100, about 17.27%.
	impact := PriceImpact(big.NewInt(10), big.NewInt(18), big.NewInt(100), big.NewInt(200))
	want := decimal.RequireFromString("17.2727272727272727")
	if !impact.Sub(want).Abs().LessThan(decimal.RequireFromString("0.0001")) {
		t.Fatalf("impact mismatch: %s != %s", impact.String(), want.String())
	}
}

func TestPriceImpactZeroCases(t *testing.T) {
	cases := []struct {
		name      string
		amountIn  int64
		amountOut int64
		reserveIn int64
		reserveOu int64
	}{
		{name: "zero input", amountIn: 0, amountOut: 0, reserveIn: 100, reserveOu: 200},
		{name: "zero reserve in", amountIn: 10, amountOut: 18, reserveIn: 0, reserveOu: 200},
		{name: "zero reserve out", amountIn: 10, amountOut: 18, reserveIn: 100, reserveOu: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			impact := PriceImpact(big.NewInt(tc.amountIn), big.NewInt(tc.amountOut), big.NewInt(tc.reserveIn), big.NewInt(tc.reserveOu))
			if !impact.IsZero() {
				t.Fatalf("impact mismatch: %s != 0", impact.String())
			}
		})
	}
}

func TestPriceImpactSaturatesDrainedPool(t *testing.T) {
	// amountOut exceeding the reserve clamps the post-swap reserve to zero,
	// so the impact is exactly 100%.
	impact := PriceImpact(big.NewInt(10), big.NewInt(500), big.NewInt(100), big.NewInt(200))
	if impact.String() != "100" {
		t.Fatalf("impact mismatch: %s != 100", impact.String())
	}
}

func TestPriceImpactScaleInvariant(t *testing.T) {
	// Scaling every operand by a common factor must not change the impact:
	// decimal factors cancel in the ratio of the two prices.
	a := PriceImpact(big.NewInt(10), big.NewInt(18), big.NewInt(100), big.NewInt(200))
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)
	b := PriceImpact(
		new(big.Int).Mul(big.NewInt(10), scale),
		new(big.Int).Mul(big.NewInt(18), scale),
		new(big.Int).Mul(big.NewInt(100), scale),
		new(big.Int).Mul(big.NewInt(200), scale),
	)
	if !a.Equal(b) {
		t.Fatalf("impact mismatch: %s != %s", a.String(), b.String())
	}
}

func TestExchangeRate(t *testing.T) {
	// 1 WETH in, 2000 USDC out.
	rate := ExchangeRate(
		bigFromString(t, "1000000000000000000"),
		bigFromString(t, "2000000000"),
		18, 6,
	)
	if rate.String() != "2000" {
		t.Fatalf("rate mismatch: %s != 2000", rate.String())
	}
}

func TestExchangeRateZeroInput(t *testing.T) {
	rate := ExchangeRate(big.NewInt(0), big.NewInt(100), 18, 18)
	if !rate.IsZero() {
		t.Fatalf("rate mismatch: %s != 0", rate.String())
	}
}

func TestMinimumOutput(t *testing.T) {
	cases := []struct {
		name      string
		amountOut int64
		slippage  string
		want      string
	}{
		{name: "half percent", amountOut: 1000, slippage: "0.5", want: "995"},
		{name: "zero slippage", amountOut: 1000, slippage: "0", want: "1000"},
		{name: "floors", amountOut: 999, slippage: "0.5", want: "994"},
		{name: "high slippage", amountOut: 1000, slippage: "99.9", want: "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MinimumOutput(big.NewInt(tc.amountOut), decimal.RequireFromString(tc.slippage))
			if err != nil {
				t.Fatalf("MinimumOutput: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("minimum mismatch: %s != %s", got.String(), tc.want)
			}
		})
	}
}

func TestMinimumOutputRejectsOutOfRange(t *testing.T) {
	for _, slippage := range []string{"-1", "100", "150"} {
		t.Run(slippage, func(t *testing.T) {
			_, err := MinimumOutput(big.NewInt(1000), decimal.RequireFromString(slippage))
			if err == nil {
				t.Fatal("expected error for out-of-range slippage")
			}
		})
	}
}

func TestMinimumOutputNeverExceedsAmount(t *testing.T) {
	for _, amountOut := range []int64{1, 3, 1000, 999999999} {
		for _, slippage := range []string{"0", "0.1", "1", "50", "99.99"} {
			got, err := MinimumOutput(big.NewInt(amountOut), decimal.RequireFromString(slippage))
			if err != nil {
				t.Fatalf("MinimumOutput(%d, %s): %v", amountOut, slippage, err)
			}
			if got.Cmp(big.NewInt(amountOut)) > 0 {
				t.Fatalf("minimum %s exceeds output %d at slippage %s", got.String(), amountOut, slippage)
			}
		}
	}
}

func TestApplyPercentage(t *testing.T) {
	got := ApplyPercentage(big.NewInt(1000), decimal.RequireFromString("12.5"))
	if got.String() != "125" {
		t.Fatalf("percentage mismatch: %s != 125", got.String())
	}
}
