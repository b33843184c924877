package service

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		decimals uint8
		want     string
	}{
		{name: "whole tokens", text: "1", decimals: 18, want: "1000000000000000000"},
		{name: "fractional", text: "1.5", decimals: 18, want: "1500000000000000000"},
		{name: "six decimals", text: "2500.25", decimals: 6, want: "2500250000"},
		{name: "fractional six decimals", text: "100.5", decimals: 6, want: "100500000"},
		{name: "sub smallest unit truncates", text: "0.0000001", decimals: 6, want: "0"},
		{name: "zero", text: "0", decimals: 18, want: "0"},
		{name: "no leading zero", text: ".5", decimals: 6, want: "500000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.text, tc.decimals)
			if err != nil {
				t.Fatalf("ParseAmount(%q): %v", tc.text, err)
			}
			if got.String() != tc.want {
				t.Fatalf("amount mismatch: %s != %s", got.String(), tc.want)
			}
		})
	}
}

func TestParseAmountRejectsBadInput(t *testing.T) {
	for _, text := range []string{"", "abc", "-1", "-0.5", "1.2.3", "0x10"} {
		t.Run(text, func(t *testing.T) {
			if _, err := ParseAmount(text, 18); err == nil {
				t.Fatalf("ParseAmount(%q): expected error", text)
			} else if svcErr, ok := AsError(err); !ok || svcErr.Kind != ErrInvalidAmount {
				t.Fatalf("kind mismatch: %v != %v", err, ErrInvalidAmount)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		decimals uint8
		want     string
	}{
		{name: "one token", raw: "1000000000000000000", decimals: 18, want: "1"},
		{name: "trailing zeros stripped", raw: "1500000000000000000", decimals: 18, want: "1.5"},
		{name: "small fraction", raw: "1", decimals: 6, want: "0.000001"},
		{name: "zero", raw: "0", decimals: 18, want: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, _ := new(big.Int).SetString(tc.raw, 10)
			if got := FormatAmount(raw, tc.decimals); got != tc.want {
				t.Fatalf("format mismatch: %s != %s", got, tc.want)
			}
		})
	}
}

func TestFormatAmountNil(t *testing.T) {
	if got := FormatAmount(nil, 18); got != "0" {
		t.Fatalf("format mismatch: %s != 0", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, text := range []string{"1", "1.5", "0.000001", "123456.789"} {
		raw, err := ParseAmount(text, 18)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", text, err)
		}
		if got := FormatAmount(raw, 18); got != text {
			t.Fatalf("round trip mismatch: %s != %s", got, text)
		}
	}
}

func TestFromDecimalRejectsNegative(t *testing.T) {
	if _, err := FromDecimal(decimal.NewFromInt(-1), 18); err == nil {
		t.Fatal("expected error for negative value")
	}
}
