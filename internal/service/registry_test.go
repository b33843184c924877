package service

import (
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		symbol string
		want   string
	}{
		{symbol: "USDC", want: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{symbol: "usdc", want: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{symbol: "WETH", want: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
		{symbol: "ETH", want: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
		{symbol: "dai", want: "0x6B175474E89094C44Da98b954EedeAC495271d0F"},
	}
	for _, tc := range cases {
		t.Run(tc.symbol, func(t *testing.T) {
			addr, ok := r.Lookup(tc.symbol)
			if !ok {
				t.Fatalf("Lookup(%q): not found", tc.symbol)
			}
			if addr != common.HexToAddress(tc.want) {
				t.Fatalf("address mismatch: %s != %s", addr.Hex(), tc.want)
			}
		})
	}
}

func TestRegistryUnknownSymbol(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("NOTATOKEN"); ok {
		t.Fatal("Lookup: expected not found")
	}
	if r.Contains("NOTATOKEN") {
		t.Fatal("Contains: expected false")
	}
}

func TestRegistryEthAliasesWETH(t *testing.T) {
	r := NewRegistry()
	eth, _ := r.Lookup("ETH")
	weth, _ := r.Lookup("WETH")
	if eth != weth {
		t.Fatalf("address mismatch: %s != %s", eth.Hex(), weth.Hex())
	}
	if eth != r.WETHAddress() {
		t.Fatalf("address mismatch: %s != %s", eth.Hex(), r.WETHAddress().Hex())
	}
}

func TestRegistrySupportedSorted(t *testing.T) {
	r := NewRegistry()
	supported := r.Supported()
	if len(supported) != r.Len() {
		t.Fatalf("length mismatch: %d != %d", len(supported), r.Len())
	}
	if !sort.StringsAreSorted(supported) {
		t.Fatalf("symbols not sorted: %v", supported)
	}
	for _, symbol := range supported {
		if !r.Contains(symbol) {
			t.Fatalf("Supported returned unknown symbol %q", symbol)
		}
	}
}
