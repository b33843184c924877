package service

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Well-known ERC20 contract addresses on Ethereum mainnet. ETH maps to the
// WETH contract because the native asset has no contract address of its
// own.
const wethTokenAddress = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"

var tokenAddresses = map[string]string{
	// Native & wrapped
	"ETH":  wethTokenAddress,
	"WETH": wethTokenAddress,
	"WBTC": "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599",

	// Stablecoins
	"USDT": "0xdac17f958d2ee523a2206206994597c13d831ec7",
	"USDC": "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
	"DAI":  "0x6b175474e89094c44da98b954eedeac495271d0f",
	"BUSD": "0x4fabb145d64652a948d72533023f6e7a623c7c53",
	"FRAX": "0x853d955acef822db058eb8505911ed77f175b99e",

	// DeFi
	"UNI":   "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
	"AAVE":  "0x7fc66500c84a76ad7e9c93437bfc5ac33e2ddae9",
	"LINK":  "0x514910771af9ca656af840dff83e8264ecf986ca",
	"COMP":  "0xc00e94cb662c3520282e6f5717214004a7f26888",
	"MKR":   "0x9f8f72aa9304c8b593d555f12ef6589cc3a579a2",
	"SNX":   "0xc011a73ee8576fb46f5e1c5751ca3b9fe0af2a6f",
	"CRV":   "0xd533a949740bb3306d119cc777fa900ba034cd52",
	"SUSHI": "0x6b3595068778dd592e39a122f4f5a5cf09c90fe2",
	"LDO":   "0x5a98fcbea516cf06857215779fd812ca3bef1b32",

	// Layer 2 & scaling
	"MATIC": "0x7d1afa7b718fb893db30a3abc0cfc608aacfebb0",
	"ARB":   "0xb50721bcf8d664c30412cfbc6cf7a15145234ad1",
	"OP":    "0x4200000000000000000000000000000000000042",

	// Meme
	"SHIB":  "0x95ad61b0a150d79219dcf64e1e6cc01f0b64c4ce",
	"PEPE":  "0x6982508145454ce325ddbe47a25d4ec3d2311933",
	"FLOKI": "0xcf0c122c6b73ff809c693db761e7baebe62b6a2e",

	// Exchange & utility
	"APE":  "0x4d224452801aced8b2f0aebe155379bb5d594381",
	"GRT":  "0xc944e90c64b2c07662a292be6244bdf05cda44a7",
	"FTM":  "0x4e15361fd6b4bb609fa63c81a2be19d873717870",
	"SAND": "0x3845badade8e6dff049820680d1f14bd3903a5d0",
	"MANA": "0x0f5d2fb29fb7d3cfee444a200298f468908cc942",
	"AXS":  "0xbb0e17ef65f82ab018d8edd776e8dd940327b28b",
	"ENJ":  "0xf629cbd94d3791c9250152bd8dfbdf380e2a3b9c",
	"BAT":  "0x0d8775f648430679a709e98d2b0cb6250d2887ef",
	"ZRX":  "0xe41d2489571d322189246dafa5ebde1f4699f498",
}

// Registry maps well-known token symbols to contract addresses. It is
// compiled-in reference data: built once, never mutated.
type Registry struct {
	tokens map[string]common.Address
}

func NewRegistry() *Registry {
	tokens := make(map[string]common.Address, len(tokenAddresses))
	for symbol, addr := range tokenAddresses {
		tokens[symbol] = common.HexToAddress(addr)
	}
	return &Registry{tokens: tokens}
}

// Lookup resolves a symbol to its contract address, case-insensitively.
func (r *Registry) Lookup(symbol string) (common.Address, bool) {
	addr, ok := r.tokens[strings.ToUpper(symbol)]
	return addr, ok
}

// Contains reports whether the symbol is known, case-insensitively.
func (r *Registry) Contains(symbol string) bool {
	_, ok := r.tokens[strings.ToUpper(symbol)]
	return ok
}

// Supported returns all known symbols in alphabetical order.
func (r *Registry) Supported() []string {
	symbols := make([]string, 0, len(r.tokens))
	for symbol := range r.tokens {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Len returns the number of registered symbols.
func (r *Registry) Len() int {
	return len(r.tokens)
}

// WETHAddress returns the wrapped-native token address.
func (r *Registry) WETHAddress() common.Address {
	return common.HexToAddress(wethTokenAddress)
}
