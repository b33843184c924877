package repository

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestABIParse(t *testing.T) {
	loaders := map[string]func() (interface{}, error){
		"erc20 string":  func() (interface{}, error) { return erc20ABIStringInstance() },
		"erc20 bytes32": func() (interface{}, error) { return erc20ABIBytes32Instance() },
		"v2 factory":    func() (interface{}, error) { return v2FactoryABIInstance() },
		"v2 pair":       func() (interface{}, error) { return v2PairABIInstance() },
		"v2 router":     func() (interface{}, error) { return v2RouterABIInstance() },
		"v3 quoter":     func() (interface{}, error) { return v3QuoterABIInstance() },
		"v3 router":     func() (interface{}, error) { return v3RouterABIInstance() },
	}
	for name, load := range loaders {
		t.Run(name, func(t *testing.T) {
			if _, err := load(); err != nil {
				t.Fatalf("abi parse: %v", err)
			}
		})
	}
}

func TestGetReservesRoundTrip(t *testing.T) {
	pairABI, err := v2PairABIInstance()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	reserve0, _ := new(big.Int).SetString("2000000000000", 10)
	reserve1, _ := new(big.Int).SetString("1000000000000000000000", 10)

	data, err := pairABI.Methods["getReserves"].Outputs.Pack(reserve0, reserve1, uint32(1_700_000_000))
	if err != nil {
		t.Fatalf("pack reserves: %v", err)
	}

	values, err := pairABI.Unpack("getReserves", data)
	if err != nil {
		t.Fatalf("unpack reserves: %v", err)
	}

	got0, err := asBigInt(values[0])
	if err != nil {
		t.Fatalf("reserve0: %v", err)
	}
	got1, err := asBigInt(values[1])
	if err != nil {
		t.Fatalf("reserve1: %v", err)
	}
	if got0.Cmp(reserve0) != 0 || got1.Cmp(reserve1) != 0 {
		t.Fatalf("reserves mismatch: %s/%s != %s/%s", got0, got1, reserve0, reserve1)
	}
}

func TestQuoterCallPacksTuple(t *testing.T) {
	quoterABI, err := v3QuoterABIInstance()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	params := quoteExactInputSingleParams{
		TokenIn:           common.HexToAddress("0x1111111111111111111111111111111111111111"),
		TokenOut:          common.HexToAddress("0x2222222222222222222222222222222222222222"),
		AmountIn:          big.NewInt(1_000_000),
		Fee:               big.NewInt(3000),
		SqrtPriceLimitX96: new(big.Int),
	}

	data, err := quoterABI.Pack("quoteExactInputSingle", params)
	if err != nil {
		t.Fatalf("pack quote: %v", err)
	}
	// 4-byte selector plus one 5-field tuple.
	if len(data) != 4+5*32 {
		t.Fatalf("calldata length mismatch: %d != %d", len(data), 4+5*32)
	}
}

func TestQuoterOutputUnpack(t *testing.T) {
	quoterABI, err := v3QuoterABIInstance()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	data, err := quoterABI.Methods["quoteExactInputSingle"].Outputs.Pack(
		big.NewInt(120_000_000),
		big.NewInt(123456789),
		uint32(3),
		big.NewInt(110_000),
	)
	if err != nil {
		t.Fatalf("pack outputs: %v", err)
	}

	values, err := quoterABI.Unpack("quoteExactInputSingle", data)
	if err != nil {
		t.Fatalf("unpack outputs: %v", err)
	}

	amountOut, err := asBigInt(values[0])
	if err != nil {
		t.Fatalf("amountOut: %v", err)
	}
	gasEstimate, err := asBigInt(values[3])
	if err != nil {
		t.Fatalf("gasEstimate: %v", err)
	}
	if amountOut.Int64() != 120_000_000 || gasEstimate.Int64() != 110_000 {
		t.Fatalf("quote mismatch: %s/%s", amountOut, gasEstimate)
	}
}

func TestV3RouterCallPacksTuple(t *testing.T) {
	routerABI, err := v3RouterABIInstance()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	params := exactInputSingleParams{
		TokenIn:           common.HexToAddress("0x1111111111111111111111111111111111111111"),
		TokenOut:          common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Fee:               big.NewInt(500),
		Recipient:         common.HexToAddress("0x3333333333333333333333333333333333333333"),
		Deadline:          big.NewInt(1_700_003_600),
		AmountIn:          big.NewInt(1_000_000),
		AmountOutMinimum:  big.NewInt(990_000),
		SqrtPriceLimitX96: new(big.Int),
	}

	data, err := routerABI.Pack("exactInputSingle", params)
	if err != nil {
		t.Fatalf("pack exactInputSingle: %v", err)
	}
	if len(data) != 4+8*32 {
		t.Fatalf("calldata length mismatch: %d != %d", len(data), 4+8*32)
	}
}

func TestSwapCalldataPack(t *testing.T) {
	routerABI, err := v2RouterABIInstance()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	path := []common.Address{
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
	data, err := routerABI.Pack("swapExactTokensForTokens",
		big.NewInt(1_000_000),
		big.NewInt(990_000),
		path,
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		big.NewInt(1_700_003_600),
	)
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty calldata")
	}
}

func TestBytes32ToString(t *testing.T) {
	var mkr [32]byte
	copy(mkr[:], "MKR")

	got, ok := bytes32ToString(mkr)
	if !ok || got != "MKR" {
		t.Fatalf("symbol mismatch: %q", got)
	}

	if _, ok := bytes32ToString(42); ok {
		t.Fatal("expected failure for non-bytes value")
	}
}

func TestAsUint8(t *testing.T) {
	if v, err := asUint8(uint8(18)); err != nil || v != 18 {
		t.Fatalf("uint8 mismatch: %d, %v", v, err)
	}
	if v, err := asUint8(big.NewInt(6)); err != nil || v != 6 {
		t.Fatalf("big.Int mismatch: %d, %v", v, err)
	}
	if _, err := asUint8("6"); err == nil {
		t.Fatal("expected failure for string value")
	}
}
