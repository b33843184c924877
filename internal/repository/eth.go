package repository

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dexquote/internal/chain"
)

// Ethereum mainnet contract addresses.
const (
	uniswapV2FactoryAddress = "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"
	uniswapV2RouterAddress  = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	uniswapV3QuoterAddress  = "0x61fFE014bA17989E743c5F6cB21bF9697530B21e"
	uniswapV3RouterAddress  = "0xE592427A0AEce92De3Edee1F18E0157C05861564"

	usdcAddress = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	wethAddress = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"

	// USDC reserves must be scaled by 10^(18-6) before dividing by WETH
	// reserves to obtain the ETH/USD price.
	usdcToWethDecimalGap = 12
)

// EthRepository is the production Repository backed by a go-ethereum
// client. It holds no mutable state beyond the shared connection handle.
type EthRepository struct {
	client *chain.Client
	logger *zap.Logger
}

func NewEthRepository(client *chain.Client, logger *zap.Logger) *EthRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EthRepository{client: client, logger: logger}
}

var _ Repository = (*EthRepository)(nil)

func (r *EthRepository) GetNativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := r.client.BalanceAt(ctx, address)
	if err != nil {
		return nil, rpcError(err, "get native balance for %s", address.Hex())
	}
	return balance, nil
}

func (r *EthRepository) GetTokenBalance(ctx context.Context, token, owner common.Address) (TokenBalance, error) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return TokenBalance{}, parseError(err, "parse erc20 abi")
	}

	values, err := r.call(ctx, token, stringABI, "balanceOf", owner)
	if err != nil {
		return TokenBalance{}, contractError(err, "balanceOf %s", token.Hex())
	}
	balance, err := asBigInt(values[0])
	if err != nil {
		return TokenBalance{}, contractError(err, "balanceOf %s", token.Hex())
	}

	meta, err := r.GetTokenMetadata(ctx, token)
	if err != nil {
		return TokenBalance{}, err
	}

	return TokenBalance{Balance: balance, Decimals: meta.Decimals, Symbol: meta.Symbol}, nil
}

func (r *EthRepository) GetTokenMetadata(ctx context.Context, token common.Address) (TokenMetadata, error) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return TokenMetadata{}, parseError(err, "parse erc20 abi")
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return TokenMetadata{}, parseError(err, "parse erc20 bytes32 abi")
	}

	values, err := r.call(ctx, token, stringABI, "decimals")
	if err != nil {
		return TokenMetadata{}, contractError(err, "decimals %s", token.Hex())
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return TokenMetadata{}, contractError(err, "decimals %s", token.Hex())
	}

	meta := TokenMetadata{Decimals: decimals}

	// Prefer the standard string symbol; fall back to the bytes32 variant
	// used by some older tokens.
	if values, err := r.call(ctx, token, stringABI, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := r.call(ctx, token, bytes32ABI, "symbol"); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else {
		return TokenMetadata{}, contractError(err, "symbol %s", token.Hex())
	}

	return meta, nil
}

func (r *EthRepository) GetGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, rpcError(err, "get gas price")
	}
	return price, nil
}

func (r *EthRepository) GetPairReserves(ctx context.Context, tokenA, tokenB common.Address) (PairReserves, error) {
	factoryABI, err := v2FactoryABIInstance()
	if err != nil {
		return PairReserves{}, parseError(err, "parse v2 factory abi")
	}
	pairABI, err := v2PairABIInstance()
	if err != nil {
		return PairReserves{}, parseError(err, "parse v2 pair abi")
	}

	factory := common.HexToAddress(uniswapV2FactoryAddress)
	values, err := r.call(ctx, factory, factoryABI, "getPair", tokenA, tokenB)
	if err != nil {
		return PairReserves{}, contractError(err, "getPair %s/%s", tokenA.Hex(), tokenB.Hex())
	}
	pair, err := asAddress(values[0])
	if err != nil {
		return PairReserves{}, contractError(err, "getPair %s/%s", tokenA.Hex(), tokenB.Hex())
	}
	if pair == (common.Address{}) {
		return PairReserves{}, contractError(nil, "no pair found for %s/%s", tokenA.Hex(), tokenB.Hex())
	}

	values, err = r.call(ctx, pair, pairABI, "getReserves")
	if err != nil {
		return PairReserves{}, contractError(err, "getReserves %s", pair.Hex())
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return PairReserves{}, contractError(err, "getReserves %s", pair.Hex())
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return PairReserves{}, contractError(err, "getReserves %s", pair.Hex())
	}

	values, err = r.call(ctx, pair, pairABI, "token0")
	if err != nil {
		return PairReserves{}, contractError(err, "token0 %s", pair.Hex())
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return PairReserves{}, contractError(err, "token0 %s", pair.Hex())
	}

	reserves := PairReserves{TokenA: tokenA, TokenB: tokenB}
	if token0 == tokenA {
		reserves.ReserveA, reserves.ReserveB = reserve0, reserve1
	} else {
		reserves.ReserveA, reserves.ReserveB = reserve1, reserve0
	}
	return reserves, nil
}

func (r *EthRepository) GetNativeUSDPrice(ctx context.Context) (decimal.Decimal, error) {
	reserves, err := r.GetPairReserves(ctx, common.HexToAddress(usdcAddress), common.HexToAddress(wethAddress))
	if err != nil {
		return decimal.Zero, err
	}
	if reserves.ReserveA.Sign() == 0 || reserves.ReserveB.Sign() == 0 {
		return decimal.Zero, contractError(nil, "no liquidity in USDC/WETH pair")
	}

	usdc := decimal.NewFromBigInt(reserves.ReserveA, usdcToWethDecimalGap)
	weth := decimal.NewFromBigInt(reserves.ReserveB, 0)
	return usdc.Div(weth), nil
}

func (r *EthRepository) GetSwapAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	routerABI, err := v2RouterABIInstance()
	if err != nil {
		return nil, parseError(err, "parse v2 router abi")
	}

	router := common.HexToAddress(uniswapV2RouterAddress)
	values, err := r.call(ctx, router, routerABI, "getAmountsOut", amountIn, path)
	if err != nil {
		r.logger.Debug("getAmountsOut failed",
			zap.String("amount_in", amountIn.String()),
			zap.Int("path_len", len(path)),
			zap.Error(err),
		)
		return nil, contractError(err, "getAmountsOut")
	}

	amounts, ok := values[0].([]*big.Int)
	if !ok {
		return nil, contractError(nil, "unexpected getAmountsOut result type %T", values[0])
	}
	return amounts, nil
}

func (r *EthRepository) SimulateSwap(ctx context.Context, from common.Address, amountIn, amountOutMin *big.Int, path []common.Address, deadline *big.Int) (uint64, error) {
	routerABI, err := v2RouterABIInstance()
	if err != nil {
		return 0, parseError(err, "parse v2 router abi")
	}

	router := common.HexToAddress(uniswapV2RouterAddress)
	data, err := routerABI.Pack("swapExactTokensForTokens", amountIn, amountOutMin, path, from, deadline)
	if err != nil {
		return 0, parseError(err, "pack swapExactTokensForTokens")
	}

	msg := ethereum.CallMsg{From: from, To: &router, Data: data}

	// eth_call first to verify the swap would succeed, then a separate gas
	// estimation. Nothing is broadcast.
	if _, err := r.client.CallContract(ctx, msg, nil); err != nil {
		r.logger.Debug("swap simulation call failed", zap.Error(err))
		return 0, contractError(err, "swap simulation")
	}

	gas, err := r.client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, contractError(err, "estimate swap gas")
	}
	return gas, nil
}

// quoteExactInputSingleParams mirrors the QuoterV2 tuple layout.
type quoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

func (r *EthRepository) GetV3Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, feeTier uint32) (V3Quote, error) {
	quoterABI, err := v3QuoterABIInstance()
	if err != nil {
		return V3Quote{}, parseError(err, "parse v3 quoter abi")
	}

	quoter := common.HexToAddress(uniswapV3QuoterAddress)
	params := quoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               new(big.Int).SetUint64(uint64(feeTier)),
		SqrtPriceLimitX96: new(big.Int),
	}

	values, err := r.call(ctx, quoter, quoterABI, "quoteExactInputSingle", params)
	if err != nil {
		return V3Quote{}, contractError(err, "quoteExactInputSingle fee=%d", feeTier)
	}

	amountOut, err := asBigInt(values[0])
	if err != nil {
		return V3Quote{}, contractError(err, "quoteExactInputSingle fee=%d", feeTier)
	}
	gasEstimate, err := asBigInt(values[3])
	if err != nil {
		return V3Quote{}, contractError(err, "quoteExactInputSingle fee=%d", feeTier)
	}

	return V3Quote{AmountOut: amountOut, GasEstimate: gasEstimate.Uint64()}, nil
}

// exactInputSingleParams mirrors the V3 SwapRouter tuple layout.
type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

func (r *EthRepository) SimulateV3Swap(ctx context.Context, from, tokenIn, tokenOut common.Address, amountIn, amountOutMin *big.Int, feeTier uint32, deadline *big.Int) (uint64, error) {
	routerABI, err := v3RouterABIInstance()
	if err != nil {
		return 0, parseError(err, "parse v3 router abi")
	}

	router := common.HexToAddress(uniswapV3RouterAddress)
	params := exactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		Fee:               new(big.Int).SetUint64(uint64(feeTier)),
		Recipient:         from,
		Deadline:          deadline,
		AmountIn:          amountIn,
		AmountOutMinimum:  amountOutMin,
		SqrtPriceLimitX96: new(big.Int),
	}

	data, err := routerABI.Pack("exactInputSingle", params)
	if err != nil {
		return 0, parseError(err, "pack exactInputSingle")
	}

	msg := ethereum.CallMsg{From: from, To: &router, Data: data}

	if _, err := r.client.CallContract(ctx, msg, nil); err != nil {
		r.logger.Debug("v3 swap simulation call failed", zap.Error(err))
		return 0, contractError(err, "v3 swap simulation fee=%d", feeTier)
	}

	gas, err := r.client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, contractError(err, "estimate v3 swap gas fee=%d", feeTier)
	}
	return gas, nil
}

func (r *EthRepository) call(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := r.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := contractABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
