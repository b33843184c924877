package repository

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// TokenBalance is an ERC20 balance together with the metadata needed to
// format it.
type TokenBalance struct {
	Balance  *big.Int
	Decimals uint8
	Symbol   string
}

// TokenMetadata holds the immutable ERC20 fields used for display and
// decimal scaling.
type TokenMetadata struct {
	Decimals uint8
	Symbol   string
}

// PairReserves holds constant-product pool reserves reordered to match the
// token order the caller asked for, regardless of the pool's internal
// token0/token1 ordering.
type PairReserves struct {
	ReserveA *big.Int
	ReserveB *big.Int
	TokenA   common.Address
	TokenB   common.Address
}

// V3Quote is the result of a concentrated-liquidity quoter call.
type V3Quote struct {
	AmountOut   *big.Int
	GasEstimate uint64
}

// Repository abstracts all ledger access. It is implemented once per
// backend; the engine never reasons about RPC transport or ABI encoding.
// Every method returns either a value or a classified *Error.
//
// Implementations must be safe for concurrent use: the service layer
// shares a single instance across all requests.
type Repository interface {
	// GetNativeBalance returns the native balance in wei.
	GetNativeBalance(ctx context.Context, address common.Address) (*big.Int, error)

	// GetTokenBalance returns the ERC20 balance of owner plus the token's
	// decimals and symbol.
	GetTokenBalance(ctx context.Context, token, owner common.Address) (TokenBalance, error)

	// GetTokenMetadata returns the token's decimals and symbol.
	GetTokenMetadata(ctx context.Context, token common.Address) (TokenMetadata, error)

	// GetGasPrice returns the current suggested gas price in wei.
	GetGasPrice(ctx context.Context) (*big.Int, error)

	// GetPairReserves resolves the V2 pool for the pair via the factory and
	// returns its reserves in the requested token order. A missing pool is
	// a contract error.
	GetPairReserves(ctx context.Context, tokenA, tokenB common.Address) (PairReserves, error)

	// GetNativeUSDPrice derives the ETH/USD price from the USDC/WETH pool
	// reserves, scaled for the differing decimal counts of the two assets.
	GetNativeUSDPrice(ctx context.Context) (decimal.Decimal, error)

	// GetSwapAmountsOut returns the per-hop cumulative output amounts for a
	// V2 router swap along path (length >= 2); the last element is the
	// realized output.
	GetSwapAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)

	// SimulateSwap verifies a V2 swap would succeed via eth_call and then
	// estimates its gas. Both steps must succeed. Nothing is broadcast.
	SimulateSwap(ctx context.Context, from common.Address, amountIn, amountOutMin *big.Int, path []common.Address, deadline *big.Int) (uint64, error)

	// GetV3Quote returns the quoter output and gas estimate for a
	// single-hop V3 swap at the given fee tier.
	GetV3Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, feeTier uint32) (V3Quote, error)

	// SimulateV3Swap verifies a V3 swap would succeed via eth_call and then
	// estimates its gas. Nothing is broadcast.
	SimulateV3Swap(ctx context.Context, from, tokenIn, tokenOut common.Address, amountIn, amountOutMin *big.Int, feeTier uint32, deadline *big.Int) (uint64, error)
}
