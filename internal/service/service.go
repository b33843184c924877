package service

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dexquote/internal/repository"
	"dexquote/internal/storage"
)

const (
	// The native asset uses 18 decimal places (1 ETH = 10^18 wei).
	ethDecimals = 18
	ethSymbol   = "ETH"

	// Gas estimate used when no sender address is available for a dry run.
	typicalSwapGas = 150000

	// Deadline attached to simulated swap transactions.
	swapDeadline = time.Hour
)

// v3FeeTiers is the fixed probing order for concentrated-liquidity quotes:
// 0.3%, 0.05%, 1%. Selection is highest output with the earliest-probed
// tier winning ties, so the order makes tie-breaks deterministic.
var v3FeeTiers = [3]uint32{3000, 500, 10000}

// Service is the quote and simulation engine. It holds no per-request
// state; a single instance serves arbitrarily many concurrent calls.
type Service struct {
	repo     repository.Repository
	registry *Registry
	recorder storage.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// New creates the engine. The recorder may be nil to disable the audit
// trail.
func New(repo repository.Repository, recorder storage.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		registry: NewRegistry(),
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Registry exposes the compiled-in token table.
func (s *Service) Registry() *Registry {
	return s.registry
}

// GetBalance returns the native or ERC20 balance of a wallet.
func (s *Service) GetBalance(ctx context.Context, req GetBalanceRequest) (GetBalanceResponse, error) {
	if !common.IsHexAddress(req.WalletAddress) {
		return GetBalanceResponse{}, newError(ErrInvalidWalletAddress, "malformed address: %q", req.WalletAddress)
	}
	wallet := common.HexToAddress(req.WalletAddress)

	if req.TokenContractAddress != "" {
		if !common.IsHexAddress(req.TokenContractAddress) {
			return GetBalanceResponse{}, newError(ErrInvalidWalletAddress, "malformed token address: %q", req.TokenContractAddress)
		}
		token := common.HexToAddress(req.TokenContractAddress)

		balance, err := s.repo.GetTokenBalance(ctx, token, wallet)
		if err != nil {
			return GetBalanceResponse{}, fromRepository(err)
		}

		return GetBalanceResponse{
			Balance:          balance.Balance.String(),
			FormattedBalance: FormatAmount(balance.Balance, balance.Decimals),
			Decimals:         balance.Decimals,
			Symbol:           balance.Symbol,
		}, nil
	}

	balance, err := s.repo.GetNativeBalance(ctx, wallet)
	if err != nil {
		return GetBalanceResponse{}, fromRepository(err)
	}

	return GetBalanceResponse{
		Balance:          balance.String(),
		FormattedBalance: FormatAmount(balance, ethDecimals),
		Decimals:         ethDecimals,
		Symbol:           ethSymbol,
	}, nil
}

// GetTokenPrice returns the token price in ETH and USD, derived from the
// token's WETH pool reserves.
func (s *Service) GetTokenPrice(ctx context.Context, req GetTokenPriceRequest) (GetTokenPriceResponse, error) {
	var (
		token  common.Address
		symbol string
	)

	switch {
	case req.Symbol != "":
		addr, ok := s.registry.Lookup(req.Symbol)
		if !ok {
			return GetTokenPriceResponse{}, s.tokenNotFound(req.Symbol)
		}
		token, symbol = addr, req.Symbol
	case req.ContractAddress != "":
		if !common.IsHexAddress(req.ContractAddress) {
			return GetTokenPriceResponse{}, newError(ErrInvalidWalletAddress, "malformed token address: %q", req.ContractAddress)
		}
		token = common.HexToAddress(req.ContractAddress)
		meta, err := s.repo.GetTokenMetadata(ctx, token)
		if err != nil {
			return GetTokenPriceResponse{}, fromRepository(err)
		}
		symbol = meta.Symbol
	default:
		return GetTokenPriceResponse{}, newError(ErrInvalidAmount, "either symbol or contract_address is required")
	}

	s.logger.Info("price lookup", zap.String("symbol", symbol), zap.String("token", token.Hex()))

	priceETH, priceUSD, err := s.priceAgainstWETH(ctx, token)
	if err != nil {
		return GetTokenPriceResponse{}, err
	}

	return GetTokenPriceResponse{
		Symbol:    symbol,
		Address:   token.Hex(),
		PriceUSD:  priceUSD,
		PriceETH:  priceETH,
		Timestamp: s.now().Unix(),
	}, nil
}

// SwapTokens simulates a swap on the requested protocol version and
// returns the expected outcome. Nothing is signed or broadcast.
func (s *Service) SwapTokens(ctx context.Context, req SwapTokensRequest) (SwapTokensResponse, error) {
	version := req.UniswapVersion
	if version == "" {
		version = "v2"
	}

	switch version {
	case "v2", "V2":
		return s.swapTokensV2(ctx, req)
	case "v3", "V3":
		return s.swapTokensV3(ctx, req)
	default:
		return SwapTokensResponse{}, newError(ErrInvalidAmount, "invalid Uniswap version %q: must be \"v2\" or \"v3\"", req.UniswapVersion)
	}
}

func (s *Service) swapTokensV2(ctx context.Context, req SwapTokensRequest) (SwapTokensResponse, error) {
	fromToken, err := s.resolveToken(req.FromToken)
	if err != nil {
		return SwapTokensResponse{}, err
	}
	toToken, err := s.resolveToken(req.ToToken)
	if err != nil {
		return SwapTokensResponse{}, err
	}

	fromMeta, err := s.repo.GetTokenMetadata(ctx, fromToken)
	if err != nil {
		return SwapTokensResponse{}, fromRepository(err)
	}

	amountIn, err := ParseAmount(req.Amount, fromMeta.Decimals)
	if err != nil {
		return SwapTokensResponse{}, err
	}
	slippage, err := parseSlippage(req.SlippageTolerance)
	if err != nil {
		return SwapTokensResponse{}, err
	}

	path := []common.Address{fromToken, toToken}
	amounts, err := s.repo.GetSwapAmountsOut(ctx, amountIn, path)
	if err != nil {
		return SwapTokensResponse{}, fromRepository(err)
	}
	if len(amounts) == 0 {
		return SwapTokensResponse{}, newError(ErrSwapSimulationFailed, "no output amount returned")
	}
	amountOut := amounts[len(amounts)-1]

	if amountOut.Sign() == 0 {
		return SwapTokensResponse{}, s.diagnoseZeroOutput(ctx, fromToken, toToken, fromMeta, amountIn)
	}

	minimumOut, err := MinimumOutput(amountOut, slippage)
	if err != nil {
		return SwapTokensResponse{}, err
	}

	toMeta, err := s.repo.GetTokenMetadata(ctx, toToken)
	if err != nil {
		return SwapTokensResponse{}, fromRepository(err)
	}

	reserves, err := s.repo.GetPairReserves(ctx, fromToken, toToken)
	if err != nil {
		return SwapTokensResponse{}, fromRepository(err)
	}

	gasStr, gasETH, err := s.estimateV2SwapGas(ctx, req.FromAddress, amountIn, minimumOut, path)
	if err != nil {
		return SwapTokensResponse{}, err
	}

	impact := PriceImpact(amountIn, amountOut, reserves.ReserveA, reserves.ReserveB)
	rate := ExchangeRate(amountIn, amountOut, fromMeta.Decimals, toMeta.Decimals)

	resp := SwapTokensResponse{
		EstimatedOutput:    FormatAmount(amountOut, toMeta.Decimals),
		EstimatedOutputRaw: amountOut.String(),
		MinimumOutput:      FormatAmount(minimumOut, toMeta.Decimals),
		EstimatedGas:       gasStr,
		EstimatedGasETH:    gasETH,
		PriceImpact:        impact.String(),
		ExchangeRate:       rate.String(),
		TransactionData:    "Swap simulation (V2): " + fromToken.Hex() + " -> " + toToken.Hex(),
	}

	s.recordSwap(ctx, storage.SwapRecord{
		FromToken:     fromToken.Hex(),
		ToToken:       toToken.Hex(),
		Protocol:      "v2",
		AmountInRaw:   amountIn.String(),
		AmountOutRaw:  amountOut.String(),
		MinimumOutRaw: minimumOut.String(),
		EstimatedGas:  gasStr,
		PriceImpact:   resp.PriceImpact,
		SimulatedAt:   s.now(),
	})

	s.logger.Info("v2 swap simulation complete",
		zap.String("output", resp.EstimatedOutput),
		zap.String("impact", resp.PriceImpact),
		zap.String("rate", resp.ExchangeRate),
	)

	return resp, nil
}

func (s *Service) swapTokensV3(ctx context.Context, req SwapTokensRequest) (SwapTokensResponse, error) {
	fromToken, err := s.resolveToken(req.FromToken)
	if err != nil {
		return SwapTokensResponse{}, err
	}
	toToken, err := s.resolveToken(req.ToToken)
	if err != nil {
		return SwapTokensResponse{}, err
	}

	fromMeta, err := s.repo.GetTokenMetadata(ctx, fromToken)
	if err != nil {
		return SwapTokensResponse{}, fromRepository(err)
	}
	toMeta, err := s.repo.GetTokenMetadata(ctx, toToken)
	if err != nil {
		return SwapTokensResponse{}, fromRepository(err)
	}

	amountIn, err := ParseAmount(req.Amount, fromMeta.Decimals)
	if err != nil {
		return SwapTokensResponse{}, err
	}
	slippage, err := parseSlippage(req.SlippageTolerance)
	if err != nil {
		return SwapTokensResponse{}, err
	}

	// Probe every tier before choosing: a later tier with a higher output
	// must still win over an earlier success.
	type tierQuote struct {
		feeTier uint32
		quote   repository.V3Quote
	}
	quotes := make([]tierQuote, 0, len(v3FeeTiers))
	for _, tier := range v3FeeTiers {
		quote, err := s.repo.GetV3Quote(ctx, fromToken, toToken, amountIn, tier)
		if err != nil {
			s.logger.Debug("v3 quote failed", zap.Uint32("fee_tier", tier), zap.Error(err))
			continue
		}
		if quote.AmountOut.Sign() == 0 {
			continue
		}
		quotes = append(quotes, tierQuote{feeTier: tier, quote: quote})
	}

	var best *tierQuote
	for i := range quotes {
		if best == nil || quotes[i].quote.AmountOut.Cmp(best.quote.AmountOut) > 0 {
			best = &quotes[i]
		}
	}
	if best == nil {
		return SwapTokensResponse{}, newError(ErrSwapSimulationFailed,
			"no V3 liquidity pool found for %s/%s pair across fee tiers 0.05%%, 0.3%%, 1%%; try uniswap_version \"v2\" or route through WETH",
			fromMeta.Symbol, toMeta.Symbol)
	}

	s.logger.Info("selected v3 fee tier",
		zap.Uint32("fee_tier", best.feeTier),
		zap.String("amount_out", best.quote.AmountOut.String()),
	)

	minimumOut, err := MinimumOutput(best.quote.AmountOut, slippage)
	if err != nil {
		return SwapTokensResponse{}, err
	}

	gasStr, gasETH, err := s.estimateV3SwapGas(ctx, req.FromAddress, fromToken, toToken, amountIn, minimumOut, best.feeTier, best.quote.GasEstimate)
	if err != nil {
		return SwapTokensResponse{}, err
	}

	rate := ExchangeRate(amountIn, best.quote.AmountOut, fromMeta.Decimals, toMeta.Decimals)

	resp := SwapTokensResponse{
		EstimatedOutput:    FormatAmount(best.quote.AmountOut, toMeta.Decimals),
		EstimatedOutputRaw: best.quote.AmountOut.String(),
		MinimumOutput:      FormatAmount(minimumOut, toMeta.Decimals),
		EstimatedGas:       gasStr,
		EstimatedGasETH:    gasETH,
		// No general reserve concept at this layer, so impact is not
		// derivable the constant-product way.
		PriceImpact:     "N/A (V3)",
		ExchangeRate:    rate.String(),
		TransactionData: "Swap simulation (V3, fee=" + strconv.FormatUint(uint64(best.feeTier), 10) + "): " + fromToken.Hex() + " -> " + toToken.Hex(),
		FeeTier:         best.feeTier,
	}

	s.recordSwap(ctx, storage.SwapRecord{
		FromToken:     fromToken.Hex(),
		ToToken:       toToken.Hex(),
		Protocol:      "v3",
		FeeTier:       best.feeTier,
		AmountInRaw:   amountIn.String(),
		AmountOutRaw:  best.quote.AmountOut.String(),
		MinimumOutRaw: minimumOut.String(),
		EstimatedGas:  gasStr,
		PriceImpact:   resp.PriceImpact,
		SimulatedAt:   s.now(),
	})

	s.logger.Info("v3 swap simulation complete",
		zap.Uint32("fee_tier", best.feeTier),
		zap.String("output", resp.EstimatedOutput),
		zap.String("gas", gasStr),
	)

	return resp, nil
}

// diagnoseZeroOutput builds the actionable failure for a zero-output V2
// quote. The three causes are mutually exclusive: no pool at all, a pool
// with a zero-side reserve, or an input too small to move the pool.
func (s *Service) diagnoseZeroOutput(ctx context.Context, fromToken, toToken common.Address, fromMeta repository.TokenMetadata, amountIn *big.Int) error {
	toSymbol := "unknown"
	if toMeta, err := s.repo.GetTokenMetadata(ctx, toToken); err == nil {
		toSymbol = toMeta.Symbol
	}

	reserves, err := s.repo.GetPairReserves(ctx, fromToken, toToken)
	switch {
	case err != nil:
		return newError(ErrSwapSimulationFailed,
			"no liquidity pool found for %s/%s pair on Uniswap V2; try a different pair, uniswap_version \"v3\", or routing through WETH",
			fromMeta.Symbol, toSymbol)
	case reserves.ReserveA.Sign() == 0 || reserves.ReserveB.Sign() == 0:
		return newError(ErrSwapSimulationFailed,
			"the %s/%s pool has no liquidity (reserves %s / %s); try a different pair or uniswap_version \"v3\"",
			fromMeta.Symbol, toSymbol, reserves.ReserveA.String(), reserves.ReserveB.String())
	default:
		return newError(ErrSwapSimulationFailed,
			"estimated output is 0 %s for %s %s: the input amount is too small for this pool, try a larger amount",
			toSymbol, FormatAmount(amountIn, fromMeta.Decimals), fromMeta.Symbol)
	}
}

func (s *Service) estimateV2SwapGas(ctx context.Context, fromAddress string, amountIn, minimumOut *big.Int, path []common.Address) (string, string, error) {
	if fromAddress != "" {
		if !common.IsHexAddress(fromAddress) {
			return "", "", newError(ErrInvalidWalletAddress, "malformed from address: %q", fromAddress)
		}
		from := common.HexToAddress(fromAddress)
		deadline := big.NewInt(s.now().Add(swapDeadline).Unix())

		gas, err := s.repo.SimulateSwap(ctx, from, amountIn, minimumOut, path, deadline)
		if err == nil {
			return s.formatGasCost(ctx, gas)
		}
		s.logger.Debug("v2 gas simulation failed, using typical gas", zap.Error(err))
	}
	return s.formatGasCost(ctx, typicalSwapGas)
}

func (s *Service) estimateV3SwapGas(ctx context.Context, fromAddress string, fromToken, toToken common.Address, amountIn, minimumOut *big.Int, feeTier uint32, quoteGas uint64) (string, string, error) {
	if fromAddress != "" {
		if !common.IsHexAddress(fromAddress) {
			return "", "", newError(ErrInvalidWalletAddress, "malformed from address: %q", fromAddress)
		}
		from := common.HexToAddress(fromAddress)
		deadline := big.NewInt(s.now().Add(swapDeadline).Unix())

		gas, err := s.repo.SimulateV3Swap(ctx, from, fromToken, toToken, amountIn, minimumOut, feeTier, deadline)
		if err == nil {
			return s.formatGasCost(ctx, gas)
		}
		s.logger.Debug("v3 gas simulation failed, using quoter estimate", zap.Error(err))
	}
	return s.formatGasCost(ctx, quoteGas)
}

// formatGasCost prices a gas amount at the current gas price and formats
// the cost in ETH.
func (s *Service) formatGasCost(ctx context.Context, gas uint64) (string, string, error) {
	gasPrice, err := s.repo.GetGasPrice(ctx)
	if err != nil {
		return "", "", fromRepository(err)
	}
	cost := new(big.Int).Mul(new(big.Int).SetUint64(gas), gasPrice)
	return strconv.FormatUint(gas, 10), FormatAmount(cost, ethDecimals), nil
}

// priceAgainstWETH returns (priceETH, priceUSD) for a token. The wrapped
// native asset is worth exactly 1 ETH by definition.
func (s *Service) priceAgainstWETH(ctx context.Context, token common.Address) (string, string, error) {
	weth := s.registry.WETHAddress()

	ethUSD, err := s.repo.GetNativeUSDPrice(ctx)
	if err != nil {
		return "", "", fromRepository(err)
	}

	if token == weth {
		return "1", ethUSD.String(), nil
	}

	meta, err := s.repo.GetTokenMetadata(ctx, token)
	if err != nil {
		return "", "", fromRepository(err)
	}

	reserves, err := s.repo.GetPairReserves(ctx, token, weth)
	if err != nil {
		return "", "", fromRepository(err)
	}
	if reserves.ReserveA.Sign() == 0 || reserves.ReserveB.Sign() == 0 {
		return "", "", newError(ErrInsufficientLiquidity, "no liquidity in Uniswap pair for token %s and WETH", token.Hex())
	}

	priceETH, err := Price(reserves.ReserveB, reserves.ReserveA, ethDecimals, meta.Decimals)
	if err != nil {
		return "", "", err
	}

	return priceETH.String(), priceETH.Mul(ethUSD).String(), nil
}

// resolveToken accepts a contract address or a registry symbol.
func (s *Service) resolveToken(token string) (common.Address, error) {
	if common.IsHexAddress(token) {
		return common.HexToAddress(token), nil
	}
	if addr, ok := s.registry.Lookup(token); ok {
		return addr, nil
	}
	return common.Address{}, s.tokenNotFound(token)
}

func (s *Service) tokenNotFound(symbol string) *Error {
	s.logger.Warn("token symbol not found in registry", zap.String("symbol", symbol))
	return newError(ErrTokenNotFound, "%s (supported tokens: %s)", symbol, strings.Join(s.registry.Supported(), ", "))
}

func (s *Service) recordSwap(ctx context.Context, record storage.SwapRecord) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSwap(ctx, record); err != nil {
		s.logger.Warn("swap audit record failed", zap.Error(err))
	}
}

func parseSlippage(text string) (decimal.Decimal, error) {
	slippage, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, newError(ErrInvalidAmount, "invalid slippage: %q", text)
	}
	if slippage.IsNegative() || slippage.GreaterThanOrEqual(hundred) {
		return decimal.Zero, newError(ErrInvalidAmount, "slippage must be in [0, 100): %s", slippage.String())
	}
	return slippage, nil
}
