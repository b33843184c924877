package service

// Request and response shapes exposed to the delivery layer. Every
// on-chain quantity crosses this boundary as a decimal string, never as a
// native float.

type GetBalanceRequest struct {
	// Wallet address to query.
	WalletAddress string `json:"wallet_address"`
	// Optional ERC20 contract address. Empty means the native ETH balance.
	TokenContractAddress string `json:"token_contract_address,omitempty"`
}

type GetBalanceResponse struct {
	// Raw balance in the token's smallest unit.
	Balance string `json:"balance"`
	// Balance formatted with the token's decimals.
	FormattedBalance string `json:"formatted_balance"`
	Decimals         uint8  `json:"decimals"`
	Symbol           string `json:"symbol"`
}

// GetTokenPriceRequest identifies a token by symbol or contract address;
// exactly one of the two must be set.
type GetTokenPriceRequest struct {
	Symbol          string `json:"symbol,omitempty"`
	ContractAddress string `json:"contract_address,omitempty"`
}

type GetTokenPriceResponse struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	PriceUSD string `json:"price_usd"`
	PriceETH string `json:"price_eth"`
	// Unix seconds at which the price was computed.
	Timestamp int64 `json:"timestamp"`
}

type SwapTokensRequest struct {
	// Source and destination tokens, each a symbol ("ETH", "USDC") or a
	// contract address.
	FromToken string `json:"from_token"`
	ToToken   string `json:"to_token"`
	// Human-readable amount ("1.5"); scaled by the source token's decimals.
	Amount string `json:"amount"`
	// Slippage tolerance as a decimal percent string ("0.5" for 0.5%).
	SlippageTolerance string `json:"slippage_tolerance"`
	// "v2" or "v3"; defaults to "v2".
	UniswapVersion string `json:"uniswap_version,omitempty"`
	// Optional sender used for the dry-run gas simulation.
	FromAddress string `json:"from_address,omitempty"`
}

type SwapTokensResponse struct {
	EstimatedOutput    string `json:"estimated_output"`
	EstimatedOutputRaw string `json:"estimated_output_raw"`
	MinimumOutput      string `json:"minimum_output"`
	EstimatedGas       string `json:"estimated_gas"`
	EstimatedGasETH    string `json:"estimated_gas_eth"`
	PriceImpact        string `json:"price_impact"`
	ExchangeRate       string `json:"exchange_rate"`
	// Human-readable description of the simulated swap. Never a signable
	// payload.
	TransactionData string `json:"transaction_data"`
	// Selected fee tier; set only for V3 swaps.
	FeeTier uint32 `json:"fee_tier,omitempty"`
}
