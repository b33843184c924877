package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dexquote/internal/chain"
	"dexquote/internal/config"
	"dexquote/internal/repository"
	"dexquote/internal/server"
	"dexquote/internal/service"
	"dexquote/internal/storage"
	"dexquote/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "dexquote",
		Short:        "Ethereum balance, price, and swap simulation service",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("rpc", "", "Ethereum RPC URL")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Duration("request-timeout", 30*time.Second, "per-request timeout")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for the swap audit trail (optional)")
	serveCmd.Flags().String("audit-file", "", "JSONL file for the swap audit trail (optional)")
	root.AddCommand(serveCmd)

	balanceCmd := &cobra.Command{
		Use:   "balance <wallet>",
		Short: "Query the native or ERC20 balance of a wallet",
		Args:  cobra.ExactArgs(1),
		RunE:  runBalance,
	}
	balanceCmd.Flags().String("token", "", "ERC20 contract address (omit for native ETH)")
	root.AddCommand(balanceCmd)

	priceCmd := &cobra.Command{
		Use:   "price <symbol-or-address>",
		Short: "Get a token price in ETH and USD from its WETH pool",
		Args:  cobra.ExactArgs(1),
		RunE:  runPrice,
	}
	root.AddCommand(priceCmd)

	swapCmd := &cobra.Command{
		Use:   "swap <from> <to> <amount>",
		Short: "Simulate a swap and report the expected outcome",
		Args:  cobra.ExactArgs(3),
		RunE:  runSwap,
	}
	swapCmd.Flags().String("slippage", "0.5", "slippage tolerance percent")
	swapCmd.Flags().String("version", "v2", "Uniswap version (v2 or v3)")
	swapCmd.Flags().String("sim-from", "", "sender address for the gas dry run")
	root.AddCommand(swapCmd)

	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "List supported token symbols",
		RunE:  runTokens,
	}
	root.AddCommand(tokensCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var recorder storage.Recorder
	switch {
	case cfg.PostgresDSN != "":
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		recorder = store
		logger.Info("swap audit trail enabled", zap.String("backend", "postgres"))
	case cfg.AuditFile != "":
		recorder = storage.NewJsonlRecorder(cfg.AuditFile)
		logger.Info("swap audit trail enabled", zap.String("backend", "jsonl"), zap.String("path", cfg.AuditFile))
	}

	repo := repository.NewEthRepository(chainClient, logger)
	svc := service.New(repo, recorder, logger)
	srv := server.New(svc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func runBalance(cmd *cobra.Command, args []string) error {
	token, _ := cmd.Flags().GetString("token")
	return withService(cmd, func(ctx context.Context, svc *service.Service) (interface{}, error) {
		return svc.GetBalance(ctx, service.GetBalanceRequest{
			WalletAddress:        args[0],
			TokenContractAddress: token,
		})
	})
}

func runPrice(cmd *cobra.Command, args []string) error {
	return withService(cmd, func(ctx context.Context, svc *service.Service) (interface{}, error) {
		req := service.GetTokenPriceRequest{Symbol: args[0]}
		if len(args[0]) > 2 && args[0][0] == '0' && (args[0][1] == 'x' || args[0][1] == 'X') {
			req = service.GetTokenPriceRequest{ContractAddress: args[0]}
		}
		return svc.GetTokenPrice(ctx, req)
	})
}

func runSwap(cmd *cobra.Command, args []string) error {
	slippage, _ := cmd.Flags().GetString("slippage")
	version, _ := cmd.Flags().GetString("version")
	simFrom, _ := cmd.Flags().GetString("sim-from")
	return withService(cmd, func(ctx context.Context, svc *service.Service) (interface{}, error) {
		return svc.SwapTokens(ctx, service.SwapTokensRequest{
			FromToken:         args[0],
			ToToken:           args[1],
			Amount:            args[2],
			SlippageTolerance: slippage,
			UniswapVersion:    version,
			FromAddress:       simFrom,
		})
	})
}

func runTokens(cmd *cobra.Command, _ []string) error {
	return printJSON(service.NewRegistry().Supported())
}

// withService wires the chain client and service for one-shot CLI calls
// and prints the result as JSON.
func withService(cmd *cobra.Command, fn func(context.Context, *service.Service) (interface{}, error)) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	repo := repository.NewEthRepository(chainClient, logger)
	svc := service.New(repo, nil, logger)

	result, err := fn(ctx, svc)
	if err != nil {
		if svcErr, ok := service.AsError(err); ok {
			printJSON(svcErr)
			os.Exit(1)
		}
		return err
	}
	return printJSON(result)
}

func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
