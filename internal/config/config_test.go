package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.String("listen", ":8080", "")
	flags.String("pg-dsn", "", "")
	flags.String("sim-from", "", "")
	flags.Duration("request-timeout", 30*time.Second, "")
	flags.String("log-level", "info", "")
	return flags
}

func TestLoadFromFlags(t *testing.T) {
	flags := newFlags()
	if err := flags.Parse([]string{"--rpc", "https://example.invalid/rpc", "--listen", ":9090"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPCURL != "https://example.invalid/rpc" {
		t.Fatalf("rpc mismatch: %s", cfg.RPCURL)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("listen mismatch: %s", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level mismatch: %s", cfg.LogLevel)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("timeout mismatch: %s", cfg.RequestTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DEXQUOTE_RPC", "https://env.invalid/rpc")
	t.Setenv("DEXQUOTE_LOG_LEVEL", "debug")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPCURL != "https://env.invalid/rpc" {
		t.Fatalf("rpc mismatch: %s", cfg.RPCURL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level mismatch: %s", cfg.LogLevel)
	}
}

func TestLoadRequiresRPC(t *testing.T) {
	if _, err := Load("", newFlags()); err == nil {
		t.Fatal("expected error when rpc is unset")
	}
}
