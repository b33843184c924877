package storage

import (
	"context"
	"time"
)

// SwapRecord captures one served swap simulation for the audit trail.
type SwapRecord struct {
	FromToken     string    `json:"from_token"`
	ToToken       string    `json:"to_token"`
	Protocol      string    `json:"protocol"`
	FeeTier       uint32    `json:"fee_tier,omitempty"`
	AmountInRaw   string    `json:"amount_in_raw"`
	AmountOutRaw  string    `json:"amount_out_raw"`
	MinimumOutRaw string    `json:"minimum_out_raw"`
	EstimatedGas  string    `json:"estimated_gas"`
	PriceImpact   string    `json:"price_impact"`
	SimulatedAt   time.Time `json:"simulated_at"`
}

// Recorder defines a sink for swap simulation records.
type Recorder interface {
	RecordSwap(ctx context.Context, record SwapRecord) error
}
