package swapform

import (
	"context"
	"time"
)

// TradeRequest is what the form hands to the execution collaborator.
type TradeRequest struct {
	FromToken         string
	ToToken           string
	FromAmount        string
	ToAmount          string
	MinimumReceived   string
	SlippageTolerance float64
	PriceImpact       float64
	Fee               float64
	Wallet            string
}

// TradeReceipt describes an executed swap. TxHash is empty when nothing was
// sent on-chain.
type TradeReceipt struct {
	ID         string    `json:"id"`
	TxHash     string    `json:"tx_hash,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

// TradeExecutor performs the swap. Cancellation belongs to ctx.
type TradeExecutor interface {
	ExecuteSwap(ctx context.Context, req TradeRequest) (*TradeReceipt, error)
}
