package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

// solana transaction signatures are 64 bytes
const txSignatureLen = 64

// TradeRecord is what gets handed to the best-effort trade recorders after a
// successful swap submission.
type TradeRecord struct {
	ID          string    `json:"id"`
	FromToken   string    `json:"from_token"`
	ToToken     string    `json:"to_token"`
	FromAmount  string    `json:"from_amount"`
	ToAmount    string    `json:"to_amount"`
	PriceImpact float64   `json:"price_impact"` // fraction
	Fee         float64   `json:"fee"`          // fraction
	Wallet      string    `json:"wallet,omitempty"`
	TxHash      string    `json:"tx_hash,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Pair returns the "FROM/TO" key of the trade.
func (t *TradeRecord) Pair() string {
	return PairKey(t.FromToken, t.ToToken)
}

// Validate checks the fields every recorder relies on.
func (t *TradeRecord) Validate() error {
	if t.ID == "" {
		return errors.New("trade id is required")
	}
	if t.FromToken == "" || t.ToToken == "" {
		return errors.New("trade tokens are required")
	}
	if t.TxHash != "" {
		if err := ValidateTxHash(t.TxHash); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTxHash checks that s is a base58 encoded transaction signature.
func ValidateTxHash(s string) error {
	b, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("invalid tx hash: %w", err)
	}
	if len(b) != txSignatureLen {
		return fmt.Errorf("invalid tx hash: want %d bytes, got %d", txSignatureLen, len(b))
	}
	return nil
}
