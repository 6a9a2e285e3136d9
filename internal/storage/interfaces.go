package storage

import (
	"context"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
)

// PriceSource supplies the latest token price snapshot. Snapshots may be
// stale; consumers have no freshness policy of their own.
type PriceSource interface {
	// GetTokenPrices returns symbol -> price
	GetTokenPrices(ctx context.Context) (map[string]models.TokenPrice, error)
}

// PoolSource supplies the liquidity pool registry.
type PoolSource interface {
	// GetLiquidityPools returns every known pool
	GetLiquidityPools(ctx context.Context) ([]models.LiquidityPool, error)
}

// TradeRecorder persists or distributes completed trades. Recording is
// best-effort: callers log failures and carry on.
type TradeRecorder interface {
	// RecordTrade stores a single trade
	RecordTrade(ctx context.Context, trade *models.TradeRecord) error
}

// RecorderFunc adapts a function to TradeRecorder.
type RecorderFunc func(ctx context.Context, trade *models.TradeRecord) error

func (f RecorderFunc) RecordTrade(ctx context.Context, trade *models.TradeRecord) error {
	return f(ctx, trade)
}
