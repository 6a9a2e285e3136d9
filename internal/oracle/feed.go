// Package oracle keeps the quote engine's market snapshot fresh. Prices and
// pools refresh on independent timers and every refresh publishes a new
// immutable quote.Market; readers never block.
package oracle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/quote"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage"
)

// FeedConfig holds the feed's collaborators and cadences.
type FeedConfig struct {
	Prices        storage.PriceSource
	Pools         storage.PoolSource
	PriceInterval time.Duration
	PoolInterval  time.Duration
	Logger        *logrus.Logger
}

// Feed implements quote.MarketSource.
type Feed struct {
	prices        storage.PriceSource
	pools         storage.PoolSource
	priceInterval time.Duration
	poolInterval  time.Duration
	logger        *logrus.Logger

	market atomic.Pointer[quote.Market]

	// serializes writers so a price refresh never drops a concurrent pool refresh
	mu sync.Mutex
}

var _ quote.MarketSource = (*Feed)(nil)

func NewFeed(cfg FeedConfig) (*Feed, error) {
	if cfg.Prices == nil {
		return nil, fmt.Errorf("price source is nil")
	}
	if cfg.Pools == nil {
		return nil, fmt.Errorf("pool source is nil")
	}
	if cfg.PriceInterval <= 0 {
		cfg.PriceInterval = constants.PriceRefreshInterval
	}
	if cfg.PoolInterval <= 0 {
		cfg.PoolInterval = constants.PoolRefreshInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	f := &Feed{
		prices:        cfg.Prices,
		pools:         cfg.Pools,
		priceInterval: cfg.PriceInterval,
		poolInterval:  cfg.PoolInterval,
		logger:        cfg.Logger,
	}
	f.market.Store(quote.NewMarket(nil, nil))
	return f, nil
}

// Market returns the latest snapshot. Never nil.
func (f *Feed) Market() *quote.Market {
	return f.market.Load()
}

// RefreshPrices pulls a new price snapshot. On error the previous snapshot
// stays in place.
func (f *Feed) RefreshPrices(ctx context.Context) error {
	prices, err := f.prices.GetTokenPrices(ctx)
	if err != nil {
		return fmt.Errorf("refresh prices: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.market.Store(f.Market().WithPrices(prices))

	f.logger.WithField("symbols", len(prices)).Debug("prices refreshed")
	return nil
}

// RefreshPools pulls a new pool list. On error the previous list stays in place.
func (f *Feed) RefreshPools(ctx context.Context) error {
	pools, err := f.pools.GetLiquidityPools(ctx)
	if err != nil {
		return fmt.Errorf("refresh pools: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.market.Store(f.Market().WithPools(pools))

	f.logger.WithField("pools", len(pools)).Debug("pools refreshed")
	return nil
}

// Prime runs both refreshes once and reports the first failure.
func (f *Feed) Prime(ctx context.Context) error {
	perr := f.RefreshPrices(ctx)
	lerr := f.RefreshPools(ctx)
	if perr != nil {
		return perr
	}
	return lerr
}

// Run primes the snapshot and refreshes it on both timers until ctx is done.
// Refresh failures are logged; the feed keeps serving the stale snapshot.
func (f *Feed) Run(ctx context.Context) error {
	if err := f.Prime(ctx); err != nil {
		f.logger.WithError(err).Warn("initial market refresh incomplete")
	}

	priceTicker := time.NewTicker(f.priceInterval)
	defer priceTicker.Stop()
	poolTicker := time.NewTicker(f.poolInterval)
	defer poolTicker.Stop()

	f.logger.WithFields(logrus.Fields{
		"price_interval": f.priceInterval,
		"pool_interval":  f.poolInterval,
	}).Info("market feed started")

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("market feed stopped")
			return ctx.Err()
		case <-priceTicker.C:
			if err := f.RefreshPrices(ctx); err != nil {
				f.logger.WithError(err).Warn("price refresh failed, keeping previous snapshot")
			}
		case <-poolTicker.C:
			if err := f.RefreshPools(ctx); err != nil {
				f.logger.WithError(err).Warn("pool refresh failed, keeping previous snapshot")
			}
		}
	}
}
