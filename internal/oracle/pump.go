package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage"
)

// PriceSink stores a batch of prices, implemented by cache.RedisPriceStore.
type PriceSink interface {
	SetPrices(ctx context.Context, prices map[string]models.TokenPrice) error
}

// Pump copies prices from a source into a sink once, then on every tick
// until ctx is done. A failed round is logged and retried on the next tick.
type Pump struct {
	Source   storage.PriceSource
	Sink     PriceSink
	Interval time.Duration
	Logger   *logrus.Logger
}

// Once runs a single copy and returns the number of prices written.
func (p *Pump) Once(ctx context.Context) (int, error) {
	prices, err := p.Source.GetTokenPrices(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch prices: %w", err)
	}
	if len(prices) == 0 {
		return 0, nil
	}
	if err := p.Sink.SetPrices(ctx, prices); err != nil {
		return 0, fmt.Errorf("store prices: %w", err)
	}
	return len(prices), nil
}

func (p *Pump) Run(ctx context.Context) error {
	if p.Source == nil || p.Sink == nil {
		return fmt.Errorf("pump needs a source and a sink")
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.Interval <= 0 {
		p.Interval = time.Minute
	}

	round := func() {
		start := time.Now()
		n, err := p.Once(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.Logger.WithError(err).Warn("price round failed")
			}
			return
		}
		p.Logger.WithFields(logrus.Fields{
			"prices":   n,
			"duration": time.Since(start).Round(time.Millisecond),
		}).Info("prices published")
	}

	round()
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			round()
		}
	}
}
