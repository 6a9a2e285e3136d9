package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage"
)

// StaticPrices is a fixed price table, loaded from a JSON object of
// symbol -> unit price. Used for offline quotes and for tokens the live
// provider does not cover.
type StaticPrices map[string]models.TokenPrice

var _ storage.PriceSource = StaticPrices(nil)

// LoadStaticPrices reads {"GALA": 0.025, "USDC": 1} style files.
func LoadStaticPrices(path string) (StaticPrices, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prices file: %w", err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prices file: %w", err)
	}

	stamp := time.Now().UTC()
	if fi, err := os.Stat(path); err == nil {
		stamp = fi.ModTime().UTC()
	}

	out := make(StaticPrices, len(raw))
	for sym, price := range raw {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			return nil, fmt.Errorf("prices file: empty symbol")
		}
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return nil, fmt.Errorf("prices file: %s: price must be positive", sym)
		}
		out[sym] = models.TokenPrice{Symbol: sym, Price: price, UpdatedAt: stamp}
	}
	return out, nil
}

func (s StaticPrices) GetTokenPrices(_ context.Context) (map[string]models.TokenPrice, error) {
	out := make(map[string]models.TokenPrice, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out, nil
}

// Overlay queries every source in order; later sources win per symbol.
// A failing source is skipped unless all of them fail.
type Overlay []storage.PriceSource

var _ storage.PriceSource = Overlay(nil)

func (o Overlay) GetTokenPrices(ctx context.Context) (map[string]models.TokenPrice, error) {
	out := make(map[string]models.TokenPrice)
	var errs []error
	for i, src := range o {
		prices, err := src.GetTokenPrices(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("price source %d: %w", i, err))
			continue
		}
		for k, v := range prices {
			out[k] = v
		}
	}
	if len(errs) == len(o) && len(errs) > 0 {
		return nil, errs[0]
	}
	return out, nil
}
