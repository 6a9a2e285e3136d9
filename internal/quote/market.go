// Package quote implements the swap quote model: price impact, fee lookup,
// the forward quote and the inverse solver. Everything here is a pure
// function of an immutable Market snapshot.
package quote

import (
	"math"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
)

// Quoter is the pure quoting surface consumed by the form controller and the
// HTTP layer.
type Quoter interface {
	PriceImpact(from, to string, tradeValue float64) float64
	FeeFraction(from, to string) float64
	QuoteForward(from, to, input string) string
	QuoteInverse(from, to, output string) string
}

// MarketSource hands out the latest snapshot. Implementations may return a
// stale snapshot; callers trust whatever they get.
type MarketSource interface {
	Market() *Market
}

// Market is an immutable price + pool snapshot.
type Market struct {
	prices map[string]models.TokenPrice
	pools  []models.LiquidityPool
}

var (
	_ Quoter       = (*Market)(nil)
	_ MarketSource = (*Market)(nil)
)

// NewMarket copies the inputs so later changes by the caller are not
// observable through the snapshot.
func NewMarket(prices map[string]models.TokenPrice, pools []models.LiquidityPool) *Market {
	m := &Market{
		prices: make(map[string]models.TokenPrice, len(prices)),
		pools:  make([]models.LiquidityPool, len(pools)),
	}
	for k, v := range prices {
		m.prices[k] = v
	}
	copy(m.pools, pools)
	return m
}

// Market lets a fixed snapshot act as its own source.
func (m *Market) Market() *Market { return m }

// WithPrices returns a new snapshot sharing this snapshot's pools.
func (m *Market) WithPrices(prices map[string]models.TokenPrice) *Market {
	var pools []models.LiquidityPool
	if m != nil {
		pools = m.pools
	}
	return NewMarket(prices, pools)
}

// WithPools returns a new snapshot sharing this snapshot's prices.
func (m *Market) WithPools(pools []models.LiquidityPool) *Market {
	var prices map[string]models.TokenPrice
	if m != nil {
		prices = m.prices
	}
	return NewMarket(prices, pools)
}

// Price returns the snapshot entry for a symbol.
func (m *Market) Price(symbol string) (models.TokenPrice, bool) {
	if m == nil {
		return models.TokenPrice{}, false
	}
	p, ok := m.prices[symbol]
	return p, ok
}

// PriceOf returns the unit price of a symbol, or 0 when it is unknown or not
// a usable number.
func (m *Market) PriceOf(symbol string) float64 {
	p, ok := m.Price(symbol)
	if !ok || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return 0
	}
	return p.Price
}

// Rate is the mid-price from -> to. Zero means no quote is available.
func (m *Market) Rate(from, to string) float64 {
	pf, pt := m.PriceOf(from), m.PriceOf(to)
	if pf <= 0 || pt <= 0 {
		return 0
	}
	return pf / pt
}

// Pools returns a copy of the pool list.
func (m *Market) Pools() []models.LiquidityPool {
	if m == nil {
		return nil
	}
	out := make([]models.LiquidityPool, len(m.pools))
	copy(out, m.pools)
	return out
}

// Symbols returns the number of priced symbols.
func (m *Market) Symbols() int {
	if m == nil {
		return 0
	}
	return len(m.prices)
}

// FindPool does an undirected lookup of the pool serving from/to.
func (m *Market) FindPool(from, to string) (*models.LiquidityPool, bool) {
	if m == nil {
		return nil, false
	}
	for i := range m.pools {
		if m.pools[i].Matches(from, to) {
			p := m.pools[i]
			return &p, true
		}
	}
	return nil, false
}
