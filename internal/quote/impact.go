package quote

import (
	"math"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
)

// PriceImpact models the fractional deviation from mid-price for a trade of
// tradeValue (in quote currency) through the from/to pool:
//
//	impact = sqrt(tradeValue / (tvl / 2)) * 0.01
//
// rounded to 6 decimals. Pairs without a pool have no modeled impact.
func (m *Market) PriceImpact(from, to string, tradeValue float64) float64 {
	pool, ok := m.FindPool(from, to)
	if !ok {
		return 0
	}
	return impactFor(pool.TVL, tradeValue)
}

func impactFor(tvl, tradeValue float64) float64 {
	if !(tradeValue > 0) || !(tvl > 0) || math.IsInf(tradeValue, 0) || math.IsInf(tvl, 0) {
		return 0
	}
	raw := math.Sqrt(tradeValue/(tvl/2)) * constants.ImpactScale
	return math.Round(raw*constants.ImpactPrecision) / constants.ImpactPrecision
}

// tradeImpact prices amount of from in quote currency and returns the impact.
func (m *Market) tradeImpact(from, to string, amount float64) float64 {
	return m.PriceImpact(from, to, amount*m.PriceOf(from))
}
