package quote

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
)

func TestPriceImpact_ZeroTrade(t *testing.T) {
	for _, tvl := range []float64{1, 1_000, 1_000_000, 5e12} {
		m := NewMarket(testPrices(), []models.LiquidityPool{{Pair: "GALA/USDC", TVL: tvl}})
		assert.Equal(t, 0.0, m.PriceImpact("GALA", "USDC", 0), "tvl=%v", tvl)
	}
}

func TestPriceImpact_NoPool(t *testing.T) {
	m := NewMarket(testPrices(), nil)
	assert.Equal(t, 0.0, m.PriceImpact("GALA", "USDC", 250))
}

func TestPriceImpact_Formula(t *testing.T) {
	m := testMarket()

	// sqrt(250 / 500000) * 0.01 = 0.000223607 -> 0.000224
	assert.InDelta(t, 0.000224, m.PriceImpact("GALA", "USDC", 250), 1e-12)
	assert.InDelta(t, 0.000224, m.PriceImpact("USDC", "GALA", 250), 1e-12)

	// sqrt(5000 / 500000) * 0.01 = 0.001
	assert.InDelta(t, 0.001, m.PriceImpact("GALA", "USDC", 5000), 1e-12)
}

func TestPriceImpact_Guards(t *testing.T) {
	m := testMarket()

	assert.Equal(t, 0.0, m.PriceImpact("GALA", "USDC", -10))
	assert.Equal(t, 0.0, m.PriceImpact("GALA", "USDC", math.NaN()))
	assert.Equal(t, 0.0, m.PriceImpact("GALA", "USDC", math.Inf(1)))
	// ETH/GALA pool has zero TVL
	assert.Equal(t, 0.0, m.PriceImpact("ETH", "GALA", 1_000))
}

func TestPriceImpact_RoundedToSixDecimals(t *testing.T) {
	m := testMarket()
	for _, v := range []float64{1, 17, 333.3, 12_345, 999_999} {
		impact := m.PriceImpact("GALA", "USDC", v)
		scaled := impact * constants.ImpactPrecision
		assert.InDelta(t, math.Round(scaled), scaled, 1e-6, "value=%v", v)
	}
}

func TestPriceImpact_Monotonic(t *testing.T) {
	m := testMarket()
	prev := 0.0
	for v := 0.0; v <= 2_000_000; v += 997 {
		impact := m.PriceImpact("GALA", "USDC", v)
		assert.GreaterOrEqual(t, impact, prev, "tradeValue=%v", v)
		prev = impact
	}
}

func TestPriceImpact_DeeperPoolReducesImpact(t *testing.T) {
	for _, v := range []float64{250, 5_000, 100_000, 750_000} {
		shallow := NewMarket(testPrices(), []models.LiquidityPool{{Pair: "GALA/USDC", TVL: 1_000_000}})
		deep := NewMarket(testPrices(), []models.LiquidityPool{{Pair: "GALA/USDC", TVL: 2_000_000}})

		before := shallow.PriceImpact("GALA", "USDC", v)
		after := deep.PriceImpact("GALA", "USDC", v)
		assert.Greater(t, before, 0.0)
		assert.Less(t, after, before, "tradeValue=%v", v)
	}
}

func TestFeeFraction(t *testing.T) {
	m := testMarket()

	assert.Equal(t, 0.0025, m.FeeFraction("GALA", "USDC"))
	assert.Equal(t, 0.0025, m.FeeFraction("USDC", "GALA"))
	assert.Equal(t, constants.DefaultFeeFraction, m.FeeFraction("ETH", "USDC"))
}
