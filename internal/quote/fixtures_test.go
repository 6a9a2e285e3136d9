package quote

import "github.com/aman-zulfiqar/swap-quote-engine/internal/models"

func testPrices() map[string]models.TokenPrice {
	return map[string]models.TokenPrice{
		"GALA": {Symbol: "GALA", Price: 0.025, Change24h: -1.2},
		"USDC": {Symbol: "USDC", Price: 1.0},
		"ETH":  {Symbol: "ETH", Price: 2000},
		"DEAD": {Symbol: "DEAD", Price: 0},
	}
}

// pair key stored in reverse order on purpose; lookups are undirected
func testPools() []models.LiquidityPool {
	return []models.LiquidityPool{
		{Pair: "USDC/GALA", FeeFraction: 0.0025, TVL: 1_000_000, Token0: "USDC", Token1: "GALA"},
		{Pair: "ETH/GALA", FeeFraction: 0.01, TVL: 0},
	}
}

func testMarket() *Market {
	return NewMarket(testPrices(), testPools())
}
