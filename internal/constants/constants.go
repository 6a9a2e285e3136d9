package constants

import "time"

// Redis keys
const (
	RedisKeyPricePrefix = "price:"
	RedisKeyPriceIndex  = "prices:index"
)

// Redis Pub/Sub channels
const (
	PubSubChannelTrades = "trades:live"
)

// Snapshot refresh cadence. The engine itself has no freshness policy; these
// only drive the feed that hands snapshots to it.
const (
	PriceRefreshInterval = 5 * time.Minute
	PoolRefreshInterval  = 10 * time.Minute
)

// Quote model
const (
	// DefaultFeeFraction applies when no pool is registered for a pair.
	DefaultFeeFraction = 0.003
	// ImpactScale multiplies sqrt(tradeValue / (tvl/2)).
	ImpactScale = 0.01
	// ImpactPrecision is the rounding grain for price impact (6 decimals).
	ImpactPrecision = 1e6
	// AmountDecimals is the number of fractional digits on quoted amounts.
	AmountDecimals = 6
)

// Inverse solver bounds
const (
	MaxInverseIterations = 5
	InverseTolerance     = 1e-6
)

// Slippage
const (
	DefaultSlippageTolerance = 0.005
	MaxSlippageTolerance     = 0.5
)

// Quote currency used by the Jupiter price provider.
const QuoteSymbol = "USDC"

// Token mint addresses and decimals used when pricing through Jupiter.
var TokenMints = map[string]string{
	"SOL":  "So11111111111111111111111111111111111111112",
	"USDC": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"USDT": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
	"JUP":  "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN",
	"RAY":  "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R",
	"BONK": "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
}

var TokenDecimals = map[string]uint8{
	"SOL":  9,
	"USDC": 6,
	"USDT": 6,
	"JUP":  6,
	"RAY":  6,
	"BONK": 5,
}
