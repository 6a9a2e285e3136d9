// ============================================================================
// models/market.go
// ============================================================================
package models

import (
	"strings"
	"time"
)

// TokenPrice is one entry of a price snapshot. Snapshots are never mutated
// after they are handed out; a refresh produces a new map.
type TokenPrice struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change24h float64   `json:"change_24h"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LiquidityPool describes a pool by its "A/B" pair key. Token order in the
// pair is not guaranteed, lookups must treat the key as undirected.
type LiquidityPool struct {
	Pair        string  `json:"pair"`
	FeeFraction float64 `json:"fee"` // 0.003 = 0.3%
	TVL         float64 `json:"tvl"`
	Token0      string  `json:"token0"`
	Token1      string  `json:"token1"`
	Reserve0    float64 `json:"reserve0"`
	Reserve1    float64 `json:"reserve1"`
}

// PairKey builds the canonical "A/B" key for a directed pair.
func PairKey(from, to string) string {
	return from + "/" + to
}

// Matches reports whether the pool serves the pair in either direction.
func (p *LiquidityPool) Matches(from, to string) bool {
	return p.Pair == PairKey(from, to) || p.Pair == PairKey(to, from)
}

// Tokens returns the two symbols of the pool, falling back to splitting the
// pair key when Token0/Token1 were not populated.
func (p *LiquidityPool) Tokens() (string, string) {
	if p.Token0 != "" && p.Token1 != "" {
		return p.Token0, p.Token1
	}
	a, b, _ := strings.Cut(p.Pair, "/")
	return a, b
}
