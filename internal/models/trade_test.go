package models

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
)

func TestTradeRecord_Validate(t *testing.T) {
	sig := base58.Encode(make([]byte, 64))

	ok := TradeRecord{ID: "exec_1", FromToken: "GALA", ToToken: "USDC", TxHash: sig}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, "GALA/USDC", ok.Pair())

	noHash := ok
	noHash.TxHash = ""
	assert.NoError(t, noHash.Validate())

	tests := map[string]TradeRecord{
		"missing id":     {FromToken: "GALA", ToToken: "USDC"},
		"missing tokens": {ID: "x", FromToken: "GALA"},
		"bad alphabet":   {ID: "x", FromToken: "GALA", ToToken: "USDC", TxHash: "0OIl"},
		"short hash":     {ID: "x", FromToken: "GALA", ToToken: "USDC", TxHash: base58.Encode([]byte{1, 2, 3})},
	}
	for name, tr := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, tr.Validate())
		})
	}
}

func TestLiquidityPool_Matches(t *testing.T) {
	p := LiquidityPool{Pair: "GALA/USDC"}
	assert.True(t, p.Matches("GALA", "USDC"))
	assert.True(t, p.Matches("USDC", "GALA"))
	assert.False(t, p.Matches("GALA", "ETH"))

	a, b := p.Tokens()
	assert.Equal(t, "GALA", a)
	assert.Equal(t, "USDC", b)

	p.Token0, p.Token1 = "X", "Y"
	a, b = p.Tokens()
	assert.Equal(t, "X", a)
	assert.Equal(t, "Y", b)
}
