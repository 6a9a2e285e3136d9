package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"API_ADDR", "LOG_LEVEL", "PRICE_REFRESH", "POOL_REFRESH", "MAX_PRICE_IMPACT_BPS", "DEFAULT_SLIPPAGE", "TRADE_STORES", "WALLET_ADDRESS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8090", cfg.APIAddr)
	assert.Equal(t, 5*time.Minute, cfg.PriceRefresh)
	assert.Equal(t, 10*time.Minute, cfg.PoolRefresh)
	assert.Equal(t, 500, cfg.MaxPriceImpactBps)
	assert.Equal(t, 0.005, cfg.DefaultSlippage)
	assert.Equal(t, []string{StorePubSub}, cfg.TradeStores)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("API_ADDR", ":9999")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("PRICE_REFRESH", "30s")
	t.Setenv("MAX_PRICE_IMPACT_BPS", "250")
	t.Setenv("DEFAULT_SLIPPAGE", "0.01")
	t.Setenv("TRADE_STORES", " ClickHouse, pubsub ,")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.APIAddr)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 30*time.Second, cfg.PriceRefresh)
	assert.Equal(t, 250, cfg.MaxPriceImpactBps)
	assert.Equal(t, 0.01, cfg.DefaultSlippage)
	assert.Equal(t, []string{StoreClickHouse, StorePubSub}, cfg.TradeStores)
	assert.Equal(t, 3, cfg.MaxRetries, "unparsable values fall back to the default")
	assert.True(t, cfg.HasTradeStore(StoreClickHouse))
	assert.False(t, cfg.HasTradeStore(StorePostgres))

	t.Setenv("TRADE_STORES", "none")
	assert.Empty(t, Load().TradeStores)
}

func TestValidate(t *testing.T) {
	t.Setenv("TRADE_STORES", "")
	t.Setenv("WALLET_ADDRESS", "")
	t.Setenv("LOG_LEVEL", "")
	valid := Load

	tests := map[string]func(c *Config){
		"empty addr":        func(c *Config) { c.APIAddr = "" },
		"bad log level":     func(c *Config) { c.LogLevel = "loud" },
		"zero refresh":      func(c *Config) { c.PriceRefresh = 0 },
		"impact bps range":  func(c *Config) { c.MaxPriceImpactBps = 10_001 },
		"slippage range":    func(c *Config) { c.DefaultSlippage = 0.9 },
		"bad wallet":        func(c *Config) { c.Wallet = "not-base58-0OIl" },
		"unknown store":     func(c *Config) { c.TradeStores = []string{"kafka"} },
		"postgres no dsn":   func(c *Config) { c.TradeStores = []string{StorePostgres} },
		"negative retries":  func(c *Config) { c.MaxRetries = -1 },
		"empty pool config": func(c *Config) { c.PoolConfigPath = "" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	c := valid()
	c.Wallet = "So11111111111111111111111111111111111111112"
	c.TradeStores = []string{StorePostgres}
	c.PostgresDSN = "postgres://localhost/swaps"
	require.NoError(t, c.Validate())
}
