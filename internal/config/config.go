package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
)

// Trade sinks accepted in TRADE_STORES.
const (
	StoreClickHouse = "clickhouse"
	StorePostgres   = "postgres"
	StorePubSub     = "pubsub"
)

type Config struct {
	// API settings
	APIAddr  string
	APIKey   string
	DevMode  bool
	LogLevel string

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// Postgres settings
	PostgresDSN string

	// Market data
	PoolConfigPath string
	PricesPath     string // static price overrides, optional
	PriceRefresh   time.Duration
	PoolRefresh    time.Duration

	// Jupiter
	JupiterBaseURL string
	JupiterAPIKey  string
	HTTPTimeout    time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration

	// Swap form
	MaxPriceImpactBps int
	DefaultSlippage   float64
	Wallet            string
	TradeStores       []string
}

func Load() *Config {
	return &Config{
		// API
		APIAddr:  getEnv("API_ADDR", ":8090"),
		APIKey:   getEnv("API_KEY", ""),
		DevMode:  getBoolEnv("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "swaps"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// Postgres
		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		// Market data
		PoolConfigPath: getEnv("POOL_CONFIG_PATH", "internal/config/pools.json"),
		PricesPath:     getEnv("STATIC_PRICES_PATH", ""),
		PriceRefresh:   getDurationEnv("PRICE_REFRESH", constants.PriceRefreshInterval),
		PoolRefresh:    getDurationEnv("POOL_REFRESH", constants.PoolRefreshInterval),

		// Jupiter
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", ""),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),
		HTTPTimeout:    getDurationEnv("HTTP_TIMEOUT", 12*time.Second),
		MaxRetries:     getIntEnv("MAX_RETRIES", 3),
		RetryBackoff:   getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// Swap form
		MaxPriceImpactBps: getIntEnv("MAX_PRICE_IMPACT_BPS", 500),
		DefaultSlippage:   getFloatEnv("DEFAULT_SLIPPAGE", constants.DefaultSlippageTolerance),
		Wallet:            getEnv("WALLET_ADDRESS", ""),
		TradeStores:       getListEnv("TRADE_STORES", []string{StorePubSub}),
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.APIAddr) == "" {
		errs = append(errs, errors.New("API_ADDR is required"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if strings.TrimSpace(c.RedisAddr) == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required"))
	}
	if strings.TrimSpace(c.PoolConfigPath) == "" {
		errs = append(errs, errors.New("POOL_CONFIG_PATH is required"))
	}
	if c.PriceRefresh <= 0 || c.PoolRefresh <= 0 {
		errs = append(errs, errors.New("PRICE_REFRESH and POOL_REFRESH must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must be >= 0"))
	}
	if c.MaxPriceImpactBps < 0 || c.MaxPriceImpactBps > 10_000 {
		errs = append(errs, errors.New("MAX_PRICE_IMPACT_BPS must be in [0, 10000]"))
	}
	if c.DefaultSlippage < 0 || c.DefaultSlippage > constants.MaxSlippageTolerance {
		errs = append(errs, fmt.Errorf("DEFAULT_SLIPPAGE must be in [0, %g]", constants.MaxSlippageTolerance))
	}
	if c.Wallet != "" {
		if _, err := solana.PublicKeyFromBase58(c.Wallet); err != nil {
			errs = append(errs, fmt.Errorf("WALLET_ADDRESS: %w", err))
		}
	}
	for _, s := range c.TradeStores {
		switch s {
		case StoreClickHouse, StorePubSub:
		case StorePostgres:
			if c.PostgresDSN == "" {
				errs = append(errs, errors.New("POSTGRES_DSN is required when TRADE_STORES includes postgres"))
			}
		default:
			errs = append(errs, fmt.Errorf("TRADE_STORES: unknown store %q", s))
		}
	}

	return errors.Join(errs...)
}

// HasTradeStore reports whether the named sink is enabled.
func (c *Config) HasTradeStore(name string) bool {
	for _, s := range c.TradeStores {
		if s == name {
			return true
		}
	}
	return false
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getListEnv reads a comma separated list; "none" yields an empty list.
func getListEnv(key string, defaultVal []string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	if strings.EqualFold(val, "none") {
		return []string{}
	}
	var out []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
