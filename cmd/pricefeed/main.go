package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/cache"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/config"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/jupiter"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/oracle"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage"
)

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	envPath := filepath.Join(filepath.Dir(filename), "../..", ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	}
}

// main pulls USDC prices from Jupiter on PRICE_REFRESH and writes them to Redis,
// where the API's market feed picks them up.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rclient.Close()
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	store, err := cache.NewRedisPriceStore(rclient, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create price store")
	}

	client := jupiter.NewClient(jupiter.ClientConfig{
		BaseURL:      cfg.JupiterBaseURL,
		APIKey:       cfg.JupiterAPIKey,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	live, err := jupiter.NewPriceProvider(client, jupiter.DefaultTokens(), logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create price provider")
	}

	var source storage.PriceSource = live
	if cfg.PricesPath != "" {
		static, err := oracle.LoadStaticPrices(cfg.PricesPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to load static prices")
		}
		// live prices win where both have a symbol
		source = oracle.Overlay{static, live}
		logger.WithField("symbols", len(static)).Info("static prices loaded")
	}

	pump := &oracle.Pump{
		Source:   source,
		Sink:     store,
		Interval: cfg.PriceRefresh,
		Logger:   logger,
	}

	logger.WithField("interval", cfg.PriceRefresh).Info("price feed starting")
	if err := pump.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("price feed failed")
	}
	logger.Info("price feed stopped")
}
