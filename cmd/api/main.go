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
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/cache"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/config"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/execution"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/flags"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/oracle"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/pools"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/server"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage/postgres"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/swapform"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the quote API server
// It wires the market feed, swap forms and trade sinks, then serves HTTP until signalled
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rclient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})
	defer rclient.Close()
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	// Market data: prices written by cmd/pricefeed, pools from the JSON registry
	priceStore, err := cache.NewRedisPriceStore(rclient, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create price store")
	}
	var prices storage.PriceSource = priceStore
	if cfg.PricesPath != "" {
		static, err := oracle.LoadStaticPrices(cfg.PricesPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to load static prices")
		}
		prices = oracle.Overlay{static, priceStore}
	}

	poolRegistry, err := pools.NewRegistry(cfg.PoolConfigPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load pool registry")
	}
	logger.WithFields(logrus.Fields{
		"path":  cfg.PoolConfigPath,
		"pools": poolRegistry.PoolCount(),
	}).Info("pool registry loaded")

	feed, err := oracle.NewFeed(oracle.FeedConfig{
		Prices:        prices,
		Pools:         poolRegistry,
		PriceInterval: cfg.PriceRefresh,
		PoolInterval:  cfg.PoolRefresh,
		Logger:        logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create market feed")
	}
	if err := feed.Prime(ctx); err != nil {
		logger.WithError(err).Warn("initial market snapshot incomplete")
	}

	// Trade sinks
	pubsub := cache.NewPubSubManager(rclient, logger)
	var recorders storage.MultiRecorder

	if cfg.HasTradeStore(config.StorePubSub) {
		recorders = append(recorders, pubsub)
	}
	if cfg.HasTradeStore(config.StoreClickHouse) {
		ch, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to ClickHouse")
		}
		defer ch.Close()
		recorders = append(recorders, ch)
	}
	if cfg.HasTradeStore(config.StorePostgres) {
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to Postgres")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			logger.WithError(err).Fatal("failed to migrate Postgres")
		}
		recorders = append(recorders, postgres.NewTradeStore(pool))
	}

	var recorder storage.TradeRecorder
	if len(recorders) > 0 {
		recorder = recorders
	}
	logger.WithField("stores", cfg.TradeStores).Info("trade sinks configured")

	flagStore, err := flags.NewStore(rclient)
	if err != nil {
		logger.WithError(err).Fatal("failed to create flags store")
	}

	forms := swapform.NewRegistry(swapform.Config{
		Market:            feed,
		Executor:          execution.NewDryRun(logger, 0),
		Recorder:          recorder,
		Logger:            logger,
		MaxPriceImpactBps: cfg.MaxPriceImpactBps,
		DefaultSlippage:   cfg.DefaultSlippage,
		Wallet:            cfg.Wallet,
	})

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: &server.Handlers{
			Market:  feed,
			Forms:   forms,
			Flags:   flagStore,
			Trades:  pubsub,
			DevMode: cfg.DevMode,
			Logger:  logger,
		},
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := feed.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		logger.WithField("addr", cfg.APIAddr).Info("api server starting")
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("api server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		logger.WithError(err).Warn("server did not close cleanly")
	}
}
