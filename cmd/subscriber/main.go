package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/cache"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/config"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
)

// main tails executed trades from Redis pub/sub.
func main() {
	pairFlag := flag.String("pair", "", "Only follow one pair, e.g. GALA/USDC; glob patterns such as GALA/* are allowed")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rclient.Close()
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	pubsub := cache.NewPubSubManager(rclient, logger)

	logTrade := func(prefix string) func(*models.TradeRecord) {
		return func(t *models.TradeRecord) {
			logger.WithFields(logrus.Fields{
				"id":     t.ID,
				"pair":   t.Pair(),
				"in":     t.FromAmount,
				"out":    t.ToAmount,
				"impact": t.PriceImpact,
			}).Info(prefix)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	switch pair := strings.ToUpper(strings.TrimSpace(*pairFlag)); {
	case strings.ContainsAny(pair, "*?["):
		g.Go(func() error {
			return pubsub.PSubscribe(gctx, cache.PairChannel(pair), logTrade("pair trade"))
		})
	case pair != "":
		g.Go(func() error {
			return pubsub.Subscribe(gctx, cache.PairChannel(pair), logTrade("pair trade"))
		})
	default:
		g.Go(func() error {
			return pubsub.Subscribe(gctx, constants.PubSubChannelTrades, logTrade("trade"))
		})
	}

	logger.Info("subscriber running, press Ctrl+C to stop")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("subscriber failed")
	}
	logger.Info("subscriber stopped")
}
