package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/cache"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/config"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/oracle"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/pools"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/quote"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage"
)

func main() {
	// Flags
	fromFlag := flag.String("from", "", "Token to sell, e.g. GALA")
	toFlag := flag.String("to", "", "Token to buy, e.g. USDC")
	amtFlag := flag.String("amt", "", "Exact input amount")
	outFlag := flag.String("out", "", "Desired output amount (solves for input)")
	slippageFlag := flag.Float64("slippage", constants.DefaultSlippageTolerance, "Slippage tolerance as a fraction")
	pricesFlag := flag.String("prices", "internal/config/prices.json", "Static prices file; empty reads prices from Redis")
	poolsFlag := flag.String("pools", "", "Pool registry file (defaults to POOL_CONFIG_PATH)")
	jsonFlag := flag.Bool("json", false, "Print the quote as JSON")
	flag.Parse()

	// Logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.WarnLevel)

	cfg := config.Load()
	poolPath := *poolsFlag
	if poolPath == "" {
		poolPath = cfg.PoolConfigPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var prices storage.PriceSource
	if *pricesFlag != "" {
		static, err := oracle.LoadStaticPrices(*pricesFlag)
		if err != nil {
			logger.WithError(err).Fatal("failed to load prices")
		}
		prices = static
	} else {
		rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rclient.Close()
		store, err := cache.NewRedisPriceStore(rclient, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to create price store")
		}
		prices = store
	}

	registry, err := pools.NewRegistry(poolPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load pools")
	}

	feed, err := oracle.NewFeed(oracle.FeedConfig{Prices: prices, Pools: registry, Logger: logger})
	if err != nil {
		logger.WithError(err).Fatal("failed to create market feed")
	}
	if err := feed.Prime(ctx); err != nil {
		logger.WithError(err).Fatal("failed to load market snapshot")
	}

	res, err := feed.Market().Quote(quote.Request{
		FromSymbol:        normalize(*fromFlag),
		ToSymbol:          normalize(*toFlag),
		InputAmount:       *amtFlag,
		OutputAmount:      *outFlag,
		SlippageTolerance: *slippageFlag,
	})
	if err != nil {
		if errors.Is(err, quote.ErrAmbiguousRequest) {
			fmt.Fprintln(os.Stderr, "exactly one of -amt or -out is required")
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "quote failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
		return
	}

	fmt.Printf("%s %s -> %s %s\n", res.InputAmount, res.FromSymbol, res.OutputAmount, res.ToSymbol)
	fmt.Printf("  rate:             1 %s = %g %s\n", res.FromSymbol, res.ExchangeRate, res.ToSymbol)
	fmt.Printf("  fee:              %.4f%%\n", quote.Percent(res.FeeFraction))
	fmt.Printf("  price impact:     %.4f%% (%s)\n", quote.Percent(res.PriceImpact), res.Severity)
	fmt.Printf("  minimum received: %s %s\n", res.MinimumReceived, res.ToSymbol)
	if !res.Converged {
		fmt.Println("  note: input solve did not converge, amount is a best estimate")
	}
	if w := res.Severity.Warning(); w != "" {
		fmt.Printf("  warning: %s\n", w)
	}
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
