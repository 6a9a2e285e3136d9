package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrPriceNotFound = errors.New("price not found")

// RedisPriceStore keeps the latest price per token under price:<SYMBOL> and
// tracks known symbols in a set so a full snapshot is one SMEMBERS + MGET.
type RedisPriceStore struct {
	client redis.Cmdable
	logger *logrus.Logger
}

func NewRedisPriceStore(client redis.Cmdable, logger *logrus.Logger) (*RedisPriceStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisPriceStore{client: client, logger: logger}, nil
}

// UpdatePrice writes one token price.
func (s *RedisPriceStore) UpdatePrice(ctx context.Context, p models.TokenPrice) error {
	return s.SetPrices(ctx, map[string]models.TokenPrice{p.Symbol: p})
}

// SetPrices writes a batch of prices in one transaction.
func (s *RedisPriceStore) SetPrices(ctx context.Context, prices map[string]models.TokenPrice) error {
	if len(prices) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for sym, p := range prices {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		p.Symbol = sym
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = time.Now().UTC()
		}
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal price %s: %w", sym, err)
		}
		pipe.Set(ctx, priceKey(sym), b, 0)
		pipe.SAdd(ctx, constants.RedisKeyPriceIndex, sym)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set prices: %w", err)
	}
	return nil
}

// GetPrice returns the stored price of a single token.
func (s *RedisPriceStore) GetPrice(ctx context.Context, symbol string) (*models.TokenPrice, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	val, err := s.client.Get(ctx, priceKey(symbol)).Result()
	if err == redis.Nil {
		return nil, ErrPriceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get price: %w", err)
	}

	var p models.TokenPrice
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("unmarshal price: %w", err)
	}
	return &p, nil
}

// GetTokenPrices returns every indexed price. Entries that vanished or fail
// to decode are skipped.
func (s *RedisPriceStore) GetTokenPrices(ctx context.Context) (map[string]models.TokenPrice, error) {
	symbols, err := s.client.SMembers(ctx, constants.RedisKeyPriceIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("list price index: %w", err)
	}
	out := make(map[string]models.TokenPrice, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = priceKey(sym)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget prices: %w", err)
	}

	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var p models.TokenPrice
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.logger.WithError(err).WithField("symbol", symbols[i]).Warn("skipping undecodable price")
			continue
		}
		out[symbols[i]] = p
	}
	return out, nil
}

func priceKey(symbol string) string {
	return constants.RedisKeyPricePrefix + symbol
}
