// ============================================================================
// cache/pubsub.go - Redis Pub/Sub Wrapper
// ============================================================================
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// PubSubManager broadcasts submitted trades and lets consumers follow them.
type PubSubManager struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewPubSubManager(client *redis.Client, logger *logrus.Logger) *PubSubManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &PubSubManager{client: client, logger: logger}
}

// PairChannel is the channel carrying trades of one directed pair.
func PairChannel(pair string) string {
	return fmt.Sprintf("%s:pair:%s", constants.PubSubChannelTrades, pair)
}

// RecordTrade publishes the trade to the live feed and to its pair channel.
func (p *PubSubManager) RecordTrade(ctx context.Context, trade *models.TradeRecord) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, constants.PubSubChannelTrades, data)
	pipe.Publish(ctx, PairChannel(trade.Pair()), data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish trade: %w", err)
	}
	return nil
}

// Subscribe blocks delivering trades from channel until ctx is done.
func (p *PubSubManager) Subscribe(ctx context.Context, channel string, handler func(*models.TradeRecord)) error {
	return p.consume(ctx, p.client.Subscribe(ctx, channel), channel, handler)
}

// PSubscribe is Subscribe for a pattern (e.g. "trades:live:pair:*").
func (p *PubSubManager) PSubscribe(ctx context.Context, pattern string, handler func(*models.TradeRecord)) error {
	return p.consume(ctx, p.client.PSubscribe(ctx, pattern), pattern, handler)
}

func (p *PubSubManager) consume(ctx context.Context, sub *redis.PubSub, name string, handler func(*models.TradeRecord)) error {
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", name, err)
	}
	p.logger.WithField("channel", name).Info("subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var trade models.TradeRecord
			if err := json.Unmarshal([]byte(msg.Payload), &trade); err != nil {
				p.logger.WithError(err).WithField("channel", msg.Channel).Warn("error unmarshaling trade")
				continue
			}
			handler(&trade)
		}
	}
}
