package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ClickHouseConfig holds connection settings for the trade history store.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouseStore appends submitted trades to the trades table.
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logrus.Logger
}

const createTradesTable = `
	CREATE TABLE IF NOT EXISTS trades (
		id           String,
		recorded_at  DateTime64(3, 'UTC'),
		pair         LowCardinality(String),
		from_token   LowCardinality(String),
		to_token     LowCardinality(String),
		from_amount  Decimal(38, 6),
		to_amount    Decimal(38, 6),
		price_impact Float64,
		fee          Float64,
		wallet       String,
		tx_hash      String
	) ENGINE = MergeTree
	ORDER BY (pair, recorded_at)
`

func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig, logger *logrus.Logger) (*ClickHouseStore, error) {
	if logger == nil {
		logger = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := conn.Exec(ctx, createTradesTable); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create trades table: %w", err)
	}

	logger.WithField("addr", cfg.Addr).Info("connected to ClickHouse")

	return &ClickHouseStore{conn: conn, logger: logger}, nil
}

// RecordTrade inserts one trade row.
func (c *ClickHouseStore) RecordTrade(ctx context.Context, trade *models.TradeRecord) error {
	if trade == nil {
		return fmt.Errorf("trade is nil")
	}
	fromAmt, err := decimal.NewFromString(trade.FromAmount)
	if err != nil {
		return fmt.Errorf("invalid from amount %q: %w", trade.FromAmount, err)
	}
	toAmt, err := decimal.NewFromString(trade.ToAmount)
	if err != nil {
		return fmt.Errorf("invalid to amount %q: %w", trade.ToAmount, err)
	}

	query := `
		INSERT INTO trades (
			id, recorded_at, pair, from_token, to_token,
			from_amount, to_amount, price_impact, fee, wallet, tx_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = c.conn.Exec(ctx, query,
		trade.ID,
		trade.RecordedAt,
		trade.Pair(),
		trade.FromToken,
		trade.ToToken,
		fromAmt,
		toAmt,
		trade.PriceImpact,
		trade.Fee,
		trade.Wallet,
		trade.TxHash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	return nil
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
