package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage"
)

// TradeStore keeps the trade history in PostgreSQL.
type TradeStore struct {
	pool *Pool
}

func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

var _ storage.TradeRecorder = (*TradeStore)(nil)

// RecordTrade inserts a trade. Returns storage.ErrDuplicateKey if the id exists.
// Amounts are stored as NUMERIC from their decimal string form.
func (s *TradeStore) RecordTrade(ctx context.Context, t *models.TradeRecord) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (
			id, from_token, to_token, from_amount, to_amount,
			price_impact, fee, wallet, tx_hash, recorded_at
		) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.FromToken, t.ToToken, t.FromAmount, t.ToAmount,
		t.PriceImpact, t.Fee, t.Wallet, t.TxHash, t.RecordedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

const selectTrade = `
	SELECT
		id, from_token, to_token, from_amount::text, to_amount::text,
		price_impact, fee, wallet, tx_hash, recorded_at
	FROM trades
`

// GetByID returns storage.ErrNotFound when the trade does not exist.
func (s *TradeStore) GetByID(ctx context.Context, id string) (*models.TradeRecord, error) {
	row := s.pool.QueryRow(ctx, selectTrade+` WHERE id = $1`, id)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// ListRecent returns the newest trades first.
func (s *TradeStore) ListRecent(ctx context.Context, limit int) ([]*models.TradeRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx, selectTrade+` ORDER BY recorded_at DESC, id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var out []*models.TradeRecord
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return out, nil
}

func scanTrade(row pgx.Row) (*models.TradeRecord, error) {
	var t models.TradeRecord
	err := row.Scan(
		&t.ID, &t.FromToken, &t.ToToken, &t.FromAmount, &t.ToAmount,
		&t.PriceImpact, &t.Fee, &t.Wallet, &t.TxHash, &t.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	t.RecordedAt = t.RecordedAt.UTC()
	return &t, nil
}
