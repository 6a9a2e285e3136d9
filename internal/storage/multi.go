package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
)

// MultiRecorder validates a trade once and fans it out to every recorder.
// All recorders are tried even when one fails; the joined error names each
// failure.
type MultiRecorder []TradeRecorder

func (m MultiRecorder) RecordTrade(ctx context.Context, trade *models.TradeRecord) error {
	if trade == nil {
		return ErrInvalidInput
	}
	if err := trade.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var errs []error
	for i, r := range m {
		if r == nil {
			continue
		}
		if err := r.RecordTrade(ctx, trade); err != nil {
			errs = append(errs, fmt.Errorf("recorder %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
