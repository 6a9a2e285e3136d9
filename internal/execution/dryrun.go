// Package execution holds trade executors for the swap form.
package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/swapform"
)

// DryRun accepts every well-formed trade without sending anything on-chain.
// It is the default executor until a signing wallet is wired in.
type DryRun struct {
	logger *logrus.Logger
	delay  time.Duration
	now    func() time.Time
}

var _ swapform.TradeExecutor = (*DryRun)(nil)

// NewDryRun returns a DryRun executor; delay simulates confirmation latency.
func NewDryRun(logger *logrus.Logger, delay time.Duration) *DryRun {
	if logger == nil {
		logger = logrus.New()
	}
	return &DryRun{logger: logger, delay: delay, now: time.Now}
}

func (d *DryRun) ExecuteSwap(ctx context.Context, req swapform.TradeRequest) (*swapform.TradeReceipt, error) {
	if req.FromToken == "" || req.ToToken == "" {
		return nil, fmt.Errorf("trade tokens are required")
	}

	if d.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.delay):
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := d.now().UTC()
	receipt := &swapform.TradeReceipt{
		ID:         fmt.Sprintf("exec_%d", now.UnixNano()),
		ExecutedAt: now,
	}

	d.logger.WithFields(logrus.Fields{
		"id":               receipt.ID,
		"from":             req.FromToken,
		"to":               req.ToToken,
		"from_amount":      req.FromAmount,
		"to_amount":        req.ToAmount,
		"minimum_received": req.MinimumReceived,
	}).Info("dry-run swap accepted")

	return receipt, nil
}
