// Package swapform holds the swap form state machine, the only stateful
// piece of the quote engine. Every event is applied atomically under the
// form's mutex; the trade executor is called outside of it.
package swapform

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/quote"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/storage"
)

const recordTimeout = 5 * time.Second

// Config holds the collaborators shared by every form.
type Config struct {
	Market   quote.MarketSource
	Executor TradeExecutor
	Recorder storage.TradeRecorder // optional
	Logger   *logrus.Logger

	// MaxPriceImpactBps rejects submissions above this impact; 0 disables.
	MaxPriceImpactBps int
	DefaultSlippage   float64
	Wallet            string
	Now               func() time.Time
}

type Controller struct {
	cfg Config

	mu    sync.Mutex
	state State
}

// New creates an idle form for the from/to pair.
func New(cfg Config, from, to string) (*Controller, error) {
	if cfg.Market == nil {
		return nil, fmt.Errorf("market source is nil")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("trade executor is nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DefaultSlippage <= 0 || cfg.DefaultSlippage > constants.MaxSlippageTolerance {
		cfg.DefaultSlippage = constants.DefaultSlippageTolerance
	}

	from, to = normalizeSymbol(from), normalizeSymbol(to)
	if from == "" || to == "" {
		return nil, ErrInvalidToken
	}
	if from == to {
		return nil, quote.ErrSameToken
	}

	return &Controller{
		cfg: cfg,
		state: State{
			FromToken:         from,
			ToToken:           to,
			Driving:           quote.FieldFrom,
			SlippageTolerance: cfg.DefaultSlippage,
			Phase:             PhaseIdle,
		},
	}, nil
}

// State returns a copy of the current form state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// AmountChanged sets the amount on one side and derives the other.
func (c *Controller) AmountChanged(field quote.Field, value string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsSubmitting {
		return c.state.clone(), ErrSubmitInProgress
	}

	switch field {
	case quote.FieldFrom:
		c.state.FromAmount = value
	case quote.FieldTo:
		c.state.ToAmount = value
	default:
		return c.state.clone(), ErrInvalidField
	}
	c.state.Driving = field
	c.recompute()

	return c.state.clone(), nil
}

// TokenChanged replaces the token on one side. Making both sides equal is
// rejected with quote.ErrSameToken and leaves the state untouched.
func (c *Controller) TokenChanged(side quote.Field, symbol string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsSubmitting {
		return c.state.clone(), ErrSubmitInProgress
	}

	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return c.state.clone(), ErrInvalidToken
	}

	switch side {
	case quote.FieldFrom:
		if symbol == c.state.ToToken {
			return c.state.clone(), quote.ErrSameToken
		}
		c.state.FromToken = symbol
	case quote.FieldTo:
		if symbol == c.state.FromToken {
			return c.state.clone(), quote.ErrSameToken
		}
		c.state.ToToken = symbol
	default:
		return c.state.clone(), ErrInvalidField
	}

	if blank(c.drivingAmount()) {
		c.state.LastComputed = nil
	} else {
		c.recompute()
	}

	return c.state.clone(), nil
}

// DirectionFlip swaps both tokens and both amounts. The former ToAmount
// becomes the driving FromAmount. Amounts are kept verbatim and only the
// fee/impact/rate figures are recomputed, so two flips are an identity on
// the token and amount fields.
func (c *Controller) DirectionFlip() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsSubmitting {
		return c.state.clone(), ErrSubmitInProgress
	}

	s := &c.state
	s.FromToken, s.ToToken = s.ToToken, s.FromToken
	s.FromAmount, s.ToAmount = s.ToAmount, s.FromAmount
	s.Driving = quote.FieldFrom
	s.LastComputed = c.result(c.cfg.Market.Market())

	return c.state.clone(), nil
}

// SetSlippage sets the slippage tolerance as a fraction in [0, 0.5].
func (c *Controller) SetSlippage(tolerance float64) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsSubmitting {
		return c.state.clone(), ErrSubmitInProgress
	}
	if !(tolerance >= 0 && tolerance <= constants.MaxSlippageTolerance) {
		return c.state.clone(), &ValidationError{
			Field:  "slippageTolerance",
			Reason: fmt.Sprintf("must be between 0 and %g", constants.MaxSlippageTolerance),
		}
	}

	c.state.SlippageTolerance = tolerance
	if c.state.LastComputed != nil {
		c.state.LastComputed = c.result(c.cfg.Market.Market())
	}
	return c.state.clone(), nil
}

// SubmitRequested validates the form and hands the trade to the executor.
// On success the amounts are cleared and the trade is recorded best-effort;
// on failure the amounts are preserved.
func (c *Controller) SubmitRequested(ctx context.Context) (*TradeReceipt, error) {
	c.mu.Lock()
	if c.state.IsSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	req, err := c.tradeRequest()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.state.IsSubmitting = true
	c.state.Phase = PhaseSubmitting
	c.mu.Unlock()

	log := c.cfg.Logger.WithFields(logrus.Fields{
		"from":   req.FromToken,
		"to":     req.ToToken,
		"amount": req.FromAmount,
	})
	log.Info("submitting swap")

	receipt, execErr := c.cfg.Executor.ExecuteSwap(ctx, req)

	c.mu.Lock()
	c.state.IsSubmitting = false
	c.state.Phase = PhaseIdle
	if execErr == nil {
		c.state.FromAmount = ""
		c.state.ToAmount = ""
		c.state.Driving = quote.FieldFrom
		c.state.LastComputed = nil
	}
	c.mu.Unlock()

	if execErr != nil {
		log.WithError(execErr).Warn("swap execution failed")
		return nil, fmt.Errorf("execute swap: %w", execErr)
	}
	if receipt == nil {
		receipt = &TradeReceipt{ExecutedAt: c.cfg.Now().UTC()}
	}

	log.WithField("id", receipt.ID).Info("swap executed")
	c.record(ctx, req, receipt)
	return receipt, nil
}

func (c *Controller) tradeRequest() (TradeRequest, error) {
	s := c.state
	from, err := positiveAmount("fromAmount", s.FromAmount)
	if err != nil {
		return TradeRequest{}, err
	}
	if _, err := positiveAmount("toAmount", s.ToAmount); err != nil {
		return TradeRequest{}, err
	}

	m := c.cfg.Market.Market()
	impact := m.PriceImpact(s.FromToken, s.ToToken, from*m.PriceOf(s.FromToken))
	if limit := c.cfg.MaxPriceImpactBps; limit > 0 && impact*10_000 > float64(limit) {
		return TradeRequest{}, &ValidationError{
			Field:  "priceImpact",
			Reason: fmt.Sprintf("%.2f%% exceeds the %.2f%% limit", impact*100, float64(limit)/100),
		}
	}

	return TradeRequest{
		FromToken:         s.FromToken,
		ToToken:           s.ToToken,
		FromAmount:        s.FromAmount,
		ToAmount:          s.ToAmount,
		MinimumReceived:   quote.MinimumReceived(s.ToAmount, s.SlippageTolerance),
		SlippageTolerance: s.SlippageTolerance,
		PriceImpact:       impact,
		Fee:               m.FeeFraction(s.FromToken, s.ToToken),
		Wallet:            c.cfg.Wallet,
	}, nil
}

// record hands the trade to the recorder. Failures are logged, never returned.
func (c *Controller) record(ctx context.Context, req TradeRequest, receipt *TradeReceipt) {
	if c.cfg.Recorder == nil {
		return
	}

	recordedAt := receipt.ExecutedAt
	if recordedAt.IsZero() {
		recordedAt = c.cfg.Now().UTC()
	}
	trade := &models.TradeRecord{
		ID:          receipt.ID,
		FromToken:   req.FromToken,
		ToToken:     req.ToToken,
		FromAmount:  req.FromAmount,
		ToAmount:    req.ToAmount,
		PriceImpact: req.PriceImpact,
		Fee:         req.Fee,
		Wallet:      req.Wallet,
		TxHash:      receipt.TxHash,
		RecordedAt:  recordedAt,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := c.cfg.Recorder.RecordTrade(ctx, trade); err != nil {
		c.cfg.Logger.WithError(err).WithField("id", trade.ID).Warn("failed to record trade")
	}
}

// recompute derives the non-driving amount from the driving one. Caller
// holds c.mu.
func (c *Controller) recompute() {
	m := c.cfg.Market.Market()
	s := &c.state
	if s.Phase == PhaseIdle {
		s.Phase = PhaseComputing
		defer func() { s.Phase = PhaseIdle }()
	}

	switch s.Driving {
	case quote.FieldTo:
		if blank(s.ToAmount) {
			s.FromAmount = ""
		} else {
			s.FromAmount = m.QuoteInverse(s.FromToken, s.ToToken, s.ToAmount)
		}
	default:
		if blank(s.FromAmount) {
			s.ToAmount = ""
		} else {
			s.ToAmount = m.QuoteForward(s.FromToken, s.ToToken, s.FromAmount)
		}
	}
	s.LastComputed = c.result(m)
}

// result builds the display figures for the driving amount, or nil when no
// quote is available for it.
func (c *Controller) result(m *quote.Market) *quote.Result {
	s := c.state
	if blank(c.drivingAmount()) {
		return nil
	}

	req := quote.Request{
		FromSymbol:        s.FromToken,
		ToSymbol:          s.ToToken,
		SlippageTolerance: s.SlippageTolerance,
	}
	if s.Driving == quote.FieldTo {
		req.OutputAmount = s.ToAmount
	} else {
		req.InputAmount = s.FromAmount
	}

	res, err := m.Quote(req)
	if err != nil {
		return nil
	}
	return res
}

func (c *Controller) drivingAmount() string {
	if c.state.Driving == quote.FieldTo {
		return c.state.ToAmount
	}
	return c.state.FromAmount
}

func positiveAmount(field, value string) (float64, error) {
	v, ok := quote.ParseAmount(value)
	if !ok {
		return 0, &ValidationError{Field: field, Reason: "must be a number"}
	}
	if v <= 0 {
		return 0, &ValidationError{Field: field, Reason: "must be greater than zero"}
	}
	return v, nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
