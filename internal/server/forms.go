package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/flags"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/quote"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/swapform"
)

// formError maps controller errors onto HTTP responses
func (h *Handlers) formError(c echo.Context, err error) error {
	var ve *swapform.ValidationError
	switch {
	case errors.As(err, &ve):
		return h.invalid(c, ve.Field, ve.Reason)
	case errors.Is(err, swapform.ErrFormNotFound):
		return h.err(c, http.StatusNotFound, "form not found", nil)
	case errors.Is(err, swapform.ErrSubmitInProgress):
		return h.err(c, http.StatusConflict, "swap submission in progress", nil)
	case errors.Is(err, quote.ErrSameToken):
		return h.invalid(c, "to", "from and to tokens must differ")
	case errors.Is(err, swapform.ErrInvalidToken):
		return h.invalid(c, "symbol", "invalid token")
	case errors.Is(err, swapform.ErrInvalidField):
		return h.invalid(c, "field", "field must be from or to")
	default:
		h.Logger.WithError(err).Error("form request failed")
		return h.err(c, http.StatusInternalServerError, "internal error", map[string]any{"err": err.Error()})
	}
}

func (h *Handlers) form(c echo.Context) (*swapform.Controller, error) {
	return h.Forms.Get(c.Param("id"))
}

// FormCreate opens a new swap form
func (h *Handlers) FormCreate(c echo.Context) error {
	var req FormCreateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	id, ctrl, err := h.Forms.Create(req.From, req.To)
	if err != nil {
		return h.formError(c, err)
	}

	state := ctrl.State()
	if req.Slippage != nil {
		if state, err = ctrl.SetSlippage(*req.Slippage); err != nil {
			h.Forms.Delete(id)
			return h.formError(c, err)
		}
	}
	return c.JSON(http.StatusCreated, formResponse(id, state))
}

// FormGet returns the current form state
func (h *Handlers) FormGet(c echo.Context) error {
	ctrl, err := h.form(c)
	if err != nil {
		return h.formError(c, err)
	}
	return c.JSON(http.StatusOK, formResponse(c.Param("id"), ctrl.State()))
}

// FormDelete discards a form
func (h *Handlers) FormDelete(c echo.Context) error {
	if _, err := h.form(c); err != nil {
		return h.formError(c, err)
	}
	h.Forms.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// FormAmount applies AmountChanged
func (h *Handlers) FormAmount(c echo.Context) error {
	ctrl, err := h.form(c)
	if err != nil {
		return h.formError(c, err)
	}
	var req FormAmountRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	field, ok := quote.ParseField(req.Field)
	if !ok {
		return h.invalid(c, "field", "field must be from or to")
	}

	state, err := ctrl.AmountChanged(field, req.Value)
	if err != nil {
		return h.formError(c, err)
	}
	return c.JSON(http.StatusOK, formResponse(c.Param("id"), state))
}

// FormToken applies TokenChanged
func (h *Handlers) FormToken(c echo.Context) error {
	ctrl, err := h.form(c)
	if err != nil {
		return h.formError(c, err)
	}
	var req FormTokenRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	side, ok := quote.ParseField(req.Side)
	if !ok {
		return h.invalid(c, "side", "side must be from or to")
	}

	state, err := ctrl.TokenChanged(side, req.Symbol)
	if err != nil {
		return h.formError(c, err)
	}
	return c.JSON(http.StatusOK, formResponse(c.Param("id"), state))
}

// FormFlip applies DirectionFlip
func (h *Handlers) FormFlip(c echo.Context) error {
	ctrl, err := h.form(c)
	if err != nil {
		return h.formError(c, err)
	}
	state, err := ctrl.DirectionFlip()
	if err != nil {
		return h.formError(c, err)
	}
	return c.JSON(http.StatusOK, formResponse(c.Param("id"), state))
}

// FormSlippage sets the slippage tolerance (fraction)
func (h *Handlers) FormSlippage(c echo.Context) error {
	ctrl, err := h.form(c)
	if err != nil {
		return h.formError(c, err)
	}
	var req FormSlippageRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if req.Tolerance == nil {
		return h.invalid(c, "tolerance", "tolerance is required")
	}

	state, err := ctrl.SetSlippage(*req.Tolerance)
	if err != nil {
		return h.formError(c, err)
	}
	return c.JSON(http.StatusOK, formResponse(c.Param("id"), state))
}

// FormSubmit applies SubmitRequested
func (h *Handlers) FormSubmit(c echo.Context) error {
	ctrl, err := h.form(c)
	if err != nil {
		return h.formError(c, err)
	}
	if !h.enabled(c.Request().Context(), flags.SwapSubmit) {
		return h.err(c, http.StatusServiceUnavailable, "swap submission is disabled", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	receipt, err := ctrl.SubmitRequested(ctx)
	if err != nil {
		var ve *swapform.ValidationError
		if errors.As(err, &ve) || errors.Is(err, swapform.ErrSubmitInProgress) {
			return h.formError(c, err)
		}
		return h.err(c, http.StatusBadGateway, "swap execution failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, SubmitResponse{
		ID:         receipt.ID,
		TxHash:     receipt.TxHash,
		ExecutedAt: receipt.ExecutedAt,
		Form:       formResponse(c.Param("id"), ctrl.State()),
	})
}
