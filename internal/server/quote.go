package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/flags"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/quote"
)

// Quote computes a one-shot quote against the current snapshot.
// Exactly one of amount (input) or output must be given; slippage is a fraction.
func (h *Handlers) Quote(c echo.Context) error {
	from := strings.ToUpper(strings.TrimSpace(c.QueryParam("from")))
	to := strings.ToUpper(strings.TrimSpace(c.QueryParam("to")))
	amount := strings.TrimSpace(c.QueryParam("amount"))
	output := strings.TrimSpace(c.QueryParam("output"))

	if from == "" {
		return h.invalid(c, "from", "from is required")
	}
	if to == "" {
		return h.invalid(c, "to", "to is required")
	}

	slippage := constants.DefaultSlippageTolerance
	if v := strings.TrimSpace(c.QueryParam("slippage")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > constants.MaxSlippageTolerance {
			return h.invalid(c, "slippage", "slippage must be a fraction between 0 and 0.5")
		}
		slippage = f
	}

	if output != "" && amount == "" && !h.enabled(c.Request().Context(), flags.InverseQuotes) {
		return h.err(c, http.StatusServiceUnavailable, "output quotes are disabled", nil)
	}

	res, err := h.Market.Market().Quote(quote.Request{
		FromSymbol:        from,
		ToSymbol:          to,
		InputAmount:       amount,
		OutputAmount:      output,
		SlippageTolerance: slippage,
	})
	switch {
	case err == nil:
	case errors.Is(err, quote.ErrAmbiguousRequest):
		return h.invalid(c, "amount", "exactly one of amount or output is required")
	case errors.Is(err, quote.ErrSameToken):
		return h.invalid(c, "to", "from and to must differ")
	case errors.Is(err, quote.ErrInvalidAmount):
		if amount == "" {
			return h.invalid(c, "output", "output must not be negative")
		}
		return h.invalid(c, "amount", "amount must be a positive number")
	case errors.Is(err, quote.ErrNoQuote):
		return h.err(c, http.StatusUnprocessableEntity, "no quote available", map[string]any{"from": from, "to": to})
	default:
		return h.err(c, http.StatusInternalServerError, "quote failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, quoteResponse(res))
}
