package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/flags"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/quote"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/swapform"
)

// TradeSubscriber streams recorded trades, implemented by cache.PubSubManager.
type TradeSubscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(*models.TradeRecord)) error
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Market  quote.MarketSource // Latest price + pool snapshot
	Forms   *swapform.Registry // Open swap forms
	Flags   *flags.Store       // Redis-backed runtime switches (optional)
	Trades  TradeSubscriber    // Live trade feed (optional)
	DevMode bool               // Enable detailed error responses in development
	Logger  *logrus.Logger     // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// invalid returns a 400 naming the offending field, in every mode
func (h *Handlers) invalid(c echo.Context, field, reason string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: reason, Code: http.StatusBadRequest, Field: field})
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// enabled reads a runtime switch. Without a flag store, or when it cannot be
// reached, switches keep their default.
func (h *Handlers) enabled(ctx context.Context, key string) bool {
	if h.Flags == nil {
		return true
	}
	ctx, cancel := h.withTimeout(ctx, 2*time.Second)
	defer cancel()

	on, err := h.Flags.Enabled(ctx, key)
	if err != nil {
		h.Logger.WithError(err).WithField("flag", key).Warn("flag lookup failed, using default")
		return true
	}
	return on
}

// Health reports liveness plus the size of the current market snapshot
func (h *Handlers) Health(c echo.Context) error {
	m := h.Market.Market()
	resp := HealthResponse{OK: true, Symbols: m.Symbols(), Pools: len(m.Pools())}
	if h.Forms != nil {
		resp.Forms = h.Forms.Len()
	}
	return c.JSON(http.StatusOK, resp)
}

// Price returns the current price for a given token symbol
// Token parameter is case-insensitive and will be normalized to uppercase
func (h *Handlers) Price(c echo.Context) error {
	token := strings.ToUpper(strings.TrimSpace(c.Param("token")))
	if token == "" {
		return h.invalid(c, "token", "invalid token")
	}

	p, ok := h.Market.Market().Price(token)
	if !ok {
		return h.err(c, http.StatusNotFound, "price not found", map[string]any{"token": token})
	}
	return c.JSON(http.StatusOK, PriceResponse{Token: token, Price: p.Price, Change24h: p.Change24h, UpdatedAt: p.UpdatedAt})
}

// Pools lists the pools of the current snapshot, fees as percentages
func (h *Handlers) Pools(c echo.Context) error {
	pools := h.Market.Market().Pools()
	sort.Slice(pools, func(i, j int) bool { return pools[i].Pair < pools[j].Pair })

	items := make([]PoolResponse, 0, len(pools))
	for _, p := range pools {
		items = append(items, poolResponse(p))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsUpsert creates or updates a feature flag with the given key and value
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags are not configured", nil)
	}
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.invalid(c, "key", "invalid key")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates the flag named in the path
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags are not configured", nil)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.invalid(c, "key", "invalid key")
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a feature flag by its key
func (h *Handlers) FlagsGet(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags are not configured", nil)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.invalid(c, "key", "invalid key")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns stored flags and the defaults of known ones
func (h *Handlers) FlagsList(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags are not configured", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a feature flag by its key
func (h *Handlers) FlagsDelete(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags are not configured", nil)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.invalid(c, "key", "invalid key")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}
