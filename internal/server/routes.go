package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Every escaping error is rendered as ErrorResponse
	e.HTTPErrorHandler = jsonErrorHandler(h.Logger, cfg.DevMode)

	// Apply global middleware
	e.Use(SetJSONContentType) // Ensure all responses are JSON
	e.Use(SetNoCacheHeaders)  // Prevent caching of API responses

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	submitRate := cfg.SubmitRate
	if submitRate <= 0 {
		submitRate = 1
	}

	// API v1 routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)          // Health check endpoint
	v1.GET("/prices/:token", h.Price)    // Token price lookup
	v1.GET("/pools", h.Pools)            // Pool fees and TVL
	v1.GET("/quote", h.Quote)            // One-shot quote
	v1.GET("/trades/live", h.TradesLive) // Websocket trade stream

	// Swap forms
	forms := v1.Group("/forms")
	forms.POST("", h.FormCreate)
	forms.GET("/:id", h.FormGet)
	forms.DELETE("/:id", h.FormDelete)
	forms.POST("/:id/amount", h.FormAmount)
	forms.POST("/:id/token", h.FormToken)
	forms.POST("/:id/flip", h.FormFlip)
	forms.POST("/:id/slippage", h.FormSlippage)
	forms.POST("/:id/submit", h.FormSubmit, middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(submitRate),
		Burst:     2,
		ExpiresIn: 2 * time.Minute,
	})))

	// Feature flags CRUD endpoints
	flagGroup := v1.Group("/flags")
	flagGroup.GET("", h.FlagsList)           // List all flags
	flagGroup.POST("", h.FlagsUpsert)        // Create new flag
	flagGroup.GET("/:key", h.FlagsGet)       // Get specific flag
	flagGroup.PUT("/:key", h.FlagsUpdate)    // Update existing flag
	flagGroup.DELETE("/:key", h.FlagsDelete) // Delete flag

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
