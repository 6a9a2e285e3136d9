package server

import "time"

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Field   string `json:"field,omitempty"`   // Offending field for validation errors
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK      bool `json:"ok"`
	Symbols int  `json:"symbols"` // Priced symbols in the current snapshot
	Pools   int  `json:"pools"`   // Pools in the current snapshot
	Forms   int  `json:"forms"`   // Open swap forms
}

// PriceResponse represents token price information
type PriceResponse struct {
	Token     string    `json:"token"`
	Price     float64   `json:"price"`
	Change24h float64   `json:"change_24h"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// PoolResponse is a pool with its fee rendered as a percentage
type PoolResponse struct {
	Pair   string  `json:"pair"`
	FeePct float64 `json:"fee_pct"`
	TVL    float64 `json:"tvl"`
}

// QuoteResponse is a computed quote. Fee and impact are percentages.
type QuoteResponse struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	InputAmount     string  `json:"input_amount"`
	OutputAmount    string  `json:"output_amount"`
	SolvedFor       string  `json:"solved_for"`
	ExchangeRate    float64 `json:"exchange_rate"`
	PriceImpactPct  float64 `json:"price_impact_pct"`
	FeePct          float64 `json:"fee_pct"`
	MinimumReceived string  `json:"minimum_received,omitempty"`
	Severity        string  `json:"severity"`
	Warning         string  `json:"warning,omitempty"`
	Converged       bool    `json:"converged"`
}

// FormCreateRequest opens a swap form. Slippage is a fraction.
type FormCreateRequest struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Slippage *float64 `json:"slippage,omitempty"`
}

// FormAmountRequest sets the amount on one side ("from" or "to")
type FormAmountRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FormTokenRequest replaces the token on one side
type FormTokenRequest struct {
	Side   string `json:"side"`
	Symbol string `json:"symbol"`
}

// FormSlippageRequest sets the slippage tolerance as a fraction
type FormSlippageRequest struct {
	Tolerance *float64 `json:"tolerance"`
}

// FormResponse is the rendered form state
type FormResponse struct {
	ID           string         `json:"id"`
	FromToken    string         `json:"from_token"`
	ToToken      string         `json:"to_token"`
	FromAmount   string         `json:"from_amount"`
	ToAmount     string         `json:"to_amount"`
	Driving      string         `json:"driving"`
	SlippagePct  float64        `json:"slippage_pct"`
	IsSubmitting bool           `json:"is_submitting"`
	Phase        string         `json:"phase"`
	Quote        *QuoteResponse `json:"quote,omitempty"`
}

// SubmitResponse is returned after a successful submission
type SubmitResponse struct {
	ID         string       `json:"id"`
	TxHash     string       `json:"tx_hash,omitempty"`
	ExecutedAt time.Time    `json:"executed_at"`
	Form       FormResponse `json:"form"`
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}
