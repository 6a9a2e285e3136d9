package flags

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Flag is a runtime switch. Stored flags have UpdatedAt set; known flags that
// were never written are reported with Default set.
type Flag struct {
	Key         string    `json:"key"`
	Value       bool      `json:"value"`
	Description string    `json:"description,omitempty"`
	Default     bool      `json:"default,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Switches the service reads. Unset switches take their default value.
const (
	// SwapSubmit gates POST /v1/forms/:id/submit.
	SwapSubmit = "swap.submit"
	// InverseQuotes gates output-driven quotes on the one-shot quote endpoint.
	InverseQuotes = "quote.inverse"
)

type known struct {
	value       bool
	description string
}

var knownFlags = map[string]known{
	SwapSubmit:    {value: true, description: "accept swap submissions"},
	InverseQuotes: {value: true, description: "allow quotes solved from a desired output"},
}

// Checker is the read side used by request handlers.
type Checker interface {
	Enabled(ctx context.Context, key string) (bool, error)
}
