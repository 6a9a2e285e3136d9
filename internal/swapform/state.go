package swapform

import "github.com/aman-zulfiqar/swap-quote-engine/internal/quote"

type Phase string

// PhaseComputing is set only while the controller lock is held, so
// snapshots report Idle once a recompute returns.
const (
	PhaseIdle       Phase = "idle"
	PhaseComputing  Phase = "computing"
	PhaseSubmitting Phase = "submitting"
)

// State is a snapshot of one swap form. Amounts are kept as entered; the
// derived side is whatever the quote engine produced for the driving side.
type State struct {
	FromToken         string        `json:"from_token"`
	ToToken           string        `json:"to_token"`
	FromAmount        string        `json:"from_amount"`
	ToAmount          string        `json:"to_amount"`
	Driving           quote.Field   `json:"driving"`
	SlippageTolerance float64       `json:"slippage_tolerance"`
	IsSubmitting      bool          `json:"is_submitting"`
	Phase             Phase         `json:"phase"`
	LastComputed      *quote.Result `json:"last_computed,omitempty"`
}

func (s State) clone() State {
	if s.LastComputed != nil {
		r := *s.LastComputed
		s.LastComputed = &r
	}
	return s
}
