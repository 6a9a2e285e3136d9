package quote

import "strings"

// Field names one side of a swap.
type Field string

const (
	FieldFrom Field = "from"
	FieldTo   Field = "to"
)

// ParseField accepts "from"/"to" (case-insensitive) plus the input/output
// aliases used by the HTTP API.
func ParseField(s string) (Field, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "from", "input", "in":
		return FieldFrom, true
	case "to", "output", "out":
		return FieldTo, true
	}
	return "", false
}

// Other returns the opposite side.
func (f Field) Other() Field {
	if f == FieldFrom {
		return FieldTo
	}
	return FieldFrom
}

// Request asks for a quote. Exactly one of InputAmount or OutputAmount is set.
type Request struct {
	FromSymbol        string
	ToSymbol          string
	InputAmount       string
	OutputAmount      string
	SlippageTolerance float64
}

// Result is a computed quote. SolvedFor tells which amount was derived.
type Result struct {
	FromSymbol      string
	ToSymbol        string
	InputAmount     string
	OutputAmount    string
	SolvedFor       Field
	ExchangeRate    float64
	PriceImpact     float64 // fraction
	FeeFraction     float64
	MinimumReceived string
	Severity        Severity
	Converged       bool
}

// Quote resolves a Request in whichever direction it asks for.
func (m *Market) Quote(req Request) (*Result, error) {
	hasIn := strings.TrimSpace(req.InputAmount) != ""
	hasOut := strings.TrimSpace(req.OutputAmount) != ""
	if hasIn == hasOut {
		return nil, ErrAmbiguousRequest
	}
	if req.FromSymbol == req.ToSymbol {
		return nil, ErrSameToken
	}
	rate := m.Rate(req.FromSymbol, req.ToSymbol)
	if rate == 0 {
		return nil, ErrNoQuote
	}

	res := &Result{
		FromSymbol:   req.FromSymbol,
		ToSymbol:     req.ToSymbol,
		ExchangeRate: rate,
		FeeFraction:  m.FeeFraction(req.FromSymbol, req.ToSymbol),
		Converged:    true,
	}

	if hasIn {
		amount, ok := ParseAmount(req.InputAmount)
		if !ok || amount <= 0 {
			return nil, ErrInvalidAmount
		}
		out, impact := m.forward(req.FromSymbol, req.ToSymbol, amount, rate)
		res.SolvedFor = FieldTo
		res.InputAmount = FormatAmount(amount)
		res.OutputAmount = FormatAmount(out)
		res.PriceImpact = impact
	} else {
		desired, ok := ParseAmount(req.OutputAmount)
		if !ok || desired < 0 {
			return nil, ErrInvalidAmount
		}
		sol, ok := m.SolveInverse(req.FromSymbol, req.ToSymbol, desired)
		if !ok {
			return nil, ErrNoQuote
		}
		res.SolvedFor = FieldFrom
		res.InputAmount = FormatAmount(sol.Input)
		res.OutputAmount = FormatAmount(desired)
		res.PriceImpact = m.tradeImpact(req.FromSymbol, req.ToSymbol, sol.Input)
		res.Converged = sol.Converged
	}

	res.MinimumReceived = MinimumReceived(res.OutputAmount, req.SlippageTolerance)
	res.Severity = SeverityOf(res.PriceImpact)
	return res, nil
}
