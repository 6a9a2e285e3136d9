package server

import (
	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/quote"
	"github.com/aman-zulfiqar/swap-quote-engine/internal/swapform"
)

func quoteResponse(r *quote.Result) *QuoteResponse {
	if r == nil {
		return nil
	}
	return &QuoteResponse{
		From:            r.FromSymbol,
		To:              r.ToSymbol,
		InputAmount:     r.InputAmount,
		OutputAmount:    r.OutputAmount,
		SolvedFor:       string(r.SolvedFor),
		ExchangeRate:    r.ExchangeRate,
		PriceImpactPct:  quote.Percent(r.PriceImpact),
		FeePct:          quote.Percent(r.FeeFraction),
		MinimumReceived: r.MinimumReceived,
		Severity:        string(r.Severity),
		Warning:         r.Severity.Warning(),
		Converged:       r.Converged,
	}
}

func formResponse(id string, s swapform.State) FormResponse {
	return FormResponse{
		ID:           id,
		FromToken:    s.FromToken,
		ToToken:      s.ToToken,
		FromAmount:   s.FromAmount,
		ToAmount:     s.ToAmount,
		Driving:      string(s.Driving),
		SlippagePct:  quote.Percent(s.SlippageTolerance),
		IsSubmitting: s.IsSubmitting,
		Phase:        string(s.Phase),
		Quote:        quoteResponse(s.LastComputed),
	}
}

func poolResponse(p models.LiquidityPool) PoolResponse {
	return PoolResponse{Pair: p.Pair, FeePct: quote.Percent(p.FeeFraction), TVL: p.TVL}
}
