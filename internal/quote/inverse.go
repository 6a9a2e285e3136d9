package quote

import (
	"math"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
)

// InverseSolution is the outcome of the inverse solver.
type InverseSolution struct {
	Input      float64 // required input amount
	Iterations int     // correction steps applied
	Converged  bool    // |residual| < InverseTolerance at the last evaluation
	Residual   float64 // computedOutput - desired at the last evaluation
	Impact     float64 // impact at the last evaluation
}

// SolveInverse finds the input amount of from that yields desired units of to.
//
// The iteration is seeded at the mid-price estimate and refined with a
// first-order correction, capped at MaxInverseIterations. Very large trades
// through shallow pools may stop before reaching the tolerance; Converged
// reports that. ok is false when no quote is available or desired is not a
// non-negative finite number.
func (m *Market) SolveInverse(from, to string, desired float64) (sol InverseSolution, ok bool) {
	rate := m.Rate(from, to)
	if rate == 0 || math.IsNaN(desired) || math.IsInf(desired, 0) || desired < 0 {
		return InverseSolution{}, false
	}

	sol.Input = desired / rate
	for {
		sol.Impact = m.tradeImpact(from, to, sol.Input)
		slope := rate * (1 - sol.Impact)
		sol.Residual = sol.Input*slope - desired
		if math.Abs(sol.Residual) < constants.InverseTolerance {
			sol.Converged = true
			return sol, true
		}
		if sol.Iterations >= constants.MaxInverseIterations || slope <= 0 {
			return sol, true
		}
		sol.Input = math.Max(0, sol.Input-sol.Residual/slope)
		sol.Iterations++
	}
}

// QuoteInverse returns the input amount required to receive output, formatted
// with 6 fractional digits, or "" when no quote is available.
func (m *Market) QuoteInverse(from, to, output string) string {
	if m.Rate(from, to) == 0 {
		return ""
	}
	desired, ok := ParseAmount(output)
	if !ok {
		return ""
	}
	sol, ok := m.SolveInverse(from, to, desired)
	if !ok {
		return ""
	}
	return FormatAmount(sol.Input)
}
