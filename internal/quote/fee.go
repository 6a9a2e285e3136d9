package quote

import "github.com/aman-zulfiqar/swap-quote-engine/internal/constants"

// FeeFraction returns the pool fee for the pair as a fraction in [0,1].
// Conversion to a percentage is left to the presentation layer.
func (m *Market) FeeFraction(from, to string) float64 {
	pool, ok := m.FindPool(from, to)
	if !ok {
		return constants.DefaultFeeFraction
	}
	return pool.FeeFraction
}
