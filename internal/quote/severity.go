package quote

// Price impact thresholds as fractions.
const (
	ImpactLow      = 0.01
	ImpactModerate = 0.03
	ImpactHigh     = 0.05
	ImpactExtreme  = 0.10
)

// Severity buckets a price impact for display.
type Severity string

const (
	SeverityNone     Severity = "none"     // < 1%
	SeverityLow      Severity = "low"      // 1-3%
	SeverityModerate Severity = "moderate" // 3-5%
	SeverityHigh     Severity = "high"     // 5-10%
	SeverityExtreme  Severity = "extreme"  // >= 10%
)

// SeverityOf returns the bucket for an impact fraction.
func SeverityOf(impact float64) Severity {
	switch {
	case impact < ImpactLow:
		return SeverityNone
	case impact < ImpactModerate:
		return SeverityLow
	case impact < ImpactHigh:
		return SeverityModerate
	case impact < ImpactExtreme:
		return SeverityHigh
	default:
		return SeverityExtreme
	}
}

// Warning returns a user-facing message, empty for SeverityNone.
func (s Severity) Warning() string {
	switch s {
	case SeverityLow:
		return "Low price impact"
	case SeverityModerate:
		return "Moderate price impact - consider reducing trade size"
	case SeverityHigh:
		return "High price impact - you may receive significantly less tokens"
	case SeverityExtreme:
		return "Extreme price impact - this trade will severely move the market price"
	default:
		return ""
	}
}
