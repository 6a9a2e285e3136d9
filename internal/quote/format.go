package quote

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/constants"
)

// maxAmountMagnitude bounds the decimal exponent of a parsed amount, well
// past float64 range in both directions. Converting a decimal with a huge
// exponent to float builds 10^exp as a big.Int, so it must be rejected first.
const maxAmountMagnitude = 400

// ParseAmount parses a user-typed amount. Empty, non-numeric, non-finite and
// absurdly scaled input is rejected.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if !d.IsZero() {
		exp := int64(d.Exponent())
		if exp+int64(d.NumDigits()) > maxAmountMagnitude || exp < -maxAmountMagnitude {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatAmount renders an amount with 6 fractional digits. Values that round
// to zero render as "0.000000"; only non-finite input yields "".
func FormatAmount(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ""
	}
	d := decimal.NewFromFloat(x).Round(constants.AmountDecimals)
	if d.IsZero() {
		d = decimal.Zero
	}
	return d.StringFixed(constants.AmountDecimals)
}

// Percent scales a fraction to a display percentage rounded to 6 places.
// Presentation layers call this rather than multiplying themselves.
func Percent(f float64) float64 {
	return math.Round(f*100*1e6) / 1e6
}
