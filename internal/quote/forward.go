package quote

// QuoteForward returns the output amount for swapping input of from into to,
// formatted with 6 fractional digits.
//
// "" means no quote: either side has no usable price, or input is not a
// positive number. A legitimately tiny output is "0.000000", never "".
func (m *Market) QuoteForward(from, to, input string) string {
	amount, ok := ParseAmount(input)
	if !ok || amount <= 0 {
		return ""
	}
	rate := m.Rate(from, to)
	if rate == 0 {
		return ""
	}
	out, _ := m.forward(from, to, amount, rate)
	return FormatAmount(out)
}

// forward applies the impact model and returns (output, impact). Output is
// clamped at zero when impact reaches 100%.
func (m *Market) forward(from, to string, amount, rate float64) (float64, float64) {
	impact := m.tradeImpact(from, to, amount)
	out := amount * rate * (1 - impact)
	if out < 0 {
		out = 0
	}
	return out, impact
}
