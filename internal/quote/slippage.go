package quote

// ApplySlippage returns the minimum amount received under the given slippage
// tolerance (fraction, 0.01 = 1%).
func ApplySlippage(amount, tolerance float64) float64 {
	if tolerance >= 1 {
		return 0 // 100% slippage = no output
	}
	if tolerance <= 0 {
		return amount
	}
	return amount * (1 - tolerance)
}

// MinimumReceived is ApplySlippage over a formatted amount. Returns "" when
// amount is not a number.
func MinimumReceived(amount string, tolerance float64) string {
	v, ok := ParseAmount(amount)
	if !ok {
		return ""
	}
	return FormatAmount(ApplySlippage(v, tolerance))
}
