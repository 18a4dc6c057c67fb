package money

import "github.com/shopspring/decimal"

// RoundCents rounds to 2 decimal places, half away from zero. Used at
// installment and snapshot boundaries.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundCentsBank rounds to 2 decimal places using banker's rounding. Used for
// accrual intermediates where repeated half-up rounding would drift.
func RoundCentsBank(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// SplitEven divides total into n equal cent-rounded parts. The rounding
// residue lands on the final part so the parts always sum to total exactly.
func SplitEven(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	part := RoundCents(total.Div(decimal.NewFromInt(int64(n))))
	parts := make([]decimal.Decimal, n)
	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = part
		running = running.Add(part)
	}
	parts[n-1] = total.Sub(running)
	return parts
}

// ClampNonNegative returns zero when d is negative, otherwise d.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
