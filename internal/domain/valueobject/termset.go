package valueobject

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TermSet is the immutable package of principal, rate and term fields that
// governs amortization for a period of a loan's life. Produced at origination
// or by a restructuring; never mutated in place.
type TermSet struct {
	Principal            decimal.Decimal
	AnnualRate           decimal.Decimal // percentage, e.g. 12.5 = 12.5% p.a.
	TermLength           int             // number of payment periods
	Method               AmortizationMethod
	PaymentFrequency     PaymentFrequency
	CompoundingFrequency CompoundingFrequency
	DayCount             DayCountConvention
	MaturityDate         time.Time

	// BalloonFraction is the share of principal deferred to the final
	// installment. Only meaningful for MethodBalloonPayment.
	BalloonFraction decimal.Decimal
}

var maxAnnualRate = decimal.NewFromInt(100)

// NewTermSet builds a TermSet and validates it. Zero compounding frequency
// defaults to the payment frequency's natural compounding; zero day count
// defaults to ACTUAL_360.
func NewTermSet(
	principal, annualRate decimal.Decimal,
	termLength int,
	method AmortizationMethod,
	paymentFreq PaymentFrequency,
	compounding CompoundingFrequency,
	dayCount DayCountConvention,
	maturityDate time.Time,
	balloonFraction decimal.Decimal,
) (TermSet, error) {
	ts := TermSet{
		Principal:            principal,
		AnnualRate:           annualRate,
		TermLength:           termLength,
		Method:               method,
		PaymentFrequency:     paymentFreq,
		CompoundingFrequency: compounding,
		DayCount:             dayCount,
		MaturityDate:         maturityDate,
		BalloonFraction:      balloonFraction,
	}
	if ts.DayCount.IsZero() {
		ts.DayCount = DayCountActual360
	}
	if err := ts.Validate(); err != nil {
		return TermSet{}, err
	}
	return ts, nil
}

// Validate checks the term set against the origination constraints.
func (ts TermSet) Validate() error {
	if ts.TermLength < 1 {
		return fmt.Errorf("%w: loan term must be at least 1, got %d", ErrInvalidTermSet, ts.TermLength)
	}
	if ts.Principal.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidTermSet, ts.Principal)
	}
	if ts.AnnualRate.IsNegative() || ts.AnnualRate.GreaterThan(maxAnnualRate) {
		return fmt.Errorf("%w: annual rate must be within [0, 100], got %s", ErrInvalidTermSet, ts.AnnualRate)
	}
	if ts.Method.IsZero() {
		return fmt.Errorf("%w: amortization method is required", ErrInvalidTermSet)
	}
	if ts.PaymentFrequency.IsZero() {
		return fmt.Errorf("%w: payment frequency is required", ErrInvalidTermSet)
	}
	if ts.Method.Equal(MethodBalloonPayment) {
		if ts.BalloonFraction.IsNegative() || ts.BalloonFraction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: balloon fraction must be within [0, 1), got %s", ErrInvalidTermSet, ts.BalloonFraction)
		}
	}
	return nil
}

// Equal reports whether two term sets carry identical terms.
func (ts TermSet) Equal(other TermSet) bool {
	return ts.Principal.Equal(other.Principal) &&
		ts.AnnualRate.Equal(other.AnnualRate) &&
		ts.TermLength == other.TermLength &&
		ts.Method.Equal(other.Method) &&
		ts.PaymentFrequency.Equal(other.PaymentFrequency) &&
		ts.CompoundingFrequency == other.CompoundingFrequency &&
		ts.DayCount == other.DayCount &&
		ts.MaturityDate.Equal(other.MaturityDate) &&
		ts.BalloonFraction.Equal(other.BalloonFraction)
}
