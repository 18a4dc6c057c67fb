package service

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
	"github.com/lumenbank/servicing/pkg/money"
)

// AmortizationEngine generates repayment schedules from a term set. It is a
// pure computation: no I/O, fully deterministic for identical inputs.
type AmortizationEngine struct{}

// NewAmortizationEngine creates the engine.
func NewAmortizationEngine() AmortizationEngine {
	return AmortizationEngine{}
}

// Generate computes the ordered, unsaved installments for the given term set.
// Due dates advance per the payment frequency from originationDate, the
// first installment falling one period after it. Installment numbers run
// contiguously from startNumber. The sum of PrincipalDue across the schedule
// equals the term set principal exactly; the rounding residue from division
// lands on the final installment.
func (AmortizationEngine) Generate(
	ts valueobject.TermSet,
	originationDate time.Time,
	startNumber int,
) ([]model.ScheduleInstallment, error) {
	if err := ts.Validate(); err != nil {
		return nil, err
	}
	if startNumber < 1 {
		return nil, fmt.Errorf("%w: start installment number must be at least 1, got %d",
			valueobject.ErrInvalidTermSet, startNumber)
	}

	rate := periodicRate(ts)

	switch {
	case ts.Method.Equal(valueobject.MethodBullet):
		return bulletSchedule(ts, originationDate, startNumber, rate), nil
	case ts.Method.Equal(valueobject.MethodInterestOnly):
		return interestOnlySchedule(ts, originationDate, startNumber, rate), nil
	case ts.Method.Equal(valueobject.MethodEqualPrincipal):
		return equalPrincipalSchedule(ts, originationDate, startNumber, rate), nil
	case ts.Method.Equal(valueobject.MethodBalloonPayment):
		return annuitySchedule(ts, originationDate, startNumber, rate, ts.BalloonFraction), nil
	default: // EQUAL_INSTALLMENT
		return annuitySchedule(ts, originationDate, startNumber, rate, decimal.Zero), nil
	}
}

// periodicRate converts the annual percentage rate into an effective
// per-payment-period rate, honouring the compounding frequency and day-count
// convention. The power calculation runs in float64, monetary arithmetic
// stays in decimal (rounded half-up to cents only at installment boundaries).
func periodicRate(ts valueobject.TermSet) decimal.Decimal {
	annual, _ := ts.AnnualRate.Div(decimal.NewFromInt(100)).Float64()
	if annual == 0 {
		return decimal.Zero
	}

	p := float64(ts.PaymentFrequency.PeriodsPerYear(ts.DayCount))
	m := p
	if !ts.CompoundingFrequency.IsZero() {
		m = float64(ts.CompoundingFrequency.PeriodsPerYear(ts.DayCount))
	}

	if m == p {
		return decimal.NewFromFloat(annual / p)
	}
	effective := math.Pow(1+annual/m, m/p) - 1
	return decimal.NewFromFloat(effective)
}

// advanceDueDate returns the due date k periods after origination.
func advanceDueDate(origination time.Time, freq valueobject.PaymentFrequency, k int) time.Time {
	switch freq {
	case valueobject.FrequencyDaily:
		return origination.AddDate(0, 0, k)
	case valueobject.FrequencyWeekly:
		return origination.AddDate(0, 0, 7*k)
	case valueobject.FrequencyBiweekly:
		return origination.AddDate(0, 0, 14*k)
	case valueobject.FrequencyMonthly:
		return origination.AddDate(0, k, 0)
	case valueobject.FrequencyQuarterly:
		return origination.AddDate(0, 3*k, 0)
	case valueobject.FrequencySemiannually:
		return origination.AddDate(0, 6*k, 0)
	default:
		return origination.AddDate(k, 0, 0)
	}
}

// annuitySchedule covers EQUAL_INSTALLMENT and, with a non-zero balloon
// fraction, BALLOON_PAYMENT: constant total payment sized over the amortized
// portion, principal/interest split recomputed each period from the
// remaining balance, final installment absorbing the remainder.
func annuitySchedule(
	ts valueobject.TermSet,
	origination time.Time,
	startNumber int,
	rate decimal.Decimal,
	balloonFraction decimal.Decimal,
) []model.ScheduleInstallment {
	n := ts.TermLength
	balloon := money.RoundCents(ts.Principal.Mul(balloonFraction))
	amortized := ts.Principal.Sub(balloon)

	var payment decimal.Decimal
	if rate.IsZero() {
		payment = money.RoundCents(amortized.Div(decimal.NewFromInt(int64(n))))
	} else {
		// A = P * r * (1+r)^n / ((1+r)^n - 1)
		r, _ := rate.Float64()
		p, _ := amortized.Float64()
		factor := math.Pow(1+r, float64(n))
		payment = money.RoundCents(decimal.NewFromFloat(p * r * factor / (factor - 1)))
	}

	schedule := make([]model.ScheduleInstallment, 0, n)
	remaining := ts.Principal

	for period := 1; period <= n; period++ {
		interest := money.RoundCents(remaining.Mul(rate))
		principalPart := payment.Sub(interest)
		if principalPart.IsNegative() {
			principalPart = decimal.Zero
		}

		// Final installment absorbs the remaining principal, including
		// the balloon portion and any rounding residue.
		if period == n || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}
		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, installment(ts, origination, startNumber, period, principalPart, interest))
		if period < n && remaining.IsZero() {
			// Degenerate short schedule; keep numbering contiguous by
			// stopping early.
			break
		}
	}
	return schedule
}

func equalPrincipalSchedule(
	ts valueobject.TermSet,
	origination time.Time,
	startNumber int,
	rate decimal.Decimal,
) []model.ScheduleInstallment {
	n := ts.TermLength
	parts := money.SplitEven(ts.Principal, n)

	schedule := make([]model.ScheduleInstallment, 0, n)
	remaining := ts.Principal

	for period := 1; period <= n; period++ {
		interest := money.RoundCents(remaining.Mul(rate))
		principalPart := parts[period-1]
		remaining = remaining.Sub(principalPart)
		schedule = append(schedule, installment(ts, origination, startNumber, period, principalPart, interest))
	}
	return schedule
}

func interestOnlySchedule(
	ts valueobject.TermSet,
	origination time.Time,
	startNumber int,
	rate decimal.Decimal,
) []model.ScheduleInstallment {
	n := ts.TermLength
	interest := money.RoundCents(ts.Principal.Mul(rate))

	schedule := make([]model.ScheduleInstallment, 0, n)
	for period := 1; period <= n; period++ {
		principalPart := decimal.Zero
		if period == n {
			principalPart = ts.Principal
		}
		schedule = append(schedule, installment(ts, origination, startNumber, period, principalPart, interest))
	}
	return schedule
}

func bulletSchedule(
	ts valueobject.TermSet,
	origination time.Time,
	startNumber int,
	rate decimal.Decimal,
) []model.ScheduleInstallment {
	r, _ := rate.Float64()
	p, _ := ts.Principal.Float64()
	interest := money.RoundCents(decimal.NewFromFloat(p * (math.Pow(1+r, float64(ts.TermLength)) - 1)))

	inst := model.ScheduleInstallment{
		InstallmentNumber: startNumber,
		DueDate:           bulletDueDate(ts, origination),
		PrincipalDue:      ts.Principal,
		InterestDue:       interest,
		FeeDue:            decimal.Zero,
		TotalDue:          ts.Principal.Add(interest),
		PaidAmount:        decimal.Zero,
	}
	return []model.ScheduleInstallment{inst}
}

func bulletDueDate(ts valueobject.TermSet, origination time.Time) time.Time {
	if !ts.MaturityDate.IsZero() {
		return ts.MaturityDate
	}
	return advanceDueDate(origination, ts.PaymentFrequency, ts.TermLength)
}

func installment(
	ts valueobject.TermSet,
	origination time.Time,
	startNumber, period int,
	principal, interest decimal.Decimal,
) model.ScheduleInstallment {
	return model.ScheduleInstallment{
		InstallmentNumber: startNumber + period - 1,
		DueDate:           advanceDueDate(origination, ts.PaymentFrequency, period),
		PrincipalDue:      principal,
		InterestDue:       interest,
		FeeDue:            decimal.Zero,
		TotalDue:          principal.Add(interest),
		PaidAmount:        decimal.Zero,
	}
}
