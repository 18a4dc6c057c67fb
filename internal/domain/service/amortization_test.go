package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

func mustTermSet(t *testing.T, principal float64, rate float64, term int, method valueobject.AmortizationMethod) valueobject.TermSet {
	t.Helper()
	ts, err := valueobject.NewTermSet(
		decimal.NewFromFloat(principal),
		decimal.NewFromFloat(rate),
		term,
		method,
		valueobject.FrequencyMonthly,
		valueobject.CompoundingFrequency{},
		valueobject.DayCountActual360,
		time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		decimal.Zero,
	)
	require.NoError(t, err)
	return ts
}

func TestGenerateEqualInstallment(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	ts := mustTermSet(t, 12000, 12.0, 12, valueobject.MethodEqualInstallment)

	schedule, err := engine.Generate(ts, origination, 1)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	// A = P * r * (1+r)^n / ((1+r)^n - 1) with r = 0.01 per month.
	expectedPayment := decimal.NewFromFloat(1066.19)
	for i, inst := range schedule[:len(schedule)-1] {
		assert.True(t, inst.TotalDue.Sub(expectedPayment).Abs().LessThan(decimal.NewFromFloat(0.02)),
			"installment %d total %s should be close to %s", i+1, inst.TotalDue, expectedPayment)
	}

	// First period interest is the full principal times the periodic rate.
	assert.True(t, schedule[0].InterestDue.Equal(decimal.NewFromFloat(120.00)),
		"first interest %s", schedule[0].InterestDue)

	// Principal across the schedule sums to the original principal exactly.
	totalPrincipal := decimal.Zero
	for _, inst := range schedule {
		totalPrincipal = totalPrincipal.Add(inst.PrincipalDue)
	}
	assert.True(t, totalPrincipal.Equal(decimal.NewFromInt(12000)),
		"principal sum %s should equal 12000 exactly", totalPrincipal)

	// Numbering is contiguous from 1 and due dates advance monthly.
	for i, inst := range schedule {
		assert.Equal(t, i+1, inst.InstallmentNumber)
		assert.Equal(t, origination.AddDate(0, i+1, 0), inst.DueDate)
		assert.False(t, inst.IsPaid)
		assert.True(t, inst.TotalDue.Equal(inst.PrincipalDue.Add(inst.InterestDue).Add(inst.FeeDue)))
	}
}

func TestGenerateEqualInstallmentZeroRate(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	ts := mustTermSet(t, 9000, 0, 12, valueobject.MethodEqualInstallment)

	schedule, err := engine.Generate(ts, origination, 1)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	for _, inst := range schedule {
		assert.True(t, inst.InterestDue.IsZero(), "zero rate must accrue no interest")
		assert.True(t, inst.PrincipalDue.Equal(decimal.NewFromInt(750)))
	}
}

func TestGenerateEqualPrincipal(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	ts := mustTermSet(t, 12000, 12.0, 12, valueobject.MethodEqualPrincipal)

	schedule, err := engine.Generate(ts, origination, 1)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	thousand := decimal.NewFromInt(1000)
	for _, inst := range schedule {
		assert.True(t, inst.PrincipalDue.Equal(thousand),
			"installment %d principal %s", inst.InstallmentNumber, inst.PrincipalDue)
	}

	// Interest declines with the outstanding balance.
	assert.True(t, schedule[0].InterestDue.Equal(decimal.NewFromFloat(120.00)))
	assert.True(t, schedule[11].InterestDue.Equal(decimal.NewFromFloat(10.00)))
	for i := 1; i < len(schedule); i++ {
		assert.True(t, schedule[i].InterestDue.LessThan(schedule[i-1].InterestDue),
			"interest must decrease period over period")
	}
}

func TestGenerateEqualPrincipalRoundingResidue(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	// 10000 / 12 does not divide into whole cents.
	ts := mustTermSet(t, 10000, 6.0, 12, valueobject.MethodEqualPrincipal)

	schedule, err := engine.Generate(ts, origination, 1)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	totalPrincipal := decimal.Zero
	for _, inst := range schedule {
		totalPrincipal = totalPrincipal.Add(inst.PrincipalDue)
	}
	assert.True(t, totalPrincipal.Equal(decimal.NewFromInt(10000)),
		"rounding residue must land on the final installment, sum %s", totalPrincipal)
	assert.False(t, schedule[11].PrincipalDue.Equal(schedule[0].PrincipalDue))
}

func TestGenerateInterestOnly(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	ts := mustTermSet(t, 12000, 12.0, 12, valueobject.MethodInterestOnly)

	schedule, err := engine.Generate(ts, origination, 1)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	for i, inst := range schedule {
		assert.True(t, inst.InterestDue.Equal(decimal.NewFromFloat(120.00)))
		if i < len(schedule)-1 {
			assert.True(t, inst.PrincipalDue.IsZero(),
				"installment %d must carry no principal", inst.InstallmentNumber)
		}
	}
	assert.True(t, schedule[11].PrincipalDue.Equal(decimal.NewFromInt(12000)),
		"final installment carries the full principal")
}

func TestGenerateBullet(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	ts := mustTermSet(t, 12000, 12.0, 12, valueobject.MethodBullet)

	schedule, err := engine.Generate(ts, origination, 1)
	require.NoError(t, err)
	require.Len(t, schedule, 1)

	only := schedule[0]
	assert.Equal(t, 1, only.InstallmentNumber)
	assert.Equal(t, ts.MaturityDate, only.DueDate)
	assert.True(t, only.PrincipalDue.Equal(decimal.NewFromInt(12000)))

	// 12000 * ((1.01)^12 - 1) = 1521.90 compound interest at maturity.
	expectedInterest := decimal.NewFromFloat(1521.90)
	assert.True(t, only.InterestDue.Sub(expectedInterest).Abs().LessThan(decimal.NewFromFloat(0.02)),
		"bullet interest %s should be close to %s", only.InterestDue, expectedInterest)
}

func TestGenerateBalloon(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	ts, err := valueobject.NewTermSet(
		decimal.NewFromInt(12000),
		decimal.NewFromInt(12),
		12,
		valueobject.MethodBalloonPayment,
		valueobject.FrequencyMonthly,
		valueobject.CompoundingFrequency{},
		valueobject.DayCountActual360,
		time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		decimal.NewFromFloat(0.4),
	)
	require.NoError(t, err)

	schedule, err := engine.Generate(ts, origination, 1)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	totalPrincipal := decimal.Zero
	for _, inst := range schedule {
		totalPrincipal = totalPrincipal.Add(inst.PrincipalDue)
	}
	assert.True(t, totalPrincipal.Equal(decimal.NewFromInt(12000)),
		"principal sum %s should equal 12000 exactly", totalPrincipal)

	// The deferred 40% lands on the final installment on top of its regular
	// amortized share.
	balloon := decimal.NewFromInt(4800)
	assert.True(t, schedule[11].PrincipalDue.GreaterThan(balloon),
		"final principal %s must include the balloon portion", schedule[11].PrincipalDue)
	assert.True(t, schedule[0].PrincipalDue.LessThan(schedule[11].PrincipalDue))
}

func TestGenerateStartNumberOffset(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	ts := mustTermSet(t, 6000, 10.0, 6, valueobject.MethodEqualPrincipal)

	schedule, err := engine.Generate(ts, origination, 7)
	require.NoError(t, err)
	require.Len(t, schedule, 6)

	for i, inst := range schedule {
		assert.Equal(t, 7+i, inst.InstallmentNumber,
			"numbering must continue contiguously from the start number")
	}
}

func TestGeneratePrincipalSumAcrossTermLengths(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	principal := decimal.NewFromFloat(250000)

	methods := []valueobject.AmortizationMethod{
		valueobject.MethodEqualInstallment,
		valueobject.MethodEqualPrincipal,
		valueobject.MethodBalloonPayment,
		valueobject.MethodInterestOnly,
		valueobject.MethodBullet,
	}
	terms := []int{1, 2, 7, 12, 60, 360, 599, 600}

	for _, method := range methods {
		for _, term := range terms {
			t.Run(fmt.Sprintf("%s/%d", method.String(), term), func(t *testing.T) {
				balloon := decimal.Zero
				if method.Equal(valueobject.MethodBalloonPayment) {
					balloon = decimal.NewFromFloat(0.35)
				}
				ts, err := valueobject.NewTermSet(
					principal,
					decimal.NewFromFloat(7.25),
					term,
					method,
					valueobject.FrequencyMonthly,
					valueobject.CompoundingFrequency{},
					valueobject.DayCountActual360,
					origination.AddDate(50, 0, 0),
					balloon,
				)
				require.NoError(t, err)

				schedule, err := engine.Generate(ts, origination, 1)
				require.NoError(t, err)
				require.NotEmpty(t, schedule)
				// The annuity path may settle early and BULLET always yields
				// one installment, so the schedule never exceeds the term.
				assert.LessOrEqual(t, len(schedule), term)

				sum := decimal.Zero
				for i, inst := range schedule {
					assert.Equal(t, i+1, inst.InstallmentNumber)
					assert.False(t, inst.PrincipalDue.IsNegative(),
						"installment %d principal %s", i+1, inst.PrincipalDue)
					sum = sum.Add(inst.PrincipalDue)
				}
				assert.True(t, sum.Equal(principal),
					"principal sum %s should equal %s exactly", sum, principal)
			})
		}
	}
}

func TestGenerateRejectsInvalidInputs(t *testing.T) {
	engine := NewAmortizationEngine()
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	base := mustTermSet(t, 12000, 12.0, 12, valueobject.MethodEqualInstallment)

	t.Run("zero principal", func(t *testing.T) {
		ts := base
		ts.Principal = decimal.Zero
		_, err := engine.Generate(ts, origination, 1)
		assert.ErrorIs(t, err, valueobject.ErrInvalidTermSet)
	})

	t.Run("zero term", func(t *testing.T) {
		ts := base
		ts.TermLength = 0
		_, err := engine.Generate(ts, origination, 1)
		assert.ErrorIs(t, err, valueobject.ErrInvalidTermSet)
	})

	t.Run("negative rate", func(t *testing.T) {
		ts := base
		ts.AnnualRate = decimal.NewFromInt(-1)
		_, err := engine.Generate(ts, origination, 1)
		assert.ErrorIs(t, err, valueobject.ErrInvalidTermSet)
	})

	t.Run("rate above 100", func(t *testing.T) {
		ts := base
		ts.AnnualRate = decimal.NewFromInt(101)
		_, err := engine.Generate(ts, origination, 1)
		assert.ErrorIs(t, err, valueobject.ErrInvalidTermSet)
	})

	t.Run("start number below 1", func(t *testing.T) {
		_, err := engine.Generate(base, origination, 0)
		assert.ErrorIs(t, err, valueobject.ErrInvalidTermSet)
	})

	t.Run("balloon fraction at 1", func(t *testing.T) {
		ts := base
		ts.Method = valueobject.MethodBalloonPayment
		ts.BalloonFraction = decimal.NewFromInt(1)
		_, err := engine.Generate(ts, origination, 1)
		assert.ErrorIs(t, err, valueobject.ErrInvalidTermSet)
	})
}
