package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

func snapshot(principal, interest, fees float64) model.BalanceSnapshot {
	p := decimal.NewFromFloat(principal)
	i := decimal.NewFromFloat(interest)
	f := decimal.NewFromFloat(fees)
	return model.BalanceSnapshot{
		BalanceID:            "bal-1",
		CaseID:               "case-1",
		PrincipalOutstanding: p,
		InterestOutstanding:  i,
		FeesOutstanding:      f,
		TotalOutstanding:     p.Add(i).Add(f),
		BalanceDate:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		IsCurrent:            true,
	}
}

func TestLedgerAccrualPosted(t *testing.T) {
	ledger := NewBalanceLedger()
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("interest accrual", func(t *testing.T) {
		next, err := ledger.Apply(snapshot(1000, 10, 5), model.AccrualPosted{
			Amount: decimal.NewFromFloat(2.50),
			Type:   valueobject.AccrualInterest,
		}, "bal-2", now)
		require.NoError(t, err)
		assert.True(t, next.InterestOutstanding.Equal(decimal.NewFromFloat(12.50)))
		assert.True(t, next.FeesOutstanding.Equal(decimal.NewFromInt(5)))
		assert.True(t, next.TotalOutstanding.Equal(decimal.NewFromFloat(1017.50)))
	})

	t.Run("fee accrual", func(t *testing.T) {
		next, err := ledger.Apply(snapshot(1000, 10, 5), model.AccrualPosted{
			Amount: decimal.NewFromInt(25),
			Type:   valueobject.AccrualFee,
		}, "bal-2", now)
		require.NoError(t, err)
		assert.True(t, next.FeesOutstanding.Equal(decimal.NewFromInt(30)))
		assert.True(t, next.InterestOutstanding.Equal(decimal.NewFromInt(10)))
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := ledger.Apply(snapshot(1000, 10, 5), model.AccrualPosted{
			Amount: decimal.Zero,
			Type:   valueobject.AccrualInterest,
		}, "bal-2", now)
		assert.Error(t, err)
	})
}

func TestLedgerPaymentApplied(t *testing.T) {
	ledger := NewBalanceLedger()
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	next, err := ledger.Apply(snapshot(1000, 12, 3), model.PaymentApplied{
		Allocation: model.PaymentAllocation{
			Principal: decimal.NewFromInt(100),
			Interest:  decimal.NewFromInt(12),
			Fees:      decimal.NewFromInt(3),
		},
	}, "bal-2", now)
	require.NoError(t, err)

	assert.True(t, next.PrincipalOutstanding.Equal(decimal.NewFromInt(900)))
	assert.True(t, next.InterestOutstanding.IsZero())
	assert.True(t, next.FeesOutstanding.IsZero())
	assert.True(t, next.TotalOutstanding.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, "bal-2", next.BalanceID)
	assert.Equal(t, "case-1", next.CaseID)
	assert.Equal(t, now, next.BalanceDate)
	assert.True(t, next.IsCurrent)
}

func TestLedgerPaymentOverdraw(t *testing.T) {
	ledger := NewBalanceLedger()
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := ledger.Apply(snapshot(100, 0, 0), model.PaymentApplied{
		Allocation: model.PaymentAllocation{Principal: decimal.NewFromInt(150)},
	}, "bal-2", now)
	assert.ErrorIs(t, err, valueobject.ErrOverpaymentRejected)
}

func TestLedgerDisbursement(t *testing.T) {
	ledger := NewBalanceLedger()
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	next, err := ledger.Apply(snapshot(0, 0, 0), model.DisbursementCompleted{
		Amount: decimal.NewFromInt(5000),
	}, "bal-2", now)
	require.NoError(t, err)
	assert.True(t, next.PrincipalOutstanding.Equal(decimal.NewFromInt(5000)))
	assert.True(t, next.TotalOutstanding.Equal(decimal.NewFromInt(5000)))

	reversed, err := ledger.Apply(next, model.DisbursementReversed{
		Amount: decimal.NewFromInt(5000),
	}, "bal-3", now)
	require.NoError(t, err)
	assert.True(t, reversed.PrincipalOutstanding.IsZero())

	_, err = ledger.Apply(next, model.DisbursementReversed{
		Amount: decimal.NewFromInt(6000),
	}, "bal-3", now)
	assert.ErrorIs(t, err, valueobject.ErrOverpaymentRejected)
}

func TestLedgerRestructuring(t *testing.T) {
	ledger := NewBalanceLedger()
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	newTerms := valueobject.TermSet{
		Principal:        decimal.NewFromInt(800),
		AnnualRate:       decimal.NewFromInt(6),
		TermLength:       24,
		Method:           valueobject.MethodEqualInstallment,
		PaymentFrequency: valueobject.FrequencyMonthly,
		DayCount:         valueobject.DayCountActual360,
	}

	t.Run("carries interest and fees", func(t *testing.T) {
		next, err := ledger.Apply(snapshot(1000, 40, 10), model.RestructuringApplied{
			NewTerms: newTerms,
		}, "bal-2", now)
		require.NoError(t, err)
		assert.True(t, next.PrincipalOutstanding.Equal(decimal.NewFromInt(800)))
		assert.True(t, next.InterestOutstanding.Equal(decimal.NewFromInt(40)))
		assert.True(t, next.FeesOutstanding.Equal(decimal.NewFromInt(10)))
		assert.True(t, next.TotalOutstanding.Equal(decimal.NewFromInt(850)))
	})

	t.Run("zeroes forgiven components", func(t *testing.T) {
		next, err := ledger.Apply(snapshot(1000, 40, 10), model.RestructuringApplied{
			NewTerms:     newTerms,
			ZeroInterest: true,
			ZeroFees:     true,
		}, "bal-2", now)
		require.NoError(t, err)
		assert.True(t, next.InterestOutstanding.IsZero())
		assert.True(t, next.FeesOutstanding.IsZero())
		assert.True(t, next.TotalOutstanding.Equal(decimal.NewFromInt(800)))
	})
}

func TestLedgerTotalAlwaysRecomputed(t *testing.T) {
	ledger := NewBalanceLedger()
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// A snapshot with a corrupted total must not leak into the next one.
	current := snapshot(1000, 10, 5)
	current.TotalOutstanding = decimal.NewFromInt(999999)

	next, err := ledger.Apply(current, model.AccrualPosted{
		Amount: decimal.NewFromInt(1),
		Type:   valueobject.AccrualInterest,
	}, "bal-2", now)
	require.NoError(t, err)
	assert.True(t, next.TotalOutstanding.Equal(decimal.NewFromInt(1016)))
}
