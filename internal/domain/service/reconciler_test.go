package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

func testInstallment(number int, principal, interest, fee float64) model.ScheduleInstallment {
	p := decimal.NewFromFloat(principal)
	i := decimal.NewFromFloat(interest)
	f := decimal.NewFromFloat(fee)
	return model.ScheduleInstallment{
		InstallmentID:     fmt.Sprintf("inst-%d", number),
		CaseID:            "case-1",
		ScheduleVersion:   1,
		InstallmentNumber: number,
		DueDate:           time.Date(2026, time.Month(number), 15, 0, 0, 0, 0, time.UTC),
		PrincipalDue:      p,
		InterestDue:       i,
		FeeDue:            f,
		TotalDue:          p.Add(i).Add(f),
		PaidAmount:        decimal.Zero,
	}
}

func TestApplyPaymentSettlesInFull(t *testing.T) {
	reconciler := NewScheduleReconciler()
	inst := testInstallment(1, 900, 90, 10)
	date := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)

	result, err := reconciler.ApplyPayment(inst, nil, "txn-1", decimal.NewFromInt(1000), date)
	require.NoError(t, err)

	assert.True(t, result.Installment.IsPaid)
	require.NotNil(t, result.Installment.PaidDate)
	assert.Equal(t, date, *result.Installment.PaidDate)
	assert.True(t, result.Installment.PaidAmount.Equal(decimal.NewFromInt(1000)))

	assert.Equal(t, "txn-1", result.Record.TransactionID)
	assert.False(t, result.Record.IsPartial)

	// Waterfall: fees, then interest, then principal.
	assert.True(t, result.Delta.Allocation.Fees.Equal(decimal.NewFromInt(10)))
	assert.True(t, result.Delta.Allocation.Interest.Equal(decimal.NewFromInt(90)))
	assert.True(t, result.Delta.Allocation.Principal.Equal(decimal.NewFromInt(900)))
}

func TestApplyPaymentPartialSequence(t *testing.T) {
	reconciler := NewScheduleReconciler()
	inst := testInstallment(1, 900, 90, 10)
	date := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)

	first, err := reconciler.ApplyPayment(inst, nil, "txn-1", decimal.NewFromInt(60), date)
	require.NoError(t, err)
	assert.False(t, first.Installment.IsPaid)
	assert.Nil(t, first.Installment.PaidDate)
	assert.True(t, first.Record.IsPartial)

	// 60 covers the 10 fee and 50 of the 90 interest.
	assert.True(t, first.Delta.Allocation.Fees.Equal(decimal.NewFromInt(10)))
	assert.True(t, first.Delta.Allocation.Interest.Equal(decimal.NewFromInt(50)))
	assert.True(t, first.Delta.Allocation.Principal.IsZero())

	// The second payment resumes the waterfall where the first stopped.
	second, err := reconciler.ApplyPayment(first.Installment, []model.PaymentRecord{first.Record}, "txn-2", decimal.NewFromInt(940), date)
	require.NoError(t, err)
	assert.True(t, second.Installment.IsPaid)
	assert.True(t, second.Delta.Allocation.Fees.IsZero())
	assert.True(t, second.Delta.Allocation.Interest.Equal(decimal.NewFromInt(40)))
	assert.True(t, second.Delta.Allocation.Principal.Equal(decimal.NewFromInt(900)))
}

func TestApplyPaymentRejectsDuplicateTransaction(t *testing.T) {
	reconciler := NewScheduleReconciler()
	inst := testInstallment(1, 900, 90, 10)
	date := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)

	first, err := reconciler.ApplyPayment(inst, nil, "txn-1", decimal.NewFromInt(60), date)
	require.NoError(t, err)

	_, err = reconciler.ApplyPayment(first.Installment, []model.PaymentRecord{first.Record}, "txn-1", decimal.NewFromInt(60), date)
	assert.ErrorIs(t, err, valueobject.ErrDuplicateEvent)
}

func TestApplyPaymentRejectsSettledInstallment(t *testing.T) {
	reconciler := NewScheduleReconciler()
	inst := testInstallment(1, 900, 90, 10)
	inst.IsPaid = true
	inst.PaidAmount = inst.TotalDue

	_, err := reconciler.ApplyPayment(inst, nil, "txn-9", decimal.NewFromInt(10), time.Now())
	assert.ErrorIs(t, err, valueobject.ErrInstallmentAlreadySettled)
}

func TestApplyPaymentRejectsExcessAmount(t *testing.T) {
	reconciler := NewScheduleReconciler()
	inst := testInstallment(1, 900, 90, 10)

	_, err := reconciler.ApplyPayment(inst, nil, "txn-1", decimal.NewFromInt(1001), time.Now())
	assert.ErrorIs(t, err, valueobject.ErrAmountExceedsRemaining)

	_, err = reconciler.ApplyPayment(inst, nil, "txn-1", decimal.Zero, time.Now())
	assert.Error(t, err)
}

func TestAllocatePaymentFIFO(t *testing.T) {
	reconciler := NewScheduleReconciler()

	second := testInstallment(2, 900, 90, 10)
	first := testInstallment(1, 900, 90, 10)
	third := testInstallment(3, 900, 90, 10)

	// 1500 covers the oldest installment in full and part of the next,
	// regardless of input ordering.
	allocations, err := reconciler.AllocatePayment(
		[]model.ScheduleInstallment{second, first, third},
		decimal.NewFromInt(1500),
	)
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.Equal(t, first.InstallmentID, allocations[0].InstallmentID)
	assert.True(t, allocations[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, second.InstallmentID, allocations[1].InstallmentID)
	assert.True(t, allocations[1].Amount.Equal(decimal.NewFromInt(500)))
}

func TestAllocatePaymentSkipsPaidAndSuperseded(t *testing.T) {
	reconciler := NewScheduleReconciler()

	first := testInstallment(1, 900, 90, 10)
	first.IsPaid = true
	first.PaidAmount = first.TotalDue
	second := testInstallment(2, 900, 90, 10)
	second.Superseded = true
	third := testInstallment(3, 900, 90, 10)

	allocations, err := reconciler.AllocatePayment(
		[]model.ScheduleInstallment{first, second, third},
		decimal.NewFromInt(400),
	)
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, third.InstallmentID, allocations[0].InstallmentID)
	assert.True(t, allocations[0].Amount.Equal(decimal.NewFromInt(400)))
}

func TestAllocatePaymentRejectsExcessCash(t *testing.T) {
	reconciler := NewScheduleReconciler()
	only := testInstallment(1, 900, 90, 10)

	_, err := reconciler.AllocatePayment([]model.ScheduleInstallment{only}, decimal.NewFromInt(1200))
	assert.ErrorIs(t, err, valueobject.ErrOverpaymentRejected)

	_, err = reconciler.AllocatePayment([]model.ScheduleInstallment{only}, decimal.Zero)
	assert.Error(t, err)
}

func TestAllocatePaymentHonoursPriorPartials(t *testing.T) {
	reconciler := NewScheduleReconciler()

	first := testInstallment(1, 900, 90, 10)
	first.PaidAmount = decimal.NewFromInt(600)

	allocations, err := reconciler.AllocatePayment([]model.ScheduleInstallment{first}, decimal.NewFromInt(400))
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.True(t, allocations[0].Amount.Equal(decimal.NewFromInt(400)))
}
