package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
	"github.com/lumenbank/servicing/pkg/money"
)

// ScheduleReconciler applies payment records against schedule installments
// and keeps the schedule consistent with the balance ledger.
type ScheduleReconciler struct{}

// NewScheduleReconciler creates the reconciler.
func NewScheduleReconciler() ScheduleReconciler {
	return ScheduleReconciler{}
}

// ReconciliationResult carries the updated installment, the new payment
// record, and the ledger delta derived from the payment.
type ReconciliationResult struct {
	Installment model.ScheduleInstallment
	Record      model.PaymentRecord
	Delta       model.PaymentApplied
}

// ApplyPayment validates amount against the installment and its prior
// records, then produces the updated installment, a new append-only record
// and the matching ledger delta. Replaying a transaction ID already present
// among the prior records fails with ErrDuplicateEvent.
func (ScheduleReconciler) ApplyPayment(
	inst model.ScheduleInstallment,
	prior []model.PaymentRecord,
	transactionID string,
	amount decimal.Decimal,
	date time.Time,
) (ReconciliationResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ReconciliationResult{}, fmt.Errorf("payment amount must be positive, got %s", amount)
	}
	for _, r := range prior {
		if r.TransactionID == transactionID {
			return ReconciliationResult{}, fmt.Errorf("%w: transaction %s already applied to installment %s",
				valueobject.ErrDuplicateEvent, transactionID, inst.InstallmentID)
		}
	}
	if inst.IsPaid {
		return ReconciliationResult{}, fmt.Errorf("%w: installment %d",
			valueobject.ErrInstallmentAlreadySettled, inst.InstallmentNumber)
	}

	paidSoFar := decimal.Zero
	for _, r := range prior {
		paidSoFar = paidSoFar.Add(r.Amount)
	}
	remaining := inst.TotalDue.Sub(paidSoFar)
	if amount.GreaterThan(remaining) {
		return ReconciliationResult{}, fmt.Errorf("%w: payment %s against remaining %s on installment %d",
			valueobject.ErrAmountExceedsRemaining, amount, remaining, inst.InstallmentNumber)
	}

	paidAmount := paidSoFar.Add(amount)
	settled := paidAmount.Equal(inst.TotalDue)

	next := inst
	next.PaidAmount = paidAmount
	next.IsPaid = settled
	if settled {
		d := date
		next.PaidDate = &d
	}

	record := model.PaymentRecord{
		RecordID:            uuid.New().String(),
		CaseID:              inst.CaseID,
		InstallmentID:       inst.InstallmentID,
		TransactionID:       transactionID,
		SourceTransactionID: transactionID,
		Amount:              amount,
		Date:                date,
		IsPartial:           !settled,
	}

	return ReconciliationResult{
		Installment: next,
		Record:      record,
		Delta:       model.PaymentApplied{Allocation: allocationFor(inst, paidSoFar, amount)},
	}, nil
}

// allocationFor splits a payment across the installment's fee, interest and
// principal components using the standard servicing waterfall: fees first,
// then interest, then principal. Prior partial payments consumed earlier
// waterfall stages.
func allocationFor(inst model.ScheduleInstallment, paidSoFar, amount decimal.Decimal) model.PaymentAllocation {
	feeLeft := money.ClampNonNegative(inst.FeeDue.Sub(paidSoFar))
	interestConsumed := money.ClampNonNegative(paidSoFar.Sub(inst.FeeDue))
	interestLeft := money.ClampNonNegative(inst.InterestDue.Sub(interestConsumed))

	var alloc model.PaymentAllocation

	take := decimal.Min(amount, feeLeft)
	alloc.Fees = take
	amount = amount.Sub(take)

	take = decimal.Min(amount, interestLeft)
	alloc.Interest = take
	amount = amount.Sub(take)

	alloc.Principal = amount
	return alloc
}

// ProposedAllocation is one slice of a FIFO pre-allocation.
type ProposedAllocation struct {
	InstallmentID string
	Amount        decimal.Decimal
}

// AllocatePayment splits an unallocated cash amount across the oldest unpaid
// installments first, ordered by installment number. This FIFO ordering is a
// hard requirement: it determines delinquency aging. Cash left over after
// every installment is covered fails with ErrOverpaymentRejected; the caller
// must route the excess as a credit balance.
func (ScheduleReconciler) AllocatePayment(
	installments []model.ScheduleInstallment,
	amount decimal.Decimal,
) ([]ProposedAllocation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("payment amount must be positive, got %s", amount)
	}

	open := make([]model.ScheduleInstallment, 0, len(installments))
	for _, inst := range installments {
		if !inst.IsPaid && !inst.Superseded {
			open = append(open, inst)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].InstallmentNumber < open[j].InstallmentNumber
	})

	var allocations []ProposedAllocation
	for _, inst := range open {
		if amount.IsZero() {
			break
		}
		take := decimal.Min(amount, inst.RemainingDue())
		if take.IsPositive() {
			allocations = append(allocations, ProposedAllocation{
				InstallmentID: inst.InstallmentID,
				Amount:        take,
			})
			amount = amount.Sub(take)
		}
	}

	if amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s left after covering all open installments",
			valueobject.ErrOverpaymentRejected, amount)
	}
	return allocations, nil
}
