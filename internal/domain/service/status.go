package service

import (
	"time"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// Policy carries the externally owned parameters the status evaluation needs.
// Neither value is derived by this core; both are injected from config.
type Policy struct {
	GracePeriodDays        int
	DelinquencyDefaultDays int
}

// StatusEvaluator derives the target servicing status from ledger and
// schedule state. It runs after every ledger or reconciler mutation; the
// case aggregate still validates the resulting transition against the
// legality table.
type StatusEvaluator struct {
	policy Policy
}

// NewStatusEvaluator creates an evaluator with the given policy.
func NewStatusEvaluator(policy Policy) StatusEvaluator {
	return StatusEvaluator{policy: policy}
}

// CaseView is the slice of case state the evaluator reads.
type CaseView struct {
	Status          valueobject.ServicingStatus
	Balance         model.BalanceSnapshot
	Installments    []model.ScheduleInstallment
	HasDisbursement bool
}

// Evaluate returns the status the case should move to and whether a move is
// needed. Administrative states (forbearance, bankruptcy, foreclosure,
// charge-off, transfer, cancellation) are never entered here; they arrive
// via explicit administrative transitions only.
func (e StatusEvaluator) Evaluate(view CaseView, now time.Time) (valueobject.ServicingStatus, bool) {
	status := view.Status

	if status.IsTerminal() {
		return status, false
	}

	// Administrative holds are not overridden by ledger outcomes, with the
	// single exception of full payoff.
	held := status.Equal(valueobject.StatusForbearance) ||
		status.Equal(valueobject.StatusBankruptcy) ||
		status.Equal(valueobject.StatusForeclosure)

	if view.Balance.TotalOutstanding.IsZero() && allSettled(view.Installments) && len(view.Installments) > 0 {
		if status.Equal(valueobject.StatusPaidOff) {
			return status, false
		}
		return valueobject.StatusPaidOff, true
	}

	if held || status.Equal(valueobject.StatusPaidOff) {
		return status, false
	}

	if status.Equal(valueobject.StatusPending) {
		if view.HasDisbursement {
			return valueobject.StatusActive, true
		}
		return status, false
	}

	overdueDays := oldestOverdueDays(view.Installments, now)

	switch {
	case overdueDays == 0:
		// Cured, or a freshly restructured case whose first installment
		// under the new terms settled on time.
		if status.Equal(valueobject.StatusGracePeriod) ||
			status.Equal(valueobject.StatusDelinquent) ||
			status.Equal(valueobject.StatusDefault) {
			return valueobject.StatusActive, true
		}
		if status.Equal(valueobject.StatusRestructured) && anySettled(view.Installments) {
			return valueobject.StatusActive, true
		}
		return status, false

	case overdueDays > e.policy.GracePeriodDays+e.policy.DelinquencyDefaultDays:
		if status.Equal(valueobject.StatusDelinquent) {
			return valueobject.StatusDefault, true
		}
		if status.Equal(valueobject.StatusActive) || status.Equal(valueobject.StatusGracePeriod) ||
			status.Equal(valueobject.StatusRestructured) {
			return valueobject.StatusDelinquent, true
		}
		return status, false

	case overdueDays > e.policy.GracePeriodDays:
		if status.Equal(valueobject.StatusActive) || status.Equal(valueobject.StatusGracePeriod) ||
			status.Equal(valueobject.StatusRestructured) {
			return valueobject.StatusDelinquent, true
		}
		return status, false

	default:
		if status.Equal(valueobject.StatusActive) {
			return valueobject.StatusGracePeriod, true
		}
		return status, false
	}
}

func allSettled(installments []model.ScheduleInstallment) bool {
	for _, inst := range installments {
		if !inst.Superseded && !inst.IsPaid {
			return false
		}
	}
	return true
}

func anySettled(installments []model.ScheduleInstallment) bool {
	for _, inst := range installments {
		if !inst.Superseded && inst.IsPaid {
			return true
		}
	}
	return false
}

func oldestOverdueDays(installments []model.ScheduleInstallment, now time.Time) int {
	days := 0
	for _, inst := range installments {
		if inst.Overdue(now) {
			d := int(now.Sub(inst.DueDate).Hours() / 24)
			if d > days {
				days = d
			}
		}
	}
	return days
}
