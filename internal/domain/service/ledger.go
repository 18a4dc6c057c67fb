package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// BalanceLedger derives the next balance snapshot from the current one and a
// delta. The arithmetic is pure; persisting the snapshot and flipping the
// previous current flag belong to the repository's atomic unit.
type BalanceLedger struct{}

// NewBalanceLedger creates the ledger.
func NewBalanceLedger() BalanceLedger {
	return BalanceLedger{}
}

// Apply computes the snapshot that results from applying delta to current.
// The emitted TotalOutstanding is always recomputed as the sum of the three
// components, never trusted from input.
func (BalanceLedger) Apply(
	current model.BalanceSnapshot,
	delta model.BalanceDelta,
	balanceID string,
	at time.Time,
) (model.BalanceSnapshot, error) {
	principal := current.PrincipalOutstanding
	interest := current.InterestOutstanding
	fees := current.FeesOutstanding

	switch d := delta.(type) {
	case model.AccrualPosted:
		if d.Amount.LessThanOrEqual(decimal.Zero) {
			return model.BalanceSnapshot{}, fmt.Errorf("accrual amount must be positive, got %s", d.Amount)
		}
		if d.Type.Equal(valueobject.AccrualFee) {
			fees = fees.Add(d.Amount)
		} else {
			interest = interest.Add(d.Amount)
		}

	case model.PaymentApplied:
		principal = principal.Sub(d.Allocation.Principal)
		interest = interest.Sub(d.Allocation.Interest)
		fees = fees.Sub(d.Allocation.Fees)
		if principal.IsNegative() || interest.IsNegative() || fees.IsNegative() {
			return model.BalanceSnapshot{}, fmt.Errorf(
				"%w: allocation %s/%s/%s against %s/%s/%s",
				valueobject.ErrOverpaymentRejected,
				d.Allocation.Principal, d.Allocation.Interest, d.Allocation.Fees,
				current.PrincipalOutstanding, current.InterestOutstanding, current.FeesOutstanding,
			)
		}

	case model.DisbursementCompleted:
		if d.Amount.LessThanOrEqual(decimal.Zero) {
			return model.BalanceSnapshot{}, fmt.Errorf("disbursement amount must be positive, got %s", d.Amount)
		}
		principal = principal.Add(d.Amount)

	case model.DisbursementReversed:
		principal = principal.Sub(d.Amount)
		if principal.IsNegative() {
			return model.BalanceSnapshot{}, fmt.Errorf(
				"%w: reversal %s exceeds principal outstanding %s",
				valueobject.ErrOverpaymentRejected, d.Amount, current.PrincipalOutstanding,
			)
		}

	case model.RestructuringApplied:
		principal = d.NewTerms.Principal
		if d.ZeroInterest {
			interest = decimal.Zero
		}
		if d.ZeroFees {
			fees = decimal.Zero
		}

	default:
		return model.BalanceSnapshot{}, fmt.Errorf("unknown balance delta type %T", delta)
	}

	return model.BalanceSnapshot{
		BalanceID:            balanceID,
		CaseID:               current.CaseID,
		PrincipalOutstanding: principal,
		InterestOutstanding:  interest,
		FeesOutstanding:      fees,
		TotalOutstanding:     principal.Add(interest).Add(fees),
		BalanceDate:          at,
		IsCurrent:            true,
	}, nil
}
