package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// BalanceSnapshot is one append-only entry in the balance ledger. At most one
// snapshot per case carries IsCurrent = true; flipping the previous current
// snapshot and inserting the new one happen in the same atomic unit.
type BalanceSnapshot struct {
	BalanceID            string
	CaseID               string
	PrincipalOutstanding decimal.Decimal
	InterestOutstanding  decimal.Decimal
	FeesOutstanding      decimal.Decimal
	TotalOutstanding     decimal.Decimal
	BalanceDate          time.Time
	IsCurrent            bool
}

// ZeroSnapshot seeds the ledger for a newly created case.
func ZeroSnapshot(balanceID, caseID string, at time.Time) BalanceSnapshot {
	return BalanceSnapshot{
		BalanceID:            balanceID,
		CaseID:               caseID,
		PrincipalOutstanding: decimal.Zero,
		InterestOutstanding:  decimal.Zero,
		FeesOutstanding:      decimal.Zero,
		TotalOutstanding:     decimal.Zero,
		BalanceDate:          at,
		IsCurrent:            true,
	}
}

// ---------------------------------------------------------------------------
// Balance deltas (tagged variants)
// ---------------------------------------------------------------------------

// BalanceDelta is one of the event types the ledger can apply to the current
// snapshot.
type BalanceDelta interface {
	DeltaType() string
}

// AccrualPosted adds to the interest or fees component depending on the
// accrual type.
type AccrualPosted struct {
	Amount decimal.Decimal
	Type   valueobject.AccrualType
}

func (AccrualPosted) DeltaType() string { return "ACCRUAL_POSTED" }

// PaymentAllocation splits a payment amount across the three outstanding
// components.
type PaymentAllocation struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Fees      decimal.Decimal
}

// Total returns the sum of the allocated components.
func (a PaymentAllocation) Total() decimal.Decimal {
	return a.Principal.Add(a.Interest).Add(a.Fees)
}

// PaymentApplied subtracts the allocation from the outstanding components.
type PaymentApplied struct {
	Allocation PaymentAllocation
}

func (PaymentApplied) DeltaType() string { return "PAYMENT_APPLIED" }

// DisbursementCompleted adds to the principal component.
type DisbursementCompleted struct {
	Amount decimal.Decimal
}

func (DisbursementCompleted) DeltaType() string { return "DISBURSEMENT_COMPLETED" }

// DisbursementReversed compensates a previously completed disbursement.
type DisbursementReversed struct {
	Amount decimal.Decimal
}

func (DisbursementReversed) DeltaType() string { return "DISBURSEMENT_REVERSED" }

// RestructuringApplied resets the principal component to the restructured
// principal. Interest and fees carry over unless explicitly zeroed.
type RestructuringApplied struct {
	NewTerms     valueobject.TermSet
	ZeroInterest bool
	ZeroFees     bool
}

func (RestructuringApplied) DeltaType() string { return "RESTRUCTURING_APPLIED" }
