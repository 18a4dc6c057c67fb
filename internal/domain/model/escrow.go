package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EscrowAccount holds funds collected alongside installments for taxes,
// insurance and similar obligations. The monthly payment projection comes
// from an external collaborator; this core stores it and validates date
// monotonicity.
type EscrowAccount struct {
	EscrowID             string
	CaseID               string
	Type                 string
	MonthlyPaymentAmount decimal.Decimal
	CurrentBalance       decimal.Decimal
	TargetBalance        decimal.Decimal
	NextDisbursementDate *time.Time
	LastAnalysisDate     *time.Time
	NextAnalysisDate     *time.Time
	IsActive             bool
}

// Deposit increases the escrow balance.
func (e EscrowAccount) Deposit(amount decimal.Decimal) (EscrowAccount, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return e, errors.New("escrow deposit must be positive")
	}
	next := e
	next.CurrentBalance = e.CurrentBalance.Add(amount)
	return next, nil
}

// Disburse decreases the escrow balance. The balance never goes negative.
func (e EscrowAccount) Disburse(amount decimal.Decimal) (EscrowAccount, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return e, errors.New("escrow disbursement must be positive")
	}
	if amount.GreaterThan(e.CurrentBalance) {
		return e, fmt.Errorf("escrow disbursement %s exceeds balance %s", amount, e.CurrentBalance)
	}
	next := e
	next.CurrentBalance = e.CurrentBalance.Sub(amount)
	return next, nil
}

// RecordAnalysis stores an externally computed monthly payment amount and
// advances the analysis dates. Requires analysisDate < nextAnalysisDate.
func (e EscrowAccount) RecordAnalysis(
	monthlyPayment decimal.Decimal,
	analysisDate, nextAnalysisDate time.Time,
) (EscrowAccount, error) {
	if monthlyPayment.IsNegative() {
		return e, errors.New("escrow monthly payment must not be negative")
	}
	if !analysisDate.Before(nextAnalysisDate) {
		return e, fmt.Errorf("analysis date %s must precede next analysis date %s",
			analysisDate.Format(time.DateOnly), nextAnalysisDate.Format(time.DateOnly))
	}
	next := e
	next.MonthlyPaymentAmount = monthlyPayment
	next.LastAnalysisDate = &analysisDate
	next.NextAnalysisDate = &nextAnalysisDate
	return next, nil
}
