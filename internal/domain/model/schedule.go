package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleInstallment is one period of a repayment schedule. Structural
// fields (due date, amounts due) are immutable once generated; only the
// reconciler touches IsPaid, PaidDate and PaidAmount.
type ScheduleInstallment struct {
	InstallmentID     string
	CaseID            string
	ScheduleVersion   int
	InstallmentNumber int // unique, 1-based, contiguous per active schedule
	DueDate           time.Time
	PrincipalDue      decimal.Decimal
	InterestDue       decimal.Decimal
	FeeDue            decimal.Decimal
	TotalDue          decimal.Decimal
	IsPaid            bool
	PaidDate          *time.Time
	PaidAmount        decimal.Decimal
	Superseded        bool
}

// RemainingDue returns the unpaid portion of the installment.
func (i ScheduleInstallment) RemainingDue() decimal.Decimal {
	return i.TotalDue.Sub(i.PaidAmount)
}

// Overdue reports whether the installment is unpaid past its due date.
func (i ScheduleInstallment) Overdue(now time.Time) bool {
	return !i.IsPaid && !i.Superseded && i.DueDate.Before(now)
}

// PaymentRecord is an append-only record of cash applied against an
// installment. Multiple records may target one installment; their amounts
// never exceed the installment's total due.
type PaymentRecord struct {
	RecordID      string
	CaseID        string
	InstallmentID string
	// TransactionID is unique per record. When an unallocated payment is
	// split across installments each slice carries a derived ID;
	// SourceTransactionID holds the caller's original ID in every record so
	// a replay of the same external transaction is detectable per case.
	TransactionID       string
	SourceTransactionID string
	Amount              decimal.Decimal
	Date                time.Time
	IsPartial           bool
}
