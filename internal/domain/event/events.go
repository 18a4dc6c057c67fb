package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// CaseCreated is raised when a servicing case is opened at origination.
type CaseCreated struct {
	events.BaseEvent
	ContractID      string          `json:"contract_id"`
	ProductID       string          `json:"product_id"`
	Principal       decimal.Decimal `json:"principal"`
	OriginationDate time.Time       `json:"origination_date"`
}

func NewCaseCreated(
	caseID, tenantID, contractID, productID string,
	principal decimal.Decimal, originationDate time.Time,
) CaseCreated {
	return CaseCreated{
		BaseEvent:       events.NewBaseEvent("servicing.case.created", caseID, "LoanServicingCase", tenantID),
		ContractID:      contractID,
		ProductID:       productID,
		Principal:       principal,
		OriginationDate: originationDate,
	}
}

// CaseStatusChanged is raised on every servicing status transition.
type CaseStatusChanged struct {
	events.BaseEvent
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

func NewCaseStatusChanged(caseID, tenantID, from, to string) CaseStatusChanged {
	return CaseStatusChanged{
		BaseEvent:  events.NewBaseEvent("servicing.case.status_changed", caseID, "LoanServicingCase", tenantID),
		FromStatus: from,
		ToStatus:   to,
	}
}

// PaymentApplied is raised when a payment settles against an installment.
type PaymentApplied struct {
	events.BaseEvent
	InstallmentID      string          `json:"installment_id"`
	TransactionID      string          `json:"transaction_id"`
	Amount             decimal.Decimal `json:"amount"`
	InstallmentSettled bool            `json:"installment_settled"`
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
}

func NewPaymentApplied(
	caseID, tenantID, installmentID, transactionID string,
	amount decimal.Decimal, settled bool, totalOutstanding decimal.Decimal,
) PaymentApplied {
	return PaymentApplied{
		BaseEvent:          events.NewBaseEvent("servicing.payment.applied", caseID, "LoanServicingCase", tenantID),
		InstallmentID:      installmentID,
		TransactionID:      transactionID,
		Amount:             amount,
		InstallmentSettled: settled,
		TotalOutstanding:   totalOutstanding,
	}
}

// DisbursementRecorded is raised when a disbursement event is appended.
type DisbursementRecorded struct {
	events.BaseEvent
	DisbursementEventID string          `json:"disbursement_event_id"`
	PlanEntryID         string          `json:"plan_entry_id,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	Status              string          `json:"status"`
	IsFinal             bool            `json:"is_final"`
}

func NewDisbursementRecorded(
	caseID, tenantID, eventID, planEntryID string,
	amount decimal.Decimal, status string, isFinal bool,
) DisbursementRecorded {
	return DisbursementRecorded{
		BaseEvent:           events.NewBaseEvent("servicing.disbursement.recorded", caseID, "LoanServicingCase", tenantID),
		DisbursementEventID: eventID,
		PlanEntryID:         planEntryID,
		Amount:              amount,
		Status:              status,
		IsFinal:             isFinal,
	}
}

// AccrualPosted is raised when interest or fees accrue onto the balance.
type AccrualPosted struct {
	events.BaseEvent
	AccrualType      string          `json:"accrual_type"`
	Amount           decimal.Decimal `json:"amount"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

func NewAccrualPosted(
	caseID, tenantID, accrualType string,
	amount, totalOutstanding decimal.Decimal,
) AccrualPosted {
	return AccrualPosted{
		BaseEvent:        events.NewBaseEvent("servicing.accrual.posted", caseID, "LoanServicingCase", tenantID),
		AccrualType:      accrualType,
		Amount:           amount,
		TotalOutstanding: totalOutstanding,
	}
}

// RestructuringApplied is raised when a term swap takes effect.
type RestructuringApplied struct {
	events.BaseEvent
	RestructuringID string          `json:"restructuring_id"`
	NewPrincipal    decimal.Decimal `json:"new_principal"`
	EffectiveDate   time.Time       `json:"effective_date"`
}

func NewRestructuringApplied(
	caseID, tenantID, restructuringID string,
	newPrincipal decimal.Decimal, effectiveDate time.Time,
) RestructuringApplied {
	return RestructuringApplied{
		BaseEvent:       events.NewBaseEvent("servicing.restructuring.applied", caseID, "LoanServicingCase", tenantID),
		RestructuringID: restructuringID,
		NewPrincipal:    newPrincipal,
		EffectiveDate:   effectiveDate,
	}
}

// EscrowAnalyzed is raised when an escrow analysis is recorded.
type EscrowAnalyzed struct {
	events.BaseEvent
	EscrowID       string          `json:"escrow_id"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

func NewEscrowAnalyzed(caseID, tenantID, escrowID string, monthlyPayment decimal.Decimal) EscrowAnalyzed {
	return EscrowAnalyzed{
		BaseEvent:      events.NewBaseEvent("servicing.escrow.analyzed", caseID, "LoanServicingCase", tenantID),
		EscrowID:       escrowID,
		MonthlyPayment: monthlyPayment,
	}
}
