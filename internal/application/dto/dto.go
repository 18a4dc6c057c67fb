package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// PlannedDisbursement is one tranche of the disbursement plan supplied at
// case creation.
type PlannedDisbursement struct {
	PlannedDate   time.Time
	PlannedAmount decimal.Decimal
}

type CreateCaseRequest struct {
	TenantID        string
	ContractID      string
	ProductID       string
	ApplicationID   string
	Terms           valueobject.TermSet
	OriginationDate time.Time
	Plan            []PlannedDisbursement
}

type RecordDisbursementRequest struct {
	TenantID        string
	CaseID          string
	PlanEntryID     string
	ReferenceID     string
	ReversesEventID string
	Amount          decimal.Decimal
	Date            time.Time
	Method          valueobject.DisbursementMethod
	Status          valueobject.DisbursementStatus
	IsFinal         bool
}

// ApplyPaymentRequest targets one installment when InstallmentID is set, or
// requests FIFO allocation across the oldest unpaid installments when empty.
type ApplyPaymentRequest struct {
	TenantID      string
	CaseID        string
	InstallmentID string
	TransactionID string
	Amount        decimal.Decimal
	Date          time.Time
}

type PostAccrualRequest struct {
	TenantID string
	CaseID   string
	Type     valueobject.AccrualType
	Amount   decimal.Decimal
	Date     time.Time
}

type ApplyRestructuringRequest struct {
	TenantID     string
	CaseID       string
	Date         time.Time
	NewTerms     valueobject.TermSet
	ApprovedBy   string
	ZeroInterest bool
	ZeroFees     bool
}

type TransitionCaseRequest struct {
	TenantID string
	CaseID   string
	Target   valueobject.ServicingStatus
}

type EscrowAnalysisRequest struct {
	TenantID         string
	CaseID           string
	EscrowID         string
	MonthlyPayment   decimal.Decimal
	AnalysisDate     time.Time
	NextAnalysisDate time.Time
}

type EscrowMovementRequest struct {
	TenantID string
	CaseID   string
	EscrowID string
	Amount   decimal.Decimal
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

type CaseResponse struct {
	CaseID          string
	TenantID        string
	ContractID      string
	ProductID       string
	ApplicationID   string
	Status          string
	Principal       decimal.Decimal
	AnnualRate      decimal.Decimal
	TermLength      int
	Method          string
	ScheduleVersion int
	OriginationDate time.Time
	MaturityDate    time.Time
	Schedule        []InstallmentResponse
}

type InstallmentResponse struct {
	InstallmentID     string
	InstallmentNumber int
	DueDate           time.Time
	PrincipalDue      decimal.Decimal
	InterestDue       decimal.Decimal
	FeeDue            decimal.Decimal
	TotalDue          decimal.Decimal
	IsPaid            bool
	PaidDate          *time.Time
	PaidAmount        decimal.Decimal
}

type BalanceResponse struct {
	BalanceID            string
	CaseID               string
	PrincipalOutstanding decimal.Decimal
	InterestOutstanding  decimal.Decimal
	FeesOutstanding      decimal.Decimal
	TotalOutstanding     decimal.Decimal
	BalanceDate          time.Time
}

type PaymentResponse struct {
	CaseID     string
	Status     string
	Records    []PaymentRecordResponse
	Settled    []string // installment IDs fully settled by this payment
	NewBalance BalanceResponse
}

type PaymentRecordResponse struct {
	RecordID      string
	InstallmentID string
	TransactionID string
	Amount        decimal.Decimal
	IsPartial     bool
}

type DisbursementResponse struct {
	EventID    string
	CaseID     string
	Status     string
	CaseStatus string
	NewBalance *BalanceResponse // nil when the event did not touch the ledger
}

type RestructuringResponse struct {
	RestructuringID string
	CaseID          string
	CaseStatus      string
	ScheduleVersion int
	NewBalance      BalanceResponse
	Schedule        []InstallmentResponse
}

type EscrowResponse struct {
	EscrowID             string
	CaseID               string
	MonthlyPaymentAmount decimal.Decimal
	CurrentBalance       decimal.Decimal
	TargetBalance        decimal.Decimal
	LastAnalysisDate     *time.Time
	NextAnalysisDate     *time.Time
	IsActive             bool
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

// FromInstallment maps a schedule installment to its response form.
func FromInstallment(inst model.ScheduleInstallment) InstallmentResponse {
	return InstallmentResponse{
		InstallmentID:     inst.InstallmentID,
		InstallmentNumber: inst.InstallmentNumber,
		DueDate:           inst.DueDate,
		PrincipalDue:      inst.PrincipalDue,
		InterestDue:       inst.InterestDue,
		FeeDue:            inst.FeeDue,
		TotalDue:          inst.TotalDue,
		IsPaid:            inst.IsPaid,
		PaidDate:          inst.PaidDate,
		PaidAmount:        inst.PaidAmount,
	}
}

// FromSnapshot maps a balance snapshot to its response form.
func FromSnapshot(s model.BalanceSnapshot) BalanceResponse {
	return BalanceResponse{
		BalanceID:            s.BalanceID,
		CaseID:               s.CaseID,
		PrincipalOutstanding: s.PrincipalOutstanding,
		InterestOutstanding:  s.InterestOutstanding,
		FeesOutstanding:      s.FeesOutstanding,
		TotalOutstanding:     s.TotalOutstanding,
		BalanceDate:          s.BalanceDate,
	}
}

// FromCase maps a servicing case and its schedule to the response form.
func FromCase(c model.LoanServicingCase, schedule []model.ScheduleInstallment) CaseResponse {
	entries := make([]InstallmentResponse, len(schedule))
	for i, inst := range schedule {
		entries[i] = FromInstallment(inst)
	}
	terms := c.CurrentTerms()
	return CaseResponse{
		CaseID:          c.ID(),
		TenantID:        c.TenantID(),
		ContractID:      c.ContractID(),
		ProductID:       c.ProductID(),
		ApplicationID:   c.ApplicationID(),
		Status:          c.Status().String(),
		Principal:       terms.Principal,
		AnnualRate:      terms.AnnualRate,
		TermLength:      terms.TermLength,
		Method:          terms.Method.String(),
		ScheduleVersion: c.ScheduleVersion(),
		OriginationDate: c.OriginationDate(),
		MaturityDate:    c.MaturityDate(),
		Schedule:        entries,
	}
}

// FromEscrow maps an escrow account to its response form.
func FromEscrow(e model.EscrowAccount) EscrowResponse {
	return EscrowResponse{
		EscrowID:             e.EscrowID,
		CaseID:               e.CaseID,
		MonthlyPaymentAmount: e.MonthlyPaymentAmount,
		CurrentBalance:       e.CurrentBalance,
		TargetBalance:        e.TargetBalance,
		LastAnalysisDate:     e.LastAnalysisDate,
		NextAnalysisDate:     e.NextAnalysisDate,
		IsActive:             e.IsActive,
	}
}
