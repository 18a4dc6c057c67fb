package port

import (
	"context"
	"time"

	"github.com/lumenbank/servicing/internal/domain/event"
	"github.com/lumenbank/servicing/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// CaseRepository persists and retrieves servicing cases.
type CaseRepository interface {
	Save(ctx context.Context, c model.LoanServicingCase) error
	FindByID(ctx context.Context, tenantID, id string) (model.LoanServicingCase, error)
}

// BalanceRepository owns the append-only snapshot ledger. Append must flip
// the previous current snapshot to historical and insert the new one within
// the ambient atomic unit.
type BalanceRepository interface {
	Current(ctx context.Context, caseID string) (model.BalanceSnapshot, error)
	Append(ctx context.Context, snapshot model.BalanceSnapshot) error
	History(ctx context.Context, caseID string) ([]model.BalanceSnapshot, error)
}

// ScheduleRepository persists schedule installments and their versions.
type ScheduleRepository interface {
	ActiveInstallments(ctx context.Context, caseID string) ([]model.ScheduleInstallment, error)
	InstallmentByID(ctx context.Context, installmentID string) (model.ScheduleInstallment, error)
	SaveBatch(ctx context.Context, installments []model.ScheduleInstallment) error
	Update(ctx context.Context, installment model.ScheduleInstallment) error
	// SupersedeFrom marks installments of the case due on or after the
	// given date as superseded, closing the active schedule version.
	SupersedeFrom(ctx context.Context, caseID string, from time.Time) error
}

// PaymentRepository appends and reads payment records.
type PaymentRepository interface {
	Append(ctx context.Context, record model.PaymentRecord) error
	ByInstallment(ctx context.Context, installmentID string) ([]model.PaymentRecord, error)
	// ExistsTransaction reports whether any record of the case carries the
	// given source transaction ID. Backs case-level payment idempotency.
	ExistsTransaction(ctx context.Context, caseID, sourceTransactionID string) (bool, error)
}

// DisbursementRepository persists plan entries and events.
type DisbursementRepository interface {
	PlanEntries(ctx context.Context, caseID string) ([]model.DisbursementPlanEntry, error)
	PlanEntryByID(ctx context.Context, planEntryID string) (model.DisbursementPlanEntry, error)
	SavePlanEntry(ctx context.Context, entry model.DisbursementPlanEntry) error
	Events(ctx context.Context, caseID string) ([]model.DisbursementEvent, error)
	AppendEvent(ctx context.Context, evt model.DisbursementEvent) error
}

// RestructuringRepository appends and reads restructuring records.
type RestructuringRepository interface {
	Append(ctx context.Context, r model.Restructuring) error
	ByCase(ctx context.Context, caseID string) ([]model.Restructuring, error)
}

// EscrowRepository persists escrow accounts.
type EscrowRepository interface {
	FindByID(ctx context.Context, escrowID string) (model.EscrowAccount, error)
	FindByCase(ctx context.Context, caseID string) ([]model.EscrowAccount, error)
	Save(ctx context.Context, account model.EscrowAccount) error
}

// ---------------------------------------------------------------------------
// Transaction boundary
// ---------------------------------------------------------------------------

// Atomic runs fn inside one storage transaction. Balance, schedule and state
// mutations for a case must share one invocation so that a failure rolls all
// three back together.
type Atomic interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Event publisher and cache ports
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers. Dispatch is
// fire-and-forget: it runs after the atomic unit commits and publish
// failures never roll the mutation back.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// BalanceCache is a read-through cache for current balance snapshots.
type BalanceCache interface {
	Get(ctx context.Context, caseID string) (*model.BalanceSnapshot, error)
	Set(ctx context.Context, snapshot model.BalanceSnapshot) error
	Invalidate(ctx context.Context, caseID string) error
}
