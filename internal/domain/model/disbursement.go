package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// DisbursementPlanEntry is one planned tranche of a disbursement plan. An
// entry moves PLANNED -> COMPLETED exactly once, driven by a matching
// disbursement event.
type DisbursementPlanEntry struct {
	PlanEntryID    string
	CaseID         string
	SequenceNumber int // unique per case, contiguous
	PlannedDate    time.Time
	PlannedAmount  decimal.Decimal
	ActualDate     *time.Time
	ActualAmount   decimal.Decimal
	IsCompleted    bool
}

// DisbursementEvent is an append-only record of money moving to the borrower.
// IsFinal = true closes the case's disbursement phase.
type DisbursementEvent struct {
	EventID     string
	CaseID      string
	PlanEntryID string // empty when unplanned
	ReferenceID string // external provider transaction id, unique per case
	// ReversesEventID points at the completed event a FAILED/REVERSED
	// event compensates.
	ReversesEventID string
	Amount          decimal.Decimal
	Date            time.Time
	Method          valueobject.DisbursementMethod
	Status          valueobject.DisbursementStatus
	IsFinal         bool
}
