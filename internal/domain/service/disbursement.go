package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// DisbursementTracker validates disbursement events against the plan and the
// case's disbursement phase, and derives the ledger delta each event implies.
type DisbursementTracker struct{}

// NewDisbursementTracker creates the tracker.
func NewDisbursementTracker() DisbursementTracker {
	return DisbursementTracker{}
}

// DisbursementRequest describes an incoming disbursement event.
type DisbursementRequest struct {
	CaseID          string
	PlanEntryID     string // empty for unplanned disbursements
	ReferenceID     string // external provider transaction id
	ReversesEventID string // set on FAILED/REVERSED compensations
	Amount          decimal.Decimal
	Date            time.Time
	Method          valueobject.DisbursementMethod
	Status          valueobject.DisbursementStatus
	IsFinal         bool
}

// DisbursementOutcome carries the appended event, the updated plan entry
// (nil when the event targets no entry or leaves it unchanged), and the
// ledger delta (nil for PENDING/PROCESSING events, which never touch the
// ledger).
type DisbursementOutcome struct {
	Event     model.DisbursementEvent
	PlanEntry *model.DisbursementPlanEntry
	Delta     model.BalanceDelta
}

// Record validates the request against prior events and the targeted plan
// entry. The disbursement phase is closed once any prior event carries
// IsFinal; replayed reference IDs fail with ErrDuplicateEvent.
func (DisbursementTracker) Record(
	req DisbursementRequest,
	entry *model.DisbursementPlanEntry,
	prior []model.DisbursementEvent,
) (DisbursementOutcome, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return DisbursementOutcome{}, fmt.Errorf("disbursement amount must be positive, got %s", req.Amount)
	}

	var reversed *model.DisbursementEvent
	for i := range prior {
		p := &prior[i]
		if p.IsFinal {
			return DisbursementOutcome{}, fmt.Errorf("%w: case %s",
				valueobject.ErrDisbursementPhaseClosed, req.CaseID)
		}
		if req.ReferenceID != "" && p.ReferenceID == req.ReferenceID {
			return DisbursementOutcome{}, fmt.Errorf("%w: reference %s already recorded for case %s",
				valueobject.ErrDuplicateEvent, req.ReferenceID, req.CaseID)
		}
		if req.ReversesEventID != "" && p.EventID == req.ReversesEventID {
			reversed = p
		}
	}

	evt := model.DisbursementEvent{
		EventID:         uuid.New().String(),
		CaseID:          req.CaseID,
		PlanEntryID:     req.PlanEntryID,
		ReferenceID:     req.ReferenceID,
		ReversesEventID: req.ReversesEventID,
		Amount:          req.Amount,
		Date:            req.Date,
		Method:          req.Method,
		Status:          req.Status,
		IsFinal:         req.IsFinal,
	}

	outcome := DisbursementOutcome{Event: evt}

	switch {
	case req.Status.Equal(valueobject.DisbursementCompleted):
		if entry != nil {
			updated, err := fulfilPlanEntry(*entry, req.Amount, req.Date)
			if err != nil {
				return DisbursementOutcome{}, err
			}
			outcome.PlanEntry = &updated
		}
		outcome.Delta = model.DisbursementCompleted{Amount: req.Amount}

	case req.Status.Equal(valueobject.DisbursementFailed),
		req.Status.Equal(valueobject.DisbursementReversed):
		// Only compensate when the referenced event had completed.
		if reversed != nil && reversed.Status.Equal(valueobject.DisbursementCompleted) {
			outcome.Delta = model.DisbursementReversed{Amount: reversed.Amount}
		}
	}

	return outcome, nil
}

// fulfilPlanEntry completes the entry only on an exact amount match. Partial
// fulfillment records the actuals but leaves the entry open for a follow-up
// event.
func fulfilPlanEntry(
	entry model.DisbursementPlanEntry,
	amount decimal.Decimal,
	date time.Time,
) (model.DisbursementPlanEntry, error) {
	if entry.IsCompleted {
		return model.DisbursementPlanEntry{}, fmt.Errorf("%w: entry %d of case %s",
			valueobject.ErrPlanEntryAlreadyCompleted, entry.SequenceNumber, entry.CaseID)
	}

	next := entry
	d := date
	next.ActualDate = &d
	next.ActualAmount = entry.ActualAmount.Add(amount)
	next.IsCompleted = next.ActualAmount.Equal(entry.PlannedAmount)
	return next, nil
}

// NewPlanEntry appends a planned tranche. Creation is forbidden once the
// disbursement phase is closed.
func (DisbursementTracker) NewPlanEntry(
	caseID string,
	sequenceNumber int,
	plannedDate time.Time,
	plannedAmount decimal.Decimal,
	prior []model.DisbursementEvent,
) (model.DisbursementPlanEntry, error) {
	for _, p := range prior {
		if p.IsFinal {
			return model.DisbursementPlanEntry{}, fmt.Errorf("%w: case %s",
				valueobject.ErrDisbursementPhaseClosed, caseID)
		}
	}
	if plannedAmount.LessThanOrEqual(decimal.Zero) {
		return model.DisbursementPlanEntry{}, fmt.Errorf("planned amount must be positive, got %s", plannedAmount)
	}

	return model.DisbursementPlanEntry{
		PlanEntryID:    uuid.New().String(),
		CaseID:         caseID,
		SequenceNumber: sequenceNumber,
		PlannedDate:    plannedDate,
		PlannedAmount:  plannedAmount,
		ActualAmount:   decimal.Zero,
	}, nil
}
