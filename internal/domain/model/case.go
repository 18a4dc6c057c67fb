package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumenbank/servicing/internal/domain/event"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// LoanServicingCase aggregate root
// ---------------------------------------------------------------------------

// LoanServicingCase is an immutable aggregate. Mutations return a new copy.
// Status changes go through Transition, which enforces the legality table;
// there is no other way to mutate the status.
type LoanServicingCase struct {
	id              string
	tenantID        string
	contractID      string
	productID       string
	applicationID   string
	status          valueobject.ServicingStatus
	currentTerms    valueobject.TermSet
	scheduleVersion int
	originationDate time.Time
	maturityDate    time.Time
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// NewLoanServicingCase opens a case at origination in PENDING status with
// schedule version 1.
func NewLoanServicingCase(
	tenantID, contractID, productID, applicationID string,
	terms valueobject.TermSet,
	originationDate time.Time,
	now time.Time,
) (LoanServicingCase, error) {
	if tenantID == "" {
		return LoanServicingCase{}, errors.New("tenant ID is required")
	}
	if contractID == "" {
		return LoanServicingCase{}, errors.New("contract ID is required")
	}
	if productID == "" {
		return LoanServicingCase{}, errors.New("product ID is required")
	}
	if err := terms.Validate(); err != nil {
		return LoanServicingCase{}, err
	}

	id := uuid.New().String()

	c := LoanServicingCase{
		id:              id,
		tenantID:        tenantID,
		contractID:      contractID,
		productID:       productID,
		applicationID:   applicationID,
		status:          valueobject.StatusPending,
		currentTerms:    terms,
		scheduleVersion: 1,
		originationDate: originationDate,
		maturityDate:    terms.MaturityDate,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}

	c.domainEvents = append(c.domainEvents, event.NewCaseCreated(
		id, tenantID, contractID, productID, terms.Principal, originationDate,
	))

	return c, nil
}

// ReconstructCase rebuilds a LoanServicingCase from persistence.
func ReconstructCase(
	id, tenantID, contractID, productID, applicationID string,
	status valueobject.ServicingStatus,
	terms valueobject.TermSet,
	scheduleVersion int,
	originationDate, maturityDate time.Time,
	version int,
	createdAt, updatedAt time.Time,
) LoanServicingCase {
	return LoanServicingCase{
		id:              id,
		tenantID:        tenantID,
		contractID:      contractID,
		productID:       productID,
		applicationID:   applicationID,
		status:          status,
		currentTerms:    terms,
		scheduleVersion: scheduleVersion,
		originationDate: originationDate,
		maturityDate:    maturityDate,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Transition moves the case to the target status. The (from, to) pair must be
// present in the transition table; an illegal pair fails with
// ErrInvalidStateTransition and performs no mutation.
func (c LoanServicingCase) Transition(to valueobject.ServicingStatus, now time.Time) (LoanServicingCase, error) {
	if !c.status.CanTransitionTo(to) {
		return c, fmt.Errorf("%w: %s -> %s",
			valueobject.ErrInvalidStateTransition, c.status, to)
	}

	next := c
	next.status = to
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewCaseStatusChanged(
		c.id, c.tenantID, c.status.String(), to.String(),
	))
	return next, nil
}

// ApplyRestructuring swaps the current term set and bumps the schedule
// version. Only legal while the case can move to RESTRUCTURED.
func (c LoanServicingCase) ApplyRestructuring(r Restructuring, now time.Time) (LoanServicingCase, error) {
	if !r.NewTerms.Principal.IsPositive() {
		return c, fmt.Errorf("%w: restructured principal must be positive", valueobject.ErrInvalidTermSet)
	}
	if err := r.NewTerms.Validate(); err != nil {
		return c, err
	}

	next, err := c.Transition(valueobject.StatusRestructured, now)
	if err != nil {
		return c, err
	}
	next.currentTerms = r.NewTerms
	next.maturityDate = r.NewTerms.MaturityDate
	next.scheduleVersion = c.scheduleVersion + 1
	next.domainEvents = append(next.domainEvents, event.NewRestructuringApplied(
		c.id, c.tenantID, r.RestructuringID, r.NewTerms.Principal, r.Date,
	))
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (c LoanServicingCase) ID() string                            { return c.id }
func (c LoanServicingCase) TenantID() string                      { return c.tenantID }
func (c LoanServicingCase) ContractID() string                    { return c.contractID }
func (c LoanServicingCase) ProductID() string                     { return c.productID }
func (c LoanServicingCase) ApplicationID() string                 { return c.applicationID }
func (c LoanServicingCase) Status() valueobject.ServicingStatus   { return c.status }
func (c LoanServicingCase) CurrentTerms() valueobject.TermSet     { return c.currentTerms }
func (c LoanServicingCase) ScheduleVersion() int                  { return c.scheduleVersion }
func (c LoanServicingCase) OriginationDate() time.Time            { return c.originationDate }
func (c LoanServicingCase) MaturityDate() time.Time               { return c.maturityDate }
func (c LoanServicingCase) Version() int                          { return c.version }
func (c LoanServicingCase) CreatedAt() time.Time                  { return c.createdAt }
func (c LoanServicingCase) UpdatedAt() time.Time                  { return c.updatedAt }
func (c LoanServicingCase) DomainEvents() []event.DomainEvent     { return c.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (c LoanServicingCase) ClearEvents() LoanServicingCase {
	next := c
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if src == nil {
		return nil
	}
	out := make([]event.DomainEvent, len(src))
	copy(out, src)
	return out
}
