package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

func caseTerms(t *testing.T, principal int64, term int) valueobject.TermSet {
	t.Helper()
	ts, err := valueobject.NewTermSet(
		decimal.NewFromInt(principal),
		decimal.NewFromInt(12),
		term,
		valueobject.MethodEqualInstallment,
		valueobject.FrequencyMonthly,
		valueobject.CompoundingFrequency{},
		valueobject.DayCountActual360,
		time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		decimal.Zero,
	)
	require.NoError(t, err)
	return ts
}

func newTestCase(t *testing.T) LoanServicingCase {
	t.Helper()
	c, err := NewLoanServicingCase(
		"tenant-1", "contract-1", "product-1", "app-1",
		caseTerms(t, 12000, 12),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return c
}

func TestNewLoanServicingCase(t *testing.T) {
	c := newTestCase(t)

	assert.NotEmpty(t, c.ID())
	assert.True(t, c.Status().Equal(valueobject.StatusPending))
	assert.Equal(t, 1, c.ScheduleVersion())
	assert.Equal(t, 1, c.Version())
	assert.Equal(t, c.CurrentTerms().MaturityDate, c.MaturityDate())

	require.Len(t, c.DomainEvents(), 1)
	assert.Equal(t, "servicing.case.created", c.DomainEvents()[0].EventType())
}

func TestNewLoanServicingCaseValidation(t *testing.T) {
	terms := caseTerms(t, 12000, 12)
	origination := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	now := origination

	t.Run("missing tenant", func(t *testing.T) {
		_, err := NewLoanServicingCase("", "contract-1", "product-1", "", terms, origination, now)
		assert.Error(t, err)
	})

	t.Run("missing contract", func(t *testing.T) {
		_, err := NewLoanServicingCase("tenant-1", "", "product-1", "", terms, origination, now)
		assert.Error(t, err)
	})

	t.Run("invalid terms", func(t *testing.T) {
		bad := terms
		bad.Principal = decimal.Zero
		_, err := NewLoanServicingCase("tenant-1", "contract-1", "product-1", "", bad, origination, now)
		assert.ErrorIs(t, err, valueobject.ErrInvalidTermSet)
	})
}

func TestCaseTransition(t *testing.T) {
	c := newTestCase(t)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	active, err := c.Transition(valueobject.StatusActive, now)
	require.NoError(t, err)
	assert.True(t, active.Status().Equal(valueobject.StatusActive))

	// The receiver is never mutated.
	assert.True(t, c.Status().Equal(valueobject.StatusPending))

	// An illegal pair fails and returns the case unchanged.
	same, err := c.Transition(valueobject.StatusDefault, now)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStateTransition)
	assert.True(t, same.Status().Equal(valueobject.StatusPending))

	// Each legal transition appends a status change event.
	events := active.DomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "servicing.case.status_changed", events[1].EventType())
}

func TestCaseApplyRestructuring(t *testing.T) {
	c := newTestCase(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	active, err := c.Transition(valueobject.StatusActive, now)
	require.NoError(t, err)

	newTerms := caseTerms(t, 9000, 24)
	r := Restructuring{
		RestructuringID: "restr-1",
		CaseID:          active.ID(),
		Date:            now,
		OldTerms:        active.CurrentTerms(),
		NewTerms:        newTerms,
	}

	restructured, err := active.ApplyRestructuring(r, now)
	require.NoError(t, err)

	assert.True(t, restructured.Status().Equal(valueobject.StatusRestructured))
	assert.True(t, restructured.CurrentTerms().Equal(newTerms))
	assert.Equal(t, active.ScheduleVersion()+1, restructured.ScheduleVersion())
	assert.Equal(t, newTerms.MaturityDate, restructured.MaturityDate())

	// Receiver untouched.
	assert.True(t, active.CurrentTerms().Equal(c.CurrentTerms()))
	assert.Equal(t, 1, active.ScheduleVersion())
}

func TestCaseApplyRestructuringRejectsIllegalState(t *testing.T) {
	c := newTestCase(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// PENDING cannot move to RESTRUCTURED.
	r := Restructuring{
		RestructuringID: "restr-1",
		CaseID:          c.ID(),
		Date:            now,
		OldTerms:        c.CurrentTerms(),
		NewTerms:        caseTerms(t, 9000, 24),
	}
	_, err := c.ApplyRestructuring(r, now)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStateTransition)

	active, err := c.Transition(valueobject.StatusActive, now)
	require.NoError(t, err)

	bad := r
	bad.NewTerms.Principal = decimal.Zero
	_, err = active.ApplyRestructuring(bad, now)
	assert.ErrorIs(t, err, valueobject.ErrInvalidTermSet)
}

func TestCaseClearEvents(t *testing.T) {
	c := newTestCase(t)
	cleared := c.ClearEvents()
	assert.Empty(t, cleared.DomainEvents())
	assert.Len(t, c.DomainEvents(), 1)
}
