package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent("servicing.case.created", "case-1", "LoanServicingCase", "tenant-1")

	assert.NotEmpty(t, e.EventID())
	assert.Equal(t, "servicing.case.created", e.EventType())
	assert.Equal(t, "case-1", e.AggregateID())
	assert.Equal(t, "LoanServicingCase", e.AggregateType())
	assert.Equal(t, "tenant-1", e.TenantID())
	assert.False(t, e.OccurredAt().IsZero())
}

func TestCollector(t *testing.T) {
	var c Collector
	c.Record(NewBaseEvent("a", "1", "X", "t"))
	c.Record(NewBaseEvent("b", "1", "X", "t"))

	require.Len(t, c.Events(), 2)

	drained := c.Drain()
	require.Len(t, drained, 2)
	assert.Empty(t, c.Events())
}
