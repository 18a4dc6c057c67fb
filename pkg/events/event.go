package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	AggregateType() string
	TenantID() string
	OccurredAt() time.Time
}

// BaseEvent provides a default implementation of DomainEvent. Embed it in
// concrete event structs and add the payload fields there.
type BaseEvent struct {
	ID            string    `json:"event_id"`
	Type          string    `json:"event_type"`
	Aggregate     string    `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
	Tenant        string    `json:"tenant_id"`
	At            time.Time `json:"occurred_at"`
}

// NewBaseEvent creates a BaseEvent with a generated UUID and the current time.
func NewBaseEvent(eventType, aggregateID, aggregateType, tenantID string) BaseEvent {
	return BaseEvent{
		ID:            uuid.New().String(),
		Type:          eventType,
		Aggregate:     aggregateID,
		AggregateKind: aggregateType,
		Tenant:        tenantID,
		At:            time.Now().UTC(),
	}
}

// EventID returns the unique identifier for this event.
func (e BaseEvent) EventID() string { return e.ID }

// EventType returns the type name of this event.
func (e BaseEvent) EventType() string { return e.Type }

// AggregateID returns the identifier of the aggregate that produced this event.
func (e BaseEvent) AggregateID() string { return e.Aggregate }

// AggregateType returns the type name of the aggregate that produced this event.
func (e BaseEvent) AggregateType() string { return e.AggregateKind }

// TenantID returns the tenant the aggregate belongs to.
func (e BaseEvent) TenantID() string { return e.Tenant }

// OccurredAt returns the time at which this event occurred.
func (e BaseEvent) OccurredAt() time.Time { return e.At }

// Collector is embedded in aggregates to gather domain events raised during
// state transitions.
type Collector struct {
	events []DomainEvent
}

// Record appends a domain event to the collector.
func (c *Collector) Record(event DomainEvent) {
	c.events = append(c.events, event)
}

// Events returns the collected domain events without clearing them.
func (c *Collector) Events() []DomainEvent {
	return c.events
}

// Drain returns the collected domain events and clears the internal slice.
func (c *Collector) Drain() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
