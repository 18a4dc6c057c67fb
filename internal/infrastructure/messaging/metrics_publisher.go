package messaging

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lumenbank/servicing/internal/domain/event"
	"github.com/lumenbank/servicing/internal/domain/port"
	"github.com/lumenbank/servicing/pkg/observability"
)

// MetricsPublisher decorates an EventPublisher with the servicing counters so
// payment, disbursement and status-change throughput shows up on /metrics.
type MetricsPublisher struct {
	next    port.EventPublisher
	metrics *observability.ServicingMetrics
}

// NewMetricsPublisher wraps next with metric counting.
func NewMetricsPublisher(next port.EventPublisher, metrics *observability.ServicingMetrics) *MetricsPublisher {
	return &MetricsPublisher{next: next, metrics: metrics}
}

// Publish counts events by type, then delegates.
func (p *MetricsPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	for _, evt := range events {
		attrs := metric.WithAttributes(attribute.String("tenant_id", evt.TenantID()))
		switch evt.EventType() {
		case "servicing.payment.applied":
			p.metrics.PaymentsApplied.Add(ctx, 1, attrs)
		case "servicing.disbursement.recorded":
			p.metrics.DisbursementsRecorded.Add(ctx, 1, attrs)
		case "servicing.case.status_changed":
			p.metrics.StatusTransitions.Add(ctx, 1, attrs)
		}
	}
	return p.next.Publish(ctx, events...)
}
