package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes the Prometheus metrics exporter.
// Returns the MeterProvider and an HTTP handler for the /metrics endpoint.
func InitMetrics() (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return provider, promhttp.Handler(), nil
}

// ServicingMetrics holds the counters emitted by the servicing engine.
type ServicingMetrics struct {
	PaymentsApplied       metric.Int64Counter
	DisbursementsRecorded metric.Int64Counter
	StatusTransitions     metric.Int64Counter
}

// NewServicingMetrics registers the servicing counters on the given meter.
func NewServicingMetrics(meter metric.Meter) (*ServicingMetrics, error) {
	payments, err := meter.Int64Counter("servicing_payments_applied_total",
		metric.WithDescription("Payments applied against schedule installments"))
	if err != nil {
		return nil, err
	}
	disbursements, err := meter.Int64Counter("servicing_disbursements_recorded_total",
		metric.WithDescription("Disbursement events recorded"))
	if err != nil {
		return nil, err
	}
	transitions, err := meter.Int64Counter("servicing_status_transitions_total",
		metric.WithDescription("Servicing status transitions"))
	if err != nil {
		return nil, err
	}

	return &ServicingMetrics{
		PaymentsApplied:       payments,
		DisbursementsRecorded: disbursements,
		StatusTransitions:     transitions,
	}, nil
}
