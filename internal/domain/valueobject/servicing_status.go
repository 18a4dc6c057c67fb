package valueobject

import "fmt"

// ServicingStatus represents the lifecycle stage of a loan servicing case.
type ServicingStatus struct {
	value string
}

const (
	statusPending      = "PENDING"
	statusActive       = "ACTIVE"
	statusGracePeriod  = "GRACE_PERIOD"
	statusDelinquent   = "DELINQUENT"
	statusDefault      = "DEFAULT"
	statusForbearance  = "FORBEARANCE"
	statusRestructured = "RESTRUCTURED"
	statusBankruptcy   = "BANKRUPTCY"
	statusForeclosure  = "FORECLOSURE"
	statusChargedOff   = "CHARGED_OFF"
	statusPaidOff      = "PAID_OFF"
	statusClosed       = "CLOSED"
	statusTransferred  = "TRANSFERRED"
	statusCancelled    = "CANCELLED"
)

var (
	StatusPending      = ServicingStatus{value: statusPending}
	StatusActive       = ServicingStatus{value: statusActive}
	StatusGracePeriod  = ServicingStatus{value: statusGracePeriod}
	StatusDelinquent   = ServicingStatus{value: statusDelinquent}
	StatusDefault      = ServicingStatus{value: statusDefault}
	StatusForbearance  = ServicingStatus{value: statusForbearance}
	StatusRestructured = ServicingStatus{value: statusRestructured}
	StatusBankruptcy   = ServicingStatus{value: statusBankruptcy}
	StatusForeclosure  = ServicingStatus{value: statusForeclosure}
	StatusChargedOff   = ServicingStatus{value: statusChargedOff}
	StatusPaidOff      = ServicingStatus{value: statusPaidOff}
	StatusClosed       = ServicingStatus{value: statusClosed}
	StatusTransferred  = ServicingStatus{value: statusTransferred}
	StatusCancelled    = ServicingStatus{value: statusCancelled}
)

var validServicingStatuses = map[string]ServicingStatus{
	statusPending:      StatusPending,
	statusActive:       StatusActive,
	statusGracePeriod:  StatusGracePeriod,
	statusDelinquent:   StatusDelinquent,
	statusDefault:      StatusDefault,
	statusForbearance:  StatusForbearance,
	statusRestructured: StatusRestructured,
	statusBankruptcy:   StatusBankruptcy,
	statusForeclosure:  StatusForeclosure,
	statusChargedOff:   StatusChargedOff,
	statusPaidOff:      StatusPaidOff,
	statusClosed:       StatusClosed,
	statusTransferred:  StatusTransferred,
	statusCancelled:    StatusCancelled,
}

// NewServicingStatus creates a ServicingStatus from a raw string.
func NewServicingStatus(s string) (ServicingStatus, error) {
	v, ok := validServicingStatuses[s]
	if !ok {
		return ServicingStatus{}, fmt.Errorf("invalid servicing status: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (s ServicingStatus) String() string { return s.value }

// IsZero returns true when not initialised.
func (s ServicingStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses match.
func (s ServicingStatus) Equal(other ServicingStatus) bool { return s.value == other.value }

// IsTerminal reports whether no further transitions are legal from s.
func (s ServicingStatus) IsTerminal() bool {
	switch s.value {
	case statusClosed, statusChargedOff, statusTransferred, statusCancelled:
		return true
	}
	return false
}

// transitions is the explicit legality table. A (from, to) pair absent from
// the table is rejected; callers never mutate status directly.
var transitions = map[string]map[string]bool{
	statusPending: set(
		statusActive, statusPaidOff, statusBankruptcy, statusForeclosure,
		statusChargedOff, statusTransferred, statusCancelled,
	),
	statusActive: set(
		statusGracePeriod, statusDelinquent, statusForbearance, statusRestructured,
		statusPaidOff, statusBankruptcy, statusForeclosure, statusChargedOff,
		statusTransferred, statusCancelled,
	),
	statusGracePeriod: set(
		statusActive, statusDelinquent, statusPaidOff,
		statusBankruptcy, statusForeclosure, statusChargedOff,
		statusTransferred, statusCancelled,
	),
	statusDelinquent: set(
		statusActive, statusDefault, statusForbearance, statusRestructured,
		statusPaidOff, statusBankruptcy, statusForeclosure, statusChargedOff,
		statusTransferred, statusCancelled,
	),
	statusDefault: set(
		statusActive, statusForbearance, statusPaidOff,
		statusBankruptcy, statusForeclosure, statusChargedOff,
		statusTransferred, statusCancelled,
	),
	statusForbearance: set(
		statusActive, statusDelinquent, statusDefault, statusPaidOff,
		statusBankruptcy, statusForeclosure, statusChargedOff,
		statusTransferred, statusCancelled,
	),
	statusRestructured: set(
		statusActive, statusDelinquent, statusPaidOff,
		statusBankruptcy, statusForeclosure, statusChargedOff,
		statusTransferred, statusCancelled,
	),
	statusBankruptcy: set(
		statusForeclosure, statusPaidOff, statusChargedOff,
		statusTransferred, statusCancelled, statusClosed,
	),
	statusForeclosure: set(
		statusPaidOff, statusChargedOff, statusTransferred,
		statusCancelled, statusClosed,
	),
	statusPaidOff: set(
		statusClosed, statusBankruptcy, statusForeclosure,
		statusChargedOff, statusCancelled,
	),
}

func set(statuses ...string) map[string]bool {
	m := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		m[s] = true
	}
	return m
}

// CanTransitionTo reports whether the (s, to) pair is present in the
// transition table.
func (s ServicingStatus) CanTransitionTo(to ServicingStatus) bool {
	targets, ok := transitions[s.value]
	if !ok {
		return false
	}
	return targets[to.value]
}
