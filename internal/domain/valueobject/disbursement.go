package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// DisbursementMethod – immutable value object
// ---------------------------------------------------------------------------

// DisbursementMethod distinguishes internal transfers from external wires.
type DisbursementMethod struct {
	value string
}

const (
	disbMethodInternal = "INTERNAL"
	disbMethodExternal = "EXTERNAL"
)

var (
	DisbursementInternal = DisbursementMethod{value: disbMethodInternal}
	DisbursementExternal = DisbursementMethod{value: disbMethodExternal}
)

var validDisbursementMethods = map[string]DisbursementMethod{
	disbMethodInternal: DisbursementInternal,
	disbMethodExternal: DisbursementExternal,
}

// NewDisbursementMethod creates a DisbursementMethod from a raw string.
func NewDisbursementMethod(s string) (DisbursementMethod, error) {
	v, ok := validDisbursementMethods[s]
	if !ok {
		return DisbursementMethod{}, fmt.Errorf("invalid disbursement method: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (m DisbursementMethod) String() string { return m.value }

// IsZero returns true when not initialised.
func (m DisbursementMethod) IsZero() bool { return m.value == "" }

// ---------------------------------------------------------------------------
// DisbursementStatus – immutable value object
// ---------------------------------------------------------------------------

// DisbursementStatus is the lifecycle stage of a disbursement event.
type DisbursementStatus struct {
	value string
}

const (
	disbStatusPending    = "PENDING"
	disbStatusProcessing = "PROCESSING"
	disbStatusCompleted  = "COMPLETED"
	disbStatusFailed     = "FAILED"
	disbStatusReversed   = "REVERSED"
)

var (
	DisbursementPending    = DisbursementStatus{value: disbStatusPending}
	DisbursementProcessing = DisbursementStatus{value: disbStatusProcessing}
	DisbursementCompleted  = DisbursementStatus{value: disbStatusCompleted}
	DisbursementFailed     = DisbursementStatus{value: disbStatusFailed}
	DisbursementReversed   = DisbursementStatus{value: disbStatusReversed}
)

var validDisbursementStatuses = map[string]DisbursementStatus{
	disbStatusPending:    DisbursementPending,
	disbStatusProcessing: DisbursementProcessing,
	disbStatusCompleted:  DisbursementCompleted,
	disbStatusFailed:     DisbursementFailed,
	disbStatusReversed:   DisbursementReversed,
}

// NewDisbursementStatus creates a DisbursementStatus from a raw string.
func NewDisbursementStatus(s string) (DisbursementStatus, error) {
	v, ok := validDisbursementStatuses[s]
	if !ok {
		return DisbursementStatus{}, fmt.Errorf("invalid disbursement status: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (s DisbursementStatus) String() string { return s.value }

// IsZero returns true when not initialised.
func (s DisbursementStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses match.
func (s DisbursementStatus) Equal(other DisbursementStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// AccrualType – immutable value object
// ---------------------------------------------------------------------------

// AccrualType routes a posted accrual to the interest or fees component.
type AccrualType struct {
	value string
}

const (
	accrualInterest = "INTEREST"
	accrualFee      = "FEE"
)

var (
	AccrualInterest = AccrualType{value: accrualInterest}
	AccrualFee      = AccrualType{value: accrualFee}
)

var validAccrualTypes = map[string]AccrualType{
	accrualInterest: AccrualInterest,
	accrualFee:      AccrualFee,
}

// NewAccrualType creates an AccrualType from a raw string.
func NewAccrualType(s string) (AccrualType, error) {
	v, ok := validAccrualTypes[s]
	if !ok {
		return AccrualType{}, fmt.Errorf("invalid accrual type: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (a AccrualType) String() string { return a.value }

// IsZero returns true when not initialised.
func (a AccrualType) IsZero() bool { return a.value == "" }

// Equal returns true when both types match.
func (a AccrualType) Equal(other AccrualType) bool { return a.value == other.value }
