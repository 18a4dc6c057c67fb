package valueobject

import "fmt"

// AmortizationMethod determines how principal and interest split across a
// generated schedule.
type AmortizationMethod struct {
	value string
}

const (
	methodEqualInstallment = "EQUAL_INSTALLMENT"
	methodEqualPrincipal   = "EQUAL_PRINCIPAL"
	methodBalloonPayment   = "BALLOON_PAYMENT"
	methodInterestOnly     = "INTEREST_ONLY"
	methodBullet           = "BULLET"
)

var (
	MethodEqualInstallment = AmortizationMethod{value: methodEqualInstallment}
	MethodEqualPrincipal   = AmortizationMethod{value: methodEqualPrincipal}
	MethodBalloonPayment   = AmortizationMethod{value: methodBalloonPayment}
	MethodInterestOnly     = AmortizationMethod{value: methodInterestOnly}
	MethodBullet           = AmortizationMethod{value: methodBullet}
)

var validMethods = map[string]AmortizationMethod{
	methodEqualInstallment: MethodEqualInstallment,
	methodEqualPrincipal:   MethodEqualPrincipal,
	methodBalloonPayment:   MethodBalloonPayment,
	methodInterestOnly:     MethodInterestOnly,
	methodBullet:           MethodBullet,
}

// NewAmortizationMethod creates an AmortizationMethod from a raw string.
func NewAmortizationMethod(s string) (AmortizationMethod, error) {
	v, ok := validMethods[s]
	if !ok {
		return AmortizationMethod{}, fmt.Errorf("invalid amortization method: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (m AmortizationMethod) String() string { return m.value }

// IsZero returns true when not initialised.
func (m AmortizationMethod) IsZero() bool { return m.value == "" }

// Equal returns true when both methods match.
func (m AmortizationMethod) Equal(other AmortizationMethod) bool { return m.value == other.value }
