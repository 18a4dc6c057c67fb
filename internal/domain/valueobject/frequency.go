package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// PaymentFrequency – immutable value object
// ---------------------------------------------------------------------------

// PaymentFrequency determines how due dates advance along a schedule.
type PaymentFrequency struct {
	value string
}

const (
	freqDaily        = "DAILY"
	freqWeekly       = "WEEKLY"
	freqBiweekly     = "BIWEEKLY"
	freqMonthly      = "MONTHLY"
	freqQuarterly    = "QUARTERLY"
	freqSemiannually = "SEMIANNUALLY"
	freqAnnually     = "ANNUALLY"
)

var (
	FrequencyDaily        = PaymentFrequency{value: freqDaily}
	FrequencyWeekly       = PaymentFrequency{value: freqWeekly}
	FrequencyBiweekly     = PaymentFrequency{value: freqBiweekly}
	FrequencyMonthly      = PaymentFrequency{value: freqMonthly}
	FrequencyQuarterly    = PaymentFrequency{value: freqQuarterly}
	FrequencySemiannually = PaymentFrequency{value: freqSemiannually}
	FrequencyAnnually     = PaymentFrequency{value: freqAnnually}
)

var validFrequencies = map[string]PaymentFrequency{
	freqDaily:        FrequencyDaily,
	freqWeekly:       FrequencyWeekly,
	freqBiweekly:     FrequencyBiweekly,
	freqMonthly:      FrequencyMonthly,
	freqQuarterly:    FrequencyQuarterly,
	freqSemiannually: FrequencySemiannually,
	freqAnnually:     FrequencyAnnually,
}

// NewPaymentFrequency creates a PaymentFrequency from a raw string.
func NewPaymentFrequency(s string) (PaymentFrequency, error) {
	v, ok := validFrequencies[s]
	if !ok {
		return PaymentFrequency{}, fmt.Errorf("invalid payment frequency: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (f PaymentFrequency) String() string { return f.value }

// IsZero returns true when not initialised.
func (f PaymentFrequency) IsZero() bool { return f.value == "" }

// Equal returns true when both frequencies match.
func (f PaymentFrequency) Equal(other PaymentFrequency) bool { return f.value == other.value }

// PeriodsPerYear returns the number of payment periods in a year. DAILY uses
// the day-count convention's year basis.
func (f PaymentFrequency) PeriodsPerYear(dc DayCountConvention) int {
	switch f.value {
	case freqDaily:
		return dc.DaysPerYear()
	case freqWeekly:
		return 52
	case freqBiweekly:
		return 26
	case freqMonthly:
		return 12
	case freqQuarterly:
		return 4
	case freqSemiannually:
		return 2
	default:
		return 1
	}
}

// ---------------------------------------------------------------------------
// CompoundingFrequency – immutable value object
// ---------------------------------------------------------------------------

// CompoundingFrequency determines how often interest compounds.
type CompoundingFrequency struct {
	value string
}

var (
	CompoundingDaily        = CompoundingFrequency{value: freqDaily}
	CompoundingMonthly      = CompoundingFrequency{value: freqMonthly}
	CompoundingQuarterly    = CompoundingFrequency{value: freqQuarterly}
	CompoundingSemiannually = CompoundingFrequency{value: freqSemiannually}
	CompoundingAnnually     = CompoundingFrequency{value: freqAnnually}
)

var validCompounding = map[string]CompoundingFrequency{
	freqDaily:        CompoundingDaily,
	freqMonthly:      CompoundingMonthly,
	freqQuarterly:    CompoundingQuarterly,
	freqSemiannually: CompoundingSemiannually,
	freqAnnually:     CompoundingAnnually,
}

// NewCompoundingFrequency creates a CompoundingFrequency from a raw string.
func NewCompoundingFrequency(s string) (CompoundingFrequency, error) {
	v, ok := validCompounding[s]
	if !ok {
		return CompoundingFrequency{}, fmt.Errorf("invalid compounding frequency: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (f CompoundingFrequency) String() string { return f.value }

// IsZero returns true when not initialised.
func (f CompoundingFrequency) IsZero() bool { return f.value == "" }

// PeriodsPerYear returns the number of compounding periods in a year.
func (f CompoundingFrequency) PeriodsPerYear(dc DayCountConvention) int {
	switch f.value {
	case freqDaily:
		return dc.DaysPerYear()
	case freqMonthly:
		return 12
	case freqQuarterly:
		return 4
	case freqSemiannually:
		return 2
	default:
		return 1
	}
}

// ---------------------------------------------------------------------------
// DayCountConvention – immutable value object
// ---------------------------------------------------------------------------

// DayCountConvention determines the year basis for daily interest.
type DayCountConvention struct {
	value string
}

const (
	dayCountActual360 = "ACTUAL_360"
	dayCountActual365 = "ACTUAL_365"
	dayCountThirty360 = "THIRTY_360"
)

var (
	DayCountActual360 = DayCountConvention{value: dayCountActual360}
	DayCountActual365 = DayCountConvention{value: dayCountActual365}
	DayCountThirty360 = DayCountConvention{value: dayCountThirty360}
)

var validDayCounts = map[string]DayCountConvention{
	dayCountActual360: DayCountActual360,
	dayCountActual365: DayCountActual365,
	dayCountThirty360: DayCountThirty360,
}

// NewDayCountConvention creates a DayCountConvention from a raw string.
func NewDayCountConvention(s string) (DayCountConvention, error) {
	v, ok := validDayCounts[s]
	if !ok {
		return DayCountConvention{}, fmt.Errorf("invalid day count convention: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (d DayCountConvention) String() string { return d.value }

// IsZero returns true when not initialised.
func (d DayCountConvention) IsZero() bool { return d.value == "" }

// DaysPerYear returns the year basis in days.
func (d DayCountConvention) DaysPerYear() int {
	if d.value == dayCountActual365 {
		return 365
	}
	return 360
}
