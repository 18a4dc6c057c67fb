package valueobject

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTermSet(t *testing.T) TermSet {
	t.Helper()
	ts, err := NewTermSet(
		decimal.NewFromInt(10000),
		decimal.NewFromFloat(7.5),
		24,
		MethodEqualInstallment,
		FrequencyMonthly,
		CompoundingFrequency{},
		DayCountConvention{},
		time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC),
		decimal.Zero,
	)
	require.NoError(t, err)
	return ts
}

func TestNewTermSetDefaults(t *testing.T) {
	ts := validTermSet(t)
	assert.Equal(t, DayCountActual360, ts.DayCount, "day count defaults to ACTUAL_360")
	assert.True(t, ts.CompoundingFrequency.IsZero(), "compounding stays unset and follows the payment frequency")
}

func TestTermSetValidate(t *testing.T) {
	t.Run("term below 1", func(t *testing.T) {
		ts := validTermSet(t)
		ts.TermLength = 0
		assert.ErrorIs(t, ts.Validate(), ErrInvalidTermSet)
	})

	t.Run("non-positive principal", func(t *testing.T) {
		ts := validTermSet(t)
		ts.Principal = decimal.Zero
		assert.ErrorIs(t, ts.Validate(), ErrInvalidTermSet)
	})

	t.Run("negative rate", func(t *testing.T) {
		ts := validTermSet(t)
		ts.AnnualRate = decimal.NewFromFloat(-0.1)
		assert.ErrorIs(t, ts.Validate(), ErrInvalidTermSet)
	})

	t.Run("rate above 100", func(t *testing.T) {
		ts := validTermSet(t)
		ts.AnnualRate = decimal.NewFromFloat(100.5)
		assert.ErrorIs(t, ts.Validate(), ErrInvalidTermSet)
	})

	t.Run("rate of exactly 100 is legal", func(t *testing.T) {
		ts := validTermSet(t)
		ts.AnnualRate = decimal.NewFromInt(100)
		assert.NoError(t, ts.Validate())
	})

	t.Run("zero rate is legal", func(t *testing.T) {
		ts := validTermSet(t)
		ts.AnnualRate = decimal.Zero
		assert.NoError(t, ts.Validate())
	})

	t.Run("missing method", func(t *testing.T) {
		ts := validTermSet(t)
		ts.Method = AmortizationMethod{}
		assert.ErrorIs(t, ts.Validate(), ErrInvalidTermSet)
	})

	t.Run("missing payment frequency", func(t *testing.T) {
		ts := validTermSet(t)
		ts.PaymentFrequency = PaymentFrequency{}
		assert.ErrorIs(t, ts.Validate(), ErrInvalidTermSet)
	})

	t.Run("balloon fraction bounds", func(t *testing.T) {
		ts := validTermSet(t)
		ts.Method = MethodBalloonPayment

		ts.BalloonFraction = decimal.NewFromFloat(0.99)
		assert.NoError(t, ts.Validate())

		ts.BalloonFraction = decimal.NewFromInt(1)
		assert.ErrorIs(t, ts.Validate(), ErrInvalidTermSet)

		ts.BalloonFraction = decimal.NewFromFloat(-0.1)
		assert.ErrorIs(t, ts.Validate(), ErrInvalidTermSet)
	})

	t.Run("balloon fraction ignored for other methods", func(t *testing.T) {
		ts := validTermSet(t)
		ts.BalloonFraction = decimal.NewFromInt(5)
		assert.NoError(t, ts.Validate())
	})
}

func TestTermSetEqual(t *testing.T) {
	a := validTermSet(t)
	b := validTermSet(t)
	assert.True(t, a.Equal(b))

	b.AnnualRate = decimal.NewFromInt(8)
	assert.False(t, a.Equal(b))
}

func TestPeriodsPerYear(t *testing.T) {
	cases := []struct {
		freq PaymentFrequency
		want int
	}{
		{FrequencyWeekly, 52},
		{FrequencyBiweekly, 26},
		{FrequencyMonthly, 12},
		{FrequencyQuarterly, 4},
		{FrequencySemiannually, 2},
		{FrequencyAnnually, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.freq.PeriodsPerYear(DayCountActual360), tc.freq.String())
	}

	assert.Equal(t, 360, FrequencyDaily.PeriodsPerYear(DayCountActual360))
	assert.Equal(t, 365, FrequencyDaily.PeriodsPerYear(DayCountActual365))
	assert.Equal(t, 360, FrequencyDaily.PeriodsPerYear(DayCountThirty360))
}
