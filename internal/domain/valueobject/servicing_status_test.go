package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServicingStatus(t *testing.T) {
	status, err := NewServicingStatus("DELINQUENT")
	require.NoError(t, err)
	assert.True(t, status.Equal(StatusDelinquent))
	assert.Equal(t, "DELINQUENT", status.String())

	_, err = NewServicingStatus("LIMBO")
	assert.Error(t, err)

	_, err = NewServicingStatus("")
	assert.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	legal := []struct {
		from, to ServicingStatus
	}{
		{StatusPending, StatusActive},
		{StatusPending, StatusCancelled},
		{StatusActive, StatusGracePeriod},
		{StatusActive, StatusRestructured},
		{StatusActive, StatusPaidOff},
		{StatusGracePeriod, StatusActive},
		{StatusGracePeriod, StatusDelinquent},
		{StatusDelinquent, StatusDefault},
		{StatusDelinquent, StatusForbearance},
		{StatusDefault, StatusActive},
		{StatusForbearance, StatusDelinquent},
		{StatusRestructured, StatusActive},
		{StatusBankruptcy, StatusForeclosure},
		{StatusForeclosure, StatusChargedOff},
		{StatusPaidOff, StatusClosed},
		// PAID_OFF is not terminal, so the administrative exits stay open.
		{StatusPaidOff, StatusChargedOff},
		{StatusPaidOff, StatusBankruptcy},
		{StatusPaidOff, StatusForeclosure},
		{StatusPaidOff, StatusCancelled},
	}
	for _, tc := range legal {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct {
		from, to ServicingStatus
	}{
		{StatusPending, StatusDelinquent},
		{StatusPending, StatusDefault},
		{StatusActive, StatusDefault},
		{StatusGracePeriod, StatusRestructured},
		{StatusDefault, StatusDelinquent},
		{StatusPaidOff, StatusActive},
		{StatusRestructured, StatusForbearance},
	}
	for _, tc := range illegal {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	terminal := []ServicingStatus{StatusClosed, StatusChargedOff, StatusTransferred, StatusCancelled}
	all := []ServicingStatus{
		StatusPending, StatusActive, StatusGracePeriod, StatusDelinquent,
		StatusDefault, StatusForbearance, StatusRestructured, StatusBankruptcy,
		StatusForeclosure, StatusChargedOff, StatusPaidOff, StatusClosed,
		StatusTransferred, StatusCancelled,
	}

	for _, from := range terminal {
		assert.True(t, from.IsTerminal())
		for _, to := range all {
			assert.False(t, from.CanTransitionTo(to), "%s -> %s must be illegal", from, to)
		}
	}

	assert.False(t, StatusPaidOff.IsTerminal(), "PAID_OFF still closes administratively")
}

func TestSelfTransitionsAreIllegal(t *testing.T) {
	all := []ServicingStatus{
		StatusPending, StatusActive, StatusGracePeriod, StatusDelinquent,
		StatusDefault, StatusForbearance, StatusRestructured, StatusBankruptcy,
		StatusForeclosure, StatusChargedOff, StatusPaidOff, StatusClosed,
		StatusTransferred, StatusCancelled,
	}
	for _, s := range all {
		assert.False(t, s.CanTransitionTo(s), "%s -> %s must be illegal", s, s)
	}
}
