package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEscrow() EscrowAccount {
	return EscrowAccount{
		EscrowID:       "esc-1",
		CaseID:         "case-1",
		Type:           "GENERAL",
		CurrentBalance: decimal.NewFromInt(500),
		IsActive:       true,
	}
}

func TestEscrowDeposit(t *testing.T) {
	e := testEscrow()

	next, err := e.Deposit(decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.True(t, next.CurrentBalance.Equal(decimal.NewFromInt(750)))
	assert.True(t, e.CurrentBalance.Equal(decimal.NewFromInt(500)), "receiver untouched")

	_, err = e.Deposit(decimal.Zero)
	assert.Error(t, err)
	_, err = e.Deposit(decimal.NewFromInt(-10))
	assert.Error(t, err)
}

func TestEscrowDisburse(t *testing.T) {
	e := testEscrow()

	next, err := e.Disburse(decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, next.CurrentBalance.IsZero())

	_, err = e.Disburse(decimal.NewFromInt(501))
	assert.Error(t, err, "balance never goes negative")

	_, err = e.Disburse(decimal.Zero)
	assert.Error(t, err)
}

func TestEscrowRecordAnalysis(t *testing.T) {
	e := testEscrow()
	analysisDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	nextDate := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)

	next, err := e.RecordAnalysis(decimal.NewFromFloat(120.50), analysisDate, nextDate)
	require.NoError(t, err)
	assert.True(t, next.MonthlyPaymentAmount.Equal(decimal.NewFromFloat(120.50)))
	require.NotNil(t, next.LastAnalysisDate)
	require.NotNil(t, next.NextAnalysisDate)
	assert.Equal(t, analysisDate, *next.LastAnalysisDate)
	assert.Equal(t, nextDate, *next.NextAnalysisDate)

	_, err = e.RecordAnalysis(decimal.NewFromInt(-1), analysisDate, nextDate)
	assert.Error(t, err)

	_, err = e.RecordAnalysis(decimal.NewFromInt(100), nextDate, analysisDate)
	assert.Error(t, err, "analysis date must precede the next analysis date")

	_, err = e.RecordAnalysis(decimal.NewFromInt(100), analysisDate, analysisDate)
	assert.Error(t, err)
}
