package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundCents(t *testing.T) {
	assert.True(t, RoundCents(decimal.RequireFromString("1.005")).Equal(decimal.RequireFromString("1.01")))
	assert.True(t, RoundCents(decimal.RequireFromString("1.004")).Equal(decimal.RequireFromString("1.00")))
}

func TestRoundCentsBank(t *testing.T) {
	// Half rounds to even.
	assert.True(t, RoundCentsBank(decimal.RequireFromString("1.005")).Equal(decimal.RequireFromString("1.00")))
	assert.True(t, RoundCentsBank(decimal.RequireFromString("1.015")).Equal(decimal.RequireFromString("1.02")))
}

func TestSplitEven(t *testing.T) {
	parts := SplitEven(decimal.RequireFromString("100.00"), 3)
	require.Len(t, parts, 3)

	sum := decimal.Zero
	for _, p := range parts {
		sum = sum.Add(p)
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("100.00")),
		"parts should sum to the total exactly, got %s", sum)
	assert.True(t, parts[0].Equal(decimal.RequireFromString("33.33")))
	assert.True(t, parts[2].Equal(decimal.RequireFromString("33.34")))
}

func TestSplitEvenInvalidCount(t *testing.T) {
	assert.Nil(t, SplitEven(decimal.NewFromInt(100), 0))
}

func TestClampNonNegative(t *testing.T) {
	assert.True(t, ClampNonNegative(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, ClampNonNegative(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(5)))
}
