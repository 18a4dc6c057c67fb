package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

var testPolicy = Policy{GracePeriodDays: 15, DelinquencyDefaultDays: 90}

func overdueInstallment(daysOverdue int, now time.Time) model.ScheduleInstallment {
	due := decimal.NewFromInt(100)
	return model.ScheduleInstallment{
		InstallmentID:     "inst-1",
		CaseID:            "case-1",
		InstallmentNumber: 1,
		DueDate:           now.AddDate(0, 0, -daysOverdue),
		PrincipalDue:      due,
		TotalDue:          due,
		PaidAmount:        decimal.Zero,
	}
}

func settledInstallment(now time.Time) model.ScheduleInstallment {
	inst := overdueInstallment(30, now)
	inst.IsPaid = true
	inst.PaidAmount = inst.TotalDue
	return inst
}

func outstandingBalance() model.BalanceSnapshot {
	p := decimal.NewFromInt(1000)
	return model.BalanceSnapshot{
		CaseID:               "case-1",
		PrincipalOutstanding: p,
		TotalOutstanding:     p,
		IsCurrent:            true,
	}
}

func TestEvaluateDelinquencyTiers(t *testing.T) {
	evaluator := NewStatusEvaluator(testPolicy)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		status      valueobject.ServicingStatus
		daysOverdue int
		want        valueobject.ServicingStatus
		changed     bool
	}{
		{"active within grace", valueobject.StatusActive, 5, valueobject.StatusGracePeriod, true},
		{"active past grace", valueobject.StatusActive, 20, valueobject.StatusDelinquent, true},
		{"grace period past grace", valueobject.StatusGracePeriod, 20, valueobject.StatusDelinquent, true},
		{"delinquent stays delinquent", valueobject.StatusDelinquent, 60, valueobject.StatusDelinquent, false},
		{"delinquent past default threshold", valueobject.StatusDelinquent, 120, valueobject.StatusDefault, true},
		{"active past default threshold steps to delinquent first", valueobject.StatusActive, 120, valueobject.StatusDelinquent, true},
		{"default stays default", valueobject.StatusDefault, 150, valueobject.StatusDefault, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := CaseView{
				Status:          tc.status,
				Balance:         outstandingBalance(),
				Installments:    []model.ScheduleInstallment{overdueInstallment(tc.daysOverdue, now)},
				HasDisbursement: true,
			}
			got, changed := evaluator.Evaluate(view, now)
			assert.Equal(t, tc.changed, changed)
			assert.True(t, got.Equal(tc.want), "got %s want %s", got, tc.want)
		})
	}
}

func TestEvaluateCure(t *testing.T) {
	evaluator := NewStatusEvaluator(testPolicy)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, status := range []valueobject.ServicingStatus{
		valueobject.StatusGracePeriod,
		valueobject.StatusDelinquent,
		valueobject.StatusDefault,
	} {
		t.Run(status.String(), func(t *testing.T) {
			view := CaseView{
				Status:          status,
				Balance:         outstandingBalance(),
				Installments:    []model.ScheduleInstallment{settledInstallment(now)},
				HasDisbursement: true,
			}
			got, changed := evaluator.Evaluate(view, now)
			assert.True(t, changed)
			assert.True(t, got.Equal(valueobject.StatusActive))
		})
	}
}

func TestEvaluatePayoff(t *testing.T) {
	evaluator := NewStatusEvaluator(testPolicy)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	zero := model.BalanceSnapshot{CaseID: "case-1", TotalOutstanding: decimal.Zero, IsCurrent: true}

	t.Run("zero balance with settled schedule pays off", func(t *testing.T) {
		view := CaseView{
			Status:          valueobject.StatusActive,
			Balance:         zero,
			Installments:    []model.ScheduleInstallment{settledInstallment(now)},
			HasDisbursement: true,
		}
		got, changed := evaluator.Evaluate(view, now)
		assert.True(t, changed)
		assert.True(t, got.Equal(valueobject.StatusPaidOff))
	})

	t.Run("payoff overrides administrative holds", func(t *testing.T) {
		view := CaseView{
			Status:          valueobject.StatusForbearance,
			Balance:         zero,
			Installments:    []model.ScheduleInstallment{settledInstallment(now)},
			HasDisbursement: true,
		}
		got, changed := evaluator.Evaluate(view, now)
		assert.True(t, changed)
		assert.True(t, got.Equal(valueobject.StatusPaidOff))
	})

	t.Run("zero balance with open installments does not pay off", func(t *testing.T) {
		view := CaseView{
			Status:          valueobject.StatusActive,
			Balance:         zero,
			Installments:    []model.ScheduleInstallment{overdueInstallment(0, now.AddDate(0, 1, 0))},
			HasDisbursement: true,
		}
		_, changed := evaluator.Evaluate(view, now)
		assert.False(t, changed)
	})
}

func TestEvaluateAdministrativeHolds(t *testing.T) {
	evaluator := NewStatusEvaluator(testPolicy)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, status := range []valueobject.ServicingStatus{
		valueobject.StatusForbearance,
		valueobject.StatusBankruptcy,
		valueobject.StatusForeclosure,
	} {
		t.Run(status.String(), func(t *testing.T) {
			view := CaseView{
				Status:          status,
				Balance:         outstandingBalance(),
				Installments:    []model.ScheduleInstallment{overdueInstallment(200, now)},
				HasDisbursement: true,
			}
			got, changed := evaluator.Evaluate(view, now)
			assert.False(t, changed, "holds are never overridden by aging")
			assert.True(t, got.Equal(status))
		})
	}
}

func TestEvaluateTerminalStates(t *testing.T) {
	evaluator := NewStatusEvaluator(testPolicy)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, status := range []valueobject.ServicingStatus{
		valueobject.StatusClosed,
		valueobject.StatusChargedOff,
		valueobject.StatusTransferred,
		valueobject.StatusCancelled,
	} {
		t.Run(status.String(), func(t *testing.T) {
			view := CaseView{
				Status:          status,
				Balance:         outstandingBalance(),
				Installments:    []model.ScheduleInstallment{overdueInstallment(200, now)},
				HasDisbursement: true,
			}
			_, changed := evaluator.Evaluate(view, now)
			assert.False(t, changed)
		})
	}
}

func TestEvaluatePendingActivation(t *testing.T) {
	evaluator := NewStatusEvaluator(testPolicy)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("first disbursement activates", func(t *testing.T) {
		view := CaseView{
			Status:          valueobject.StatusPending,
			Balance:         outstandingBalance(),
			HasDisbursement: true,
		}
		got, changed := evaluator.Evaluate(view, now)
		assert.True(t, changed)
		assert.True(t, got.Equal(valueobject.StatusActive))
	})

	t.Run("no disbursement stays pending", func(t *testing.T) {
		view := CaseView{
			Status:  valueobject.StatusPending,
			Balance: model.BalanceSnapshot{TotalOutstanding: decimal.Zero},
		}
		_, changed := evaluator.Evaluate(view, now)
		assert.False(t, changed)
	})
}

func TestEvaluateRestructuredReturnsToActive(t *testing.T) {
	evaluator := NewStatusEvaluator(testPolicy)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	future := overdueInstallment(0, now.AddDate(0, 1, 0))

	t.Run("after first settled installment", func(t *testing.T) {
		view := CaseView{
			Status:          valueobject.StatusRestructured,
			Balance:         outstandingBalance(),
			Installments:    []model.ScheduleInstallment{settledInstallment(now), future},
			HasDisbursement: true,
		}
		got, changed := evaluator.Evaluate(view, now)
		assert.True(t, changed)
		assert.True(t, got.Equal(valueobject.StatusActive))
	})

	t.Run("stays restructured until something settles", func(t *testing.T) {
		view := CaseView{
			Status:          valueobject.StatusRestructured,
			Balance:         outstandingBalance(),
			Installments:    []model.ScheduleInstallment{future},
			HasDisbursement: true,
		}
		_, changed := evaluator.Evaluate(view, now)
		assert.False(t, changed)
	})
}
