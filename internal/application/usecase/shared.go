package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/lumenbank/servicing/internal/domain/event"
	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/port"
	"github.com/lumenbank/servicing/internal/domain/service"
)

// publish dispatches domain events fire-and-forget: it runs after the atomic
// unit commits and a publish failure is logged, never surfaced to the caller.
func publish(ctx context.Context, logger *slog.Logger, publisher port.EventPublisher, events ...event.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.WarnContext(ctx, "failed to publish domain events", "error", err, "count", len(events))
	}
}

// invalidate drops the cached current balance for a case after a ledger
// mutation. Best effort.
func invalidate(ctx context.Context, logger *slog.Logger, cache port.BalanceCache, caseID string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, caseID); err != nil {
		logger.WarnContext(ctx, "failed to invalidate balance cache", "error", err, "case_id", caseID)
	}
}

// evaluateStatus runs the status evaluator against the case's current view
// and applies the resulting transition, if any. The returned bool reports
// whether the case changed.
func evaluateStatus(
	evaluator service.StatusEvaluator,
	c model.LoanServicingCase,
	balance model.BalanceSnapshot,
	installments []model.ScheduleInstallment,
	hasDisbursement bool,
	now time.Time,
) (model.LoanServicingCase, bool, error) {
	target, changed := evaluator.Evaluate(service.CaseView{
		Status:          c.Status(),
		Balance:         balance,
		Installments:    installments,
		HasDisbursement: hasDisbursement,
	}, now)
	if !changed {
		return c, false, nil
	}

	next, err := c.Transition(target, now)
	if err != nil {
		return c, false, err
	}
	return next, true, nil
}
