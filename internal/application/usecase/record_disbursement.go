package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumenbank/servicing/internal/application/dto"
	"github.com/lumenbank/servicing/internal/domain/event"
	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/port"
	"github.com/lumenbank/servicing/internal/domain/service"
)

// RecordDisbursementUseCase appends a disbursement event, fulfils the plan
// entry it targets, forwards the ledger delta, and re-evaluates the case
// status, all as one atomic unit per case.
type RecordDisbursementUseCase struct {
	caseRepo     port.CaseRepository
	balanceRepo  port.BalanceRepository
	scheduleRepo port.ScheduleRepository
	disbRepo     port.DisbursementRepository
	atomic       port.Atomic
	publisher    port.EventPublisher
	cache        port.BalanceCache
	tracker      service.DisbursementTracker
	ledger       service.BalanceLedger
	evaluator    service.StatusEvaluator
	locks        *CaseLocks
	logger       *slog.Logger
}

// NewRecordDisbursementUseCase wires dependencies.
func NewRecordDisbursementUseCase(
	caseRepo port.CaseRepository,
	balanceRepo port.BalanceRepository,
	scheduleRepo port.ScheduleRepository,
	disbRepo port.DisbursementRepository,
	atomic port.Atomic,
	publisher port.EventPublisher,
	cache port.BalanceCache,
	evaluator service.StatusEvaluator,
	locks *CaseLocks,
	logger *slog.Logger,
) *RecordDisbursementUseCase {
	return &RecordDisbursementUseCase{
		caseRepo:     caseRepo,
		balanceRepo:  balanceRepo,
		scheduleRepo: scheduleRepo,
		disbRepo:     disbRepo,
		atomic:       atomic,
		publisher:    publisher,
		cache:        cache,
		tracker:      service.NewDisbursementTracker(),
		ledger:       service.NewBalanceLedger(),
		evaluator:    evaluator,
		locks:        locks,
		logger:       logger,
	}
}

// Execute records one disbursement event for a case.
func (uc *RecordDisbursementUseCase) Execute(
	ctx context.Context,
	req dto.RecordDisbursementRequest,
) (dto.DisbursementResponse, error) {
	now := time.Now().UTC()

	unlock := uc.locks.Lock(req.CaseID)
	defer unlock()

	c, err := uc.caseRepo.FindByID(ctx, req.TenantID, req.CaseID)
	if err != nil {
		return dto.DisbursementResponse{}, fmt.Errorf("find case: %w", err)
	}

	var entry *model.DisbursementPlanEntry
	if req.PlanEntryID != "" {
		e, err := uc.disbRepo.PlanEntryByID(ctx, req.PlanEntryID)
		if err != nil {
			return dto.DisbursementResponse{}, fmt.Errorf("find plan entry: %w", err)
		}
		entry = &e
	}

	prior, err := uc.disbRepo.Events(ctx, req.CaseID)
	if err != nil {
		return dto.DisbursementResponse{}, fmt.Errorf("load disbursement events: %w", err)
	}

	outcome, err := uc.tracker.Record(service.DisbursementRequest{
		CaseID:          req.CaseID,
		PlanEntryID:     req.PlanEntryID,
		ReferenceID:     req.ReferenceID,
		ReversesEventID: req.ReversesEventID,
		Amount:          req.Amount,
		Date:            req.Date,
		Method:          req.Method,
		Status:          req.Status,
		IsFinal:         req.IsFinal,
	}, entry, prior)
	if err != nil {
		return dto.DisbursementResponse{}, err
	}

	var newSnapshot *model.BalanceSnapshot
	if outcome.Delta != nil {
		current, err := uc.balanceRepo.Current(ctx, req.CaseID)
		if err != nil {
			return dto.DisbursementResponse{}, fmt.Errorf("load current balance: %w", err)
		}
		s, err := uc.ledger.Apply(current, outcome.Delta, uuid.New().String(), now)
		if err != nil {
			return dto.DisbursementResponse{}, err
		}
		newSnapshot = &s
	}

	caseChanged := false
	if newSnapshot != nil {
		installments, err := uc.scheduleRepo.ActiveInstallments(ctx, req.CaseID)
		if err != nil {
			return dto.DisbursementResponse{}, fmt.Errorf("load schedule: %w", err)
		}
		c, caseChanged, err = evaluateStatus(uc.evaluator, c, *newSnapshot, installments, true, now)
		if err != nil {
			return dto.DisbursementResponse{}, err
		}
	}

	err = uc.atomic.Atomic(ctx, func(ctx context.Context) error {
		if err := uc.disbRepo.AppendEvent(ctx, outcome.Event); err != nil {
			return fmt.Errorf("append disbursement event: %w", err)
		}
		if outcome.PlanEntry != nil {
			if err := uc.disbRepo.SavePlanEntry(ctx, *outcome.PlanEntry); err != nil {
				return fmt.Errorf("save plan entry: %w", err)
			}
		}
		if newSnapshot != nil {
			if err := uc.balanceRepo.Append(ctx, *newSnapshot); err != nil {
				return fmt.Errorf("append balance snapshot: %w", err)
			}
		}
		if caseChanged {
			if err := uc.caseRepo.Save(ctx, c); err != nil {
				return fmt.Errorf("save case: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return dto.DisbursementResponse{}, err
	}

	invalidate(ctx, uc.logger, uc.cache, req.CaseID)

	published := append([]event.DomainEvent{}, c.DomainEvents()...)
	published = append(published, event.NewDisbursementRecorded(
		req.CaseID, req.TenantID, outcome.Event.EventID, req.PlanEntryID,
		req.Amount, req.Status.String(), req.IsFinal,
	))
	publish(ctx, uc.logger, uc.publisher, published...)

	resp := dto.DisbursementResponse{
		EventID:    outcome.Event.EventID,
		CaseID:     req.CaseID,
		Status:     outcome.Event.Status.String(),
		CaseStatus: c.Status().String(),
	}
	if newSnapshot != nil {
		b := dto.FromSnapshot(*newSnapshot)
		resp.NewBalance = &b
	}
	return resp, nil
}
