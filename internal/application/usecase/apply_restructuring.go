package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumenbank/servicing/internal/application/dto"
	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/port"
	"github.com/lumenbank/servicing/internal/domain/service"
)

// ApplyRestructuringUseCase performs the atomic term swap: it closes the
// schedule version active before the restructuring date, generates a new
// version from the new terms, resets the principal component, and updates
// the case's current term set.
type ApplyRestructuringUseCase struct {
	caseRepo          port.CaseRepository
	balanceRepo       port.BalanceRepository
	scheduleRepo      port.ScheduleRepository
	restructuringRepo port.RestructuringRepository
	atomic            port.Atomic
	publisher         port.EventPublisher
	cache             port.BalanceCache
	engine            service.AmortizationEngine
	ledger            service.BalanceLedger
	locks             *CaseLocks
	logger            *slog.Logger
}

// NewApplyRestructuringUseCase wires dependencies.
func NewApplyRestructuringUseCase(
	caseRepo port.CaseRepository,
	balanceRepo port.BalanceRepository,
	scheduleRepo port.ScheduleRepository,
	restructuringRepo port.RestructuringRepository,
	atomic port.Atomic,
	publisher port.EventPublisher,
	cache port.BalanceCache,
	locks *CaseLocks,
	logger *slog.Logger,
) *ApplyRestructuringUseCase {
	return &ApplyRestructuringUseCase{
		caseRepo:          caseRepo,
		balanceRepo:       balanceRepo,
		scheduleRepo:      scheduleRepo,
		restructuringRepo: restructuringRepo,
		atomic:            atomic,
		publisher:         publisher,
		cache:             cache,
		engine:            service.NewAmortizationEngine(),
		ledger:            service.NewBalanceLedger(),
		locks:             locks,
		logger:            logger,
	}
}

// Execute applies a restructuring to a case.
func (uc *ApplyRestructuringUseCase) Execute(
	ctx context.Context,
	req dto.ApplyRestructuringRequest,
) (dto.RestructuringResponse, error) {
	now := time.Now().UTC()

	unlock := uc.locks.Lock(req.CaseID)
	defer unlock()

	c, err := uc.caseRepo.FindByID(ctx, req.TenantID, req.CaseID)
	if err != nil {
		return dto.RestructuringResponse{}, fmt.Errorf("find case: %w", err)
	}

	r := model.Restructuring{
		RestructuringID: uuid.New().String(),
		CaseID:          req.CaseID,
		Date:            req.Date,
		OldTerms:        c.CurrentTerms(),
		NewTerms:        req.NewTerms,
		ApprovedBy:      req.ApprovedBy,
		ZeroInterest:    req.ZeroInterest,
		ZeroFees:        req.ZeroFees,
	}

	c, err = c.ApplyRestructuring(r, now)
	if err != nil {
		return dto.RestructuringResponse{}, err
	}

	// Installments due before the restructuring date stay untouched; the
	// new version continues their numbering.
	active, err := uc.scheduleRepo.ActiveInstallments(ctx, req.CaseID)
	if err != nil {
		return dto.RestructuringResponse{}, fmt.Errorf("load schedule: %w", err)
	}
	startNumber := 1
	for _, inst := range active {
		if inst.DueDate.Before(req.Date) && inst.InstallmentNumber >= startNumber {
			startNumber = inst.InstallmentNumber + 1
		}
	}

	generated, err := uc.engine.Generate(req.NewTerms, req.Date, startNumber)
	if err != nil {
		return dto.RestructuringResponse{}, fmt.Errorf("generate schedule: %w", err)
	}
	for i := range generated {
		generated[i].InstallmentID = uuid.New().String()
		generated[i].CaseID = c.ID()
		generated[i].ScheduleVersion = c.ScheduleVersion()
	}

	current, err := uc.balanceRepo.Current(ctx, req.CaseID)
	if err != nil {
		return dto.RestructuringResponse{}, fmt.Errorf("load current balance: %w", err)
	}
	snapshot, err := uc.ledger.Apply(current, model.RestructuringApplied{
		NewTerms:     req.NewTerms,
		ZeroInterest: req.ZeroInterest,
		ZeroFees:     req.ZeroFees,
	}, uuid.New().String(), now)
	if err != nil {
		return dto.RestructuringResponse{}, err
	}

	err = uc.atomic.Atomic(ctx, func(ctx context.Context) error {
		if err := uc.restructuringRepo.Append(ctx, r); err != nil {
			return fmt.Errorf("append restructuring: %w", err)
		}
		if err := uc.scheduleRepo.SupersedeFrom(ctx, req.CaseID, req.Date); err != nil {
			return fmt.Errorf("supersede schedule: %w", err)
		}
		if err := uc.scheduleRepo.SaveBatch(ctx, generated); err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}
		if err := uc.balanceRepo.Append(ctx, snapshot); err != nil {
			return fmt.Errorf("append balance snapshot: %w", err)
		}
		if err := uc.caseRepo.Save(ctx, c); err != nil {
			return fmt.Errorf("save case: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.RestructuringResponse{}, err
	}

	invalidate(ctx, uc.logger, uc.cache, req.CaseID)
	publish(ctx, uc.logger, uc.publisher, c.DomainEvents()...)

	entries := make([]dto.InstallmentResponse, len(generated))
	for i, inst := range generated {
		entries[i] = dto.FromInstallment(inst)
	}
	return dto.RestructuringResponse{
		RestructuringID: r.RestructuringID,
		CaseID:          req.CaseID,
		CaseStatus:      c.Status().String(),
		ScheduleVersion: c.ScheduleVersion(),
		NewBalance:      dto.FromSnapshot(snapshot),
		Schedule:        entries,
	}, nil
}
