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

// CreateCaseUseCase opens a servicing case at origination: it generates the
// first schedule version, seeds the zero balance snapshot, and records the
// disbursement plan.
type CreateCaseUseCase struct {
	caseRepo     port.CaseRepository
	balanceRepo  port.BalanceRepository
	scheduleRepo port.ScheduleRepository
	disbRepo     port.DisbursementRepository
	atomic       port.Atomic
	publisher    port.EventPublisher
	engine       service.AmortizationEngine
	tracker      service.DisbursementTracker
	logger       *slog.Logger
}

// NewCreateCaseUseCase wires dependencies.
func NewCreateCaseUseCase(
	caseRepo port.CaseRepository,
	balanceRepo port.BalanceRepository,
	scheduleRepo port.ScheduleRepository,
	disbRepo port.DisbursementRepository,
	atomic port.Atomic,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *CreateCaseUseCase {
	return &CreateCaseUseCase{
		caseRepo:     caseRepo,
		balanceRepo:  balanceRepo,
		scheduleRepo: scheduleRepo,
		disbRepo:     disbRepo,
		atomic:       atomic,
		publisher:    publisher,
		engine:       service.NewAmortizationEngine(),
		tracker:      service.NewDisbursementTracker(),
		logger:       logger,
	}
}

// Execute creates the case in PENDING status.
func (uc *CreateCaseUseCase) Execute(ctx context.Context, req dto.CreateCaseRequest) (dto.CaseResponse, error) {
	now := time.Now().UTC()

	c, err := model.NewLoanServicingCase(
		req.TenantID, req.ContractID, req.ProductID, req.ApplicationID,
		req.Terms, req.OriginationDate, now,
	)
	if err != nil {
		return dto.CaseResponse{}, fmt.Errorf("create case: %w", err)
	}

	installments, err := uc.engine.Generate(req.Terms, req.OriginationDate, 1)
	if err != nil {
		return dto.CaseResponse{}, fmt.Errorf("generate schedule: %w", err)
	}
	for i := range installments {
		installments[i].InstallmentID = uuid.New().String()
		installments[i].CaseID = c.ID()
		installments[i].ScheduleVersion = c.ScheduleVersion()
	}

	planEntries := make([]model.DisbursementPlanEntry, 0, len(req.Plan))
	for i, p := range req.Plan {
		entry, err := uc.tracker.NewPlanEntry(c.ID(), i+1, p.PlannedDate, p.PlannedAmount, nil)
		if err != nil {
			return dto.CaseResponse{}, fmt.Errorf("plan entry %d: %w", i+1, err)
		}
		planEntries = append(planEntries, entry)
	}

	snapshot := model.ZeroSnapshot(uuid.New().String(), c.ID(), now)

	err = uc.atomic.Atomic(ctx, func(ctx context.Context) error {
		if err := uc.caseRepo.Save(ctx, c); err != nil {
			return fmt.Errorf("save case: %w", err)
		}
		if err := uc.balanceRepo.Append(ctx, snapshot); err != nil {
			return fmt.Errorf("seed balance: %w", err)
		}
		if err := uc.scheduleRepo.SaveBatch(ctx, installments); err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}
		for _, entry := range planEntries {
			if err := uc.disbRepo.SavePlanEntry(ctx, entry); err != nil {
				return fmt.Errorf("save plan entry %d: %w", entry.SequenceNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return dto.CaseResponse{}, err
	}

	publish(ctx, uc.logger, uc.publisher, c.DomainEvents()...)

	return dto.FromCase(c, installments), nil
}
