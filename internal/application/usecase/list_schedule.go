package usecase

import (
	"context"
	"fmt"

	"github.com/lumenbank/servicing/internal/application/dto"
	"github.com/lumenbank/servicing/internal/domain/port"
)

// ListScheduleUseCase returns the active schedule version for a case,
// ordered by installment number.
type ListScheduleUseCase struct {
	caseRepo     port.CaseRepository
	scheduleRepo port.ScheduleRepository
}

// NewListScheduleUseCase wires dependencies.
func NewListScheduleUseCase(caseRepo port.CaseRepository, scheduleRepo port.ScheduleRepository) *ListScheduleUseCase {
	return &ListScheduleUseCase{caseRepo: caseRepo, scheduleRepo: scheduleRepo}
}

// Execute lists the unsuperseded installments of a case.
func (uc *ListScheduleUseCase) Execute(ctx context.Context, tenantID, caseID string) ([]dto.InstallmentResponse, error) {
	if _, err := uc.caseRepo.FindByID(ctx, tenantID, caseID); err != nil {
		return nil, fmt.Errorf("find case: %w", err)
	}

	installments, err := uc.scheduleRepo.ActiveInstallments(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	entries := make([]dto.InstallmentResponse, len(installments))
	for i, inst := range installments {
		entries[i] = dto.FromInstallment(inst)
	}
	return entries, nil
}
