package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumenbank/servicing/internal/application/dto"
	"github.com/lumenbank/servicing/internal/domain/port"
)

// GetBalanceUseCase serves the current balance snapshot, cache-aside.
type GetBalanceUseCase struct {
	caseRepo    port.CaseRepository
	balanceRepo port.BalanceRepository
	cache       port.BalanceCache
	logger      *slog.Logger
}

// NewGetBalanceUseCase wires dependencies.
func NewGetBalanceUseCase(
	caseRepo port.CaseRepository,
	balanceRepo port.BalanceRepository,
	cache port.BalanceCache,
	logger *slog.Logger,
) *GetBalanceUseCase {
	return &GetBalanceUseCase{
		caseRepo:    caseRepo,
		balanceRepo: balanceRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Execute returns the current balance for a case.
func (uc *GetBalanceUseCase) Execute(ctx context.Context, tenantID, caseID string) (dto.BalanceResponse, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, caseID)
		if err != nil {
			uc.logger.WarnContext(ctx, "balance cache read failed", "error", err, "case_id", caseID)
		} else if cached != nil {
			return dto.FromSnapshot(*cached), nil
		}
	}

	if _, err := uc.caseRepo.FindByID(ctx, tenantID, caseID); err != nil {
		return dto.BalanceResponse{}, fmt.Errorf("find case: %w", err)
	}

	snapshot, err := uc.balanceRepo.Current(ctx, caseID)
	if err != nil {
		return dto.BalanceResponse{}, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, snapshot); err != nil {
			uc.logger.WarnContext(ctx, "balance cache write failed", "error", err, "case_id", caseID)
		}
	}

	return dto.FromSnapshot(snapshot), nil
}
