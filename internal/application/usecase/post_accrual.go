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

// PostAccrualUseCase adds an interest or fee accrual to the case balance.
type PostAccrualUseCase struct {
	caseRepo    port.CaseRepository
	balanceRepo port.BalanceRepository
	atomic      port.Atomic
	publisher   port.EventPublisher
	cache       port.BalanceCache
	ledger      service.BalanceLedger
	locks       *CaseLocks
	logger      *slog.Logger
}

// NewPostAccrualUseCase wires dependencies.
func NewPostAccrualUseCase(
	caseRepo port.CaseRepository,
	balanceRepo port.BalanceRepository,
	atomic port.Atomic,
	publisher port.EventPublisher,
	cache port.BalanceCache,
	locks *CaseLocks,
	logger *slog.Logger,
) *PostAccrualUseCase {
	return &PostAccrualUseCase{
		caseRepo:    caseRepo,
		balanceRepo: balanceRepo,
		atomic:      atomic,
		publisher:   publisher,
		cache:       cache,
		ledger:      service.NewBalanceLedger(),
		locks:       locks,
		logger:      logger,
	}
}

// Execute posts one accrual to the ledger.
func (uc *PostAccrualUseCase) Execute(ctx context.Context, req dto.PostAccrualRequest) (dto.BalanceResponse, error) {
	now := time.Now().UTC()

	unlock := uc.locks.Lock(req.CaseID)
	defer unlock()

	if _, err := uc.caseRepo.FindByID(ctx, req.TenantID, req.CaseID); err != nil {
		return dto.BalanceResponse{}, fmt.Errorf("find case: %w", err)
	}

	current, err := uc.balanceRepo.Current(ctx, req.CaseID)
	if err != nil {
		return dto.BalanceResponse{}, fmt.Errorf("load current balance: %w", err)
	}

	snapshot, err := uc.ledger.Apply(current, model.AccrualPosted{
		Amount: req.Amount,
		Type:   req.Type,
	}, uuid.New().String(), now)
	if err != nil {
		return dto.BalanceResponse{}, err
	}

	err = uc.atomic.Atomic(ctx, func(ctx context.Context) error {
		return uc.balanceRepo.Append(ctx, snapshot)
	})
	if err != nil {
		return dto.BalanceResponse{}, err
	}

	invalidate(ctx, uc.logger, uc.cache, req.CaseID)

	publish(ctx, uc.logger, uc.publisher, event.NewAccrualPosted(
		req.CaseID, req.TenantID, req.Type.String(), req.Amount, snapshot.TotalOutstanding,
	))

	return dto.FromSnapshot(snapshot), nil
}
