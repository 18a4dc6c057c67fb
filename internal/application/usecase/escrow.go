package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/application/dto"
	"github.com/lumenbank/servicing/internal/domain/event"
	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/port"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// EscrowUseCase manages escrow accounts attached to a servicing case:
// periodic analysis results, deposits collected with installments, and
// disbursements to tax or insurance payees.
type EscrowUseCase struct {
	caseRepo   port.CaseRepository
	escrowRepo port.EscrowRepository
	atomic     port.Atomic
	publisher  port.EventPublisher
	locks      *CaseLocks
	logger     *slog.Logger
}

// NewEscrowUseCase wires dependencies.
func NewEscrowUseCase(
	caseRepo port.CaseRepository,
	escrowRepo port.EscrowRepository,
	atomic port.Atomic,
	publisher port.EventPublisher,
	locks *CaseLocks,
	logger *slog.Logger,
) *EscrowUseCase {
	return &EscrowUseCase{
		caseRepo:   caseRepo,
		escrowRepo: escrowRepo,
		atomic:     atomic,
		publisher:  publisher,
		locks:      locks,
		logger:     logger,
	}
}

// Analyze records an externally computed analysis result. When the request
// names no escrow account, a new active one is opened for the case.
func (uc *EscrowUseCase) Analyze(ctx context.Context, req dto.EscrowAnalysisRequest) (dto.EscrowResponse, error) {
	unlock := uc.locks.Lock(req.CaseID)
	defer unlock()

	if _, err := uc.caseRepo.FindByID(ctx, req.TenantID, req.CaseID); err != nil {
		return dto.EscrowResponse{}, fmt.Errorf("find case: %w", err)
	}

	account, err := uc.loadOrOpen(ctx, req.CaseID, req.EscrowID)
	if err != nil {
		return dto.EscrowResponse{}, err
	}

	account, err = account.RecordAnalysis(req.MonthlyPayment, req.AnalysisDate, req.NextAnalysisDate)
	if err != nil {
		return dto.EscrowResponse{}, err
	}

	err = uc.atomic.Atomic(ctx, func(ctx context.Context) error {
		return uc.escrowRepo.Save(ctx, account)
	})
	if err != nil {
		return dto.EscrowResponse{}, fmt.Errorf("save escrow account: %w", err)
	}

	publish(ctx, uc.logger, uc.publisher, event.NewEscrowAnalyzed(
		req.CaseID, req.TenantID, account.EscrowID, account.MonthlyPaymentAmount,
	))

	return dto.FromEscrow(account), nil
}

// Deposit adds collected funds to an escrow account.
func (uc *EscrowUseCase) Deposit(ctx context.Context, req dto.EscrowMovementRequest) (dto.EscrowResponse, error) {
	return uc.move(ctx, req, model.EscrowAccount.Deposit)
}

// Disburse pays funds out of an escrow account.
func (uc *EscrowUseCase) Disburse(ctx context.Context, req dto.EscrowMovementRequest) (dto.EscrowResponse, error) {
	return uc.move(ctx, req, model.EscrowAccount.Disburse)
}

func (uc *EscrowUseCase) move(
	ctx context.Context,
	req dto.EscrowMovementRequest,
	apply func(model.EscrowAccount, decimal.Decimal) (model.EscrowAccount, error),
) (dto.EscrowResponse, error) {
	unlock := uc.locks.Lock(req.CaseID)
	defer unlock()

	if _, err := uc.caseRepo.FindByID(ctx, req.TenantID, req.CaseID); err != nil {
		return dto.EscrowResponse{}, fmt.Errorf("find case: %w", err)
	}

	account, err := uc.escrowRepo.FindByID(ctx, req.EscrowID)
	if err != nil {
		return dto.EscrowResponse{}, fmt.Errorf("find escrow account: %w", err)
	}
	if account.CaseID != req.CaseID {
		return dto.EscrowResponse{}, fmt.Errorf("%w: %s", valueobject.ErrEscrowNotFound, req.EscrowID)
	}

	account, err = apply(account, req.Amount)
	if err != nil {
		return dto.EscrowResponse{}, err
	}

	err = uc.atomic.Atomic(ctx, func(ctx context.Context) error {
		return uc.escrowRepo.Save(ctx, account)
	})
	if err != nil {
		return dto.EscrowResponse{}, fmt.Errorf("save escrow account: %w", err)
	}

	return dto.FromEscrow(account), nil
}

func (uc *EscrowUseCase) loadOrOpen(ctx context.Context, caseID, escrowID string) (model.EscrowAccount, error) {
	if escrowID == "" {
		return model.EscrowAccount{
			EscrowID: uuid.New().String(),
			CaseID:   caseID,
			Type:     "GENERAL",
			IsActive: true,
		}, nil
	}

	account, err := uc.escrowRepo.FindByID(ctx, escrowID)
	if err != nil {
		if errors.Is(err, valueobject.ErrEscrowNotFound) {
			return model.EscrowAccount{}, err
		}
		return model.EscrowAccount{}, fmt.Errorf("find escrow account: %w", err)
	}
	if account.CaseID != caseID {
		return model.EscrowAccount{}, fmt.Errorf("%w: %s", valueobject.ErrEscrowNotFound, escrowID)
	}
	return account, nil
}
