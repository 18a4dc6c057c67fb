package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumenbank/servicing/internal/application/dto"
	"github.com/lumenbank/servicing/internal/domain/port"
)

// TransitionCaseUseCase applies an administrative status transition such as
// entering forbearance or closing a paid-off case. The transition table in
// the domain model decides legality.
type TransitionCaseUseCase struct {
	caseRepo  port.CaseRepository
	atomic    port.Atomic
	publisher port.EventPublisher
	locks     *CaseLocks
	logger    *slog.Logger
}

// NewTransitionCaseUseCase wires dependencies.
func NewTransitionCaseUseCase(
	caseRepo port.CaseRepository,
	atomic port.Atomic,
	publisher port.EventPublisher,
	locks *CaseLocks,
	logger *slog.Logger,
) *TransitionCaseUseCase {
	return &TransitionCaseUseCase{
		caseRepo:  caseRepo,
		atomic:    atomic,
		publisher: publisher,
		locks:     locks,
		logger:    logger,
	}
}

// Execute transitions a case to the requested status.
func (uc *TransitionCaseUseCase) Execute(ctx context.Context, req dto.TransitionCaseRequest) (dto.CaseResponse, error) {
	now := time.Now().UTC()

	unlock := uc.locks.Lock(req.CaseID)
	defer unlock()

	c, err := uc.caseRepo.FindByID(ctx, req.TenantID, req.CaseID)
	if err != nil {
		return dto.CaseResponse{}, fmt.Errorf("find case: %w", err)
	}

	c, err = c.Transition(req.Target, now)
	if err != nil {
		return dto.CaseResponse{}, err
	}

	err = uc.atomic.Atomic(ctx, func(ctx context.Context) error {
		return uc.caseRepo.Save(ctx, c)
	})
	if err != nil {
		return dto.CaseResponse{}, fmt.Errorf("save case: %w", err)
	}

	publish(ctx, uc.logger, uc.publisher, c.DomainEvents()...)

	return dto.FromCase(c, nil), nil
}
