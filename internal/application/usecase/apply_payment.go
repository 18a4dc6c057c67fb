package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/application/dto"
	"github.com/lumenbank/servicing/internal/domain/event"
	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/port"
	"github.com/lumenbank/servicing/internal/domain/service"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// ApplyPaymentUseCase reconciles a payment against the schedule and the
// balance ledger as one logical transaction, then re-evaluates the case
// status. A request without an installment target is pre-allocated FIFO
// across the oldest unpaid installments.
type ApplyPaymentUseCase struct {
	caseRepo     port.CaseRepository
	balanceRepo  port.BalanceRepository
	scheduleRepo port.ScheduleRepository
	paymentRepo  port.PaymentRepository
	atomic       port.Atomic
	publisher    port.EventPublisher
	cache        port.BalanceCache
	reconciler   service.ScheduleReconciler
	ledger       service.BalanceLedger
	evaluator    service.StatusEvaluator
	locks        *CaseLocks
	logger       *slog.Logger
}

// NewApplyPaymentUseCase wires dependencies.
func NewApplyPaymentUseCase(
	caseRepo port.CaseRepository,
	balanceRepo port.BalanceRepository,
	scheduleRepo port.ScheduleRepository,
	paymentRepo port.PaymentRepository,
	atomic port.Atomic,
	publisher port.EventPublisher,
	cache port.BalanceCache,
	evaluator service.StatusEvaluator,
	locks *CaseLocks,
	logger *slog.Logger,
) *ApplyPaymentUseCase {
	return &ApplyPaymentUseCase{
		caseRepo:     caseRepo,
		balanceRepo:  balanceRepo,
		scheduleRepo: scheduleRepo,
		paymentRepo:  paymentRepo,
		atomic:       atomic,
		publisher:    publisher,
		cache:        cache,
		reconciler:   service.NewScheduleReconciler(),
		ledger:       service.NewBalanceLedger(),
		evaluator:    evaluator,
		locks:        locks,
		logger:       logger,
	}
}

// Execute applies a payment for a case.
func (uc *ApplyPaymentUseCase) Execute(ctx context.Context, req dto.ApplyPaymentRequest) (dto.PaymentResponse, error) {
	now := time.Now().UTC()

	unlock := uc.locks.Lock(req.CaseID)
	defer unlock()

	c, err := uc.caseRepo.FindByID(ctx, req.TenantID, req.CaseID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find case: %w", err)
	}

	// Case-level idempotency. The reconciler rejects a transaction replayed
	// against the same installment, but an unallocated replay lands on later
	// installments once the first application settled the oldest ones, so the
	// source ID has to be checked before allocation.
	seen, err := uc.paymentRepo.ExistsTransaction(ctx, req.CaseID, req.TransactionID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("check transaction: %w", err)
	}
	if seen {
		return dto.PaymentResponse{}, fmt.Errorf("%w: transaction %s already applied to case %s",
			valueobject.ErrDuplicateEvent, req.TransactionID, req.CaseID)
	}

	slices, err := uc.allocate(ctx, req)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	snapshot, err := uc.balanceRepo.Current(ctx, req.CaseID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("load current balance: %w", err)
	}

	var (
		results   []service.ReconciliationResult
		snapshots []model.BalanceSnapshot
	)
	for _, slice := range slices {
		inst, err := uc.scheduleRepo.InstallmentByID(ctx, slice.InstallmentID)
		if err != nil {
			return dto.PaymentResponse{}, err
		}
		// The schema allows a record to point at another case's schedule
		// entry; reject that here.
		if inst.CaseID != req.CaseID {
			return dto.PaymentResponse{}, fmt.Errorf("%w: installment %s belongs to case %s",
				valueobject.ErrInstallmentNotFound, slice.InstallmentID, inst.CaseID)
		}

		prior, err := uc.paymentRepo.ByInstallment(ctx, slice.InstallmentID)
		if err != nil {
			return dto.PaymentResponse{}, fmt.Errorf("load payment records: %w", err)
		}

		res, err := uc.reconciler.ApplyPayment(inst, prior, slice.TransactionID, slice.Amount, req.Date)
		if err != nil {
			return dto.PaymentResponse{}, err
		}
		res.Record.SourceTransactionID = req.TransactionID
		results = append(results, res)

		snapshot, err = uc.ledger.Apply(snapshot, res.Delta, uuid.New().String(), now)
		if err != nil {
			return dto.PaymentResponse{}, err
		}
		snapshots = append(snapshots, snapshot)
	}

	installments, err := uc.scheduleRepo.ActiveInstallments(ctx, req.CaseID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("load schedule: %w", err)
	}
	merged := overlayResults(installments, results)

	c, caseChanged, err := evaluateStatus(uc.evaluator, c, snapshot, merged, true, now)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	err = uc.atomic.Atomic(ctx, func(ctx context.Context) error {
		for _, res := range results {
			if err := uc.scheduleRepo.Update(ctx, res.Installment); err != nil {
				return fmt.Errorf("update installment: %w", err)
			}
			if err := uc.paymentRepo.Append(ctx, res.Record); err != nil {
				return fmt.Errorf("append payment record: %w", err)
			}
		}
		for _, s := range snapshots {
			if err := uc.balanceRepo.Append(ctx, s); err != nil {
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
		return dto.PaymentResponse{}, err
	}

	invalidate(ctx, uc.logger, uc.cache, req.CaseID)

	published := append([]event.DomainEvent{}, c.DomainEvents()...)
	for _, res := range results {
		published = append(published, event.NewPaymentApplied(
			req.CaseID, req.TenantID, res.Installment.InstallmentID,
			res.Record.TransactionID, res.Record.Amount,
			res.Installment.IsPaid, snapshot.TotalOutstanding,
		))
	}
	publish(ctx, uc.logger, uc.publisher, published...)

	resp := dto.PaymentResponse{
		CaseID:     req.CaseID,
		Status:     c.Status().String(),
		NewBalance: dto.FromSnapshot(snapshot),
	}
	for _, res := range results {
		resp.Records = append(resp.Records, dto.PaymentRecordResponse{
			RecordID:      res.Record.RecordID,
			InstallmentID: res.Record.InstallmentID,
			TransactionID: res.Record.TransactionID,
			Amount:        res.Record.Amount,
			IsPartial:     res.Record.IsPartial,
		})
		if res.Installment.IsPaid {
			resp.Settled = append(resp.Settled, res.Installment.InstallmentID)
		}
	}
	return resp, nil
}

// allocatedSlice is one (installment, amount) application.
type allocatedSlice struct {
	InstallmentID string
	TransactionID string
	Amount        decimal.Decimal
}

// allocate resolves the request into per-installment slices. A targeted
// request maps 1:1; an unallocated one is split FIFO across the oldest
// unpaid installments, each slice carrying a derived transaction id.
func (uc *ApplyPaymentUseCase) allocate(ctx context.Context, req dto.ApplyPaymentRequest) ([]allocatedSlice, error) {
	if req.InstallmentID != "" {
		return []allocatedSlice{{
			InstallmentID: req.InstallmentID,
			TransactionID: req.TransactionID,
			Amount:        req.Amount,
		}}, nil
	}

	installments, err := uc.scheduleRepo.ActiveInstallments(ctx, req.CaseID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	proposed, err := uc.reconciler.AllocatePayment(installments, req.Amount)
	if err != nil {
		return nil, err
	}

	slices := make([]allocatedSlice, len(proposed))
	for i, p := range proposed {
		txID := req.TransactionID
		if len(proposed) > 1 {
			txID = fmt.Sprintf("%s/%d", req.TransactionID, i+1)
		}
		slices[i] = allocatedSlice{
			InstallmentID: p.InstallmentID,
			TransactionID: txID,
			Amount:        p.Amount,
		}
	}
	return slices, nil
}

// overlayResults replaces installments in the active schedule with their
// freshly reconciled versions so the status evaluation sees this payment.
func overlayResults(installments []model.ScheduleInstallment, results []service.ReconciliationResult) []model.ScheduleInstallment {
	updated := make(map[string]model.ScheduleInstallment, len(results))
	for _, res := range results {
		updated[res.Installment.InstallmentID] = res.Installment
	}
	merged := make([]model.ScheduleInstallment, len(installments))
	for i, inst := range installments {
		if u, ok := updated[inst.InstallmentID]; ok {
			merged[i] = u
		} else {
			merged[i] = inst
		}
	}
	return merged
}
