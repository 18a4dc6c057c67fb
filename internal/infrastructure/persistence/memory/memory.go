package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// Store is an in-memory implementation of every repository port, intended for
// tests and local development. All maps share one mutex; use cases already
// serialize per case, the lock only guards map access.
type Store struct {
	mu            sync.RWMutex
	cases         map[string]model.LoanServicingCase
	snapshots     map[string][]model.BalanceSnapshot    // by case ID, append order
	installments  map[string]model.ScheduleInstallment  // by installment ID
	payments      map[string][]model.PaymentRecord      // by installment ID
	planEntries   map[string]model.DisbursementPlanEntry
	disbEvents    map[string][]model.DisbursementEvent  // by case ID
	restructuring map[string][]model.Restructuring      // by case ID
	escrow        map[string]model.EscrowAccount
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		cases:         make(map[string]model.LoanServicingCase),
		snapshots:     make(map[string][]model.BalanceSnapshot),
		installments:  make(map[string]model.ScheduleInstallment),
		payments:      make(map[string][]model.PaymentRecord),
		planEntries:   make(map[string]model.DisbursementPlanEntry),
		disbEvents:    make(map[string][]model.DisbursementEvent),
		restructuring: make(map[string][]model.Restructuring),
		escrow:        make(map[string]model.EscrowAccount),
	}
}

// Atomic satisfies port.Atomic. The store has no transaction semantics; fn
// runs directly.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Port method names collide across repositories (Append, Save, FindByID), so
// the store exposes one thin view per port.

func (s *Store) Cases() *CaseRepo                   { return &CaseRepo{s} }
func (s *Store) Balances() *BalanceRepo             { return &BalanceRepo{s} }
func (s *Store) Schedules() *ScheduleRepo           { return &ScheduleRepo{s} }
func (s *Store) Payments() *PaymentRepo             { return &PaymentRepo{s} }
func (s *Store) Disbursements() *DisbursementRepo   { return &DisbursementRepo{s} }
func (s *Store) Restructurings() *RestructuringRepo { return &RestructuringRepo{s} }
func (s *Store) Escrows() *EscrowRepo               { return &EscrowRepo{s} }

// CaseRepo implements port.CaseRepository.
type CaseRepo struct{ s *Store }

func (r *CaseRepo) Save(ctx context.Context, c model.LoanServicingCase) error {
	return r.s.saveCase(ctx, c)
}

func (r *CaseRepo) FindByID(ctx context.Context, tenantID, id string) (model.LoanServicingCase, error) {
	return r.s.findCase(ctx, tenantID, id)
}

// BalanceRepo implements port.BalanceRepository.
type BalanceRepo struct{ s *Store }

func (r *BalanceRepo) Current(ctx context.Context, caseID string) (model.BalanceSnapshot, error) {
	return r.s.currentSnapshot(ctx, caseID)
}

func (r *BalanceRepo) Append(ctx context.Context, snapshot model.BalanceSnapshot) error {
	return r.s.appendSnapshot(ctx, snapshot)
}

func (r *BalanceRepo) History(ctx context.Context, caseID string) ([]model.BalanceSnapshot, error) {
	return r.s.snapshotHistory(ctx, caseID)
}

// ScheduleRepo implements port.ScheduleRepository.
type ScheduleRepo struct{ s *Store }

func (r *ScheduleRepo) ActiveInstallments(ctx context.Context, caseID string) ([]model.ScheduleInstallment, error) {
	return r.s.activeInstallments(ctx, caseID)
}

func (r *ScheduleRepo) InstallmentByID(ctx context.Context, installmentID string) (model.ScheduleInstallment, error) {
	return r.s.installmentByID(ctx, installmentID)
}

func (r *ScheduleRepo) SaveBatch(ctx context.Context, installments []model.ScheduleInstallment) error {
	return r.s.saveInstallments(ctx, installments)
}

func (r *ScheduleRepo) Update(ctx context.Context, installment model.ScheduleInstallment) error {
	return r.s.updateInstallment(ctx, installment)
}

func (r *ScheduleRepo) SupersedeFrom(ctx context.Context, caseID string, from time.Time) error {
	return r.s.supersedeFrom(ctx, caseID, from)
}

// PaymentRepo implements port.PaymentRepository.
type PaymentRepo struct{ s *Store }

func (r *PaymentRepo) Append(ctx context.Context, record model.PaymentRecord) error {
	return r.s.appendPayment(ctx, record)
}

func (r *PaymentRepo) ByInstallment(ctx context.Context, installmentID string) ([]model.PaymentRecord, error) {
	return r.s.paymentsByInstallment(ctx, installmentID)
}

func (r *PaymentRepo) ExistsTransaction(ctx context.Context, caseID, sourceTransactionID string) (bool, error) {
	return r.s.paymentTransactionExists(ctx, caseID, sourceTransactionID)
}

// DisbursementRepo implements port.DisbursementRepository.
type DisbursementRepo struct{ s *Store }

func (r *DisbursementRepo) PlanEntries(ctx context.Context, caseID string) ([]model.DisbursementPlanEntry, error) {
	return r.s.planEntriesByCase(ctx, caseID)
}

func (r *DisbursementRepo) PlanEntryByID(ctx context.Context, planEntryID string) (model.DisbursementPlanEntry, error) {
	return r.s.planEntryByID(ctx, planEntryID)
}

func (r *DisbursementRepo) SavePlanEntry(ctx context.Context, entry model.DisbursementPlanEntry) error {
	return r.s.savePlanEntry(ctx, entry)
}

func (r *DisbursementRepo) Events(ctx context.Context, caseID string) ([]model.DisbursementEvent, error) {
	return r.s.disbursementEvents(ctx, caseID)
}

func (r *DisbursementRepo) AppendEvent(ctx context.Context, evt model.DisbursementEvent) error {
	return r.s.appendDisbursementEvent(ctx, evt)
}

// RestructuringRepo implements port.RestructuringRepository.
type RestructuringRepo struct{ s *Store }

func (r *RestructuringRepo) Append(ctx context.Context, rec model.Restructuring) error {
	return r.s.appendRestructuring(ctx, rec)
}

func (r *RestructuringRepo) ByCase(ctx context.Context, caseID string) ([]model.Restructuring, error) {
	return r.s.restructuringsByCase(ctx, caseID)
}

// EscrowRepo implements port.EscrowRepository.
type EscrowRepo struct{ s *Store }

func (r *EscrowRepo) FindByID(ctx context.Context, escrowID string) (model.EscrowAccount, error) {
	return r.s.escrowByID(ctx, escrowID)
}

func (r *EscrowRepo) FindByCase(ctx context.Context, caseID string) ([]model.EscrowAccount, error) {
	return r.s.escrowsByCase(ctx, caseID)
}

func (r *EscrowRepo) Save(ctx context.Context, account model.EscrowAccount) error {
	return r.s.saveEscrow(ctx, account)
}

// ---------------------------------------------------------------------------
// CaseRepository
// ---------------------------------------------------------------------------

func (s *Store) saveCase(ctx context.Context, c model.LoanServicingCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID()] = c.ClearEvents()
	return nil
}

func (s *Store) findCase(ctx context.Context, tenantID, id string) (model.LoanServicingCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok || c.TenantID() != tenantID {
		return model.LoanServicingCase{}, fmt.Errorf("%w: %s", valueobject.ErrCaseNotFound, id)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// BalanceRepository
// ---------------------------------------------------------------------------

func (s *Store) currentSnapshot(ctx context.Context, caseID string) (model.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.snapshots[caseID]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].IsCurrent {
			return history[i], nil
		}
	}
	return model.BalanceSnapshot{}, fmt.Errorf("%w: case %s", valueobject.ErrNoCurrentBalance, caseID)
}

func (s *Store) appendSnapshot(ctx context.Context, snapshot model.BalanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.snapshots[snapshot.CaseID]
	for i := range history {
		history[i].IsCurrent = false
	}
	snapshot.IsCurrent = true
	s.snapshots[snapshot.CaseID] = append(history, snapshot)
	return nil
}

func (s *Store) snapshotHistory(ctx context.Context, caseID string) ([]model.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.BalanceSnapshot, len(s.snapshots[caseID]))
	copy(out, s.snapshots[caseID])
	return out, nil
}

// ---------------------------------------------------------------------------
// ScheduleRepository
// ---------------------------------------------------------------------------

func (s *Store) activeInstallments(ctx context.Context, caseID string) ([]model.ScheduleInstallment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ScheduleInstallment
	for _, inst := range s.installments {
		if inst.CaseID == caseID && !inst.Superseded {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InstallmentNumber < out[j].InstallmentNumber
	})
	return out, nil
}

func (s *Store) installmentByID(ctx context.Context, installmentID string) (model.ScheduleInstallment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.installments[installmentID]
	if !ok {
		return model.ScheduleInstallment{}, fmt.Errorf("%w: %s", valueobject.ErrInstallmentNotFound, installmentID)
	}
	return inst, nil
}

func (s *Store) saveInstallments(ctx context.Context, installments []model.ScheduleInstallment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range installments {
		s.installments[inst.InstallmentID] = inst
	}
	return nil
}

func (s *Store) updateInstallment(ctx context.Context, installment model.ScheduleInstallment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.installments[installment.InstallmentID]; !ok {
		return fmt.Errorf("%w: %s", valueobject.ErrInstallmentNotFound, installment.InstallmentID)
	}
	s.installments[installment.InstallmentID] = installment
	return nil
}

func (s *Store) supersedeFrom(ctx context.Context, caseID string, from time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, inst := range s.installments {
		if inst.CaseID == caseID && !inst.Superseded && !inst.DueDate.Before(from) {
			inst.Superseded = true
			s.installments[id] = inst
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// PaymentRepository
// ---------------------------------------------------------------------------

func (s *Store) appendPayment(ctx context.Context, record model.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[record.InstallmentID] = append(s.payments[record.InstallmentID], record)
	return nil
}

func (s *Store) paymentsByInstallment(ctx context.Context, installmentID string) ([]model.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PaymentRecord, len(s.payments[installmentID]))
	copy(out, s.payments[installmentID])
	return out, nil
}

func (s *Store) paymentTransactionExists(ctx context.Context, caseID, sourceTransactionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, records := range s.payments {
		for _, rec := range records {
			if rec.CaseID == caseID && rec.SourceTransactionID == sourceTransactionID {
				return true, nil
			}
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// DisbursementRepository
// ---------------------------------------------------------------------------

func (s *Store) planEntriesByCase(ctx context.Context, caseID string) ([]model.DisbursementPlanEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.DisbursementPlanEntry
	for _, entry := range s.planEntries {
		if entry.CaseID == caseID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SequenceNumber < out[j].SequenceNumber
	})
	return out, nil
}

func (s *Store) planEntryByID(ctx context.Context, planEntryID string) (model.DisbursementPlanEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.planEntries[planEntryID]
	if !ok {
		return model.DisbursementPlanEntry{}, fmt.Errorf("disbursement plan entry not found: %s", planEntryID)
	}
	return entry, nil
}

func (s *Store) savePlanEntry(ctx context.Context, entry model.DisbursementPlanEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planEntries[entry.PlanEntryID] = entry
	return nil
}

func (s *Store) disbursementEvents(ctx context.Context, caseID string) ([]model.DisbursementEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.DisbursementEvent, len(s.disbEvents[caseID]))
	copy(out, s.disbEvents[caseID])
	return out, nil
}

func (s *Store) appendDisbursementEvent(ctx context.Context, evt model.DisbursementEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disbEvents[evt.CaseID] = append(s.disbEvents[evt.CaseID], evt)
	return nil
}

// ---------------------------------------------------------------------------
// RestructuringRepository
// ---------------------------------------------------------------------------

func (s *Store) appendRestructuring(ctx context.Context, r model.Restructuring) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restructuring[r.CaseID] = append(s.restructuring[r.CaseID], r)
	return nil
}

func (s *Store) restructuringsByCase(ctx context.Context, caseID string) ([]model.Restructuring, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Restructuring, len(s.restructuring[caseID]))
	copy(out, s.restructuring[caseID])
	return out, nil
}

// ---------------------------------------------------------------------------
// EscrowRepository
// ---------------------------------------------------------------------------

func (s *Store) escrowByID(ctx context.Context, escrowID string) (model.EscrowAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.escrow[escrowID]
	if !ok {
		return model.EscrowAccount{}, fmt.Errorf("%w: %s", valueobject.ErrEscrowNotFound, escrowID)
	}
	return account, nil
}

func (s *Store) escrowsByCase(ctx context.Context, caseID string) ([]model.EscrowAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.EscrowAccount
	for _, account := range s.escrow {
		if account.CaseID == caseID {
			out = append(out, account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EscrowID < out[j].EscrowID })
	return out, nil
}

func (s *Store) saveEscrow(ctx context.Context, account model.EscrowAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.escrow[account.EscrowID] = account
	return nil
}
