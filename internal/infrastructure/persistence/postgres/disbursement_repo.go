package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
	pkgpostgres "github.com/lumenbank/servicing/pkg/postgres"
)

// DisbursementRepo implements port.DisbursementRepository.
type DisbursementRepo struct {
	pool *pgxpool.Pool
}

// NewDisbursementRepo creates a new PostgreSQL-backed disbursement repository.
func NewDisbursementRepo(pool *pgxpool.Pool) *DisbursementRepo {
	return &DisbursementRepo{pool: pool}
}

const planEntryColumns = `
	id, case_id, sequence_number, planned_date, planned_amount,
	actual_date, actual_amount, is_completed`

// PlanEntries returns the plan entries of a case ordered by sequence number.
func (r *DisbursementRepo) PlanEntries(ctx context.Context, caseID string) ([]model.DisbursementPlanEntry, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `SELECT` + planEntryColumns + `
		FROM disbursement_plan_entries
		WHERE case_id = $1
		ORDER BY sequence_number
	`
	rows, err := q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query plan entries: %w", err)
	}
	defer rows.Close()

	var entries []model.DisbursementPlanEntry
	for rows.Next() {
		entry, err := scanPlanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// PlanEntryByID retrieves one plan entry.
func (r *DisbursementRepo) PlanEntryByID(ctx context.Context, planEntryID string) (model.DisbursementPlanEntry, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `SELECT` + planEntryColumns + `
		FROM disbursement_plan_entries
		WHERE id = $1
	`
	entry, err := scanPlanEntry(q.QueryRow(ctx, query, planEntryID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DisbursementPlanEntry{}, fmt.Errorf("disbursement plan entry not found: %s", planEntryID)
	}
	return entry, err
}

// SavePlanEntry upserts a plan entry.
func (r *DisbursementRepo) SavePlanEntry(ctx context.Context, entry model.DisbursementPlanEntry) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		INSERT INTO disbursement_plan_entries (
			id, case_id, sequence_number, planned_date, planned_amount,
			actual_date, actual_amount, is_completed
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			actual_date   = EXCLUDED.actual_date,
			actual_amount = EXCLUDED.actual_amount,
			is_completed  = EXCLUDED.is_completed
	`
	if _, err := q.Exec(ctx, query,
		entry.PlanEntryID, entry.CaseID, entry.SequenceNumber, entry.PlannedDate, entry.PlannedAmount,
		entry.ActualDate, entry.ActualAmount, entry.IsCompleted,
	); err != nil {
		return fmt.Errorf("save plan entry: %w", err)
	}
	return nil
}

// Events returns the disbursement events of a case, oldest first.
func (r *DisbursementRepo) Events(ctx context.Context, caseID string) ([]model.DisbursementEvent, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		SELECT id, case_id, plan_entry_id, reference_id, reverses_event_id,
		       amount, event_date, method, status, is_final
		FROM disbursement_events
		WHERE case_id = $1
		ORDER BY event_date, id
	`
	rows, err := q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query disbursement events: %w", err)
	}
	defer rows.Close()

	var events []model.DisbursementEvent
	for rows.Next() {
		var (
			evt               model.DisbursementEvent
			methodStr, status string
		)
		if err := rows.Scan(
			&evt.EventID, &evt.CaseID, &evt.PlanEntryID, &evt.ReferenceID, &evt.ReversesEventID,
			&evt.Amount, &evt.Date, &methodStr, &status, &evt.IsFinal,
		); err != nil {
			return nil, fmt.Errorf("scan disbursement event: %w", err)
		}
		if evt.Method, err = valueobject.NewDisbursementMethod(methodStr); err != nil {
			return nil, fmt.Errorf("parse disbursement method: %w", err)
		}
		if evt.Status, err = valueobject.NewDisbursementStatus(status); err != nil {
			return nil, fmt.Errorf("parse disbursement status: %w", err)
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

// AppendEvent inserts one disbursement event. The unique index on (case_id,
// reference_id) backs the duplicate detection done in the domain layer.
func (r *DisbursementRepo) AppendEvent(ctx context.Context, evt model.DisbursementEvent) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		INSERT INTO disbursement_events (
			id, case_id, plan_entry_id, reference_id, reverses_event_id,
			amount, event_date, method, status, is_final
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	if _, err := q.Exec(ctx, query,
		evt.EventID, evt.CaseID, evt.PlanEntryID, evt.ReferenceID, evt.ReversesEventID,
		evt.Amount, evt.Date, evt.Method.String(), evt.Status.String(), evt.IsFinal,
	); err != nil {
		return fmt.Errorf("insert disbursement event: %w", err)
	}
	return nil
}

func scanPlanEntry(s scannable) (model.DisbursementPlanEntry, error) {
	var entry model.DisbursementPlanEntry
	err := s.Scan(
		&entry.PlanEntryID, &entry.CaseID, &entry.SequenceNumber, &entry.PlannedDate, &entry.PlannedAmount,
		&entry.ActualDate, &entry.ActualAmount, &entry.IsCompleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DisbursementPlanEntry{}, err
		}
		return model.DisbursementPlanEntry{}, fmt.Errorf("scan plan entry: %w", err)
	}
	return entry, nil
}
