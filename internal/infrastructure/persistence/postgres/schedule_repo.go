package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenbank/servicing/internal/domain/model"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
	pkgpostgres "github.com/lumenbank/servicing/pkg/postgres"
)

// ScheduleRepo implements port.ScheduleRepository.
type ScheduleRepo struct {
	pool *pgxpool.Pool
}

// NewScheduleRepo creates a new PostgreSQL-backed schedule repository.
func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

const installmentColumns = `
	id, case_id, schedule_version, installment_number, due_date,
	principal_due, interest_due, fee_due, total_due,
	is_paid, paid_date, paid_amount, superseded`

// ActiveInstallments returns the unsuperseded installments of a case ordered
// by installment number.
func (r *ScheduleRepo) ActiveInstallments(ctx context.Context, caseID string) ([]model.ScheduleInstallment, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `SELECT` + installmentColumns + `
		FROM schedule_installments
		WHERE case_id = $1 AND superseded = false
		ORDER BY installment_number
	`
	rows, err := q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	var installments []model.ScheduleInstallment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

// InstallmentByID retrieves one installment.
func (r *ScheduleRepo) InstallmentByID(ctx context.Context, installmentID string) (model.ScheduleInstallment, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `SELECT` + installmentColumns + `
		FROM schedule_installments
		WHERE id = $1
	`
	inst, err := scanInstallment(q.QueryRow(ctx, query, installmentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ScheduleInstallment{}, fmt.Errorf("%w: %s", valueobject.ErrInstallmentNotFound, installmentID)
	}
	return inst, err
}

// SaveBatch inserts a batch of freshly generated installments.
func (r *ScheduleRepo) SaveBatch(ctx context.Context, installments []model.ScheduleInstallment) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		INSERT INTO schedule_installments (
			id, case_id, schedule_version, installment_number, due_date,
			principal_due, interest_due, fee_due, total_due,
			is_paid, paid_date, paid_amount, superseded
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	for _, inst := range installments {
		if _, err := q.Exec(ctx, query,
			inst.InstallmentID, inst.CaseID, inst.ScheduleVersion, inst.InstallmentNumber, inst.DueDate,
			inst.PrincipalDue, inst.InterestDue, inst.FeeDue, inst.TotalDue,
			inst.IsPaid, inst.PaidDate, inst.PaidAmount, inst.Superseded,
		); err != nil {
			return fmt.Errorf("insert installment %d: %w", inst.InstallmentNumber, err)
		}
	}
	return nil
}

// Update persists the reconciliation fields of one installment.
func (r *ScheduleRepo) Update(ctx context.Context, installment model.ScheduleInstallment) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		UPDATE schedule_installments
		SET is_paid = $2, paid_date = $3, paid_amount = $4
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		installment.InstallmentID, installment.IsPaid, installment.PaidDate, installment.PaidAmount,
	)
	if err != nil {
		return fmt.Errorf("update installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", valueobject.ErrInstallmentNotFound, installment.InstallmentID)
	}
	return nil
}

// SupersedeFrom closes the active schedule version for installments due on or
// after the given date.
func (r *ScheduleRepo) SupersedeFrom(ctx context.Context, caseID string, from time.Time) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		UPDATE schedule_installments
		SET superseded = true
		WHERE case_id = $1 AND superseded = false AND due_date >= $2
	`
	if _, err := q.Exec(ctx, query, caseID, from); err != nil {
		return fmt.Errorf("supersede installments: %w", err)
	}
	return nil
}

func scanInstallment(s scannable) (model.ScheduleInstallment, error) {
	var inst model.ScheduleInstallment
	err := s.Scan(
		&inst.InstallmentID, &inst.CaseID, &inst.ScheduleVersion, &inst.InstallmentNumber, &inst.DueDate,
		&inst.PrincipalDue, &inst.InterestDue, &inst.FeeDue, &inst.TotalDue,
		&inst.IsPaid, &inst.PaidDate, &inst.PaidAmount, &inst.Superseded,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ScheduleInstallment{}, err
		}
		return model.ScheduleInstallment{}, fmt.Errorf("scan installment: %w", err)
	}
	return inst, nil
}
