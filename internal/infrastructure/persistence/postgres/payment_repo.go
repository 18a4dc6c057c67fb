package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenbank/servicing/internal/domain/model"
	pkgpostgres "github.com/lumenbank/servicing/pkg/postgres"
)

// PaymentRepo implements port.PaymentRepository.
type PaymentRepo struct {
	pool *pgxpool.Pool
}

// NewPaymentRepo creates a new PostgreSQL-backed payment record repository.
func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Append inserts one payment record. The unique indexes on (installment_id,
// transaction_id) and (case_id, transaction_id) back the duplicate detection
// done in the domain and application layers.
func (r *PaymentRepo) Append(ctx context.Context, record model.PaymentRecord) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		INSERT INTO payment_records (
			id, case_id, installment_id, transaction_id, source_transaction_id,
			amount, paid_at, is_partial
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	if _, err := q.Exec(ctx, query,
		record.RecordID, record.CaseID, record.InstallmentID,
		record.TransactionID, record.SourceTransactionID,
		record.Amount, record.Date, record.IsPartial,
	); err != nil {
		return fmt.Errorf("insert payment record: %w", err)
	}
	return nil
}

// ByInstallment returns the records applied against one installment, oldest
// first.
func (r *PaymentRepo) ByInstallment(ctx context.Context, installmentID string) ([]model.PaymentRecord, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		SELECT id, case_id, installment_id, transaction_id, source_transaction_id,
		       amount, paid_at, is_partial
		FROM payment_records
		WHERE installment_id = $1
		ORDER BY paid_at, id
	`
	rows, err := q.Query(ctx, query, installmentID)
	if err != nil {
		return nil, fmt.Errorf("query payment records: %w", err)
	}
	defer rows.Close()

	var records []model.PaymentRecord
	for rows.Next() {
		var rec model.PaymentRecord
		if err := rows.Scan(
			&rec.RecordID, &rec.CaseID, &rec.InstallmentID,
			&rec.TransactionID, &rec.SourceTransactionID,
			&rec.Amount, &rec.Date, &rec.IsPartial,
		); err != nil {
			return nil, fmt.Errorf("scan payment record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ExistsTransaction reports whether the case already holds a record with the
// given source transaction ID.
func (r *PaymentRepo) ExistsTransaction(ctx context.Context, caseID, sourceTransactionID string) (bool, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM payment_records
			WHERE case_id = $1 AND source_transaction_id = $2
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, caseID, sourceTransactionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check payment transaction: %w", err)
	}
	return exists, nil
}
