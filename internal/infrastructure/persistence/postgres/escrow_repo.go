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

// EscrowRepo implements port.EscrowRepository.
type EscrowRepo struct {
	pool *pgxpool.Pool
}

// NewEscrowRepo creates a new PostgreSQL-backed escrow repository.
func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

const escrowColumns = `
	id, case_id, escrow_type, monthly_payment_amount, current_balance,
	target_balance, next_disbursement_date, last_analysis_date,
	next_analysis_date, is_active`

// FindByID retrieves one escrow account.
func (r *EscrowRepo) FindByID(ctx context.Context, escrowID string) (model.EscrowAccount, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `SELECT` + escrowColumns + `
		FROM escrow_accounts
		WHERE id = $1
	`
	account, err := scanEscrow(q.QueryRow(ctx, query, escrowID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.EscrowAccount{}, fmt.Errorf("%w: %s", valueobject.ErrEscrowNotFound, escrowID)
	}
	return account, err
}

// FindByCase returns the escrow accounts attached to a case.
func (r *EscrowRepo) FindByCase(ctx context.Context, caseID string) ([]model.EscrowAccount, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `SELECT` + escrowColumns + `
		FROM escrow_accounts
		WHERE case_id = $1
		ORDER BY id
	`
	rows, err := q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query escrow accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.EscrowAccount
	for rows.Next() {
		account, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Save upserts an escrow account.
func (r *EscrowRepo) Save(ctx context.Context, account model.EscrowAccount) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		INSERT INTO escrow_accounts (
			id, case_id, escrow_type, monthly_payment_amount, current_balance,
			target_balance, next_disbursement_date, last_analysis_date,
			next_analysis_date, is_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			monthly_payment_amount = EXCLUDED.monthly_payment_amount,
			current_balance        = EXCLUDED.current_balance,
			target_balance         = EXCLUDED.target_balance,
			next_disbursement_date = EXCLUDED.next_disbursement_date,
			last_analysis_date     = EXCLUDED.last_analysis_date,
			next_analysis_date     = EXCLUDED.next_analysis_date,
			is_active              = EXCLUDED.is_active
	`
	if _, err := q.Exec(ctx, query,
		account.EscrowID, account.CaseID, account.Type,
		account.MonthlyPaymentAmount, account.CurrentBalance, account.TargetBalance,
		account.NextDisbursementDate, account.LastAnalysisDate, account.NextAnalysisDate,
		account.IsActive,
	); err != nil {
		return fmt.Errorf("save escrow account: %w", err)
	}
	return nil
}

func scanEscrow(s scannable) (model.EscrowAccount, error) {
	var account model.EscrowAccount
	err := s.Scan(
		&account.EscrowID, &account.CaseID, &account.Type,
		&account.MonthlyPaymentAmount, &account.CurrentBalance, &account.TargetBalance,
		&account.NextDisbursementDate, &account.LastAnalysisDate, &account.NextAnalysisDate,
		&account.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.EscrowAccount{}, err
		}
		return model.EscrowAccount{}, fmt.Errorf("scan escrow account: %w", err)
	}
	return account, nil
}
