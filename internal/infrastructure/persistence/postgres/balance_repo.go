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

// BalanceRepo implements port.BalanceRepository over an append-only snapshot
// table. Append flips the previous current snapshot and inserts the new one;
// both statements run on the querier carried by the context so they share the
// caller's transaction.
type BalanceRepo struct {
	pool *pgxpool.Pool
}

// NewBalanceRepo creates a new PostgreSQL-backed balance repository.
func NewBalanceRepo(pool *pgxpool.Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

const balanceColumns = `
	id, case_id, principal_outstanding, interest_outstanding,
	fees_outstanding, total_outstanding, balance_date, is_current`

// Current returns the case's snapshot with is_current = true.
func (r *BalanceRepo) Current(ctx context.Context, caseID string) (model.BalanceSnapshot, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `SELECT` + balanceColumns + `
		FROM balance_snapshots
		WHERE case_id = $1 AND is_current = true
	`
	s, err := scanSnapshot(q.QueryRow(ctx, query, caseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.BalanceSnapshot{}, fmt.Errorf("%w: case %s", valueobject.ErrNoCurrentBalance, caseID)
	}
	return s, err
}

// Append marks the previous current snapshot historical and inserts the new
// one as current.
func (r *BalanceRepo) Append(ctx context.Context, snapshot model.BalanceSnapshot) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	if _, err := q.Exec(ctx,
		`UPDATE balance_snapshots SET is_current = false WHERE case_id = $1 AND is_current = true`,
		snapshot.CaseID,
	); err != nil {
		return fmt.Errorf("retire current snapshot: %w", err)
	}

	query := `
		INSERT INTO balance_snapshots (
			id, case_id, principal_outstanding, interest_outstanding,
			fees_outstanding, total_outstanding, balance_date, is_current
		) VALUES ($1,$2,$3,$4,$5,$6,$7,true)
	`
	if _, err := q.Exec(ctx, query,
		snapshot.BalanceID, snapshot.CaseID,
		snapshot.PrincipalOutstanding, snapshot.InterestOutstanding,
		snapshot.FeesOutstanding, snapshot.TotalOutstanding,
		snapshot.BalanceDate,
	); err != nil {
		return fmt.Errorf("insert balance snapshot: %w", err)
	}
	return nil
}

// History returns all snapshots of a case, oldest first.
func (r *BalanceRepo) History(ctx context.Context, caseID string) ([]model.BalanceSnapshot, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `SELECT` + balanceColumns + `
		FROM balance_snapshots
		WHERE case_id = $1
		ORDER BY balance_date, id
	`
	rows, err := q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query balance history: %w", err)
	}
	defer rows.Close()

	var history []model.BalanceSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, s)
	}
	return history, rows.Err()
}

func scanSnapshot(s scannable) (model.BalanceSnapshot, error) {
	var snap model.BalanceSnapshot
	err := s.Scan(
		&snap.BalanceID, &snap.CaseID,
		&snap.PrincipalOutstanding, &snap.InterestOutstanding,
		&snap.FeesOutstanding, &snap.TotalOutstanding,
		&snap.BalanceDate, &snap.IsCurrent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BalanceSnapshot{}, err
		}
		return model.BalanceSnapshot{}, fmt.Errorf("scan balance snapshot: %w", err)
	}
	return snap, nil
}
