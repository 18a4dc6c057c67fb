package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenbank/servicing/internal/domain/model"
	pkgpostgres "github.com/lumenbank/servicing/pkg/postgres"
)

// RestructuringRepo implements port.RestructuringRepository. Old and new term
// sets are stored side by side in one row; the record is append-only.
type RestructuringRepo struct {
	pool *pgxpool.Pool
}

// NewRestructuringRepo creates a new PostgreSQL-backed restructuring repository.
func NewRestructuringRepo(pool *pgxpool.Pool) *RestructuringRepo {
	return &RestructuringRepo{pool: pool}
}

// Append inserts one restructuring record.
func (r *RestructuringRepo) Append(ctx context.Context, rec model.Restructuring) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		INSERT INTO restructurings (
			id, case_id, effective_date, approved_by, zero_interest, zero_fees,
			old_principal, old_annual_rate, old_term_length, old_method,
			old_payment_frequency, old_compounding_frequency, old_day_count,
			old_maturity_date, old_balloon_fraction,
			new_principal, new_annual_rate, new_term_length, new_method,
			new_payment_frequency, new_compounding_frequency, new_day_count,
			new_maturity_date, new_balloon_fraction
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	`
	o, n := rec.OldTerms, rec.NewTerms
	if _, err := q.Exec(ctx, query,
		rec.RestructuringID, rec.CaseID, rec.Date, rec.ApprovedBy, rec.ZeroInterest, rec.ZeroFees,
		o.Principal, o.AnnualRate, o.TermLength, o.Method.String(),
		o.PaymentFrequency.String(), o.CompoundingFrequency.String(), o.DayCount.String(),
		o.MaturityDate, o.BalloonFraction,
		n.Principal, n.AnnualRate, n.TermLength, n.Method.String(),
		n.PaymentFrequency.String(), n.CompoundingFrequency.String(), n.DayCount.String(),
		n.MaturityDate, n.BalloonFraction,
	); err != nil {
		return fmt.Errorf("insert restructuring: %w", err)
	}
	return nil
}

// ByCase returns the restructurings of a case, oldest first.
func (r *RestructuringRepo) ByCase(ctx context.Context, caseID string) ([]model.Restructuring, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		SELECT id, case_id, effective_date, approved_by, zero_interest, zero_fees,
		       old_principal, old_annual_rate, old_term_length, old_method,
		       old_payment_frequency, old_compounding_frequency, old_day_count,
		       old_maturity_date, old_balloon_fraction,
		       new_principal, new_annual_rate, new_term_length, new_method,
		       new_payment_frequency, new_compounding_frequency, new_day_count,
		       new_maturity_date, new_balloon_fraction
		FROM restructurings
		WHERE case_id = $1
		ORDER BY effective_date, id
	`
	rows, err := q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query restructurings: %w", err)
	}
	defer rows.Close()

	var records []model.Restructuring
	for rows.Next() {
		var (
			rec          model.Restructuring
			oldTS, newTS termSetRow
		)
		if err := rows.Scan(
			&rec.RestructuringID, &rec.CaseID, &rec.Date, &rec.ApprovedBy, &rec.ZeroInterest, &rec.ZeroFees,
			&oldTS.principal, &oldTS.annualRate, &oldTS.termLength, &oldTS.method,
			&oldTS.paymentFreq, &oldTS.compounding, &oldTS.dayCount,
			&oldTS.maturityDate, &oldTS.balloonFraction,
			&newTS.principal, &newTS.annualRate, &newTS.termLength, &newTS.method,
			&newTS.paymentFreq, &newTS.compounding, &newTS.dayCount,
			&newTS.maturityDate, &newTS.balloonFraction,
		); err != nil {
			return nil, fmt.Errorf("scan restructuring: %w", err)
		}
		if rec.OldTerms, err = oldTS.toTermSet(); err != nil {
			return nil, err
		}
		if rec.NewTerms, err = newTS.toTermSet(); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
