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

// CaseRepo implements port.CaseRepository.
type CaseRepo struct {
	pool *pgxpool.Pool
}

// NewCaseRepo creates a new PostgreSQL-backed case repository.
func NewCaseRepo(pool *pgxpool.Pool) *CaseRepo {
	return &CaseRepo{pool: pool}
}

// Save persists a servicing case with optimistic locking on version.
func (r *CaseRepo) Save(ctx context.Context, c model.LoanServicingCase) error {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		INSERT INTO servicing_cases (
			id, tenant_id, contract_id, product_id, application_id,
			status, principal, annual_rate, term_length, method,
			payment_frequency, compounding_frequency, day_count,
			maturity_date, balloon_fraction,
			schedule_version, origination_date,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		ON CONFLICT (id) DO UPDATE SET
			status                = EXCLUDED.status,
			principal             = EXCLUDED.principal,
			annual_rate           = EXCLUDED.annual_rate,
			term_length           = EXCLUDED.term_length,
			method                = EXCLUDED.method,
			payment_frequency     = EXCLUDED.payment_frequency,
			compounding_frequency = EXCLUDED.compounding_frequency,
			day_count             = EXCLUDED.day_count,
			maturity_date         = EXCLUDED.maturity_date,
			balloon_fraction      = EXCLUDED.balloon_fraction,
			schedule_version      = EXCLUDED.schedule_version,
			version               = servicing_cases.version + 1,
			updated_at            = EXCLUDED.updated_at
		WHERE servicing_cases.version = $18
	`
	terms := c.CurrentTerms()
	tag, err := q.Exec(ctx, query,
		c.ID(), c.TenantID(), c.ContractID(), c.ProductID(), c.ApplicationID(),
		c.Status().String(), terms.Principal, terms.AnnualRate, terms.TermLength, terms.Method.String(),
		terms.PaymentFrequency.String(), terms.CompoundingFrequency.String(), terms.DayCount.String(),
		terms.MaturityDate, terms.BalloonFraction,
		c.ScheduleVersion(), c.OriginationDate(),
		c.Version(), c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save servicing case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("optimistic locking conflict on servicing case")
	}
	return nil
}

// FindByID retrieves a servicing case by tenant and ID.
func (r *CaseRepo) FindByID(ctx context.Context, tenantID, id string) (model.LoanServicingCase, error) {
	q := pkgpostgres.QuerierFrom(ctx, r.pool)

	query := `
		SELECT id, tenant_id, contract_id, product_id, application_id, status,` +
		termSetColumns + `,
		       schedule_version, origination_date,
		       version, created_at, updated_at
		FROM servicing_cases
		WHERE tenant_id = $1 AND id = $2
	`
	row := q.QueryRow(ctx, query, tenantID, id)

	var (
		caseID, tenant, contractID, productID, applicationID string
		statusStr                                            string
		ts                                                   termSetRow
		scheduleVersion                                      int
		originationDate                                      time.Time
		version                                              int
		createdAt, updatedAt                                 time.Time
	)
	err := row.Scan(
		&caseID, &tenant, &contractID, &productID, &applicationID, &statusStr,
		&ts.principal, &ts.annualRate, &ts.termLength, &ts.method,
		&ts.paymentFreq, &ts.compounding, &ts.dayCount,
		&ts.maturityDate, &ts.balloonFraction,
		&scheduleVersion, &originationDate,
		&version, &createdAt, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LoanServicingCase{}, fmt.Errorf("%w: %s", valueobject.ErrCaseNotFound, id)
	}
	if err != nil {
		return model.LoanServicingCase{}, fmt.Errorf("scan servicing case: %w", err)
	}

	status, err := valueobject.NewServicingStatus(statusStr)
	if err != nil {
		return model.LoanServicingCase{}, fmt.Errorf("parse servicing status: %w", err)
	}
	terms, err := ts.toTermSet()
	if err != nil {
		return model.LoanServicingCase{}, err
	}

	return model.ReconstructCase(
		caseID, tenant, contractID, productID, applicationID,
		status, terms, scheduleVersion,
		originationDate, terms.MaturityDate,
		version, createdAt, updatedAt,
	), nil
}
