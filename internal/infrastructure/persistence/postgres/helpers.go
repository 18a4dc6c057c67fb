package postgres

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// scannable covers pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// termSetColumns is the column list shared by every query that reads a term
// set embedded in a row. Order must match scanTermSet.
const termSetColumns = `
	principal, annual_rate, term_length, method,
	payment_frequency, compounding_frequency, day_count,
	maturity_date, balloon_fraction`

type termSetRow struct {
	principal       decimal.Decimal
	annualRate      decimal.Decimal
	termLength      int
	method          string
	paymentFreq     string
	compounding     string
	dayCount        string
	maturityDate    time.Time
	balloonFraction decimal.Decimal
}

func (r termSetRow) toTermSet() (valueobject.TermSet, error) {
	method, err := valueobject.NewAmortizationMethod(r.method)
	if err != nil {
		return valueobject.TermSet{}, fmt.Errorf("parse amortization method: %w", err)
	}
	paymentFreq, err := valueobject.NewPaymentFrequency(r.paymentFreq)
	if err != nil {
		return valueobject.TermSet{}, fmt.Errorf("parse payment frequency: %w", err)
	}
	var compounding valueobject.CompoundingFrequency
	if r.compounding != "" {
		compounding, err = valueobject.NewCompoundingFrequency(r.compounding)
		if err != nil {
			return valueobject.TermSet{}, fmt.Errorf("parse compounding frequency: %w", err)
		}
	}
	dayCount, err := valueobject.NewDayCountConvention(r.dayCount)
	if err != nil {
		return valueobject.TermSet{}, fmt.Errorf("parse day count convention: %w", err)
	}
	return valueobject.TermSet{
		Principal:            r.principal,
		AnnualRate:           r.annualRate,
		TermLength:           r.termLength,
		Method:               method,
		PaymentFrequency:     paymentFreq,
		CompoundingFrequency: compounding,
		DayCount:             dayCount,
		MaturityDate:         r.maturityDate,
		BalloonFraction:      r.balloonFraction,
	}, nil
}
