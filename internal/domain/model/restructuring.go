package model

import (
	"time"

	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// Restructuring is an append-only, immutable record of a term swap. Applying
// it closes the schedule version active before Date, generates a new version
// from NewTerms for installments due on or after Date, and updates the case's
// current term set.
type Restructuring struct {
	RestructuringID string
	CaseID          string
	Date            time.Time
	OldTerms        valueobject.TermSet
	NewTerms        valueobject.TermSet
	ApprovedBy      string
	// ZeroInterest / ZeroFees control whether the restructuring wipes the
	// carried-over interest and fee components.
	ZeroInterest bool
	ZeroFees     bool
}
