package valueobject

import "errors"

// Sentinel errors for the servicing core. All are local validation failures
// surfaced synchronously to the caller; none are retried internally.
var (
	// ErrInvalidTermSet is permanent: the term set can never be applied.
	ErrInvalidTermSet = errors.New("invalid term set")

	// ErrNoCurrentBalance means the case was never initialized with a
	// zero snapshot.
	ErrNoCurrentBalance = errors.New("no current balance snapshot")

	// ErrOverpaymentRejected means a ledger component would go negative.
	// Excess cash must be routed as a credit balance by the caller.
	ErrOverpaymentRejected = errors.New("overpayment rejected")

	ErrInstallmentNotFound       = errors.New("installment not found")
	ErrInstallmentAlreadySettled = errors.New("installment already settled")
	ErrAmountExceedsRemaining    = errors.New("amount exceeds remaining due")
	ErrPlanEntryAlreadyCompleted = errors.New("disbursement plan entry already completed")
	ErrDisbursementPhaseClosed   = errors.New("disbursement phase closed")

	// ErrInvalidStateTransition is permanent: the requested pair is absent
	// from the transition table.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrDuplicateEvent is informational: callers should treat a replayed
	// payment or disbursement as already applied, not as a failure.
	ErrDuplicateEvent = errors.New("duplicate event")

	ErrCaseNotFound   = errors.New("servicing case not found")
	ErrEscrowNotFound = errors.New("escrow account not found")
)
