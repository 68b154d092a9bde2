package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Business outcome errors. These are expected results returned to the caller
// as typed rejections; they are never logged as system errors.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrRefundNotFound      = errors.New("refund not found")
	ErrExchangeNotFound    = errors.New("exchange not found")

	ErrShiftNotOpen       = errors.New("shift is not open")
	ErrShiftAlreadyOpen   = errors.New("operator already has an open shift")
	ErrShiftAlreadyClosed = errors.New("shift is already closed")

	// ErrIllegalDelete: delete attempted on a non-draft transaction.
	ErrIllegalDelete = errors.New("only draft transactions can be deleted")

	// ErrValidationFailed wraps malformed or incomplete input, always detected
	// before any mutation.
	ErrValidationFailed = errors.New("validation failed")
)

// CompensationError means a saga had already mutated durable state, the saga
// failed, and rolling the mutations back also failed. The system is left in a
// manually recoverable inconsistent state; this error is logged loudly with
// full identifiers and must never be swallowed.
type CompensationError struct {
	Saga          string      // "refund" or "exchange"
	TransactionID uuid.UUID   // the original sales transaction
	ProductIDs    []uuid.UUID // products whose stock snapshots could not be restored
	Cause         error       // the failure that triggered compensation
	CompensateErr error       // the failure of the compensation itself
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%s saga compensation failed for transaction %s: %v (original failure: %v)",
		e.Saga, e.TransactionID, e.CompensateErr, e.Cause)
}

func (e *CompensationError) Unwrap() error {
	return e.CompensateErr
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
