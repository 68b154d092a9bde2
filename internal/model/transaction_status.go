package model

import (
	"errors"
	"fmt"
	"time"
)

type TransactionStatus string

const (
	StatusDraft          TransactionStatus = "draft"
	StatusHold           TransactionStatus = "hold"
	StatusBilled         TransactionStatus = "billed"
	StatusPendingPayment TransactionStatus = "pending_payment"
	StatusPartialPayment TransactionStatus = "partial_payment"
	StatusSettled        TransactionStatus = "settled"
	StatusCancelled      TransactionStatus = "cancelled"
	StatusRefunded       TransactionStatus = "refunded"
	StatusExchanged      TransactionStatus = "exchanged"
)

// ErrInvalidTransition is returned when the requested status change has no
// edge in the transition table. The transaction is left untouched.
var ErrInvalidTransition = errors.New("invalid status transition")

// statusTransitions is the full lifecycle table. Absence of an edge means the
// transition is illegal. cancelled, refunded and exchanged are terminal.
var statusTransitions = map[TransactionStatus][]TransactionStatus{
	StatusDraft:          {StatusHold, StatusBilled, StatusSettled, StatusPendingPayment, StatusPartialPayment, StatusCancelled},
	StatusHold:           {StatusDraft, StatusBilled, StatusSettled, StatusPendingPayment, StatusPartialPayment, StatusCancelled},
	StatusBilled:         {StatusSettled, StatusPendingPayment, StatusPartialPayment, StatusRefunded, StatusCancelled},
	StatusPendingPayment: {StatusBilled, StatusSettled, StatusPartialPayment, StatusCancelled},
	StatusPartialPayment: {StatusSettled, StatusPendingPayment, StatusCancelled},
	StatusSettled:        {StatusRefunded, StatusExchanged},
	StatusCancelled:      {},
	StatusRefunded:       {},
	StatusExchanged:      {},
}

// AllStatuses lists every lifecycle status, in table order.
var AllStatuses = []TransactionStatus{
	StatusDraft, StatusHold, StatusBilled, StatusPendingPayment,
	StatusPartialPayment, StatusSettled, StatusCancelled,
	StatusRefunded, StatusExchanged,
}

// CanTransition reports whether current -> target is a legal edge.
func CanTransition(current, target TransactionStatus) bool {
	for _, allowed := range statusTransitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// TransitionTo applies a status change in memory. Entering billed assigns the
// invoice number if none is set; no other state entry has side effects.
// Monetary recomputation is the transaction service's job, not done here.
func (t *SalesTransaction) TransitionTo(target TransactionStatus, at time.Time) error {
	if !CanTransition(t.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, target)
	}

	if target == StatusBilled && t.InvoiceNumber == "" {
		t.InvoiceNumber = NewInvoiceNumber(at)
	}

	t.Status = target
	return nil
}

// NewInvoiceNumber derives a monotonic invoice number from the billing
// timestamp. Uniqueness under collision is the persistence layer's unique
// index concern, not handled here.
func NewInvoiceNumber(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("INV-%s-%09d", at.Format("20060102150405"), at.Nanosecond())
}
