package service

import (
	"errors"
	"fmt"
	"strings"
)

// Conflict results are typed so callers can tell {duplicate idempotency key}
// from {coverage collision} without sniffing error messages. Both require a
// caller-driven retry with freshly fetched ledger state.
var (
	ErrDuplicateRequest    = errors.New("duplicate request: idempotency key already used")
	ErrCoverageConflict    = errors.New("coverage conflict: a concurrent payment already covered one of the target months")
	ErrTransactionNotFound = errors.New("payment transaction not found")
	ErrTransactionReversed = errors.New("payment transaction already reversed")
	ErrNothingToPay        = errors.New("every targeted month is already covered or fully discounted")
)

// AmountMismatchError: the caller-supplied amount must equal the ledger's
// expected amount exactly; no silent rounding, no partial-of-partial.
type AmountMismatchError struct {
	Expected  int
	Requested int
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %d, requested %d", e.Expected, e.Requested)
}

// MonthsOutOfRangeError lists ALL offending months, not just the first.
type MonthsOutOfRangeError struct {
	Keys []string
}

func (e *MonthsOutOfRangeError) Error() string {
	return fmt.Sprintf("months out of payable range: %s", strings.Join(e.Keys, ", "))
}
