package transport

import (
	"errors"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/domain/stocktake"
)

// Dispatch errors, mapped to the standard JSON-RPC codes.
var (
	ErrUnknownMethod = errors.New("unknown method")
	ErrBadParams     = errors.New("invalid params")
)

// Error kinds surfaced in JSON-RPC error data. Polling clients use
// these to distinguish "back off and retry" from "not allowed".
const (
	KindValidation        = "VALIDATION"
	KindNotFound          = "NOT_FOUND"
	KindInvalidTransition = "INVALID_TRANSITION"
	KindSessionNotActive  = "SESSION_NOT_ACTIVE"
	KindLockHeld          = "LOCK_HELD"
	KindLockNotHeld       = "LOCK_NOT_HELD"
	KindCounterNotAllowed = "COUNTER_NOT_ALLOWED"
	KindItemNotAssigned   = "ITEM_NOT_ASSIGNED"
	KindIncompleteItems   = "INCOMPLETE_ITEMS"
)

// ErrorData is the data payload of a domain error response.
type ErrorData struct {
	Kind         string   `json:"kind"`
	MissingItems []string `json:"missing_items,omitempty"`
	Retryable    bool     `json:"retryable,omitempty"`
}

// mapDomainError translates domain sentinels into a JSON-RPC error
// payload, or nil for errors with no specific mapping.
func mapDomainError(err error) (string, *ErrorData) {
	var incompleteErr *stocktake.IncompleteItemsError

	switch {
	case errors.Is(err, stocktake.ErrInvalidInput), errors.Is(err, count.ErrInvalidInput):
		return "invalid input", &ErrorData{Kind: KindValidation}
	case errors.Is(err, stocktake.ErrSessionNotFound):
		return "session not found", &ErrorData{Kind: KindNotFound}
	case errors.Is(err, stocktake.ErrInvalidTransition):
		return "invalid session transition", &ErrorData{Kind: KindInvalidTransition}
	case errors.Is(err, stocktake.ErrSessionNotActive):
		return "session not active", &ErrorData{Kind: KindSessionNotActive}
	case errors.As(err, &incompleteErr):
		return "uncounted items remain", &ErrorData{Kind: KindIncompleteItems, MissingItems: incompleteErr.Missing}
	case errors.Is(err, lock.ErrLockHeld):
		return "item locked by another counter", &ErrorData{Kind: KindLockHeld, Retryable: true}
	case errors.Is(err, lock.ErrCounterNotAllowed):
		return "counter not allowed in session", &ErrorData{Kind: KindCounterNotAllowed}
	case errors.Is(err, count.ErrLockNotHeld):
		return "lock not held", &ErrorData{Kind: KindLockNotHeld, Retryable: true}
	case errors.Is(err, count.ErrItemNotAssigned):
		return "item not assigned to session", &ErrorData{Kind: KindItemNotAssigned}
	default:
		return "", nil
	}
}
