package mcp

import (
	"errors"
	"fmt"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/domain/stocktake"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var incompleteErr *stocktake.IncompleteItemsError
	switch {
	case errors.Is(err, stocktake.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "session not found", RecoveryHint: "Check the session ID or call list_sessions"}
	case errors.Is(err, stocktake.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: "invalid session transition", RecoveryHint: "Check the session status first with get_session"}
	case errors.Is(err, stocktake.ErrSessionNotActive):
		return &APIError{Code: "SESSION_NOT_ACTIVE", Message: "session is not active", RecoveryHint: "Start the session before counting"}
	case errors.As(err, &incompleteErr):
		return &APIError{Code: "INCOMPLETE_ITEMS", Message: "uncounted items remain", Details: incompleteErr.Missing, RecoveryHint: "Count the remaining items or complete with force=true"}
	case errors.Is(err, lock.ErrLockHeld):
		return &APIError{Code: "LOCK_HELD", Message: "item locked by another counter", RecoveryHint: "Pick a different item or retry after the lock expires"}
	case errors.Is(err, lock.ErrCounterNotAllowed):
		return &APIError{Code: "COUNTER_NOT_ALLOWED", Message: "counter not in the session roster", RecoveryHint: "Use a counter listed in allowed_counters"}
	case errors.Is(err, count.ErrLockNotHeld):
		return &APIError{Code: "LOCK_NOT_HELD", Message: "no live lock for this counter and item", RecoveryHint: "Call acquire_lock before submitting, and submit before the lock expires"}
	case errors.Is(err, count.ErrItemNotAssigned):
		return &APIError{Code: "ITEM_NOT_ASSIGNED", Message: "item is not assigned to the session", RecoveryHint: "Check the item ID against list_items"}
	case errors.Is(err, stocktake.ErrInvalidInput), errors.Is(err, count.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid input", RecoveryHint: "Check required fields"}
	default:
		return nil
	}
}
