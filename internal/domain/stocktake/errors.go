package stocktake

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionNotFound indicates the session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidInput indicates malformed session creation input.
	ErrInvalidInput = errors.New("invalid session input")
	// ErrInvalidTransition indicates an illegal lifecycle transition.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrSessionNotActive indicates locks and counts were attempted
	// against a session that is not in the active state.
	ErrSessionNotActive = errors.New("session not active")
	// ErrIncompleteItems indicates completion was requested while
	// assigned items are still uncounted.
	ErrIncompleteItems = errors.New("uncounted items remain")
)

// IncompleteItemsError carries the uncounted item IDs so a caller can
// decide to force-complete deliberately. errors.Is matches
// ErrIncompleteItems.
type IncompleteItemsError struct {
	Missing []string
}

func (e *IncompleteItemsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrIncompleteItems, strings.Join(e.Missing, ", "))
}

func (e *IncompleteItemsError) Unwrap() error {
	return ErrIncompleteItems
}
