package count

import "errors"

var (
	// ErrLockNotHeld indicates a submit without a currently held lock.
	ErrLockNotHeld = errors.New("count submitted without held lock")
	// ErrItemNotAssigned indicates the item is not part of the session.
	ErrItemNotAssigned = errors.New("item not assigned to session")
	// ErrInvalidInput indicates malformed count input.
	ErrInvalidInput = errors.New("invalid count input")
)
