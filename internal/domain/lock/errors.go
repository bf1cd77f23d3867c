package lock

import "errors"

var (
	// ErrLockHeld indicates an unexpired lock is held by another counter.
	ErrLockHeld = errors.New("item locked by another counter")
	// ErrNotHeld indicates the caller does not hold the lock.
	ErrNotHeld = errors.New("lock not held")
	// ErrCounterNotAllowed indicates the counter is outside the
	// session's allowed set.
	ErrCounterNotAllowed = errors.New("counter not allowed in session")
)
