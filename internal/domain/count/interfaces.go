package count

import (
	"context"

	"github.com/ledgerline/stocktake/internal/domain/lock"
)

// BaselineSource resolves the frozen baseline quantity of an assigned
// item. Returns repository.ErrNotFound when the item is not part of
// the session.
type BaselineSource interface {
	Baseline(ctx context.Context, sessionID, itemID string) (float64, error)
}

// EntryRepository provides append and read access to the ledger.
type EntryRepository interface {
	Append(ctx context.Context, entry *Entry) error
	ListBySession(ctx context.Context, sessionID string) ([]Entry, error)
}

// LockConsumer verifies and releases a lock atomically. One count
// submission consumes the lock; re-counting requires re-acquisition.
type LockConsumer interface {
	Release(sessionID, itemID, counterID string) (*lock.Lock, error)
	Restore(l *lock.Lock)
}
