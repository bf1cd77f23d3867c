package stocktake

import (
	"context"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/domain/progress"
)

// SessionRepository provides persistence for sessions and their
// assigned items. Create persists the session together with its items
// in one transaction so baselines freeze atomically with the session.
type SessionRepository interface {
	Create(ctx context.Context, sess *Session, items []AssignedItem) error
	Get(ctx context.Context, id string) (*Session, error)
	// Update is conditional on the status the caller read; it returns
	// repository.ErrConflict when a concurrent transition won.
	Update(ctx context.Context, sess *Session, expected SessionStatus) error
	List(ctx context.Context, branchID string) ([]SessionSummary, error)
}

// ItemRepository provides access to a session's assigned items.
type ItemRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]AssignedItem, error)
	Uncounted(ctx context.Context, sessionID string) ([]string, error)
}

// LockManager grants and releases item locks.
type LockManager interface {
	Acquire(sessionID, itemID, counterID string, allowed []string) (*lock.Lock, error)
	Release(sessionID, itemID, counterID string) (*lock.Lock, error)
	ReleaseAll(sessionID string)
}

// Ledger is the count write path plus the audit history read.
type Ledger interface {
	Record(ctx context.Context, sessionID, itemID, counterID string, qty float64) (*count.Entry, error)
	History(ctx context.Context, sessionID string) ([]count.Entry, error)
}

// ProgressReader serves derived snapshots.
type ProgressReader interface {
	Snapshot(ctx context.Context, sessionID string) (*progress.Snapshot, error)
}
