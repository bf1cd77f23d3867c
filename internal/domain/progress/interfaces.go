package progress

import "context"

// SnapshotRepository collects the snapshot source in one consistent read.
type SnapshotRepository interface {
	Collect(ctx context.Context, sessionID string, recentLimit int) (*SourceData, error)
}

// LockReader exposes the live lock table for snapshot overlay.
type LockReader interface {
	ActiveCount(sessionID string) int
	HeldItems(sessionID string) map[string]string
}
