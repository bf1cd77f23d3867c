package mocks

import (
	"context"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/domain/progress"
	"github.com/ledgerline/stocktake/internal/domain/stocktake"
	"github.com/stretchr/testify/mock"
)

// SessionRepository is a mock for stocktake.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, sess *stocktake.Session, items []stocktake.AssignedItem) error {
	args := m.Called(ctx, sess, items)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id string) (*stocktake.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*stocktake.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Update(ctx context.Context, sess *stocktake.Session, expected stocktake.SessionStatus) error {
	args := m.Called(ctx, sess, expected)
	return args.Error(0)
}

func (m *SessionRepository) List(ctx context.Context, branchID string) ([]stocktake.SessionSummary, error) {
	args := m.Called(ctx, branchID)
	if list, ok := args.Get(0).([]stocktake.SessionSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ItemRepository is a mock for stocktake.ItemRepository and
// count.BaselineSource.
type ItemRepository struct {
	mock.Mock
}

func (m *ItemRepository) ListBySession(ctx context.Context, sessionID string) ([]stocktake.AssignedItem, error) {
	args := m.Called(ctx, sessionID)
	if items, ok := args.Get(0).([]stocktake.AssignedItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) Uncounted(ctx context.Context, sessionID string) ([]string, error) {
	args := m.Called(ctx, sessionID)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) Baseline(ctx context.Context, sessionID, itemID string) (float64, error) {
	args := m.Called(ctx, sessionID, itemID)
	return args.Get(0).(float64), args.Error(1)
}

// EntryRepository is a mock for count.EntryRepository.
type EntryRepository struct {
	mock.Mock
}

func (m *EntryRepository) Append(ctx context.Context, entry *count.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *EntryRepository) ListBySession(ctx context.Context, sessionID string) ([]count.Entry, error) {
	args := m.Called(ctx, sessionID)
	if entries, ok := args.Get(0).([]count.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// SnapshotRepository is a mock for progress.SnapshotRepository.
type SnapshotRepository struct {
	mock.Mock
}

func (m *SnapshotRepository) Collect(ctx context.Context, sessionID string, recentLimit int) (*progress.SourceData, error) {
	args := m.Called(ctx, sessionID, recentLimit)
	if data, ok := args.Get(0).(*progress.SourceData); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

// LockManager is a mock for stocktake.LockManager.
type LockManager struct {
	mock.Mock
}

func (m *LockManager) Acquire(sessionID, itemID, counterID string, allowed []string) (*lock.Lock, error) {
	args := m.Called(sessionID, itemID, counterID, allowed)
	if l, ok := args.Get(0).(*lock.Lock); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LockManager) Release(sessionID, itemID, counterID string) (*lock.Lock, error) {
	args := m.Called(sessionID, itemID, counterID)
	if l, ok := args.Get(0).(*lock.Lock); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LockManager) ReleaseAll(sessionID string) {
	m.Called(sessionID)
}

// Ledger is a mock for stocktake.Ledger.
type Ledger struct {
	mock.Mock
}

func (m *Ledger) Record(ctx context.Context, sessionID, itemID, counterID string, qty float64) (*count.Entry, error) {
	args := m.Called(ctx, sessionID, itemID, counterID, qty)
	if entry, ok := args.Get(0).(*count.Entry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Ledger) History(ctx context.Context, sessionID string) ([]count.Entry, error) {
	args := m.Called(ctx, sessionID)
	if entries, ok := args.Get(0).([]count.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProgressReader is a mock for stocktake.ProgressReader.
type ProgressReader struct {
	mock.Mock
}

func (m *ProgressReader) Snapshot(ctx context.Context, sessionID string) (*progress.Snapshot, error) {
	args := m.Called(ctx, sessionID)
	if snap, ok := args.Get(0).(*progress.Snapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}
