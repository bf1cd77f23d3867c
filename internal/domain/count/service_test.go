package count_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/repository"
	"github.com/ledgerline/stocktake/internal/repository/mocks"
)

func newTestLedger(t *testing.T) (*count.Service, *mocks.ItemRepository, *mocks.EntryRepository, *lock.Manager) {
	t.Helper()
	items := &mocks.ItemRepository{}
	entries := &mocks.EntryRepository{}
	locks := lock.NewManager(time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return count.NewService(items, entries, locks, logger), items, entries, locks
}

func TestRecord_Variance(t *testing.T) {
	svc, items, entries, locks := newTestLedger(t)
	items.On("Baseline", mock.Anything, "s1", "sku-1").Return(10.0, nil)
	entries.On("Append", mock.Anything, mock.Anything).Return(nil)

	_, err := locks.Acquire("s1", "sku-1", "alice", nil)
	require.NoError(t, err)

	entry, err := svc.Record(context.Background(), "s1", "sku-1", "alice", 8)
	require.NoError(t, err)
	require.Equal(t, 8.0, entry.CountedQty)
	require.Equal(t, -2.0, entry.Variance)
	require.Equal(t, "alice", entry.CounterID)
	require.False(t, entry.CountedAt.IsZero())
}

func TestRecord_ConsumesLock(t *testing.T) {
	svc, items, entries, locks := newTestLedger(t)
	items.On("Baseline", mock.Anything, "s1", "sku-1").Return(10.0, nil)
	entries.On("Append", mock.Anything, mock.Anything).Return(nil)

	_, err := locks.Acquire("s1", "sku-1", "alice", nil)
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), "s1", "sku-1", "alice", 10)
	require.NoError(t, err)

	// Recounting requires a fresh lock
	_, err = svc.Record(context.Background(), "s1", "sku-1", "alice", 11)
	require.ErrorIs(t, err, count.ErrLockNotHeld)
}

func TestRecord_NoLock(t *testing.T) {
	svc, items, _, _ := newTestLedger(t)
	items.On("Baseline", mock.Anything, "s1", "sku-1").Return(10.0, nil)

	_, err := svc.Record(context.Background(), "s1", "sku-1", "alice", 8)
	require.ErrorIs(t, err, count.ErrLockNotHeld)
}

func TestRecord_LockHeldByOther(t *testing.T) {
	svc, items, _, locks := newTestLedger(t)
	items.On("Baseline", mock.Anything, "s1", "sku-1").Return(10.0, nil)

	_, err := locks.Acquire("s1", "sku-1", "bob", nil)
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), "s1", "sku-1", "alice", 8)
	require.ErrorIs(t, err, count.ErrLockNotHeld)

	// Bob's lock survives alice's failed submit
	require.Equal(t, map[string]string{"sku-1": "bob"}, locks.HeldItems("s1"))
}

func TestRecord_ItemNotAssigned(t *testing.T) {
	svc, items, _, locks := newTestLedger(t)
	items.On("Baseline", mock.Anything, "s1", "ghost").Return(0.0, repository.ErrNotFound)

	_, err := locks.Acquire("s1", "ghost", "alice", nil)
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), "s1", "ghost", "alice", 8)
	require.ErrorIs(t, err, count.ErrItemNotAssigned)
}

func TestRecord_InvalidInput(t *testing.T) {
	svc, _, _, _ := newTestLedger(t)

	_, err := svc.Record(context.Background(), "", "sku-1", "alice", 8)
	require.ErrorIs(t, err, count.ErrInvalidInput)

	_, err = svc.Record(context.Background(), "s1", "sku-1", "alice", -1)
	require.ErrorIs(t, err, count.ErrInvalidInput)
}

func TestRecord_AppendFailureRestoresLock(t *testing.T) {
	svc, items, entries, locks := newTestLedger(t)
	items.On("Baseline", mock.Anything, "s1", "sku-1").Return(10.0, nil)
	entries.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := locks.Acquire("s1", "sku-1", "alice", nil)
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), "s1", "sku-1", "alice", 8)
	require.Error(t, err)

	// The lock was reinstated, so the counter can retry without
	// re-acquiring.
	require.Equal(t, map[string]string{"sku-1": "alice"}, locks.HeldItems("s1"))
}

func TestRecord_ZeroQuantityAllowed(t *testing.T) {
	svc, items, entries, locks := newTestLedger(t)
	items.On("Baseline", mock.Anything, "s1", "sku-1").Return(5.0, nil)
	entries.On("Append", mock.Anything, mock.Anything).Return(nil)

	_, err := locks.Acquire("s1", "sku-1", "alice", nil)
	require.NoError(t, err)

	entry, err := svc.Record(context.Background(), "s1", "sku-1", "alice", 0)
	require.NoError(t, err)
	require.Equal(t, -5.0, entry.Variance)
}

func TestHistory(t *testing.T) {
	svc, _, entries, _ := newTestLedger(t)
	want := []count.Entry{{ID: 1, ItemID: "sku-1"}, {ID: 2, ItemID: "sku-1"}}
	entries.On("ListBySession", mock.Anything, "s1").Return(want, nil)

	got, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}
