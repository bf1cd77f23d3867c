package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/stocktake/internal/domain/stocktake"
	"github.com/ledgerline/stocktake/internal/repository"
)

func testSession(id, branch string) *stocktake.Session {
	return &stocktake.Session{
		ID:        id,
		Code:      "ST-" + id,
		BranchID:  branch,
		CreatedBy: "manager",
		Status:    stocktake.StatusDraft,
		CreatedAt: time.Now().UTC(),
	}
}

func testItems(sessionID string) []stocktake.AssignedItem {
	return []stocktake.AssignedItem{
		{SessionID: sessionID, ItemID: "sku-1", Name: "Widget", Shelf: "A1", BaselineQty: 10},
		{SessionID: sessionID, ItemID: "sku-2", Name: "Gadget", BaselineQty: 5},
	}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := testSession("s1", "branch-1")
	sess.IsMultiUser = true
	sess.AllowedCounters = []string{"alice", "bob"}
	sess.ShelfAssignments = map[string]string{"A1": "alice"}
	sess.Notes = "monthly count"

	err := repo.Create(ctx, sess, testItems("s1"))
	require.NoError(t, err)

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, sess.Code, got.Code)
	require.Equal(t, sess.BranchID, got.BranchID)
	require.True(t, got.IsMultiUser)
	require.Equal(t, []string{"alice", "bob"}, got.AllowedCounters)
	require.Equal(t, map[string]string{"A1": "alice"}, got.ShelfAssignments)
	require.Equal(t, "monthly count", got.Notes)
	require.Equal(t, stocktake.StatusDraft, got.Status)
	require.Nil(t, got.StartedAt)
}

func TestSessionRepository_GetNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)

	_, err := repo.Get(context.Background(), "nonexistent")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_DuplicateID(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSession("s1", "branch-1"), nil))

	err := repo.Create(ctx, testSession("s1", "branch-1"), nil)
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestSessionRepository_CreateIsAtomic(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	// Duplicate item IDs violate the session_items primary key; the
	// whole create must roll back, including the session row.
	items := testItems("s1")
	items = append(items, items[0])
	err := repo.Create(ctx, testSession("s1", "branch-1"), items)
	require.Error(t, err)

	_, err = repo.Get(ctx, "s1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_Update(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := testSession("s1", "branch-1")
	require.NoError(t, repo.Create(ctx, sess, testItems("s1")))

	now := time.Now().UTC()
	sess.Status = stocktake.StatusActive
	sess.StartedAt = &now
	require.NoError(t, repo.Update(ctx, sess, stocktake.StatusDraft))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, stocktake.StatusActive, got.Status)
	require.NotNil(t, got.StartedAt)
	require.WithinDuration(t, now, *got.StartedAt, time.Second)
}

func TestSessionRepository_UpdateNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)

	err := repo.Update(context.Background(), testSession("ghost", "branch-1"), stocktake.StatusDraft)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_UpdateStaleStatus(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess := testSession("s1", "branch-1")
	require.NoError(t, repo.Create(ctx, sess, nil))

	now := time.Now().UTC()
	sess.Status = stocktake.StatusCompleted
	sess.CompletedAt = &now
	require.NoError(t, repo.Update(ctx, sess, stocktake.StatusDraft))

	// A writer that read the session before completion must not be
	// able to overwrite the terminal state.
	stale := testSession("s1", "branch-1")
	stale.Status = stocktake.StatusCancelled
	stale.CancelledAt = &now
	err := repo.Update(ctx, stale, stocktake.StatusDraft)
	require.ErrorIs(t, err, repository.ErrConflict)

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, stocktake.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	require.Nil(t, got.CancelledAt)
}

func TestSessionRepository_List(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	older := testSession("s1", "branch-1")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, older, testItems("s1")))

	newer := testSession("s2", "branch-1")
	require.NoError(t, repo.Create(ctx, newer, nil))

	other := testSession("s3", "branch-2")
	require.NoError(t, repo.Create(ctx, other, nil))

	summaries, err := repo.List(ctx, "branch-1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Newest first, with item counts
	require.Equal(t, "s2", summaries[0].ID)
	require.Equal(t, 0, summaries[0].TotalItems)
	require.Equal(t, "s1", summaries[1].ID)
	require.Equal(t, 2, summaries[1].TotalItems)
}

func TestSessionRepository_ListEmptyBranch(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)

	summaries, err := repo.List(context.Background(), "empty")
	require.NoError(t, err)
	require.Empty(t, summaries)
}
