package stocktake_test

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
	"github.com/ledgerline/stocktake/internal/domain/progress"
	"github.com/ledgerline/stocktake/internal/domain/stocktake"
	"github.com/ledgerline/stocktake/internal/repository"
	"github.com/ledgerline/stocktake/internal/repository/mocks"
)

const testBranch = "branch-1"

func newTestService(t *testing.T) (*stocktake.Service, *mocks.SessionRepository, *mocks.ItemRepository, *mocks.LockManager, *mocks.Ledger, *mocks.ProgressReader) {
	t.Helper()
	sessions := &mocks.SessionRepository{}
	items := &mocks.ItemRepository{}
	locks := &mocks.LockManager{}
	ledger := &mocks.Ledger{}
	reader := &mocks.ProgressReader{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := stocktake.NewService(sessions, items, locks, ledger, reader, logger)
	return svc, sessions, items, locks, ledger, reader
}

func validCreateRequest() stocktake.CreateRequest {
	return stocktake.CreateRequest{
		BranchID:  testBranch,
		CreatedBy: "manager",
		Items: []stocktake.ItemInput{
			{ItemID: "sku-1", Name: "Widget", BaselineQty: 10},
			{ItemID: "sku-2", Name: "Gadget", BaselineQty: 5},
		},
	}
}

func branchSession(id string, status stocktake.SessionStatus) *stocktake.Session {
	return &stocktake.Session{ID: id, BranchID: testBranch, Status: status}
}

func TestService_Create(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	sessions.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sess, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.NotEmpty(t, sess.Code)
	require.Equal(t, stocktake.StatusDraft, sess.Status)
	sessions.AssertExpectations(t)

	created := sessions.Calls[0].Arguments.Get(2).([]stocktake.AssignedItem)
	require.Len(t, created, 2)
	require.Equal(t, sess.ID, created[0].SessionID)
	require.Equal(t, 10.0, created[0].BaselineQty)
}

func TestService_Create_GeneratesCode(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	sessions.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sess, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.Regexp(t, `^ST-\d{8}-[0-9A-F]{6}$`, sess.Code)
}

func TestService_Create_KeepsExplicitCode(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	sessions.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := validCreateRequest()
	req.Code = "ST-CYCLE-7"
	sess, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "ST-CYCLE-7", sess.Code)
}

func TestService_Create_InvalidInput(t *testing.T) {
	svc, _, _, _, _, _ := newTestService(t)

	cases := []struct {
		name   string
		mutate func(*stocktake.CreateRequest)
	}{
		{"missing branch", func(r *stocktake.CreateRequest) { r.BranchID = "" }},
		{"missing creator", func(r *stocktake.CreateRequest) { r.CreatedBy = "" }},
		{"no items", func(r *stocktake.CreateRequest) { r.Items = nil }},
		{"duplicate item", func(r *stocktake.CreateRequest) { r.Items = append(r.Items, r.Items[0]) }},
		{"blank item id", func(r *stocktake.CreateRequest) { r.Items[0].ItemID = "  " }},
		{"blank counter", func(r *stocktake.CreateRequest) { r.AllowedCounters = []string{""} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			require.ErrorIs(t, err, stocktake.ErrInvalidInput)
		})
	}
}

func TestService_Start(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusDraft), nil)
	sessions.On("Update", mock.Anything, mock.Anything, stocktake.StatusDraft).Return(nil)

	sess, err := svc.Start(context.Background(), testBranch, "s1", "manager")
	require.NoError(t, err)
	require.Equal(t, stocktake.StatusActive, sess.Status)
	require.NotNil(t, sess.StartedAt)
}

func TestService_Start_PreservesFirstStartTime(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	started := time.Now().Add(-time.Hour)
	paused := branchSession("s1", stocktake.StatusPaused)
	paused.StartedAt = &started
	sessions.On("Get", mock.Anything, "s1").Return(paused, nil)
	sessions.On("Update", mock.Anything, mock.Anything, stocktake.StatusPaused).Return(nil)

	sess, err := svc.Start(context.Background(), testBranch, "s1", "manager")
	require.NoError(t, err)
	require.Equal(t, started, *sess.StartedAt)
}

func TestService_Start_InvalidTransition(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusCompleted), nil)

	_, err := svc.Start(context.Background(), testBranch, "s1", "manager")
	require.ErrorIs(t, err, stocktake.ErrInvalidTransition)
}

func TestService_Transition_LosesRaceToConcurrentWriter(t *testing.T) {
	svc, sessions, _, locks, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusActive), nil)
	sessions.On("Update", mock.Anything, mock.Anything, stocktake.StatusActive).Return(repository.ErrConflict)

	// Another caller moved the session between our read and write. The
	// write must not land, and the outstanding locks must not be swept.
	_, err := svc.Cancel(context.Background(), testBranch, "s1", "manager")
	require.ErrorIs(t, err, stocktake.ErrInvalidTransition)
	locks.AssertNotCalled(t, "ReleaseAll", mock.Anything)
}

func TestService_Pause_ReleasesLocks(t *testing.T) {
	svc, sessions, _, locks, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusActive), nil)
	sessions.On("Update", mock.Anything, mock.Anything, stocktake.StatusActive).Return(nil)
	locks.On("ReleaseAll", "s1").Return()

	sess, err := svc.Pause(context.Background(), testBranch, "s1", "manager")
	require.NoError(t, err)
	require.Equal(t, stocktake.StatusPaused, sess.Status)
	locks.AssertCalled(t, "ReleaseAll", "s1")
}

func TestService_Complete_RejectsUncounted(t *testing.T) {
	svc, sessions, items, _, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusActive), nil)
	items.On("Uncounted", mock.Anything, "s1").Return([]string{"sku-2", "sku-3"}, nil)

	_, err := svc.Complete(context.Background(), testBranch, "s1", "manager", false)
	require.ErrorIs(t, err, stocktake.ErrIncompleteItems)

	var incomplete *stocktake.IncompleteItemsError
	require.ErrorAs(t, err, &incomplete)
	require.Equal(t, []string{"sku-2", "sku-3"}, incomplete.Missing)
}

func TestService_Complete_AllCounted(t *testing.T) {
	svc, sessions, items, locks, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusActive), nil)
	items.On("Uncounted", mock.Anything, "s1").Return([]string{}, nil)
	sessions.On("Update", mock.Anything, mock.Anything, stocktake.StatusActive).Return(nil)
	locks.On("ReleaseAll", "s1").Return()

	sess, err := svc.Complete(context.Background(), testBranch, "s1", "manager", false)
	require.NoError(t, err)
	require.Equal(t, stocktake.StatusCompleted, sess.Status)
	require.NotNil(t, sess.CompletedAt)
}

func TestService_Complete_ForceSkipsCheck(t *testing.T) {
	svc, sessions, items, locks, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusActive), nil)
	sessions.On("Update", mock.Anything, mock.Anything, stocktake.StatusActive).Return(nil)
	locks.On("ReleaseAll", "s1").Return()

	sess, err := svc.Complete(context.Background(), testBranch, "s1", "manager", true)
	require.NoError(t, err)
	require.Equal(t, stocktake.StatusCompleted, sess.Status)
	items.AssertNotCalled(t, "Uncounted", mock.Anything, mock.Anything)
}

func TestService_Cancel(t *testing.T) {
	svc, sessions, _, locks, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusPaused), nil)
	sessions.On("Update", mock.Anything, mock.Anything, stocktake.StatusPaused).Return(nil)
	locks.On("ReleaseAll", "s1").Return()

	sess, err := svc.Cancel(context.Background(), testBranch, "s1", "manager")
	require.NoError(t, err)
	require.Equal(t, stocktake.StatusCancelled, sess.Status)
	require.NotNil(t, sess.CancelledAt)
}

func TestService_Cancel_TerminalRejected(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusCancelled), nil)

	_, err := svc.Cancel(context.Background(), testBranch, "s1", "manager")
	require.ErrorIs(t, err, stocktake.ErrInvalidTransition)
}

func TestService_AcquireLock(t *testing.T) {
	svc, sessions, _, locks, _, _ := newTestService(t)
	active := branchSession("s1", stocktake.StatusActive)
	active.AllowedCounters = []string{"alice"}
	sessions.On("Get", mock.Anything, "s1").Return(active, nil)
	granted := &lock.Lock{SessionID: "s1", ItemID: "sku-1", CounterID: "alice"}
	locks.On("Acquire", "s1", "sku-1", "alice", []string{"alice"}).Return(granted, nil)

	l, err := svc.AcquireLock(context.Background(), testBranch, "s1", "sku-1", "alice")
	require.NoError(t, err)
	require.Equal(t, granted, l)
}

func TestService_AcquireLock_InactiveSession(t *testing.T) {
	svc, sessions, _, locks, _, _ := newTestService(t)

	statuses := []stocktake.SessionStatus{
		stocktake.StatusDraft,
		stocktake.StatusPaused,
		stocktake.StatusCompleted,
		stocktake.StatusCancelled,
	}
	for _, status := range statuses {
		sessions.ExpectedCalls = nil
		sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", status), nil)

		_, err := svc.AcquireLock(context.Background(), testBranch, "s1", "sku-1", "alice")
		require.ErrorIs(t, err, stocktake.ErrSessionNotActive, "status %s", status)
	}
	locks.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_AcquireLock_SessionPausedDuringAcquire(t *testing.T) {
	svc, sessions, _, locks, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusActive), nil).Once()
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusPaused), nil).Once()
	granted := &lock.Lock{SessionID: "s1", ItemID: "sku-1", CounterID: "alice"}
	locks.On("Acquire", "s1", "sku-1", "alice", mock.Anything).Return(granted, nil)
	locks.On("Release", "s1", "sku-1", "alice").Return(granted, nil)

	// A pause landed between the status check and the acquisition. The
	// lock must not survive on the paused session.
	_, err := svc.AcquireLock(context.Background(), testBranch, "s1", "sku-1", "alice")
	require.ErrorIs(t, err, stocktake.ErrSessionNotActive)
	locks.AssertCalled(t, "Release", "s1", "sku-1", "alice")
}

func TestService_SubmitCount(t *testing.T) {
	svc, sessions, _, _, ledger, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusActive), nil)
	entry := &count.Entry{ID: 1, SessionID: "s1", ItemID: "sku-1", CounterID: "alice", CountedQty: 8, Variance: -2}
	ledger.On("Record", mock.Anything, "s1", "sku-1", "alice", 8.0).Return(entry, nil)

	got, err := svc.SubmitCount(context.Background(), testBranch, "s1", "sku-1", "alice", 8)
	require.NoError(t, err)
	require.Equal(t, entry, got)
}

func TestService_SubmitCount_InactiveSession(t *testing.T) {
	svc, sessions, _, _, ledger, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusPaused), nil)

	_, err := svc.SubmitCount(context.Background(), testBranch, "s1", "sku-1", "alice", 8)
	require.ErrorIs(t, err, stocktake.ErrSessionNotActive)
	ledger.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Progress_NotFound(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	_, err := svc.Progress(context.Background(), testBranch, "missing")
	require.ErrorIs(t, err, stocktake.ErrSessionNotFound)
}

func TestService_Progress(t *testing.T) {
	svc, sessions, _, _, _, reader := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusActive), nil)
	snap := &progress.Snapshot{SessionID: "s1", TotalItems: 3, CountedItems: 2}
	reader.On("Snapshot", mock.Anything, "s1").Return(snap, nil)

	got, err := svc.Progress(context.Background(), testBranch, "s1")
	require.NoError(t, err)
	require.Equal(t, snap, got)
}

func TestService_Get_NotFound(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	_, err := svc.Get(context.Background(), testBranch, "missing")
	require.ErrorIs(t, err, stocktake.ErrSessionNotFound)
}

func TestService_Get_OtherBranchHidden(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	other := &stocktake.Session{ID: "s1", BranchID: "branch-2", Status: stocktake.StatusActive}
	sessions.On("Get", mock.Anything, "s1").Return(other, nil)

	// A session that exists in another branch must look absent, not
	// forbidden.
	_, err := svc.Get(context.Background(), testBranch, "s1")
	require.ErrorIs(t, err, stocktake.ErrSessionNotFound)
}

func TestService_Get_EmptyID(t *testing.T) {
	svc, _, _, _, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), testBranch, "")
	require.ErrorIs(t, err, stocktake.ErrInvalidInput)
}

func TestService_Update_RepositoryError(t *testing.T) {
	svc, sessions, _, _, _, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusDraft), nil)
	boom := errors.New("disk full")
	sessions.On("Update", mock.Anything, mock.Anything, stocktake.StatusDraft).Return(boom)

	_, err := svc.Start(context.Background(), testBranch, "s1", "manager")
	require.ErrorIs(t, err, boom)
}

func TestService_History(t *testing.T) {
	svc, sessions, _, _, ledger, _ := newTestService(t)
	sessions.On("Get", mock.Anything, "s1").Return(branchSession("s1", stocktake.StatusActive), nil)
	entries := []count.Entry{{ID: 1, ItemID: "sku-1"}, {ID: 2, ItemID: "sku-1"}}
	ledger.On("History", mock.Anything, "s1").Return(entries, nil)

	got, err := svc.History(context.Background(), testBranch, "s1")
	require.NoError(t, err)
	require.Equal(t, entries, got)
}
