package stocktake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/domain/progress"
	"github.com/ledgerline/stocktake/internal/repository"
)

// Service coordinates stock take sessions: lifecycle transitions, lock
// acquisition, count routing and progress snapshots. Every read is
// scoped to the caller's branch; sessions of other branches behave as
// if they do not exist.
type Service struct {
	sessions SessionRepository
	items    ItemRepository
	locks    LockManager
	ledger   Ledger
	progress ProgressReader
	logger   *slog.Logger
}

// NewService creates a new session coordinator.
func NewService(
	sessions SessionRepository,
	items ItemRepository,
	locks LockManager,
	ledger Ledger,
	progressReader ProgressReader,
	logger *slog.Logger,
) *Service {
	return &Service{
		sessions: sessions,
		items:    items,
		locks:    locks,
		ledger:   ledger,
		progress: progressReader,
		logger:   logger,
	}
}

// ItemInput supplies one item for a new session, with the system
// quantity snapshot that becomes the immutable baseline.
type ItemInput struct {
	ItemID      string
	Name        string
	Shelf       string
	BaselineQty float64
}

// CreateRequest describes a session creation request.
type CreateRequest struct {
	Code             string
	BranchID         string
	CreatedBy        string
	IsMultiUser      bool
	AllowedCounters  []string
	ShelfAssignments map[string]string
	Notes            string
	Items            []ItemInput
}

// Create creates a session in draft with its assigned items. Baseline
// quantities freeze here.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:               uuid.NewString(),
		Code:             req.Code,
		BranchID:         req.BranchID,
		CreatedBy:        req.CreatedBy,
		IsMultiUser:      req.IsMultiUser,
		AllowedCounters:  req.AllowedCounters,
		ShelfAssignments: req.ShelfAssignments,
		Notes:            req.Notes,
		Status:           StatusDraft,
		CreatedAt:        now,
	}
	if strings.TrimSpace(sess.Code) == "" {
		sess.Code = generateCode(now, sess.ID)
	}

	items := make([]AssignedItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = AssignedItem{
			SessionID:   sess.ID,
			ItemID:      item.ItemID,
			Name:        item.Name,
			Shelf:       item.Shelf,
			BaselineQty: item.BaselineQty,
		}
	}

	if err := s.sessions.Create(ctx, sess, items); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("stock take session created",
		"session_id", sess.ID,
		"code", sess.Code,
		"branch_id", sess.BranchID,
		"items", len(items),
	)
	return sess, nil
}

// Start transitions a session to active, from draft or paused.
func (s *Service) Start(ctx context.Context, branchID, id, actor string) (*Session, error) {
	sess, err := s.load(ctx, branchID, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(sess.Status, StatusActive); err != nil {
		return nil, err
	}

	prev := sess.Status
	sess.Status = StatusActive
	if sess.StartedAt == nil {
		now := time.Now()
		sess.StartedAt = &now
	}
	if err := s.update(ctx, sess, prev); err != nil {
		return nil, err
	}

	s.logger.Info("stock take session started", "session_id", id, "actor", actor)
	return sess, nil
}

// Pause transitions an active session to paused and releases every
// outstanding lock. The status flips before locks are swept, so any
// acquisition racing the pause either sees the new status or is
// cleared by the sweep.
func (s *Service) Pause(ctx context.Context, branchID, id, actor string) (*Session, error) {
	sess, err := s.load(ctx, branchID, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(sess.Status, StatusPaused); err != nil {
		return nil, err
	}

	prev := sess.Status
	sess.Status = StatusPaused
	if err := s.update(ctx, sess, prev); err != nil {
		return nil, err
	}
	s.locks.ReleaseAll(id)

	s.logger.Info("stock take session paused", "session_id", id, "actor", actor)
	return sess, nil
}

// Complete finishes a session. Without force it fails while any
// assigned item lacks a count entry, reporting the uncounted item IDs.
// Forcing leaves uncounted items absent from the ledger; no synthetic
// entries are written.
func (s *Service) Complete(ctx context.Context, branchID, id, actor string, force bool) (*Session, error) {
	sess, err := s.load(ctx, branchID, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(sess.Status, StatusCompleted); err != nil {
		return nil, err
	}

	if !force {
		missing, err := s.items.Uncounted(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("checking uncounted items: %w", err)
		}
		if len(missing) > 0 {
			return nil, &IncompleteItemsError{Missing: missing}
		}
	}

	now := time.Now()
	prev := sess.Status
	sess.Status = StatusCompleted
	sess.CompletedAt = &now
	if err := s.update(ctx, sess, prev); err != nil {
		return nil, err
	}
	s.locks.ReleaseAll(id)

	s.logger.Info("stock take session completed", "session_id", id, "actor", actor, "forced", force)
	return sess, nil
}

// Cancel aborts a session from any non-terminal state and releases
// every outstanding lock.
func (s *Service) Cancel(ctx context.Context, branchID, id, actor string) (*Session, error) {
	sess, err := s.load(ctx, branchID, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(sess.Status, StatusCancelled); err != nil {
		return nil, err
	}

	now := time.Now()
	prev := sess.Status
	sess.Status = StatusCancelled
	sess.CancelledAt = &now
	if err := s.update(ctx, sess, prev); err != nil {
		return nil, err
	}
	s.locks.ReleaseAll(id)

	s.logger.Info("stock take session cancelled", "session_id", id, "actor", actor)
	return sess, nil
}

// AcquireLock claims an item for a counter so nobody else counts it
// concurrently. Only active sessions accept acquisitions.
func (s *Service) AcquireLock(ctx context.Context, branchID, sessionID, itemID, counterID string) (*lock.Lock, error) {
	sess, err := s.load(ctx, branchID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusActive {
		return nil, ErrSessionNotActive
	}

	lk, err := s.locks.Acquire(sessionID, itemID, counterID, sess.AllowedCounters)
	if err != nil {
		return nil, err
	}

	// The session may have been paused or finished between the status
	// check and the acquisition. Re-read: either the sweep that goes
	// with the transition already cleared this lock, or we clear it
	// here. No lock survives on an inactive session.
	sess, err = s.load(ctx, branchID, sessionID)
	if err != nil || sess.Status != StatusActive {
		_, _ = s.locks.Release(sessionID, itemID, counterID)
		if err != nil {
			return nil, err
		}
		return nil, ErrSessionNotActive
	}
	return lk, nil
}

// SubmitCount routes a count submission through the ledger. The lock
// for the item is consumed on success.
func (s *Service) SubmitCount(ctx context.Context, branchID, sessionID, itemID, counterID string, qty float64) (*count.Entry, error) {
	sess, err := s.load(ctx, branchID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusActive {
		return nil, ErrSessionNotActive
	}
	return s.ledger.Record(ctx, sessionID, itemID, counterID, qty)
}

// Progress serves a derived snapshot for polling clients.
func (s *Service) Progress(ctx context.Context, branchID, sessionID string) (*progress.Snapshot, error) {
	if _, err := s.load(ctx, branchID, sessionID); err != nil {
		return nil, err
	}
	snap, err := s.progress.Snapshot(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return snap, nil
}

// List returns session summaries for a branch, newest first.
func (s *Service) List(ctx context.Context, branchID string) ([]SessionSummary, error) {
	return s.sessions.List(ctx, branchID)
}

// Get fetches a session by ID within the caller's branch.
func (s *Service) Get(ctx context.Context, branchID, id string) (*Session, error) {
	return s.load(ctx, branchID, id)
}

// History returns the full append-only count history for audit.
func (s *Service) History(ctx context.Context, branchID, sessionID string) ([]count.Entry, error) {
	if _, err := s.load(ctx, branchID, sessionID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, sessionID)
}

// Items returns the session's assigned items.
func (s *Service) Items(ctx context.Context, branchID, sessionID string) ([]AssignedItem, error) {
	if _, err := s.load(ctx, branchID, sessionID); err != nil {
		return nil, err
	}
	return s.items.ListBySession(ctx, sessionID)
}

func (s *Service) load(ctx context.Context, branchID, id string) (*Session, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	// Sessions of other branches are indistinguishable from absent.
	if sess.BranchID != branchID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// update persists a transition conditionally on the status the session
// was read at. Losing to a concurrent transition means the read was
// stale, which surfaces as an invalid transition.
func (s *Service) update(ctx context.Context, sess *Session, expected SessionStatus) error {
	if err := s.sessions.Update(ctx, sess, expected); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%w: session was modified concurrently", ErrInvalidTransition)
		}
		return fmt.Errorf("updating session: %w", err)
	}
	return nil
}

func generateCode(now time.Time, id string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("ST-%s-%s", now.Format("20060102"), suffix)
}
