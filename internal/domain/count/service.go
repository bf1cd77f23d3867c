package count

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/repository"
)

// Service is the count ledger write path.
type Service struct {
	baselines BaselineSource
	entries   EntryRepository
	locks     LockConsumer
	logger    *slog.Logger
}

// NewService creates a new count ledger service.
func NewService(baselines BaselineSource, entries EntryRepository, locks LockConsumer, logger *slog.Logger) *Service {
	return &Service{
		baselines: baselines,
		entries:   entries,
		locks:     locks,
		logger:    logger,
	}
}

// Record appends a count entry for an assigned item. The caller must
// hold the item's lock; the lock is consumed atomically with the
// decision to write, so a counter whose lock just expired can never
// slip an entry past a racing holder. Variance is fixed at write time
// against the frozen baseline.
func (s *Service) Record(ctx context.Context, sessionID, itemID, counterID string, qty float64) (*Entry, error) {
	if sessionID == "" || itemID == "" || counterID == "" {
		return nil, ErrInvalidInput
	}
	if qty < 0 {
		return nil, ErrInvalidInput
	}

	baseline, err := s.baselines.Baseline(ctx, sessionID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotAssigned
		}
		return nil, fmt.Errorf("loading assigned item: %w", err)
	}

	consumed, err := s.locks.Release(sessionID, itemID, counterID)
	if err != nil {
		if errors.Is(err, lock.ErrNotHeld) {
			return nil, ErrLockNotHeld
		}
		return nil, fmt.Errorf("consuming lock: %w", err)
	}

	entry := &Entry{
		SessionID:  sessionID,
		ItemID:     itemID,
		CounterID:  counterID,
		CountedQty: qty,
		Variance:   qty - baseline,
		CountedAt:  time.Now(),
	}

	if err := s.entries.Append(ctx, entry); err != nil {
		// Reinstate the consumed lock so no partial mutation survives
		// a failed submit.
		s.locks.Restore(consumed)
		return nil, fmt.Errorf("appending count entry: %w", err)
	}

	s.logger.Debug("count recorded",
		"session_id", sessionID,
		"item_id", itemID,
		"counter_id", counterID,
		"counted_qty", qty,
		"variance", entry.Variance,
	)

	return entry, nil
}

// History returns the full entry history for a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]Entry, error) {
	return s.entries.ListBySession(ctx, sessionID)
}
