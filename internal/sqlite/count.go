package sqlite

import (
	"context"
	"fmt"

	"github.com/ledgerline/stocktake/internal/domain/count"
)

// CountRepository implements count.EntryRepository for SQLite. The
// ledger is append-only; there is no update or delete path.
type CountRepository struct {
	db *DB
}

// NewCountRepository creates a new CountRepository
func NewCountRepository(db *DB) *CountRepository {
	return &CountRepository{db: db}
}

// Append adds a count entry and fills in its assigned ID.
func (r *CountRepository) Append(ctx context.Context, entry *count.Entry) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO count_entries (session_id, item_id, counter_id, counted_qty, variance, counted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		entry.SessionID,
		entry.ItemID,
		entry.CounterID,
		entry.CountedQty,
		entry.Variance,
		entry.CountedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append count entry: %w", translateConstraint(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get entry id: %w", err)
	}
	entry.ID = id

	return nil
}

// ListBySession returns the full entry history, oldest first.
func (r *CountRepository) ListBySession(ctx context.Context, sessionID string) ([]count.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, item_id, counter_id, counted_qty, variance, counted_at
		FROM count_entries
		WHERE session_id = ?
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list count entries: %w", err)
	}
	defer rows.Close()

	var entries []count.Entry
	for rows.Next() {
		var entry count.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&entry.ItemID,
			&entry.CounterID,
			&entry.CountedQty,
			&entry.Variance,
			&entry.CountedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan count entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating count entries: %w", err)
	}

	return entries, nil
}
