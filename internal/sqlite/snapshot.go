package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/progress"
	"github.com/ledgerline/stocktake/internal/repository"
)

// SnapshotRepository implements progress.SnapshotRepository for
// SQLite. Collect runs inside one read transaction so the item and
// ledger views cannot tear against a concurrent submit.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Collect gathers the snapshot source data for a session.
func (r *SnapshotRepository) Collect(ctx context.Context, sessionID string, recentLimit int) (*progress.SourceData, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	data := &progress.SourceData{}

	err = tx.QueryRowContext(ctx,
		`SELECT status FROM sessions WHERE id = ?`, sessionID).Scan(&data.Status)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session status: %w", err)
	}

	if data.AllowedCounters, err = collectStrings(ctx, tx,
		`SELECT counter_id FROM session_counters WHERE session_id = ? ORDER BY counter_id`,
		sessionID); err != nil {
		return nil, err
	}

	if data.ShelfAssignments, err = collectShelves(ctx, tx, sessionID); err != nil {
		return nil, err
	}

	if data.Items, err = collectItems(ctx, tx, sessionID); err != nil {
		return nil, err
	}

	if data.Recent, err = collectRecent(ctx, tx, sessionID, recentLimit); err != nil {
		return nil, err
	}

	return data, nil
}

// collectItems joins each assigned item with its latest count entry.
func collectItems(ctx context.Context, tx *sql.Tx, sessionID string) ([]progress.ItemStatus, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT
			i.item_id, i.name, i.shelf, i.baseline_qty,
			e.counted_qty, e.variance, e.counter_id, e.counted_at
		FROM session_items i
		LEFT JOIN count_entries e ON e.id = (
			SELECT id FROM count_entries
			WHERE session_id = i.session_id AND item_id = i.item_id
			ORDER BY id DESC
			LIMIT 1
		)
		WHERE i.session_id = ?
		ORDER BY i.item_id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect item statuses: %w", err)
	}
	defer rows.Close()

	var items []progress.ItemStatus
	for rows.Next() {
		var item progress.ItemStatus
		var countedQty, variance sql.NullFloat64
		var counterID sql.NullString
		var countedAt sql.NullTime
		if err := rows.Scan(
			&item.ItemID,
			&item.Name,
			&item.Shelf,
			&item.BaselineQty,
			&countedQty,
			&variance,
			&counterID,
			&countedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item status: %w", err)
		}
		if countedQty.Valid {
			item.Counted = true
			item.CountedQty = countedQty.Float64
			item.Variance = variance.Float64
			item.CounterID = counterID.String
			item.CountedAt = &countedAt.Time
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item statuses: %w", err)
	}
	return items, nil
}

func collectRecent(ctx context.Context, tx *sql.Tx, sessionID string, limit int) ([]count.Entry, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, session_id, item_id, counter_id, counted_qty, variance, counted_at
		FROM count_entries
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to collect recent entries: %w", err)
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
			return nil, fmt.Errorf("failed to scan recent entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent entries: %w", err)
	}
	return entries, nil
}

func collectStrings(ctx context.Context, tx *sql.Tx, query, sessionID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating values: %w", err)
	}
	return values, nil
}

func collectShelves(ctx context.Context, tx *sql.Tx, sessionID string) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT shelf, counter_id FROM shelf_assignments WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect shelf assignments: %w", err)
	}
	defer rows.Close()

	assignments := make(map[string]string)
	for rows.Next() {
		var shelf, counter string
		if err := rows.Scan(&shelf, &counter); err != nil {
			return nil, fmt.Errorf("failed to scan shelf assignment: %w", err)
		}
		assignments[shelf] = counter
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shelf assignments: %w", err)
	}
	return assignments, nil
}
