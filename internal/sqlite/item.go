package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerline/stocktake/internal/domain/stocktake"
	"github.com/ledgerline/stocktake/internal/repository"
)

// ItemRepository implements stocktake.ItemRepository and
// count.BaselineSource for SQLite.
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// ListBySession returns a session's assigned items ordered by item ID.
func (r *ItemRepository) ListBySession(ctx context.Context, sessionID string) ([]stocktake.AssignedItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, item_id, name, shelf, baseline_qty
		FROM session_items
		WHERE session_id = ?
		ORDER BY item_id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned items: %w", err)
	}
	defer rows.Close()

	var items []stocktake.AssignedItem
	for rows.Next() {
		var item stocktake.AssignedItem
		if err := rows.Scan(
			&item.SessionID,
			&item.ItemID,
			&item.Name,
			&item.Shelf,
			&item.BaselineQty,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assigned item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assigned items: %w", err)
	}

	return items, nil
}

// Uncounted returns IDs of assigned items with no count entry yet.
func (r *ItemRepository) Uncounted(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.item_id
		FROM session_items i
		WHERE i.session_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM count_entries e
			WHERE e.session_id = i.session_id AND e.item_id = i.item_id
		  )
		ORDER BY i.item_id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uncounted items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating uncounted items: %w", err)
	}

	return ids, nil
}

// Baseline returns the frozen baseline quantity for an assigned item.
func (r *ItemRepository) Baseline(ctx context.Context, sessionID, itemID string) (float64, error) {
	var baseline float64
	err := r.db.QueryRowContext(ctx,
		`SELECT baseline_qty FROM session_items WHERE session_id = ? AND item_id = ?`,
		sessionID, itemID).Scan(&baseline)
	if err == sql.ErrNoRows {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get baseline: %w", err)
	}
	return baseline, nil
}
