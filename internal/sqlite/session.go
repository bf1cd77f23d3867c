package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerline/stocktake/internal/domain/stocktake"
	"github.com/ledgerline/stocktake/internal/repository"
)

// SessionRepository implements stocktake.SessionRepository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a session with its allowed counters, shelf
// assignments and assigned items in a single transaction.
func (r *SessionRepository) Create(ctx context.Context, sess *stocktake.Session, items []stocktake.AssignedItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (
			id, code, branch_id, created_by, is_multi_user, notes,
			status, created_at, started_at, completed_at, cancelled_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sess.ID,
		sess.Code,
		sess.BranchID,
		sess.CreatedBy,
		sess.IsMultiUser,
		sess.Notes,
		sess.Status,
		sess.CreatedAt,
		sess.StartedAt,
		sess.CompletedAt,
		sess.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", translateConstraint(err))
	}

	for _, counter := range sess.AllowedCounters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_counters (session_id, counter_id) VALUES (?, ?)`,
			sess.ID, counter,
		); err != nil {
			return fmt.Errorf("failed to add allowed counter: %w", translateConstraint(err))
		}
	}

	for shelf, counter := range sess.ShelfAssignments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shelf_assignments (session_id, shelf, counter_id) VALUES (?, ?, ?)`,
			sess.ID, shelf, counter,
		); err != nil {
			return fmt.Errorf("failed to add shelf assignment: %w", translateConstraint(err))
		}
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_items (session_id, item_id, name, shelf, baseline_qty)
			VALUES (?, ?, ?, ?, ?)
		`,
			item.SessionID, item.ItemID, item.Name, item.Shelf, item.BaselineQty,
		); err != nil {
			return fmt.Errorf("failed to add assigned item: %w", translateConstraint(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID, including allowed counters and shelf
// assignments.
func (r *SessionRepository) Get(ctx context.Context, id string) (*stocktake.Session, error) {
	sess, err := scanSession(r.db.QueryRowContext(ctx, `
		SELECT
			id, code, branch_id, created_by, is_multi_user, notes,
			status, created_at, started_at, completed_at, cancelled_at
		FROM sessions
		WHERE id = ?
	`, id))
	if err != nil {
		return nil, err
	}

	if sess.AllowedCounters, err = r.allowedCounters(ctx, r.db.DB, id); err != nil {
		return nil, err
	}
	if sess.ShelfAssignments, err = r.shelfAssignments(ctx, r.db.DB, id); err != nil {
		return nil, err
	}

	return sess, nil
}

// Update persists lifecycle status and transition timestamps. The
// update is conditional on the status the caller read: a racing
// transition that committed first leaves zero rows affected and the
// stale writer gets ErrConflict instead of clobbering the row.
func (r *SessionRepository) Update(ctx context.Context, sess *stocktake.Session, expected stocktake.SessionStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET status = ?, notes = ?, started_at = ?, completed_at = ?, cancelled_at = ?
		WHERE id = ? AND status = ?
	`,
		sess.Status,
		sess.Notes,
		sess.StartedAt,
		sess.CompletedAt,
		sess.CancelledAt,
		sess.ID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sessions WHERE id = ?`, sess.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check session: %w", err)
		}
		if exists == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	return nil
}

// List returns session summaries for a branch, newest first.
func (r *SessionRepository) List(ctx context.Context, branchID string) ([]stocktake.SessionSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			s.id, s.code, s.branch_id, s.created_by, s.is_multi_user, s.status, s.created_at,
			(SELECT COUNT(*) FROM session_items i WHERE i.session_id = s.id) AS total_items
		FROM sessions s
		WHERE s.branch_id = ?
		ORDER BY s.created_at DESC, s.id DESC
	`, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []stocktake.SessionSummary
	for rows.Next() {
		var summary stocktake.SessionSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.Code,
			&summary.BranchID,
			&summary.CreatedBy,
			&summary.IsMultiUser,
			&summary.Status,
			&summary.CreatedAt,
			&summary.TotalItems,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		sessions = append(sessions, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*stocktake.Session, error) {
	var sess stocktake.Session
	var startedAt, completedAt, cancelledAt sql.NullTime
	err := row.Scan(
		&sess.ID,
		&sess.Code,
		&sess.BranchID,
		&sess.CreatedBy,
		&sess.IsMultiUser,
		&sess.Notes,
		&sess.Status,
		&sess.CreatedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if startedAt.Valid {
		sess.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		sess.CancelledAt = &cancelledAt.Time
	}
	return &sess, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *SessionRepository) allowedCounters(ctx context.Context, q querier, sessionID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT counter_id FROM session_counters WHERE session_id = ? ORDER BY counter_id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get allowed counters: %w", err)
	}
	defer rows.Close()

	var counters []string
	for rows.Next() {
		var counter string
		if err := rows.Scan(&counter); err != nil {
			return nil, fmt.Errorf("failed to scan counter: %w", err)
		}
		counters = append(counters, counter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counters: %w", err)
	}
	return counters, nil
}

func (r *SessionRepository) shelfAssignments(ctx context.Context, q querier, sessionID string) (map[string]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT shelf, counter_id FROM shelf_assignments WHERE session_id = ?`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shelf assignments: %w", err)
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
	if len(assignments) == 0 {
		return nil, nil
	}
	return assignments, nil
}
