package mcp

import (
	"time"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/progress"
	"github.com/ledgerline/stocktake/internal/domain/stocktake"
)

type ItemInput struct {
	ItemID      string  `json:"item_id" jsonschema:"inventory item identifier"`
	Name        string  `json:"name,omitempty" jsonschema:"display name"`
	Shelf       string  `json:"shelf,omitempty" jsonschema:"shelf or zone label"`
	BaselineQty float64 `json:"baseline_qty" jsonschema:"system quantity at session creation"`
}

// CreateSessionParams describes a new session. The session is created
// in the caller's authenticated branch.
type CreateSessionParams struct {
	Code             string            `json:"code,omitempty" jsonschema:"human-readable session code (generated when omitted)"`
	Creator          string            `json:"creator" jsonschema:"user creating the session"`
	IsMultiUser      bool              `json:"is_multi_user,omitempty" jsonschema:"allow multiple counters"`
	AllowedCounters  []string          `json:"allowed_counters,omitempty" jsonschema:"counter roster for multi-user sessions"`
	ShelfAssignments map[string]string `json:"shelf_assignments,omitempty" jsonschema:"shelf label to counter ID"`
	Notes            string            `json:"notes,omitempty" jsonschema:"free-form notes"`
	Items            []ItemInput       `json:"items" jsonschema:"items to count with frozen baselines"`
}

type TransitionParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Actor     string `json:"actor,omitempty" jsonschema:"user requesting the transition"`
}

type CompleteSessionParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Actor     string `json:"actor,omitempty" jsonschema:"user requesting completion"`
	Force     bool   `json:"force,omitempty" jsonschema:"complete even with uncounted items"`
}

type AcquireLockParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	ItemID    string `json:"item_id" jsonschema:"item to claim"`
	CounterID string `json:"counter_id" jsonschema:"counter claiming the item"`
}

type SubmitCountParams struct {
	SessionID string  `json:"session_id" jsonschema:"session identifier"`
	ItemID    string  `json:"item_id" jsonschema:"item counted"`
	CounterID string  `json:"counter_id" jsonschema:"counter submitting"`
	Quantity  float64 `json:"quantity" jsonschema:"physically counted quantity"`
}

type SessionIDParams struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// ListSessionsParams is empty: listing is always scoped to the
// caller's authenticated branch.
type ListSessionsParams struct{}

type SessionResponse struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	BranchID         string            `json:"branch_id"`
	CreatedBy        string            `json:"created_by"`
	IsMultiUser      bool              `json:"is_multi_user"`
	AllowedCounters  []string          `json:"allowed_counters,omitempty"`
	ShelfAssignments map[string]string `json:"shelf_assignments,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Status           string            `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	StartedAt        *time.Time        `json:"started_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
}

type LockResponse struct {
	SessionID  string    `json:"session_id"`
	ItemID     string    `json:"item_id"`
	CounterID  string    `json:"counter_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type CountEntryResponse struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	ItemID     string    `json:"item_id"`
	CounterID  string    `json:"counter_id"`
	CountedQty float64   `json:"counted_qty"`
	Variance   float64   `json:"variance"`
	CountedAt  time.Time `json:"counted_at"`
}

type ListSessionsResponse struct {
	Sessions []stocktake.SessionSummary `json:"sessions"`
}

type HistoryResponse struct {
	Entries []CountEntryResponse `json:"entries"`
}

type ListItemsResponse struct {
	Items []stocktake.AssignedItem `json:"items"`
}

type ProgressResponse struct {
	Snapshot progress.Snapshot `json:"snapshot"`
}

func toSessionResponse(sess *stocktake.Session) SessionResponse {
	return SessionResponse{
		ID:               sess.ID,
		Code:             sess.Code,
		BranchID:         sess.BranchID,
		CreatedBy:        sess.CreatedBy,
		IsMultiUser:      sess.IsMultiUser,
		AllowedCounters:  sess.AllowedCounters,
		ShelfAssignments: sess.ShelfAssignments,
		Notes:            sess.Notes,
		Status:           string(sess.Status),
		CreatedAt:        sess.CreatedAt,
		StartedAt:        sess.StartedAt,
		CompletedAt:      sess.CompletedAt,
		CancelledAt:      sess.CancelledAt,
	}
}

func toCountEntryResponse(entry *count.Entry) CountEntryResponse {
	return CountEntryResponse{
		ID:         entry.ID,
		SessionID:  entry.SessionID,
		ItemID:     entry.ItemID,
		CounterID:  entry.CounterID,
		CountedQty: entry.CountedQty,
		Variance:   entry.Variance,
		CountedAt:  entry.CountedAt,
	}
}
