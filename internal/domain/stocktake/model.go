package stocktake

import "time"

// SessionStatus represents the lifecycle status of a stock take session
type SessionStatus string

const (
	StatusDraft     SessionStatus = "draft"
	StatusActive    SessionStatus = "active"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// Terminal reports whether no further transition is possible from the status.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Session represents one physical stock take exercise scoped to a branch.
// AllowedCounters, once non-empty, restricts every lock acquisition to
// that set. ShelfAssignments maps a shelf label to the counter expected
// to count it.
type Session struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	BranchID         string            `json:"branch_id"`
	CreatedBy        string            `json:"created_by"`
	IsMultiUser      bool              `json:"is_multi_user"`
	AllowedCounters  []string          `json:"allowed_counters,omitempty"`
	ShelfAssignments map[string]string `json:"shelf_assignments,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Status           SessionStatus     `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	StartedAt        *time.Time        `json:"started_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
}

// CounterAllowed reports whether a counter may acquire locks in the
// session. An empty allowed set means unrestricted.
func (s *Session) CounterAllowed(counterID string) bool {
	if len(s.AllowedCounters) == 0 {
		return true
	}
	for _, c := range s.AllowedCounters {
		if c == counterID {
			return true
		}
	}
	return false
}

// AssignedItem is an item in scope for counting. BaselineQty is the
// system quantity snapshot frozen when the session was created; it is
// never mutated afterward and is the basis for variance.
type AssignedItem struct {
	SessionID   string  `json:"session_id"`
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name"`
	Shelf       string  `json:"shelf,omitempty"`
	BaselineQty float64 `json:"baseline_qty"`
}

// SessionSummary is a lightweight representation for listing.
type SessionSummary struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	BranchID    string        `json:"branch_id"`
	CreatedBy   string        `json:"created_by"`
	IsMultiUser bool          `json:"is_multi_user"`
	Status      SessionStatus `json:"status"`
	TotalItems  int           `json:"total_items"`
	CreatedAt   time.Time     `json:"created_at"`
}
