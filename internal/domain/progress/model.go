package progress

import (
	"time"

	"github.com/ledgerline/stocktake/internal/domain/count"
)

// ItemStatus is the per-item view in a snapshot, derived from the
// latest count entry only. Earlier entries remain in history but are
// shadowed here.
type ItemStatus struct {
	ItemID      string     `json:"item_id"`
	Name        string     `json:"name"`
	Shelf       string     `json:"shelf,omitempty"`
	BaselineQty float64    `json:"baseline_qty"`
	Counted     bool       `json:"counted"`
	CountedQty  float64    `json:"counted_qty,omitempty"`
	Variance    float64    `json:"variance,omitempty"`
	CounterID   string     `json:"counter_id,omitempty"`
	CountedAt   *time.Time `json:"counted_at,omitempty"`
	Locked      bool       `json:"locked,omitempty"`
	LockedBy    string     `json:"locked_by,omitempty"`
}

// CounterProgress is the per-counter breakdown. AssignedItems comes
// from shelf assignments when the session has them for the counter;
// otherwise it falls back to the distinct items the counter has counted.
type CounterProgress struct {
	CounterID     string  `json:"counter_id"`
	AssignedItems int     `json:"assigned_items"`
	CountedItems  int     `json:"counted_items"`
	Percent       float64 `json:"percent"`
}

// Snapshot is a derived, point-in-time summary of counting
// completeness. It is never stored.
type Snapshot struct {
	SessionID    string            `json:"session_id"`
	Status       string            `json:"status"`
	TotalItems   int               `json:"total_items"`
	CountedItems int               `json:"counted_items"`
	Percent      float64           `json:"percent"`
	ActiveLocks  int               `json:"active_locks"`
	Counters     []CounterProgress `json:"counters"`
	Items        []ItemStatus      `json:"items"`
	RecentCounts []count.Entry     `json:"recent_counts"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// SourceData is the point-in-time read the snapshot is computed from.
// A repository must produce it inside a single read transaction so a
// concurrent submit cannot tear the view.
type SourceData struct {
	Status           string
	AllowedCounters  []string
	ShelfAssignments map[string]string
	Items            []ItemStatus
	Recent           []count.Entry
}
