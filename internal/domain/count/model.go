package count

import "time"

// Entry is one submitted count. The ledger is append-only: a later
// entry for the same item shadows earlier ones in snapshots, but
// history is never rewritten. Variance is computed at write time as
// counted quantity minus the item's frozen baseline.
type Entry struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	ItemID     string    `json:"item_id"`
	CounterID  string    `json:"counter_id"`
	CountedQty float64   `json:"counted_qty"`
	Variance   float64   `json:"variance"`
	CountedAt  time.Time `json:"counted_at"`
}
