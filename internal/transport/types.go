package transport

// ItemParam supplies one item for session creation.
type ItemParam struct {
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name,omitempty"`
	Shelf       string  `json:"shelf,omitempty"`
	BaselineQty float64 `json:"baseline_qty"`
}

// CreateSessionParams are the create_session inputs. The session is
// created in the authenticated branch.
type CreateSessionParams struct {
	Code             string            `json:"code,omitempty"`
	Creator          string            `json:"creator"`
	IsMultiUser      bool              `json:"is_multi_user,omitempty"`
	AllowedCounters  []string          `json:"allowed_counters,omitempty"`
	ShelfAssignments map[string]string `json:"shelf_assignments,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Items            []ItemParam       `json:"items"`
}

// TransitionParams identify a session and the requesting actor.
type TransitionParams struct {
	SessionID string `json:"session_id"`
	Actor     string `json:"actor,omitempty"`
}

// CompleteSessionParams add the force flag to a transition.
type CompleteSessionParams struct {
	SessionID string `json:"session_id"`
	Actor     string `json:"actor,omitempty"`
	Force     bool   `json:"force,omitempty"`
}

// AcquireLockParams are the acquire_lock inputs.
type AcquireLockParams struct {
	SessionID string `json:"session_id"`
	ItemID    string `json:"item_id"`
	CounterID string `json:"counter_id"`
}

// SubmitCountParams are the submit_count inputs.
type SubmitCountParams struct {
	SessionID string  `json:"session_id"`
	ItemID    string  `json:"item_id"`
	CounterID string  `json:"counter_id"`
	Quantity  float64 `json:"quantity"`
}

// SessionIDParams identify a session.
type SessionIDParams struct {
	SessionID string `json:"session_id"`
}
