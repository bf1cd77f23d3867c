package stocktake

import "strings"

// ValidateCreateInput validates fields required to create a session.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.BranchID) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(req.CreatedBy) == "" {
		return ErrInvalidInput
	}
	if len(req.Items) == 0 {
		return ErrInvalidInput
	}
	seen := make(map[string]struct{}, len(req.Items))
	for _, item := range req.Items {
		id := strings.TrimSpace(item.ItemID)
		if id == "" {
			return ErrInvalidInput
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidInput
		}
		seen[id] = struct{}{}
	}
	for _, counter := range req.AllowedCounters {
		if strings.TrimSpace(counter) == "" {
			return ErrInvalidInput
		}
	}
	for shelf, counter := range req.ShelfAssignments {
		if strings.TrimSpace(shelf) == "" || strings.TrimSpace(counter) == "" {
			return ErrInvalidInput
		}
	}
	return nil
}

// ValidateTransition validates a requested lifecycle transition.
// Completed and cancelled are terminal; every transition not listed
// here fails and leaves the session unchanged.
func ValidateTransition(from, to SessionStatus) error {
	valid := false
	switch from {
	case StatusDraft:
		if to == StatusActive || to == StatusCancelled {
			valid = true
		}
	case StatusActive:
		switch to {
		case StatusPaused, StatusCompleted, StatusCancelled:
			valid = true
		}
	case StatusPaused:
		switch to {
		case StatusActive, StatusCompleted, StatusCancelled:
			valid = true
		}
	}

	if !valid {
		return ErrInvalidTransition
	}
	return nil
}
