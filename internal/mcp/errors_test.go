package mcp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/domain/stocktake"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"session not found", stocktake.ErrSessionNotFound, "SESSION_NOT_FOUND"},
		{"invalid transition", stocktake.ErrInvalidTransition, "INVALID_TRANSITION"},
		{"session not active", stocktake.ErrSessionNotActive, "SESSION_NOT_ACTIVE"},
		{"lock held", lock.ErrLockHeld, "LOCK_HELD"},
		{"counter not allowed", lock.ErrCounterNotAllowed, "COUNTER_NOT_ALLOWED"},
		{"lock not held", count.ErrLockNotHeld, "LOCK_NOT_HELD"},
		{"item not assigned", count.ErrItemNotAssigned, "ITEM_NOT_ASSIGNED"},
		{"invalid input", stocktake.ErrInvalidInput, "INVALID_INPUT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := MapError(tc.err)
			require.NotNil(t, apiErr)
			require.Equal(t, tc.code, apiErr.Code)
			require.NotEmpty(t, apiErr.RecoveryHint)
		})
	}
}

func TestMapError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("acquire lock: %w", lock.ErrLockHeld)
	apiErr := MapError(wrapped)
	require.NotNil(t, apiErr)
	require.Equal(t, "LOCK_HELD", apiErr.Code)
}

func TestMapError_IncompleteItems(t *testing.T) {
	err := &stocktake.IncompleteItemsError{Missing: []string{"sku-2", "sku-3"}}
	apiErr := MapError(err)
	require.NotNil(t, apiErr)
	require.Equal(t, "INCOMPLETE_ITEMS", apiErr.Code)
	require.Equal(t, []string{"sku-2", "sku-3"}, apiErr.Details)
}

func TestMapError_Unknown(t *testing.T) {
	require.Nil(t, MapError(fmt.Errorf("disk on fire")))
	require.Nil(t, MapError(nil))
}
