package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/domain/progress"
	"github.com/ledgerline/stocktake/internal/domain/stocktake"
)

// CoordinatorService defines the session operations the RPC surface
// needs. Every operation is scoped to the authenticated branch.
type CoordinatorService interface {
	Create(ctx context.Context, req stocktake.CreateRequest) (*stocktake.Session, error)
	Start(ctx context.Context, branchID, id, actor string) (*stocktake.Session, error)
	Pause(ctx context.Context, branchID, id, actor string) (*stocktake.Session, error)
	Complete(ctx context.Context, branchID, id, actor string, force bool) (*stocktake.Session, error)
	Cancel(ctx context.Context, branchID, id, actor string) (*stocktake.Session, error)
	AcquireLock(ctx context.Context, branchID, sessionID, itemID, counterID string) (*lock.Lock, error)
	SubmitCount(ctx context.Context, branchID, sessionID, itemID, counterID string, qty float64) (*count.Entry, error)
	Progress(ctx context.Context, branchID, sessionID string) (*progress.Snapshot, error)
	List(ctx context.Context, branchID string) ([]stocktake.SessionSummary, error)
	Get(ctx context.Context, branchID, id string) (*stocktake.Session, error)
	History(ctx context.Context, branchID, sessionID string) ([]count.Entry, error)
	Items(ctx context.Context, branchID, sessionID string) ([]stocktake.AssignedItem, error)
}

// Handler dispatches JSON-RPC methods to the session coordinator.
type Handler struct {
	coordinator CoordinatorService
}

// NewHandler creates a new RPC handler.
func NewHandler(coordinator CoordinatorService) *Handler {
	return &Handler{coordinator: coordinator}
}

// Handle dispatches a single RPC method call. The branch comes from
// authentication, never from the request payload.
func (h *Handler) Handle(ctx context.Context, branchID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_session":
		var req CreateSessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		items := make([]stocktake.ItemInput, len(req.Items))
		for i, item := range req.Items {
			items[i] = stocktake.ItemInput{
				ItemID:      item.ItemID,
				Name:        item.Name,
				Shelf:       item.Shelf,
				BaselineQty: item.BaselineQty,
			}
		}
		return h.coordinator.Create(ctx, stocktake.CreateRequest{
			Code:             req.Code,
			BranchID:         branchID,
			CreatedBy:        req.Creator,
			IsMultiUser:      req.IsMultiUser,
			AllowedCounters:  req.AllowedCounters,
			ShelfAssignments: req.ShelfAssignments,
			Notes:            req.Notes,
			Items:            items,
		})
	case "start_session":
		var req TransitionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.Start(ctx, branchID, req.SessionID, req.Actor)
	case "pause_session":
		var req TransitionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.Pause(ctx, branchID, req.SessionID, req.Actor)
	case "complete_session":
		var req CompleteSessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.Complete(ctx, branchID, req.SessionID, req.Actor, req.Force)
	case "cancel_session":
		var req TransitionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.Cancel(ctx, branchID, req.SessionID, req.Actor)
	case "acquire_lock":
		var req AcquireLockParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.AcquireLock(ctx, branchID, req.SessionID, req.ItemID, req.CounterID)
	case "submit_count":
		var req SubmitCountParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.SubmitCount(ctx, branchID, req.SessionID, req.ItemID, req.CounterID, req.Quantity)
	case "get_progress":
		var req SessionIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.Progress(ctx, branchID, req.SessionID)
	case "get_session":
		var req SessionIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.Get(ctx, branchID, req.SessionID)
	case "get_history":
		var req SessionIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.History(ctx, branchID, req.SessionID)
	case "list_items":
		var req SessionIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.coordinator.Items(ctx, branchID, req.SessionID)
	case "list_sessions":
		return h.coordinator.List(ctx, branchID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func decodeParams(params json.RawMessage, dest any) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: missing params", ErrBadParams)
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	return nil
}
