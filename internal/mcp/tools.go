package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ledgerline/stocktake/internal/domain/stocktake"
)

// registerTools wires every coordination operation as a typed MCP tool.
func registerTools(server *sdkmcp.Server, coordinator CoordinatorService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_session",
		Description: "Create a stock take session in draft with its assigned items; baseline quantities freeze at creation",
	}, createSessionHandler(coordinator))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "start_session",
		Description: "Start a draft or paused session; only active sessions accept locks and counts",
	}, transitionHandler(coordinator.Start))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "pause_session",
		Description: "Pause an active session and release all item locks",
	}, transitionHandler(coordinator.Pause))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "complete_session",
		Description: "Complete a session; fails listing uncounted items unless force is set",
	}, completeSessionHandler(coordinator))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "cancel_session",
		Description: "Cancel a session from any non-terminal state and release all locks",
	}, transitionHandler(coordinator.Cancel))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "acquire_lock",
		Description: "Claim an item for a counter so nobody else counts it; locks expire after the configured TTL",
	}, acquireLockHandler(coordinator))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "submit_count",
		Description: "Submit a physical count for a locked item; variance against the baseline is recorded and the lock is consumed",
	}, submitCountHandler(coordinator))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_progress",
		Description: "Get a derived progress snapshot: per-item status, per-counter breakdown, recent counts",
	}, getProgressHandler(coordinator))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_session",
		Description: "Get a session by ID",
	}, getSessionHandler(coordinator))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_history",
		Description: "Get the full append-only count history for a session, oldest first",
	}, getHistoryHandler(coordinator))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_items",
		Description: "List a session's assigned items with their frozen baselines",
	}, listItemsHandler(coordinator))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_sessions",
		Description: "List session summaries for the caller's branch, newest first",
	}, listSessionsHandler(coordinator))
}

func createSessionHandler(coordinator CoordinatorService) sdkmcp.ToolHandlerFor[CreateSessionParams, SessionResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input CreateSessionParams) (*sdkmcp.CallToolResult, SessionResponse, error) {
		items := make([]stocktake.ItemInput, len(input.Items))
		for i, item := range input.Items {
			items[i] = stocktake.ItemInput{
				ItemID:      item.ItemID,
				Name:        item.Name,
				Shelf:       item.Shelf,
				BaselineQty: item.BaselineQty,
			}
		}
		sess, err := coordinator.Create(ctx, stocktake.CreateRequest{
			Code:             input.Code,
			BranchID:         getBranchID(ctx),
			CreatedBy:        input.Creator,
			IsMultiUser:      input.IsMultiUser,
			AllowedCounters:  input.AllowedCounters,
			ShelfAssignments: input.ShelfAssignments,
			Notes:            input.Notes,
			Items:            items,
		})
		if err != nil {
			return nil, SessionResponse{}, wrapDomainError(err)
		}
		return nil, toSessionResponse(sess), nil
	}
}

func transitionHandler(op func(ctx context.Context, branchID, id, actor string) (*stocktake.Session, error)) sdkmcp.ToolHandlerFor[TransitionParams, SessionResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input TransitionParams) (*sdkmcp.CallToolResult, SessionResponse, error) {
		sess, err := op(ctx, getBranchID(ctx), input.SessionID, input.Actor)
		if err != nil {
			return nil, SessionResponse{}, wrapDomainError(err)
		}
		return nil, toSessionResponse(sess), nil
	}
}

func completeSessionHandler(coordinator CoordinatorService) sdkmcp.ToolHandlerFor[CompleteSessionParams, SessionResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input CompleteSessionParams) (*sdkmcp.CallToolResult, SessionResponse, error) {
		sess, err := coordinator.Complete(ctx, getBranchID(ctx), input.SessionID, input.Actor, input.Force)
		if err != nil {
			return nil, SessionResponse{}, wrapDomainError(err)
		}
		return nil, toSessionResponse(sess), nil
	}
}

func acquireLockHandler(coordinator CoordinatorService) sdkmcp.ToolHandlerFor[AcquireLockParams, LockResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input AcquireLockParams) (*sdkmcp.CallToolResult, LockResponse, error) {
		lk, err := coordinator.AcquireLock(ctx, getBranchID(ctx), input.SessionID, input.ItemID, input.CounterID)
		if err != nil {
			return nil, LockResponse{}, wrapDomainError(err)
		}
		return nil, LockResponse{
			SessionID:  lk.SessionID,
			ItemID:     lk.ItemID,
			CounterID:  lk.CounterID,
			AcquiredAt: lk.AcquiredAt,
			ExpiresAt:  lk.ExpiresAt,
		}, nil
	}
}

func submitCountHandler(coordinator CoordinatorService) sdkmcp.ToolHandlerFor[SubmitCountParams, CountEntryResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input SubmitCountParams) (*sdkmcp.CallToolResult, CountEntryResponse, error) {
		entry, err := coordinator.SubmitCount(ctx, getBranchID(ctx), input.SessionID, input.ItemID, input.CounterID, input.Quantity)
		if err != nil {
			return nil, CountEntryResponse{}, wrapDomainError(err)
		}
		return nil, toCountEntryResponse(entry), nil
	}
}

func getProgressHandler(coordinator CoordinatorService) sdkmcp.ToolHandlerFor[SessionIDParams, ProgressResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input SessionIDParams) (*sdkmcp.CallToolResult, ProgressResponse, error) {
		snap, err := coordinator.Progress(ctx, getBranchID(ctx), input.SessionID)
		if err != nil {
			return nil, ProgressResponse{}, wrapDomainError(err)
		}
		return nil, ProgressResponse{Snapshot: *snap}, nil
	}
}

func getSessionHandler(coordinator CoordinatorService) sdkmcp.ToolHandlerFor[SessionIDParams, SessionResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input SessionIDParams) (*sdkmcp.CallToolResult, SessionResponse, error) {
		sess, err := coordinator.Get(ctx, getBranchID(ctx), input.SessionID)
		if err != nil {
			return nil, SessionResponse{}, wrapDomainError(err)
		}
		return nil, toSessionResponse(sess), nil
	}
}

func getHistoryHandler(coordinator CoordinatorService) sdkmcp.ToolHandlerFor[SessionIDParams, HistoryResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input SessionIDParams) (*sdkmcp.CallToolResult, HistoryResponse, error) {
		entries, err := coordinator.History(ctx, getBranchID(ctx), input.SessionID)
		if err != nil {
			return nil, HistoryResponse{}, wrapDomainError(err)
		}
		resp := HistoryResponse{Entries: make([]CountEntryResponse, 0, len(entries))}
		for i := range entries {
			resp.Entries = append(resp.Entries, toCountEntryResponse(&entries[i]))
		}
		return nil, resp, nil
	}
}

func listItemsHandler(coordinator CoordinatorService) sdkmcp.ToolHandlerFor[SessionIDParams, ListItemsResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input SessionIDParams) (*sdkmcp.CallToolResult, ListItemsResponse, error) {
		items, err := coordinator.Items(ctx, getBranchID(ctx), input.SessionID)
		if err != nil {
			return nil, ListItemsResponse{}, wrapDomainError(err)
		}
		return nil, ListItemsResponse{Items: items}, nil
	}
}

func listSessionsHandler(coordinator CoordinatorService) sdkmcp.ToolHandlerFor[ListSessionsParams, ListSessionsResponse] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input ListSessionsParams) (*sdkmcp.CallToolResult, ListSessionsResponse, error) {
		summaries, err := coordinator.List(ctx, getBranchID(ctx))
		if err != nil {
			return nil, ListSessionsResponse{}, wrapDomainError(err)
		}
		return nil, ListSessionsResponse{Sessions: summaries}, nil
	}
}

// wrapDomainError prefers the structured APIError when a mapping
// exists, so callers see the code and recovery hint.
func wrapDomainError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
