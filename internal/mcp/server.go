package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/domain/progress"
	"github.com/ledgerline/stocktake/internal/domain/stocktake"
)

// CoordinatorService defines the session coordination operations
// exposed as MCP tools. Every operation is scoped to the caller's
// branch.
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

// Config contains server configuration.
type Config struct {
	Coordinator   CoordinatorService
	Resolver      BranchResolver
	AuthEnabled   bool
	DefaultBranch string
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "stocktake",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode is local dev only, auth stays off there.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultBranch))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Coordinator)

	return server
}
