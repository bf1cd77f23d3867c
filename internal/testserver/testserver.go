// Package testserver wires a full in-process stack over an in-memory
// database for functional tests.
package testserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
	"github.com/ledgerline/stocktake/internal/domain/progress"
	"github.com/ledgerline/stocktake/internal/domain/stocktake"
	"github.com/ledgerline/stocktake/internal/sqlite"
	"github.com/ledgerline/stocktake/internal/transport"
)

// TestServer is a fully wired HTTP server over an in-memory database.
type TestServer struct {
	Server      *httptest.Server
	DB          *sqlite.DB
	Coordinator *stocktake.Service
	Locks       *lock.Manager
	Token       string
	BranchID    string

	keys *sqlite.APIKeyStore
}

// AddAPIKey seeds a further API key, typically for another branch.
func (ts *TestServer) AddAPIKey(t *testing.T, token, branchID string) {
	t.Helper()
	require.NoError(t, ts.keys.Insert(context.Background(), token, branchID, "functional test key"))
}

// New builds a test server with auth enabled and one API key seeded
// for the given token and branch.
func New(t *testing.T, token, branchID string) *TestServer {
	t.Helper()

	// A shared-cache named memory DB so every connection in the pool
	// sees the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	sessionRepo := sqlite.NewSessionRepository(db)
	itemRepo := sqlite.NewItemRepository(db)
	countRepo := sqlite.NewCountRepository(db)
	snapshotRepo := sqlite.NewSnapshotRepository(db)
	apiKeys := sqlite.NewAPIKeyStore(db)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locks := lock.NewManager(time.Minute)
	ledger := count.NewService(itemRepo, countRepo, locks, logger)
	progressSvc := progress.NewService(snapshotRepo, locks, progress.DefaultRecentLimit)
	coordinator := stocktake.NewService(sessionRepo, itemRepo, locks, ledger, progressSvc, logger)

	router := transport.NewServer(transport.NewHandler(coordinator), transport.AuthMiddleware(apiKeys))
	server := httptest.NewServer(router)

	require.NoError(t, apiKeys.Insert(context.Background(), token, branchID, "functional test key"))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:      server,
		DB:          db,
		Coordinator: coordinator,
		Locks:       locks,
		Token:       token,
		BranchID:    branchID,
		keys:        apiKeys,
	}
}
