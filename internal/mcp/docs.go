package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `stocktake coordinates physical inventory counts as Sessions → Items → Count entries.

Core concepts:
- Session: one stock take run for a branch. Lifecycle is draft → active → paused/completed/cancelled; completed and cancelled are terminal.
- Assigned item: an item included in a session with a baseline quantity frozen at creation. Baselines never change afterwards.
- Lock: a short-lived claim on one (session, item) pair by one counter. Locks expire on their own; counting without a live lock is rejected.
- Count entry: an append-only ledger row recording who counted what, with variance = counted - baseline computed at write time. Recounts append, never overwrite.
- Progress: a derived snapshot (per-item status, per-counter breakdown, recent counts); never stored, always recomputed.

Default workflow:
1) create_session with the items to count; start_session when counting begins.
2) For each item: acquire_lock, count physically, submit_count. The lock is consumed by a successful submission.
3) Poll get_progress to watch completion; pause_session releases all locks.
4) complete_session fails while items remain uncounted; pass force=true to accept the gap.

Error handling:
- LOCK_HELD means another counter has the item; pick a different one or retry after the TTL.
- LOCK_NOT_HELD on submit means the lock expired; acquire again and resubmit.
- INCOMPLETE_ITEMS lists the uncounted item ids in details.

Docs:
- stocktake://docs/workflow (step-by-step counting workflow)
- stocktake://docs/concepts (glossary + invariants)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "stocktake://docs/workflow",
		Name:        "docs_workflow",
		Title:       "Counting workflow",
		Description: "Step-by-step workflow for running a stock take session.",
		Content: `# Counting workflow

## Set up

1. Call create_session with branch, creator, and every item to count. Each item carries
   its current system quantity; that snapshot becomes the immutable baseline.
2. For a multi-user count, set is_multi_user and list allowed_counters. Optionally map
   shelves to counters with shelf_assignments.
3. Call start_session. Only active sessions accept locks and counts.

## Count loop (per counter)

1. acquire_lock(session_id, item_id, counter_id). A LOCK_HELD error means someone else
   has the item right now.
2. Count the physical stock.
3. submit_count with the quantity. Variance against the baseline is computed and stored;
   the lock is released atomically with the submission.
4. If the count took too long and the lock expired, submit fails with LOCK_NOT_HELD.
   Acquire again and resubmit; nothing was written.

## Recounts

Submitting again for the same item appends a new entry. The previous entry stays in the
ledger for audit; progress reporting uses the latest entry per item.

## Finishing

- pause_session suspends counting and releases every lock. Ledger entries survive.
- complete_session verifies every item has at least one entry and lists the missing
  item ids otherwise. force=true completes anyway, leaving those items absent from the
  ledger.
- cancel_session abandons the session from any non-terminal state.
`,
	},
	{
		URI:         "stocktake://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and invariants",
		Description: "Glossary and the invariants the server enforces.",
		Content: `# Concepts

- **Baseline**: the system quantity captured when the session is created. Frozen; later
  inventory movements do not touch it.
- **Variance**: counted quantity minus baseline, computed when the entry is written and
  stored with it.
- **Lock TTL**: locks expire automatically after the configured TTL. No manual release
  call exists; pausing or finishing the session clears them in bulk.
- **Terminal status**: completed and cancelled sessions never change again.

# Invariants

- At most one counter holds a live lock on a given (session, item) pair.
- The count ledger is append-only: no update or delete, recounts add rows.
- Exactly one submission wins when a lock expires mid-count and the item is re-locked;
  the loser gets LOCK_NOT_HELD and nothing is written.
- Progress is derived from the ledger and lock table on every read.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
