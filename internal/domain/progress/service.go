package progress

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DefaultRecentLimit bounds the recent-activity window in a snapshot.
const DefaultRecentLimit = 20

// Service derives progress snapshots. Pure read path: no side effects,
// safe to call at arbitrary frequency and concurrently with writes.
type Service struct {
	source      SnapshotRepository
	locks       LockReader
	recentLimit int
}

// NewService creates a progress aggregator. recentLimit <= 0 falls
// back to DefaultRecentLimit.
func NewService(source SnapshotRepository, locks LockReader, recentLimit int) *Service {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Service{
		source:      source,
		locks:       locks,
		recentLimit: recentLimit,
	}
}

// Snapshot computes the session's progress from a single consistent
// read of items and ledger, overlaid with the live lock table.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	data, err := s.source.Collect(ctx, sessionID, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("collecting snapshot source: %w", err)
	}

	held := s.locks.HeldItems(sessionID)

	counted := 0
	items := make([]ItemStatus, len(data.Items))
	for i, item := range data.Items {
		if holder, ok := held[item.ItemID]; ok {
			item.Locked = true
			item.LockedBy = holder
		}
		if item.Counted {
			counted++
		}
		items[i] = item
	}

	snap := &Snapshot{
		SessionID:    sessionID,
		Status:       data.Status,
		TotalItems:   len(items),
		CountedItems: counted,
		Percent:      percent(counted, len(items)),
		ActiveLocks:  len(held),
		Counters:     counterBreakdown(data, items, held),
		Items:        items,
		RecentCounts: data.Recent,
		GeneratedAt:  time.Now(),
	}
	return snap, nil
}

// counterBreakdown covers every counter the session knows about:
// the allowed set, shelf assignees, counters with entries and current
// lock holders.
func counterBreakdown(data *SourceData, items []ItemStatus, held map[string]string) []CounterProgress {
	assigned := make(map[string]int)
	countedBy := make(map[string]int)
	known := make(map[string]struct{})

	for _, counter := range data.AllowedCounters {
		known[counter] = struct{}{}
	}
	for _, counter := range data.ShelfAssignments {
		known[counter] = struct{}{}
	}
	for _, counter := range held {
		known[counter] = struct{}{}
	}

	for _, item := range items {
		if item.Shelf != "" {
			if counter, ok := data.ShelfAssignments[item.Shelf]; ok {
				assigned[counter]++
			}
		}
		if item.Counted {
			known[item.CounterID] = struct{}{}
			countedBy[item.CounterID]++
		}
	}

	breakdown := make([]CounterProgress, 0, len(known))
	for counter := range known {
		total := assigned[counter]
		if total == 0 {
			// No shelf assignments for this counter; measure against
			// what they have actually counted.
			total = countedBy[counter]
		}
		breakdown = append(breakdown, CounterProgress{
			CounterID:     counter,
			AssignedItems: total,
			CountedItems:  countedBy[counter],
			Percent:       percent(countedBy[counter], total),
		})
	}

	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].CounterID < breakdown[j].CounterID
	})
	return breakdown
}

func percent(counted, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(counted) / float64(total) * 100
}
