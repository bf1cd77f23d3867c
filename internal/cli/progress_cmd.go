package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerline/stocktake/internal/domain/progress"
)

func newProgressCmd(client func() *Client) *cobra.Command {
	var showItems bool

	cmd := &cobra.Command{
		Use:   "progress <session-id>",
		Short: "Show a derived progress snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap progress.Snapshot
			if err := client().Call(context.Background(), "get_progress", map[string]any{"session_id": args[0]}, &snap); err != nil {
				return err
			}

			fmt.Printf("Session %s (%s): %d/%d items counted (%.1f%%), %d active locks\n",
				snap.SessionID, snap.Status, snap.CountedItems, snap.TotalItems, snap.Percent, snap.ActiveLocks)

			if len(snap.Counters) > 0 {
				fmt.Println("\nCounters:")
				for _, c := range snap.Counters {
					fmt.Printf("  %-12s %d/%d (%.1f%%)\n", c.CounterID, c.CountedItems, c.AssignedItems, c.Percent)
				}
			}

			if showItems {
				fmt.Println("\nItems:")
				for _, item := range snap.Items {
					switch {
					case item.Counted:
						fmt.Printf("  %-20s counted by %-12s qty=%-8.2f variance=%+.2f\n",
							item.ItemID, item.CounterID, item.CountedQty, item.Variance)
					case item.Locked:
						fmt.Printf("  %-20s locked by %s\n", item.ItemID, item.LockedBy)
					default:
						fmt.Printf("  %-20s pending\n", item.ItemID)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showItems, "items", false, "Show per-item status")
	return cmd
}
