package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/stocktake/internal/domain/count"
	"github.com/ledgerline/stocktake/internal/domain/lock"
)

func newLockCmd(client func() *Client) *cobra.Command {
	var counter string

	cmd := &cobra.Command{
		Use:   "lock <session-id> <item-id>",
		Short: "Claim an item for counting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{
				"session_id": args[0],
				"item_id":    args[1],
				"counter_id": counter,
			}

			var lk lock.Lock
			if err := client().Call(context.Background(), "acquire_lock", params, &lk); err != nil {
				return err
			}

			fmt.Printf("Locked %s until %s\n", lk.ItemID, lk.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&counter, "counter", "", "Counter ID")
	_ = cmd.MarkFlagRequired("counter")
	return cmd
}

func newCountCmd(client func() *Client) *cobra.Command {
	var counter string

	cmd := &cobra.Command{
		Use:   "count <session-id> <item-id> <quantity>",
		Short: "Submit a count for a locked item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}

			params := map[string]any{
				"session_id": args[0],
				"item_id":    args[1],
				"counter_id": counter,
				"quantity":   qty,
			}

			var entry count.Entry
			if err := client().Call(context.Background(), "submit_count", params, &entry); err != nil {
				return err
			}

			fmt.Printf("Counted %s: %.2f (variance %+.2f)\n", entry.ItemID, entry.CountedQty, entry.Variance)
			return nil
		},
	}

	cmd.Flags().StringVar(&counter, "counter", "", "Counter ID")
	_ = cmd.MarkFlagRequired("counter")
	return cmd
}

func newHistoryCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show the append-only count history, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []count.Entry
			if err := client().Call(context.Background(), "get_history", map[string]any{"session_id": args[0]}, &entries); err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No counts recorded")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-20s %-12s qty=%-8.2f variance=%+.2f\n",
					e.CountedAt.Format("2006-01-02 15:04:05"), e.ItemID, e.CounterID, e.CountedQty, e.Variance)
			}
			return nil
		},
	}
}
