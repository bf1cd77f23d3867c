package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerline/stocktake/internal/domain/stocktake"
)

func newSessionCmd(client func() *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stock take sessions",
	}

	cmd.AddCommand(
		newSessionCreateCmd(client),
		newSessionStartCmd(client),
		newSessionPauseCmd(client),
		newSessionCompleteCmd(client),
		newSessionCancelCmd(client),
		newSessionListCmd(client),
		newSessionGetCmd(client),
		newSessionItemsCmd(client),
	)

	return cmd
}

type itemParam struct {
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name,omitempty"`
	Shelf       string  `json:"shelf,omitempty"`
	BaselineQty float64 `json:"baseline_qty"`
}

func newSessionCreateCmd(client func() *Client) *cobra.Command {
	var code, creator, notes, itemsFile string
	var multiUser bool
	var counters []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a session with its items; baselines freeze at creation",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := loadItems(itemsFile)
			if err != nil {
				return err
			}

			params := map[string]any{
				"code":             code,
				"creator":          creator,
				"is_multi_user":    multiUser,
				"allowed_counters": counters,
				"notes":            notes,
				"items":            items,
			}

			var sess stocktake.Session
			if err := client().Call(context.Background(), "create_session", params, &sess); err != nil {
				return err
			}

			fmt.Printf("Created session %s (%s) with %d items\n", sess.Code, sess.ID, len(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Session code (generated when omitted)")
	cmd.Flags().StringVar(&creator, "creator", "", "User creating the session")
	cmd.Flags().BoolVar(&multiUser, "multi-user", false, "Allow multiple counters")
	cmd.Flags().StringSliceVar(&counters, "counter", nil, "Allowed counter (repeatable)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&itemsFile, "items", "", "JSON file with items to count ('-' for stdin)")
	_ = cmd.MarkFlagRequired("creator")
	_ = cmd.MarkFlagRequired("items")

	return cmd
}

// loadItems reads the item list from a JSON file or stdin.
func loadItems(path string) ([]itemParam, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}

	var items []itemParam
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no items provided")
	}
	return items, nil
}

func newSessionStartCmd(client func() *Client) *cobra.Command {
	return newTransitionCmd(client, "start", "start_session", "Start a draft or paused session")
}

func newSessionPauseCmd(client func() *Client) *cobra.Command {
	return newTransitionCmd(client, "pause", "pause_session", "Pause an active session and release all locks")
}

func newSessionCancelCmd(client func() *Client) *cobra.Command {
	return newTransitionCmd(client, "cancel", "cancel_session", "Cancel a session")
}

func newTransitionCmd(client func() *Client, use, method, short string) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   use + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"session_id": args[0], "actor": actor}

			var sess stocktake.Session
			if err := client().Call(context.Background(), method, params, &sess); err != nil {
				return err
			}

			fmt.Printf("Session %s is now %s\n", sess.Code, sess.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "User requesting the transition")
	return cmd
}

func newSessionCompleteCmd(client func() *Client) *cobra.Command {
	var actor string
	var force bool

	cmd := &cobra.Command{
		Use:   "complete <session-id>",
		Short: "Complete a session; fails listing uncounted items unless --force",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"session_id": args[0], "actor": actor, "force": force}

			var sess stocktake.Session
			if err := client().Call(context.Background(), "complete_session", params, &sess); err != nil {
				return err
			}

			fmt.Printf("Session %s completed\n", sess.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "User requesting completion")
	cmd.Flags().BoolVar(&force, "force", false, "Complete even with uncounted items")
	return cmd
}

func newSessionListCmd(client func() *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the token's branch sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{}

			var summaries []stocktake.SessionSummary
			if err := client().Call(context.Background(), "list_sessions", params, &summaries); err != nil {
				return err
			}

			if len(summaries) == 0 {
				fmt.Println("No sessions found")
				return nil
			}
			for _, s := range summaries {
				fmt.Printf("%-20s %-10s %4d items  %s  %s\n",
					s.Code, s.Status, s.TotalItems, s.CreatedAt.Format("2006-01-02 15:04"), s.ID)
			}
			return nil
		},
	}
	return cmd
}

func newSessionGetCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sess stocktake.Session
			if err := client().Call(context.Background(), "get_session", map[string]any{"session_id": args[0]}, &sess); err != nil {
				return err
			}

			fmt.Printf("Code:      %s\n", sess.Code)
			fmt.Printf("ID:        %s\n", sess.ID)
			fmt.Printf("Branch:    %s\n", sess.BranchID)
			fmt.Printf("Status:    %s\n", sess.Status)
			fmt.Printf("Created:   %s by %s\n", sess.CreatedAt.Format("2006-01-02 15:04"), sess.CreatedBy)
			if sess.IsMultiUser {
				fmt.Printf("Counters:  %s\n", strings.Join(sess.AllowedCounters, ", "))
			}
			if sess.Notes != "" {
				fmt.Printf("Notes:     %s\n", sess.Notes)
			}
			return nil
		},
	}
}

func newSessionItemsCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "items <session-id>",
		Short: "List a session's assigned items with baselines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []stocktake.AssignedItem
			if err := client().Call(context.Background(), "list_items", map[string]any{"session_id": args[0]}, &items); err != nil {
				return err
			}

			for _, item := range items {
				shelf := item.Shelf
				if shelf == "" {
					shelf = "-"
				}
				fmt.Printf("%-20s %-30s shelf=%-8s baseline=%.2f\n", item.ItemID, item.Name, shelf, item.BaselineQty)
			}
			return nil
		},
	}
}
