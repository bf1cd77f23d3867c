package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the stocktake command tree.
func NewRootCmd() *cobra.Command {
	var serverURL, token string

	root := &cobra.Command{
		Use:           "stocktake",
		Short:         "Coordinate stock take sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Coordination server URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("STOCKTAKE_TOKEN"), "API token")

	client := func() *Client {
		return NewClient(serverURL, token)
	}

	root.AddCommand(
		newSessionCmd(client),
		newLockCmd(client),
		newCountCmd(client),
		newProgressCmd(client),
		newHistoryCmd(client),
	)

	return root
}

func defaultServerURL() string {
	if url := os.Getenv("STOCKTAKE_SERVER"); url != "" {
		return url
	}
	return "http://localhost:8080"
}
