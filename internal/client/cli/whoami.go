package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account behind the current session",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	client, mgr := newSession(cfg)

	if _, err := requireSession(cmd.Context(), mgr); err != nil {
		return err
	}

	// Ask the server rather than trusting the cache, so a stale or
	// revoked session surfaces here.
	user, err := client.CurrentUser(cmd.Context())
	if err != nil {
		return fmt.Errorf("error fetching session: %w", err)
	}

	printUser(cmd.OutOrStdout(), user)
	return nil
}
