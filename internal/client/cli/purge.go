package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var purgeBefore string

var purgeCmd = &cobra.Command{
	Use:   "purge-tokens",
	Short: "Delete expired and used password-reset tokens (admin)",
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeBefore, "before", "", "RFC3339 cutoff, defaults to now")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	// Reset flags for reuse in tests.
	defer func() { purgeBefore = "" }()

	cfg := loadConfig()
	client, mgr := newSession(cfg)
	if _, err := requireSession(cmd.Context(), mgr); err != nil {
		return err
	}

	before := time.Now()
	if purgeBefore != "" {
		parsed, err := time.Parse(time.RFC3339, purgeBefore)
		if err != nil {
			return fmt.Errorf("invalid --before value: %w", err)
		}
		before = parsed
	}

	purged, err := client.PurgeTokens(cmd.Context(), before)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	cmd.Printf("Purged %d reset tokens\n", purged)
	return nil
}
