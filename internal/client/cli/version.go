package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("basekit version %s (commit %s)\n", appVersion, appCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
