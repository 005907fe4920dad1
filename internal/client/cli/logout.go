package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basekit-io/basekit/internal/client/session"
	"github.com/basekit-io/basekit/internal/common"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the refresh token and clear the cached session",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	_, mgr := newSession(cfg)

	if _, err := mgr.EnsureFresh(cmd.Context()); err != nil {
		if errors.Is(err, session.ErrNoSession) || errors.Is(err, common.ErrRefreshTokenExpired) {
			cmd.Println("No active session.")
			return nil
		}
		return err
	}

	if err := mgr.SignOut(cmd.Context()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	cmd.Println("Logged out.")
	return nil
}
