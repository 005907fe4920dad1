package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/basekit-io/basekit/internal/client/session"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Hold the session open and react to server-side revocation",
	Long: "Hold the session open the way an embedded UI would: subscribe to the " +
		"account's change feed, revalidate periodically, and end the session " +
		"the moment the server revokes it.",
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	client, mgr := newSession(cfg)

	sess, err := requireSession(cmd.Context(), mgr)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	w := session.NewWatcher(sess.UserID, client, mgr, session.NewValidator(client), session.WatcherOptions{
		Interval:    cfg.WatchInterval,
		LogoutDelay: cfg.LogoutDelay,
		BackoffBase: cfg.BackoffBase,
		MaxAttempts: cfg.MaxReconnects,
		OnLogout: func(reason string) {
			cmd.Printf("Session revoked: %s\n", reason)
		},
		Navigate: func() {
			close(done)
		},
	})
	if err := w.Start(cmd.Context()); err != nil {
		return err
	}
	defer w.Stop()

	cmd.Printf("Watching session for %s. Press Ctrl+C to stop.\n", sess.Email)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)

	select {
	case <-done:
		cmd.Println("Session ended. Run 'basekit login' to sign in again.")
	case <-sig:
		cmd.Println("Stopping.")
	case <-cmd.Context().Done():
	}
	return nil
}
