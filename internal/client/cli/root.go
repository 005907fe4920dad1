package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/basekit-io/basekit/internal/client/api"
	"github.com/basekit-io/basekit/internal/client/config"
	"github.com/basekit-io/basekit/internal/client/keyring"
	"github.com/basekit-io/basekit/internal/client/session"
	"github.com/basekit-io/basekit/internal/common"
)

// Build metadata, injected by Execute.
var (
	appVersion = "N/A"
	appCommit  = "N/A"
)

// keyringFactory allows injecting a mock keyring in tests.
var keyringFactory func() keyring.Store = func() keyring.Store {
	return keyring.NewSystem()
}

// clientFactory allows injecting a stub API client in tests.
var clientFactory func(cfg *config.Config) api.Client = func(cfg *config.Config) api.Client {
	return api.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
}

var serverURL string

var rootCmd = &cobra.Command{
	Use:          "basekit",
	Short:        "BaseKit command-line client",
	Long:         "Command-line client for a BaseKit server: sessions, password resets, and user administration.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "base URL of the BaseKit server (overrides config)")
}

// Execute runs the root command. Build metadata is passed through from
// main, where it is set via -ldflags.
func Execute(ctx context.Context, version, commit string) error {
	appVersion = version
	appCommit = commit
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig builds the effective configuration for one command run.
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	return cfg
}

// newSession wires an API client and a session manager backed by the
// keyring cache.
func newSession(cfg *config.Config) (api.Client, *session.Manager) {
	client := clientFactory(cfg)
	return client, session.NewManager(client, keyringFactory())
}

// requireSession returns a session with a fresh access token, or a
// friendly error telling the user to log in first.
func requireSession(ctx context.Context, mgr *session.Manager) (*session.Session, error) {
	sess, err := mgr.EnsureFresh(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) || errors.Is(err, common.ErrRefreshTokenExpired) {
			return nil, errors.New("not signed in, run 'basekit login' first")
		}
		return nil, err
	}
	return sess, nil
}
