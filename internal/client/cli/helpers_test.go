package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/basekit-io/basekit/internal/client/keyring"
	"github.com/basekit-io/basekit/internal/client/session"
)

// newTestRoot builds a fresh root command so package-level commands can
// be executed in isolation with captured output.
func newTestRoot(child *cobra.Command) (*cobra.Command, *bytes.Buffer) {
	root := &cobra.Command{Use: "basekit", SilenceUsage: true}
	root.AddCommand(child)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	return root, out
}

// useMemoryKeyring swaps the keyring factory for an in-memory store and
// restores it when the test ends.
func useMemoryKeyring(t *testing.T) keyring.Store {
	t.Helper()
	store := keyring.NewMemory()
	orig := keyringFactory
	keyringFactory = func() keyring.Store { return store }
	t.Cleanup(func() { keyringFactory = orig })
	return store
}

// pointAtServer directs the CLI configuration at the test server and
// neutralizes any config file on the machine running the tests.
func pointAtServer(t *testing.T, srv *httptest.Server) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BASEKIT_CLIENT_CONFIG", "")
	t.Setenv("BASEKIT_SERVER_URL", srv.URL)
}

// stubPassword replaces the terminal password reader for the duration
// of the test.
func stubPassword(t *testing.T, password string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { readPassword = orig })
}

// seedSession stores a cached session for user u1 / alice@example.com.
func seedSession(t *testing.T, store keyring.Store, expiresIn time.Duration) {
	t.Helper()
	sess := session.Session{
		UserID:          "u1",
		Email:           "alice@example.com",
		Name:            "Alice",
		Role:            "user",
		AccessToken:     "access-1",
		RefreshToken:    "refresh-1",
		AccessExpiresAt: time.Now().Add(expiresIn),
	}
	data, err := json.Marshal(sess)
	require.NoError(t, err)
	require.NoError(t, store.Set(keyring.KeySession, string(data)))
}

func alicePayload() map[string]any {
	return map[string]any{
		"id":        "u1",
		"email":     "alice@example.com",
		"name":      "Alice",
		"is_active": true,
		"verified":  true,
		"role":      "user",
	}
}

func sessionPayload(access, refresh string) map[string]any {
	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"expires_at":    time.Now().Add(15 * time.Minute).Format(time.RFC3339),
		"user":          alicePayload(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// failOnRequest returns a server that fails the test if anything calls it.
func failOnRequest(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)
	return srv
}
