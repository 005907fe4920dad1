package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/basekit-io/basekit/internal/common"
)

func TestResetRequestCommand(t *testing.T) {
	var gotEmail, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/password-reset/request" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Email       string `json:"email"`
			AccountType string `json:"account_type"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotEmail, gotType = req.Email, req.AccountType

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pointAtServer(t, srv)

	root, out := newTestRoot(resetRequestCmd)
	root.SetArgs([]string{"reset-request", "alice@example.com"})

	require.NoError(t, root.Execute())
	require.Equal(t, "alice@example.com", gotEmail)
	require.Equal(t, common.AccountTypeUser, gotType)
	require.Contains(t, out.String(), "reset link is on its way")
}

func TestResetConfirmCommand_PromptedPassword(t *testing.T) {
	var gotToken, gotPassword string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/password-reset/confirm" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Token       string `json:"token"`
			NewPassword string `json:"new_password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotToken, gotPassword = req.Token, req.NewPassword

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	pointAtServer(t, srv)
	stubPassword(t, "newpass123")

	root, out := newTestRoot(resetConfirmCmd)
	root.SetArgs([]string{"reset-confirm", "tok123"})

	require.NoError(t, root.Execute())
	require.Equal(t, "tok123", gotToken)
	require.Equal(t, "newpass123", gotPassword)
	require.Contains(t, out.String(), "Password updated")
}

func TestResetConfirmCommand_UsedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusConflict, "TOKEN_USED", "token already used")
	}))
	defer srv.Close()

	pointAtServer(t, srv)

	root, _ := newTestRoot(resetConfirmCmd)
	root.SetArgs([]string{"reset-confirm", "tok123", "--password", "newpass123"})

	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "reset failed")
	require.ErrorIs(t, err, common.ErrTokenUsed)
}
