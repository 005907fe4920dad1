package httpapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/basekit-io/basekit/internal/common"
	"github.com/basekit-io/basekit/internal/server/models"
	"github.com/basekit-io/basekit/internal/server/services"
)

func testSession(user *models.User) *services.Session {
	if user == nil {
		user = regularUser()
	}
	return &services.Session{
		User: user,
		TokenPair: services.TokenPair{
			AccessToken:     "access-jwt",
			RefreshToken:    "refresh-hex",
			AccessExpiresAt: time.Now().Add(15 * time.Minute),
		},
	}
}

func TestSignup(t *testing.T) {
	identity := &fakeIdentity{
		createOut: regularUser(),
		signInOut: testSession(nil),
	}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.post("/api/auth/signup", map[string]string{
		"email": "alice@basekit.local", "password": "pw", "name": "Alice",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[sessionResponse](t, resp)
	if body.AccessToken != "access-jwt" || body.RefreshToken != "refresh-hex" {
		t.Fatalf("unexpected session: %+v", body)
	}
	if body.User.Email != "alice@basekit.local" {
		t.Fatalf("unexpected user: %+v", body.User)
	}
}

func TestSignup_Validation(t *testing.T) {
	c := newTestServer(t, Deps{Identity: &fakeIdentity{}})

	resp := c.post("/api/auth/signup", map[string]string{"email": "", "password": ""}, nil)
	wantError(t, resp, http.StatusBadRequest, codeBadRequest)

	resp = c.post("/api/auth/signup", nil, nil)
	wantError(t, resp, http.StatusBadRequest, codeBadRequest)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	identity := &fakeIdentity{createErr: common.ErrorAlreadyExists}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.post("/api/auth/signup", map[string]string{
		"email": "taken@basekit.local", "password": "pw",
	}, nil)
	wantError(t, resp, http.StatusBadRequest, codeBadRequest)
}

func TestLogin(t *testing.T) {
	identity := &fakeIdentity{signInOut: testSession(nil)}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.post("/api/auth/login", map[string]string{
		"email": "alice@basekit.local", "password": "pw",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[sessionResponse](t, resp)
	if body.AccessToken == "" || body.User.ID == "" {
		t.Fatalf("incomplete session: %+v", body)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	identity := &fakeIdentity{signInErr: common.ErrorUnauthorized}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.post("/api/auth/login", map[string]string{
		"email": "alice@basekit.local", "password": "wrong",
	}, nil)
	wantError(t, resp, http.StatusUnauthorized, codeUnauthorized)
}

func TestRefreshEndpoint(t *testing.T) {
	identity := &fakeIdentity{refreshOut: testSession(nil)}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.post("/api/auth/refresh", map[string]string{"refresh_token": "refresh-hex"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	resp = c.post("/api/auth/refresh", map[string]string{}, nil)
	wantError(t, resp, http.StatusBadRequest, codeBadRequest)
}

func TestRefreshEndpoint_Expired(t *testing.T) {
	identity := &fakeIdentity{refreshErr: common.ErrRefreshTokenExpired}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.post("/api/auth/refresh", map[string]string{"refresh_token": "old"}, nil)
	wantError(t, resp, http.StatusUnauthorized, codeTokenExpired)
}

func TestRefreshEndpoint_Unknown(t *testing.T) {
	identity := &fakeIdentity{refreshErr: common.ErrorUnauthorized}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.post("/api/auth/refresh", map[string]string{"refresh_token": "bogus"}, nil)
	wantError(t, resp, http.StatusUnauthorized, codeUnauthorized)
}

func TestLogout(t *testing.T) {
	identity := &fakeIdentity{}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.post("/api/auth/logout", map[string]string{"refresh_token": "refresh-hex"},
		map[string]string{"Authorization": bearerFor(t, "u1")})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if identity.signedOutToken != "refresh-hex" {
		t.Fatalf("refresh token not revoked, got %q", identity.signedOutToken)
	}
}

func TestLogout_RequiresBearer(t *testing.T) {
	c := newTestServer(t, Deps{Identity: &fakeIdentity{}})

	resp := c.post("/api/auth/logout", map[string]string{"refresh_token": "x"}, nil)
	wantError(t, resp, http.StatusUnauthorized, codeUnauthorized)
}

func TestSessionEndpoint(t *testing.T) {
	identity := &fakeIdentity{sessionOut: regularUser()}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.get("/api/auth/session", nil, map[string]string{"Authorization": bearerFor(t, "u1")})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]userPayload](t, resp)
	if body["user"].ID != "u1" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSessionEndpoint_AccountGone(t *testing.T) {
	identity := &fakeIdentity{sessionErr: common.ErrorNotFound}
	c := newTestServer(t, Deps{Identity: identity})

	resp := c.get("/api/auth/session", nil, map[string]string{"Authorization": bearerFor(t, "ghost")})
	wantError(t, resp, http.StatusUnauthorized, codeUnauthorized)
}

func TestResetRequestEndpoint(t *testing.T) {
	reset := &fakeReset{}
	c := newTestServer(t, Deps{Reset: reset})

	resp := c.post("/api/auth/password-reset/request", map[string]string{
		"email": "alice@basekit.local",
	}, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["message"] == "" {
		t.Fatal("missing message")
	}
	if reset.requestedTo != "alice@basekit.local" {
		t.Fatalf("request not forwarded, got %q", reset.requestedTo)
	}
}

func TestResetRequestEndpoint_UnsupportedType(t *testing.T) {
	reset := &fakeReset{requestErr: common.ErrUnsupportedAccountType}
	c := newTestServer(t, Deps{Reset: reset})

	resp := c.post("/api/auth/password-reset/request", map[string]string{
		"email": "a@b.c", "account_type": "admin",
	}, nil)
	wantError(t, resp, http.StatusBadRequest, codeUnsupportedType)
}

func TestResetRequestEndpoint_GenericFailure(t *testing.T) {
	reset := &fakeReset{requestErr: common.ErrResetRequestFailed}
	c := newTestServer(t, Deps{Reset: reset})

	resp := c.post("/api/auth/password-reset/request", map[string]string{"email": "a@b.c"}, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[errorBody](t, resp)
	if body.Error.Code != codeInternal || body.Error.Message != common.ErrResetRequestFailed.Error() {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestResetConfirmEndpoint(t *testing.T) {
	reset := &fakeReset{}
	c := newTestServer(t, Deps{Reset: reset})

	resp := c.post("/api/auth/password-reset/confirm", map[string]string{
		"token": "tok", "new_password": "new-pw",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if reset.redeemedToken != "tok" || reset.redeemedNewPwd != "new-pw" {
		t.Fatalf("redeem not forwarded: %+v", reset)
	}
}

func TestResetConfirmEndpoint_TokenErrors(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", common.ErrInvalidToken, http.StatusBadRequest, codeInvalidToken},
		{"used", common.ErrTokenUsed, http.StatusConflict, codeTokenUsed},
		{"expired", common.ErrTokenExpired, http.StatusBadRequest, codeTokenExpired},
		{"unsupported", common.ErrUnsupportedAccountType, http.StatusBadRequest, codeUnsupportedType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestServer(t, Deps{Reset: &fakeReset{redeemErr: tc.err}})
			resp := c.post("/api/auth/password-reset/confirm", map[string]string{
				"token": "tok", "new_password": "pw",
			}, nil)
			wantError(t, resp, tc.status, tc.code)
		})
	}
}
