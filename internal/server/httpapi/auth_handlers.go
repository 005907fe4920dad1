package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/basekit-io/basekit/internal/common"
	"github.com/basekit-io/basekit/internal/server/models"
	"github.com/basekit-io/basekit/internal/server/services"
)

// userPayload is the wire shape of a user record. The password hash
// never crosses the HTTP boundary.
type userPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	Verified  bool      `json:"verified"`
	Role      string    `json:"role"`
	AvatarKey string    `json:"avatar_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		Verified:  u.Verified,
		Role:      u.RoleName,
		AvatarKey: u.AvatarKey,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type sessionResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         userPayload `json:"user"`
}

func toSessionResponse(s *services.Session) sessionResponse {
	return sessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.AccessExpiresAt,
		User:         toUserPayload(s.User),
	}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "email and password are required")
		return
	}

	if _, err := a.identity.CreateAccount(r.Context(), req.Email, req.Password, req.Name); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	session, err := a.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "email and password are required")
		return
	}

	session, err := a.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "refresh_token is required")
		return
	}

	session, err := a.identity.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "refresh_token is required")
		return
	}

	if err := a.identity.SignOut(r.Context(), req.RefreshToken); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
		return
	}

	user, err := a.identity.Session(r.Context(), userID)
	if err != nil {
		// The token outlived the account; the session is no longer valid.
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "account no longer exists")
			return
		}
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserPayload(user)})
}

type resetRequestRequest struct {
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
}

func (a *API) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "email is required")
		return
	}
	if req.AccountType == "" {
		req.AccountType = common.AccountTypeUser
	}

	if err := a.reset.RequestReset(r.Context(), req.Email, req.AccountType); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	// The body is identical whether or not the account exists.
	writeJSON(w, http.StatusAccepted, map[string]any{
		"message": "If the account exists, a password reset link has been sent.",
	})
}

type resetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
	AccountType string `json:"account_type"`
}

func (a *API) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "token and new_password are required")
		return
	}
	if req.AccountType == "" {
		req.AccountType = common.AccountTypeUser
	}

	if err := a.reset.RedeemReset(r.Context(), req.Token, req.NewPassword, req.AccountType); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "password has been reset"})
}
