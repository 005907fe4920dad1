package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/basekit-io/basekit/internal/common"
	"github.com/basekit-io/basekit/internal/netx"
)

const defaultTimeout = 10 * time.Second

// HTTPClient talks JSON to a BaseKit server. Plain calls share one
// timeout-bound http.Client; the watch stream uses a second client
// without a timeout, since the connection is meant to stay open.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	stream  *http.Client

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient constructs a client for the server at baseURL. A zero
// timeout falls back to 10 seconds.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) authorize(req *http.Request) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do sends one JSON request and decodes the response into out when the
// status matches want. Any other status is decoded as an error body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, want int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", body, &sess, http.StatusCreated); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &sess, http.StatusOK); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return c.do(ctx, http.MethodPost, "/api/auth/logout", body, nil, http.StatusNoContent)
}

// Refresh exchanges the refresh token for a new pair. An expired token
// surfaces as ErrRefreshTokenExpired; the caller must sign in again.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", body, &sess, http.StatusOK); err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, err
	}
	return &sess, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// RequestReset asks for a password-reset email. The server answers 202
// whether or not the account exists; server-side failures collapse to
// ErrResetRequestFailed.
func (c *HTTPClient) RequestReset(ctx context.Context, email, accountType string) error {
	body := map[string]string{"email": email, "account_type": accountType}
	err := c.do(ctx, http.MethodPost, "/api/auth/password-reset/request", body, nil, http.StatusAccepted)
	if err != nil && errors.Is(err, common.ErrorInternal) {
		return common.ErrResetRequestFailed
	}
	return err
}

func (c *HTTPClient) ConfirmReset(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/password-reset/confirm", body, nil, http.StatusOK)
}

func (c *HTTPClient) User(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context, page, perPage int, query string) (*UserPage, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}
	if query != "" {
		params.Set("q", query)
	}
	path := "/api/users"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var pageResp UserPage
	if err := c.do(ctx, http.MethodGet, path, nil, &pageResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &pageResp, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(id), patch, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (c *HTTPClient) AvatarUploadURL(ctx context.Context, userID string) (string, error) {
	var resp struct {
		UploadURL string `json:"upload_url"`
	}
	path := "/api/users/" + url.PathEscape(userID) + "/avatar-upload"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, http.StatusOK); err != nil {
		return "", err
	}
	return resp.UploadURL, nil
}

// UploadAvatar fetches a presigned URL for the user and PUTs the image
// bytes straight to object storage.
func (c *HTTPClient) UploadAvatar(ctx context.Context, userID string, data []byte) error {
	uploadURL, err := c.AvatarUploadURL(ctx, userID)
	if err != nil {
		return err
	}
	if err := netx.UploadToPresignedURL(ctx, uploadURL, data); err != nil {
		return fmt.Errorf("error uploading avatar: %w", err)
	}
	return nil
}

func (c *HTTPClient) AvatarURL(ctx context.Context, userID string) (string, error) {
	var resp struct {
		DownloadURL string `json:"download_url"`
	}
	path := "/api/users/" + url.PathEscape(userID) + "/avatar"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, http.StatusOK); err != nil {
		return "", err
	}
	return resp.DownloadURL, nil
}

func (c *HTTPClient) PurgeTokens(ctx context.Context, before time.Time) (int64, error) {
	var resp struct {
		Purged int64 `json:"purged"`
	}
	path := "/api/admin/reset-tokens?before=" + url.QueryEscape(before.Format(time.RFC3339))
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp, http.StatusOK); err != nil {
		return 0, err
	}
	return resp.Purged, nil
}
