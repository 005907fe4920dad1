// Package session owns the client side of a BaseKit login: one Manager
// holds the session state, a Validator confirms the account is still
// live, and a Watcher tears the session down the moment the server
// revokes it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/basekit-io/basekit/internal/client/api"
	"github.com/basekit-io/basekit/internal/client/keyring"
	"github.com/basekit-io/basekit/internal/common"
)

// ErrNoSession is returned when no session is held in memory or in the
// keyring cache.
var ErrNoSession = errors.New("not signed in")

// refreshLeeway is how close to expiry an access token may get before
// EnsureFresh rotates it.
const refreshLeeway = 30 * time.Second

// Session is the client-held authentication state. It is ephemeral on
// the server; the CLI caches it in the OS keyring between invocations.
type Session struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	Verified        bool      `json:"verified"`
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

type identityAPI interface {
	Login(ctx context.Context, email, password string) (*api.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*api.Session, error)
	SetToken(token string)
}

// Manager is the single owner of session state. Every mutation (sign-in,
// sign-out, profile apply, forced logout) goes through its methods under
// one mutex, so writes are last-write-wins with no partial updates.
type Manager struct {
	client identityAPI
	cache  keyring.Store

	mu  sync.Mutex
	cur *Session
	now func() time.Time
}

// NewManager binds a Manager to an API client and a keyring cache. Use
// keyring.NewMemory() when persistence across processes is not wanted.
func NewManager(client identityAPI, cache keyring.Store) *Manager {
	return &Manager{client: client, cache: cache, now: time.Now}
}

func sessionFromAPI(s *api.Session) (*Session, error) {
	if s == nil || s.User == nil {
		return nil, errors.New("malformed session response")
	}
	return &Session{
		UserID:          s.User.ID,
		Email:           s.User.Email,
		Name:            s.User.Name,
		Role:            s.User.Role,
		Verified:        s.User.Verified,
		AccessToken:     s.AccessToken,
		RefreshToken:    s.RefreshToken,
		AccessExpiresAt: s.ExpiresAt,
	}, nil
}

// SignIn authenticates, installs the bearer token on the API client and
// caches the session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	sess, err := sessionFromAPI(resp)
	if err != nil {
		return nil, err
	}

	m.cur = sess
	m.client.SetToken(sess.AccessToken)
	if err := m.persistLocked(); err != nil {
		return nil, err
	}

	out := *sess
	return &out, nil
}

// SignOut revokes the refresh token server-side and wipes local state.
// Local state is cleared even when the server call fails, so an
// unreachable server cannot pin a session on this machine.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur == nil {
		if err := m.restoreLocked(); err != nil {
			return err
		}
	}
	if m.cur == nil {
		return ErrNoSession
	}

	err := m.client.Logout(ctx, m.cur.RefreshToken)
	m.clearLocked()
	return err
}

// Restore loads the cached session, if any, and primes the API client
// with its access token. A missing or unreadable cache entry yields
// (nil, nil).
func (m *Manager) Restore() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.restoreLocked(); err != nil {
		return nil, err
	}
	if m.cur == nil {
		return nil, nil
	}
	out := *m.cur
	return &out, nil
}

// EnsureFresh returns a session whose access token is valid for at
// least refreshLeeway, rotating the pair when needed. It restores from
// the cache first when nothing is held in memory.
func (m *Manager) EnsureFresh(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur == nil {
		if err := m.restoreLocked(); err != nil {
			return nil, err
		}
	}
	if m.cur == nil {
		return nil, ErrNoSession
	}

	if m.now().Add(refreshLeeway).Before(m.cur.AccessExpiresAt) {
		out := *m.cur
		return &out, nil
	}
	return m.refreshLocked(ctx)
}

func (m *Manager) refreshLocked(ctx context.Context) (*Session, error) {
	resp, err := m.client.Refresh(ctx, m.cur.RefreshToken)
	if err != nil {
		// A rejected refresh token means the session is dead; drop the
		// stale cache so the next command prompts for a login. Network
		// failures keep the cache for a later retry.
		if errors.Is(err, common.ErrRefreshTokenExpired) || errors.Is(err, common.ErrorUnauthorized) {
			m.clearLocked()
		}
		return nil, err
	}

	sess, err := sessionFromAPI(resp)
	if err != nil {
		return nil, err
	}
	m.cur = sess
	m.client.SetToken(sess.AccessToken)
	if err := m.persistLocked(); err != nil {
		return nil, err
	}

	out := *sess
	return &out, nil
}

// Current returns a copy of the in-memory session, if one is held.
func (m *Manager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return nil, false
	}
	out := *m.cur
	return &out, true
}

// Apply merges a fresh user record into the session. Records for other
// users, and updates arriving after the session ended, are ignored.
func (m *Manager) Apply(user *api.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil || user == nil || user.ID != m.cur.UserID {
		return
	}
	m.cur.Email = user.Email
	m.cur.Name = user.Name
	m.cur.Role = user.Role
	m.cur.Verified = user.Verified
	_ = m.persistLocked()
}

// Clear wipes the session from memory, the API client and the keyring.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *Manager) clearLocked() {
	m.cur = nil
	m.client.SetToken("")
	_ = m.cache.Delete(keyring.KeySession)
}

func (m *Manager) persistLocked() error {
	data, err := json.Marshal(m.cur)
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}
	if err := m.cache.Set(keyring.KeySession, string(data)); err != nil {
		return fmt.Errorf("error caching session: %w", err)
	}
	return nil
}

func (m *Manager) restoreLocked() error {
	raw, err := m.cache.Get(keyring.KeySession)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("error reading session cache: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// An unreadable blob is useless; drop it and report no session.
		_ = m.cache.Delete(keyring.KeySession)
		return nil
	}

	m.cur = &sess
	m.client.SetToken(sess.AccessToken)
	return nil
}
