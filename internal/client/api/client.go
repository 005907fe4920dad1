// Package api implements the Go client for the BaseKit HTTP API. It
// decodes server error bodies back into the shared sentinel errors so
// callers can branch with errors.Is, and exposes the per-user change
// feed as a channel of events.
package api

import (
	"context"
	"time"
)

// Event types carried on the change feed.
const (
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// User mirrors the server's user payload.
type User struct {
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

// Session is the token pair handed out by sign-in and refresh.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// Event is one change-feed notification. Record is present on updates
// and absent on deletes.
type Event struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	Record *User     `json:"record,omitempty"`
	At     time.Time `json:"at"`
}

// UserPage is one page of a user listing.
type UserPage struct {
	Items   []*User `json:"items"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}

// UserPatch carries the fields an admin may change. Nil fields are
// left untouched.
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Client is the full BaseKit API surface the SDK and CLI consume.
// Implementations must be safe for concurrent use.
type Client interface {
	// SetToken installs the bearer token injected on authenticated calls.
	// An empty string clears it.
	SetToken(token string)

	SignUp(ctx context.Context, email, password, name string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	CurrentUser(ctx context.Context) (*User, error)

	RequestReset(ctx context.Context, email, accountType string) error
	ConfirmReset(ctx context.Context, token, newPassword string) error

	User(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context, page, perPage int, query string) (*UserPage, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error)
	DeleteUser(ctx context.Context, id string) error

	AvatarUploadURL(ctx context.Context, userID string) (string, error)
	UploadAvatar(ctx context.Context, userID string, data []byte) error
	AvatarURL(ctx context.Context, userID string) (string, error)

	PurgeTokens(ctx context.Context, before time.Time) (int64, error)

	// Watch opens the change feed for one user. The returned channel
	// closes when the stream ends for any reason; the close func tears
	// the stream down and is safe to call more than once.
	Watch(ctx context.Context, userID string) (<-chan Event, func(), error)
}
