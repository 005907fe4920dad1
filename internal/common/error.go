// Package common defines shared constants and sentinel errors used across
// client and server layers of BaseKit. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorForbidden     = errors.New("forbidden")
	ErrorAlreadyExists = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Reset-token lifecycle errors.
	ErrTokenUsed           = errors.New("token already used")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrUnsupportedAccountType is returned for any account type other
	// than AccountTypeUser.
	ErrUnsupportedAccountType = errors.New("unsupported account type")

	// ErrResetRequestFailed is the single generic failure every
	// reset-request error collapses to. The real cause is logged, never
	// returned, so responses do not reveal whether an account exists.
	ErrResetRequestFailed = errors.New("something went wrong, please try again later")
)
