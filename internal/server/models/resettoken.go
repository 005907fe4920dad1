package models

import "time"

// ResetToken is a single-use password-reset secret. Token is the lookup
// key (64 hex chars from 32 random bytes); Email is a redundant copy
// captured at issuance. UsedAt nil means the token is still unredeemed.
// Redemption sets UsedAt; rows are never deleted on that path.
type ResetToken struct {
	ID        string
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token is unredeemed and unexpired at now.
func (t *ResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && !t.ExpiresAt.Before(now)
}
