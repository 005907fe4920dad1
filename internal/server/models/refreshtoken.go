package models

import "time"

// RefreshToken is one leg of a session's token pair. Token is the opaque
// secret handed to the client; rotation deletes the row and inserts a
// replacement, so a given Token value is redeemable at most once.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's lifetime had passed at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.Expires.Before(now)
}
