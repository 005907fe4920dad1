package models

import "time"

// User is the record-store row behind every account. The client core only
// ever reads it; creation and deletion go through the identity service.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	Verified     bool
	RoleID       string
	RoleName     string
	AvatarKey    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
