package common

// AccountTypeUser is the only account type the password-reset workflow
// currently accepts. Other values fail with ErrUnsupportedAccountType.
const AccountTypeUser = "user"

// Role names seeded by migrations and referenced by authorization checks.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
