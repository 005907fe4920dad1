// Package users declares the server-side repository contract for user
// records and provides the PostgreSQL implementation.
package users

import (
	"context"

	"github.com/basekit-io/basekit/internal/server/models"
)

// ListFilter narrows and pages List/Count results. Query, when non-empty,
// matches email OR name case-insensitively (substring).
type ListFilter struct {
	Query  string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, f ListFilter) ([]*models.User, error)
	Count(ctx context.Context, f ListFilter) (int64, error)

	// Update persists name, is_active, verified and role_id for user.ID.
	Update(ctx context.Context, user *models.User) error

	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SetAvatarKey(ctx context.Context, id string, key string) error
	Delete(ctx context.Context, id string) error
}
