package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/basekit-io/basekit/internal/dbx"
	"github.com/basekit-io/basekit/internal/server/models"
	"github.com/basekit-io/basekit/internal/server/repositories/repomanager"
	"github.com/basekit-io/basekit/internal/server/repositories/users"
	"github.com/basekit-io/basekit/internal/server/stream"
)

// Page-size bounds for user listings, shared with the HTTP layer so
// responses echo the effective page size.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// UpdateUserParams is a partial update: nil fields are left unchanged.
type UpdateUserParams struct {
	Name     *string
	RoleName *string
	IsActive *bool
}

// UsersService provides administrative operations over user records.
// Mutations publish change-feed events so live watchers see revocations
// and profile updates immediately.
type UsersService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	identity    *IdentityService
	hub         *stream.Hub
}

// NewUsersService constructs a UsersService.
func NewUsersService(db *sql.DB, m repomanager.RepositoryManager, identity *IdentityService, hub *stream.Hub) *UsersService {
	return &UsersService{db: db, repomanager: m, identity: identity, hub: hub}
}

// List returns one page of users plus the total match count. q, when
// non-empty, matches email or name case-insensitively.
func (s *UsersService) List(ctx context.Context, page, perPage int, q string) ([]*models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	filter := users.ListFilter{
		Query:  q,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	repo := s.repomanager.Users(s.db)
	list, err := repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}
	return list, total, nil
}

// Get returns a single user record by id.
func (s *UsersService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Update applies a partial update to the user and publishes the update
// event. Deactivation is Update with IsActive=false; watchers of that
// user react by logging the session out.
func (s *UsersService) Update(ctx context.Context, id string, params UpdateUserParams) (*models.User, error) {
	var updated *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := s.repomanager.Users(tx)

		user, err := usersRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if params.Name != nil {
			user.Name = *params.Name
		}
		if params.IsActive != nil {
			user.IsActive = *params.IsActive
		}
		if params.RoleName != nil {
			role, err := s.repomanager.Roles(tx).GetByName(ctx, *params.RoleName)
			if err != nil {
				return fmt.Errorf("error resolving role: %w", err)
			}
			user.RoleID = role.ID
			user.RoleName = role.Name
		}

		if err := usersRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(stream.Updated(updated))
	return updated, nil
}

// Delete removes the user. The identity service owns deletion and
// publishes the delete event.
func (s *UsersService) Delete(ctx context.Context, id string) error {
	return s.identity.DeleteAccount(ctx, id)
}
