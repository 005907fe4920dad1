package services

import (
	"context"
	"database/sql"

	"github.com/basekit-io/basekit/internal/server/models"
	"github.com/basekit-io/basekit/internal/server/repositories/repomanager"
)

// RolesService exposes the seeded role catalogue. Roles are created by
// migration only.
type RolesService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewRolesService constructs a RolesService.
func NewRolesService(db *sql.DB, m repomanager.RepositoryManager) *RolesService {
	return &RolesService{db: db, repomanager: m}
}

// List returns all roles ordered by name.
func (s *RolesService) List(ctx context.Context) ([]*models.Role, error) {
	return s.repomanager.Roles(s.db).List(ctx)
}
