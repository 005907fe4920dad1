// Package roles declares the repository contract for role records and
// provides the PostgreSQL implementation. Roles are seeded by migration;
// the API only ever reads them.
package roles

import (
	"context"

	"github.com/basekit-io/basekit/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Role, error)

	// GetByName returns the role with the given unique name.
	// Returns common.ErrorNotFound when absent.
	GetByName(ctx context.Context, name string) (*models.Role, error)
}
