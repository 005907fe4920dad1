// Package settings declares the repository contract for application
// settings and provides the PostgreSQL implementation.
package settings

import (
	"context"

	"github.com/basekit-io/basekit/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Setting, error)

	// Get returns the setting with the given unique key.
	// Returns common.ErrorNotFound when absent.
	Get(ctx context.Context, key string) (*models.Setting, error)

	// Set upserts the value for key. setting.ID is used only when the key
	// does not exist yet.
	Set(ctx context.Context, setting *models.Setting) (*models.Setting, error)
}
