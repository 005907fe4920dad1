package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/basekit-io/basekit/internal/ids"
	"github.com/basekit-io/basekit/internal/server/models"
	"github.com/basekit-io/basekit/internal/server/repositories/repomanager"
)

// SettingsService reads and writes application-level key/value settings.
type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager) *SettingsService {
	return &SettingsService{db: db, repomanager: m}
}

// List returns all settings.
func (s *SettingsService) List(ctx context.Context) ([]*models.Setting, error) {
	return s.repomanager.Settings(s.db).List(ctx)
}

// Get returns the setting for key, or common.ErrorNotFound.
func (s *SettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	return s.repomanager.Settings(s.db).Get(ctx, key)
}

// Set upserts the value for key and returns the stored row.
func (s *SettingsService) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	setting := &models.Setting{
		ID:    ids.New(),
		Key:   key,
		Value: value,
	}
	stored, err := s.repomanager.Settings(s.db).Set(ctx, setting)
	if err != nil {
		return nil, fmt.Errorf("error storing setting: %w", err)
	}
	return stored, nil
}
