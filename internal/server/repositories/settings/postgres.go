package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/basekit-io/basekit/internal/common"
	"github.com/basekit-io/basekit/internal/dbx"
	"github.com/basekit-io/basekit/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Setting, error) {
	query :=
		`SELECT id, key, value, updated_at
		 FROM settings
		 ORDER BY key
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Setting
	for rows.Next() {
		setting := &models.Setting{}
		if err := rows.Scan(&setting.ID, &setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	query :=
		`SELECT id, key, value, updated_at
		 FROM settings
		 WHERE key = $1
		 `

	setting := &models.Setting{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&setting.ID, &setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return setting, nil
}

func (r *PostgresRepository) Set(ctx context.Context, setting *models.Setting) (*models.Setting, error) {
	query :=
		`INSERT INTO settings (id, key, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		 RETURNING id, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, setting.ID, setting.Key, setting.Value).
		Scan(&setting.ID, &setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return setting, nil
}
