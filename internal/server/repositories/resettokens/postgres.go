package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.ResetToken) (*models.ResetToken, error) {
	query :=
		`INSERT INTO password_reset_tokens (id, token, user_id, email, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		token.ID, token.Token, token.UserID, token.Email, token.ExpiresAt).Scan(&token.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, tokenStr string) (*models.ResetToken, error) {
	query :=
		`SELECT id, token, user_id, email, expires_at, used_at, created_at
		 FROM password_reset_tokens
		 WHERE token = $1
		 `

	token := &models.ResetToken{}
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, tokenStr).Scan(
		&token.ID, &token.Token, &token.UserID, &token.Email, &token.ExpiresAt, &usedAt, &token.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if usedAt.Valid {
		token.UsedAt = &usedAt.Time
	}

	return token, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, tokenStr string, usedAt time.Time) error {
	query :=
		`UPDATE password_reset_tokens SET used_at = $2
		 WHERE token = $1 AND used_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, tokenStr, usedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrTokenUsed
	}
	return nil
}

func (r *PostgresRepository) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	query :=
		`DELETE FROM password_reset_tokens
		 WHERE used_at IS NOT NULL OR expires_at < $1
		 `

	res, err := r.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
