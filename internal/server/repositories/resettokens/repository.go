// Package resettokens declares the repository contract for single-use
// password-reset tokens and provides the PostgreSQL implementation.
package resettokens

import (
	"context"
	"time"

	"github.com/basekit-io/basekit/internal/server/models"
)

// Repository persists password-reset tokens. Tokens are looked up by the
// exact token string only; it is a capability-bearing secret, so there is
// deliberately no partial or prefix matching.
type Repository interface {
	// Create stores a new token record.
	Create(ctx context.Context, token *models.ResetToken) (*models.ResetToken, error)

	// GetByToken returns the record whose token string equals token.
	// Returns common.ErrorNotFound when absent.
	GetByToken(ctx context.Context, token string) (*models.ResetToken, error)

	// MarkUsed claims the token by setting used_at, guarded by
	// used_at IS NULL so exactly one caller can win. A lost claim
	// returns common.ErrTokenUsed.
	MarkUsed(ctx context.Context, token string, usedAt time.Time) error

	// Purge deletes redeemed tokens and tokens that expired before
	// olderThan. Returns the number of rows removed. The redemption path
	// never calls this; it is an operator-invoked maintenance operation.
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}
