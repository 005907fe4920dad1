package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/basekit-io/basekit/internal/common"
	"github.com/basekit-io/basekit/internal/ids"
	"github.com/basekit-io/basekit/internal/logging"
	"github.com/basekit-io/basekit/internal/server/mail"
	"github.com/basekit-io/basekit/internal/server/models"
	"github.com/basekit-io/basekit/internal/server/repositories/repomanager"
)

// resetTokenValidity is how long a reset link works. It is part of the
// workflow contract (the email promises one hour), not configuration.
const resetTokenValidity = time.Hour

// IdentityProvider is the slice of the identity service the reset
// workflow depends on. Tests substitute a fake.
type IdentityProvider interface {
	UpdatePassword(ctx context.Context, id string, newPassword string) error
}

// ResetService implements the password-reset workflow: issuing single-use
// reset tokens, delivering them by email, and redeeming them for a new
// password.
//
// RequestReset never reveals whether an account exists: unknown emails
// report success, and every internal failure collapses to the one generic
// ErrResetRequestFailed while the real cause goes to the log.
type ResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	identity    IdentityProvider
	mailer      mail.Mailer
	logger      logging.Logger
	baseURL     string
	now         func() time.Time
}

// NewResetService constructs a ResetService. baseURL is the public
// application URL embedded into reset links.
func NewResetService(db *sql.DB, m repomanager.RepositoryManager, identity IdentityProvider,
	mailer mail.Mailer, logger logging.Logger, baseURL string) *ResetService {
	return &ResetService{
		db:          db,
		repomanager: m,
		identity:    identity,
		mailer:      mailer,
		logger:      logger,
		baseURL:     baseURL,
		now:         time.Now,
	}
}

// RequestReset issues a reset token for the account with the given email
// and dispatches the reset link. Unknown emails succeed silently. Each
// request issues a fresh token; earlier unused tokens stay valid until
// they expire or the password changes through one of them.
func (s *ResetService) RequestReset(ctx context.Context, email, accountType string) error {
	if accountType != common.AccountTypeUser {
		return common.ErrUnsupportedAccountType
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "reset requested for unknown email")
			return nil
		}
		s.logger.Error(ctx, "reset request: user lookup failed", "error", err)
		return common.ErrResetRequestFailed
	}

	tokenStr, err := common.MakeRandHexString(32)
	if err != nil {
		s.logger.Error(ctx, "reset request: token generation failed", "error", err)
		return common.ErrResetRequestFailed
	}

	token := &models.ResetToken{
		ID:        ids.New(),
		Token:     tokenStr,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: s.now().Add(resetTokenValidity),
	}
	if _, err := s.repomanager.ResetTokens(s.db).Create(ctx, token); err != nil {
		s.logger.Error(ctx, "reset request: token persistence failed", "error", err)
		return common.ErrResetRequestFailed
	}

	msg, err := mail.ResetMessage(user.Email, user.Name, s.resetLink(tokenStr))
	if err != nil {
		s.logger.Error(ctx, "reset request: email rendering failed", "error", err)
		return common.ErrResetRequestFailed
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "reset request: email dispatch failed", "error", err)
		return common.ErrResetRequestFailed
	}

	s.logger.Info(ctx, "reset email dispatched", "user_id", user.ID)
	return nil
}

// RedeemReset exchanges a reset token for a new password. The password is
// updated first; only then is the token claimed, so a failed update
// leaves the token redeemable for a retry.
func (s *ResetService) RedeemReset(ctx context.Context, token, newPassword, accountType string) error {
	if accountType != common.AccountTypeUser {
		return common.ErrUnsupportedAccountType
	}

	repo := s.repomanager.ResetTokens(s.db)

	rec, err := repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return fmt.Errorf("error searching reset token: %w", err)
	}
	if rec.UsedAt != nil {
		return common.ErrTokenUsed
	}
	if rec.ExpiresAt.Before(s.now()) {
		return common.ErrTokenExpired
	}

	if err := s.identity.UpdatePassword(ctx, rec.UserID, newPassword); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	// The guarded claim decides races: if another redemption won between
	// our read and here, surface it as a used token.
	if err := repo.MarkUsed(ctx, token, s.now()); err != nil {
		return err
	}
	return nil
}

// PurgeTokens deletes redeemed tokens and tokens that expired before
// olderThan, returning the number of rows removed. It is operator-invoked
// maintenance; redemption never deletes rows.
func (s *ResetService) PurgeTokens(ctx context.Context, olderThan time.Time) (int64, error) {
	purged, err := s.repomanager.ResetTokens(s.db).Purge(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("error purging reset tokens: %w", err)
	}
	s.logger.Info(ctx, "reset tokens purged", "count", purged, "older_than", olderThan)
	return purged, nil
}

func (s *ResetService) resetLink(token string) string {
	base := strings.TrimSuffix(s.baseURL, "/")
	if base == "" {
		base = "http://localhost:3000"
	}
	return fmt.Sprintf("%s/auth/reset-password?token=%s", base, url.QueryEscape(token))
}
