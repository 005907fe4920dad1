// Package services contains server-side business logic. This file implements
// IdentityService, which owns account lifecycle and credentials: sign-up,
// sign-in, issuing/refreshing JWTs plus server-stored refresh tokens, and
// password updates.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/basekit-io/basekit/internal/common"
	"github.com/basekit-io/basekit/internal/dbx"
	"github.com/basekit-io/basekit/internal/ids"
	"github.com/basekit-io/basekit/internal/server/auth"
	"github.com/basekit-io/basekit/internal/server/config"
	"github.com/basekit-io/basekit/internal/server/models"
	"github.com/basekit-io/basekit/internal/server/repositories/repomanager"
	"github.com/basekit-io/basekit/internal/server/stream"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// Session is the payload returned on sign-in and refresh: the token pair
// plus the user record it belongs to.
type Session struct {
	User *models.User
	TokenPair
}

// IdentityService provides account and credential operations:
// - CreateAccount: register users
// - SignIn / SignOut: verify credentials, mint and revoke tokens
// - Refresh: rotate refresh tokens and mint new access tokens
// - UpdatePassword / DeleteAccount: credential and lifecycle changes
type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	hub                          *stream.Hub
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewIdentityService constructs an IdentityService using repositories,
// the change-feed hub, and server config.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, hub *stream.Hub, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		hub:                          hub,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// CreateAccount registers a new user with the regular role, active and
// unverified. A taken email yields ErrorAlreadyExists.
func (s *IdentityService) CreateAccount(ctx context.Context, email, password, name string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := s.repomanager.Users(tx)

		_, err := usersRepo.GetByEmail(ctx, email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error checking email: %w", err)
		}

		role, err := s.repomanager.Roles(tx).GetByName(ctx, common.RoleUser)
		if err != nil {
			return fmt.Errorf("error resolving role: %w", err)
		}

		user := &models.User{
			ID:           ids.New(),
			Email:        email,
			Name:         name,
			PasswordHash: hash,
			IsActive:     true,
			Verified:     false,
			RoleID:       role.ID,
			RoleName:     role.Name,
		}
		created, err = usersRepo.Create(ctx, user)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SignIn verifies the credentials and, on success, returns a new Session.
// Unknown emails, wrong passwords, and deactivated accounts all yield
// ErrorUnauthorized.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, common.ErrorUnauthorized
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, TokenPair: *pair}, nil
}

// SignOut revokes the given refresh token. Revoking an unknown token is
// not an error.
func (s *IdentityService) SignOut(ctx context.Context, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// Refresh validates a refresh token, rotates it transactionally, and
// returns a fresh Session. Unknown tokens yield ErrorUnauthorized and
// expired tokens ErrRefreshTokenExpired.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expired(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return &Session{User: user, TokenPair: *pair}, nil
}

// Session returns the current user record for an authenticated user id.
func (s *IdentityService) Session(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.GetByID(ctx, userID)
}

// UpdatePassword hashes and stores a new password for the user.
func (s *IdentityService) UpdatePassword(ctx context.Context, id string, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}
	repo := s.repomanager.Users(s.db)
	if err := repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// DeleteAccount removes the user row (refresh and reset tokens cascade)
// and publishes the delete event live watchers react to.
func (s *IdentityService) DeleteAccount(ctx context.Context, id string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(stream.Deleted(id))
	return nil
}

// --- helpers below ---

func (s *IdentityService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *IdentityService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *IdentityService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	expiresAt := time.Now().Add(s.accessTokenValidityDuration)
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	err = refreshRepo.Create(ctx, &models.RefreshToken{
		ID:      ids.New(),
		UserID:  userID,
		Token:   refresh,
		Expires: time.Now().Add(s.refreshTokenValidityDuration),
	})
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, AccessExpiresAt: expiresAt}, nil
}
