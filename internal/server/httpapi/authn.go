package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/basekit-io/basekit/internal/common"
	"github.com/basekit-io/basekit/internal/server/auth"
	"github.com/basekit-io/basekit/internal/server/models"
)

const (
	authHeader   = "Authorization"
	bearerScheme = "Bearer "
)

var publicPaths = []string{
	"/api/auth/signup",
	"/api/auth/login",
	"/api/auth/refresh",
	"/api/auth/password-reset/request",
	"/api/auth/password-reset/confirm",
	"/healthz",
	"/metrics",
}

type ctxKey int

const userIDKey ctxKey = iota

// UserIDFromContext returns the authenticated user id placed by the
// auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// withAuth verifies the bearer token on every non-public route and
// stores the token's user id in the request context. It checks the
// token only; whether the account still exists is the handlers'
// concern, so self-reads can report deletion and deactivation
// distinctly.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
			return
		}

		userID, err := auth.GetUserIDFromToken(token, a.secretKey)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, codeTokenExpired, "access token expired")
			default:
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin loads the caller's record and checks for an active admin
// role. A caller whose account vanished is unauthorized, not forbidden.
func (a *API) requireAdmin(ctx context.Context) (*models.User, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	user, err := a.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if !user.IsActive || user.RoleName != common.RoleAdmin {
		return nil, common.ErrorForbidden
	}
	return user, nil
}

// requireSelfOrAdmin authorizes access to targetID's resources for the
// user themselves or any active admin.
func (a *API) requireSelfOrAdmin(ctx context.Context, targetID string) error {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return common.ErrorUnauthorized
	}
	if userID == targetID {
		return nil
	}
	_, err := a.requireAdmin(ctx)
	return err
}

// requireSelf authorizes only the user themselves.
func requireSelf(ctx context.Context, targetID string) error {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return common.ErrorUnauthorized
	}
	if userID != targetID {
		return common.ErrorForbidden
	}
	return nil
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerScheme)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearerScheme):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
