// Package httpapi is the HTTP layer of the BaseKit server: JSON routes
// for identity, user administration, settings, avatars and the SSE
// change feed, plus health and Prometheus endpoints.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/basekit-io/basekit/internal/logging"
	"github.com/basekit-io/basekit/internal/server/config"
	"github.com/basekit-io/basekit/internal/server/models"
	"github.com/basekit-io/basekit/internal/server/obs"
	"github.com/basekit-io/basekit/internal/server/services"
	"github.com/basekit-io/basekit/internal/server/stream"
)

// Identity is the slice of the identity service the HTTP layer consumes.
type Identity interface {
	CreateAccount(ctx context.Context, email, password, name string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	Session(ctx context.Context, userID string) (*models.User, error)
}

// Users covers user administration.
type Users interface {
	List(ctx context.Context, page, perPage int, q string) ([]*models.User, int64, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, params services.UpdateUserParams) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// Roles lists the role catalogue.
type Roles interface {
	List(ctx context.Context) ([]*models.Role, error)
}

// Settings reads and writes application settings.
type Settings interface {
	List(ctx context.Context) ([]*models.Setting, error)
	Set(ctx context.Context, key, value string) (*models.Setting, error)
}

// Avatars hands out presigned avatar URLs.
type Avatars interface {
	UploadURL(ctx context.Context, userID string) (string, error)
	DownloadURL(ctx context.Context, userID string) (string, error)
}

// Reset is the password-reset workflow.
type Reset interface {
	RequestReset(ctx context.Context, email, accountType string) error
	RedeemReset(ctx context.Context, token, newPassword, accountType string) error
	PurgeTokens(ctx context.Context, olderThan time.Time) (int64, error)
}

// Feed delivers per-user change events for the watch endpoint.
type Feed interface {
	Subscribe(ctx context.Context, userID string) <-chan stream.Event
}

// Deps bundles the services the API serves.
type Deps struct {
	Identity Identity
	Users    Users
	Roles    Roles
	Settings Settings
	Avatars  Avatars
	Reset    Reset
	Feed     Feed
}

// API is the HTTP layer.
type API struct {
	mux     *http.ServeMux
	logger  logging.Logger
	version string

	identity Identity
	users    Users
	roles    Roles
	settings Settings
	avatars  Avatars
	reset    Reset
	feed     Feed

	secretKey     []byte
	allowedOrigin string
	ratePerSecond int
	rateBurst     int
}

// New builds the API and registers all routes.
func New(cfg *config.Config, logger logging.Logger, version string, deps Deps) *API {
	a := &API{
		mux:           http.NewServeMux(),
		logger:        logger,
		version:       version,
		identity:      deps.Identity,
		users:         deps.Users,
		roles:         deps.Roles,
		settings:      deps.Settings,
		avatars:       deps.Avatars,
		reset:         deps.Reset,
		feed:          deps.Feed,
		secretKey:     []byte(cfg.SecretKey),
		allowedOrigin: cfg.AppBaseURL,
		ratePerSecond: cfg.RateLimitPerSecond,
		rateBurst:     cfg.RateLimitBurst,
	}

	a.mux.HandleFunc("POST /api/auth/signup", a.handleSignup)
	a.mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	a.mux.HandleFunc("POST /api/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("POST /api/auth/logout", a.handleLogout)
	a.mux.HandleFunc("GET /api/auth/session", a.handleSession)
	a.mux.HandleFunc("POST /api/auth/password-reset/request", a.handleResetRequest)
	a.mux.HandleFunc("POST /api/auth/password-reset/confirm", a.handleResetConfirm)

	a.mux.HandleFunc("GET /api/users", a.handleListUsers)
	a.mux.HandleFunc("GET /api/users/{id}", a.handleGetUser)
	a.mux.HandleFunc("PATCH /api/users/{id}", a.handleUpdateUser)
	a.mux.HandleFunc("DELETE /api/users/{id}", a.handleDeleteUser)
	a.mux.HandleFunc("GET /api/users/{id}/avatar-upload", a.handleAvatarUpload)
	a.mux.HandleFunc("GET /api/users/{id}/avatar", a.handleAvatarDownload)

	a.mux.HandleFunc("GET /api/roles", a.handleListRoles)
	a.mux.HandleFunc("GET /api/settings", a.handleListSettings)
	a.mux.HandleFunc("PUT /api/settings/{key}", a.handlePutSetting)

	a.mux.HandleFunc("GET /api/watch/users/{id}", a.handleWatchUser)
	a.mux.HandleFunc("DELETE /api/admin/reset-tokens", a.handlePurgeTokens)

	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.Handle("GET /metrics", obs.Handler())

	return a
}

// Handler wraps the mux in the middleware chain. Tracing sits outermost
// so every inner layer runs inside the request span.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = SecurityHeaders(h)
	h = CORS(h, a.allowedOrigin)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSecond)
	h = Logging(h, a.logger)
	h = obs.Instrument(h)
	return otelhttp.NewHandler(h, "basekit.http")
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "basekit-api",
		"version": a.version,
	})
}
