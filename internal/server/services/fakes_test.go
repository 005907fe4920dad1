package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/basekit-io/basekit/internal/dbx"
	"github.com/basekit-io/basekit/internal/server/config"
	"github.com/basekit-io/basekit/internal/server/models"
	refreshtokensrepo "github.com/basekit-io/basekit/internal/server/repositories/refreshtokens"
	"github.com/basekit-io/basekit/internal/server/repositories/repomanager"
	resettokensrepo "github.com/basekit-io/basekit/internal/server/repositories/resettokens"
	rolesrepo "github.com/basekit-io/basekit/internal/server/repositories/roles"
	settingsrepo "github.com/basekit-io/basekit/internal/server/repositories/settings"
	usersrepo "github.com/basekit-io/basekit/internal/server/repositories/users"
	"github.com/basekit-io/basekit/internal/server/stream"
)

// -------- shared test fakes --------
//
// Fakes embed the repository interface, so methods a test does not
// configure panic loudly when called unexpectedly.

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	usersrepo.Repository

	getByEmailOut *models.User
	getByEmailErr error

	getByIDOut *models.User
	getByIDErr error

	createOut *models.User
	createErr error
	created   *models.User

	listOut []*models.User
	listErr error
	listF   usersrepo.ListFilter

	countOut int64
	countErr error

	updateErr error
	updated   *models.User

	updatePasswordErr  error
	updatePasswordID   string
	updatePasswordHash string

	setAvatarErr error
	avatarKeySet string

	deleteErr error
	deletedID string
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	return f.getByEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDOut, nil
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) List(ctx context.Context, filter usersrepo.ListFilter) ([]*models.User, error) {
	f.listF = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeUsersRepo) Count(ctx context.Context, filter usersrepo.ListFilter) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.countOut, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = u
	return nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, hash string) error {
	if f.updatePasswordErr != nil {
		return f.updatePasswordErr
	}
	f.updatePasswordID = id
	f.updatePasswordHash = hash
	return nil
}

func (f *fakeUsersRepo) SetAvatarKey(ctx context.Context, id string, key string) error {
	if f.setAvatarErr != nil {
		return f.setAvatarErr
	}
	f.avatarKeySet = key
	return nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

type fakeRolesRepo struct {
	rolesrepo.Repository

	listOut []*models.Role
	listErr error

	getByNameOut *models.Role
	getByNameErr error
}

func (f *fakeRolesRepo) List(ctx context.Context) ([]*models.Role, error) {
	return f.listOut, f.listErr
}

func (f *fakeRolesRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	if f.getByNameErr != nil {
		return nil, f.getByNameErr
	}
	return f.getByNameOut, nil
}

type fakeSettingsRepo struct {
	settingsrepo.Repository

	listOut []*models.Setting
	listErr error

	getOut *models.Setting
	getErr error

	setOut *models.Setting
	setErr error
	set    *models.Setting
}

func (f *fakeSettingsRepo) List(ctx context.Context) ([]*models.Setting, error) {
	return f.listOut, f.listErr
}

func (f *fakeSettingsRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeSettingsRepo) Set(ctx context.Context, s *models.Setting) (*models.Setting, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	f.set = s
	if f.setOut != nil {
		return f.setOut, nil
	}
	return s, nil
}

type fakeRefreshRepo struct {
	refreshtokensrepo.Repository

	findOut *models.RefreshToken
	findErr error

	createErr error
	created   *models.RefreshToken

	delErr       error
	deletedToken string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = token
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deletedToken = token
	return nil
}

type fakeResetRepo struct {
	resettokensrepo.Repository

	createErr error
	created   *models.ResetToken

	getOut *models.ResetToken
	getErr error

	markErr     error
	markedToken string
	markedAt    time.Time

	purgeOut int64
	purgeErr error
	purgeArg time.Time
}

func (f *fakeResetRepo) Create(ctx context.Context, token *models.ResetToken) (*models.ResetToken, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = token
	return token, nil
}

func (f *fakeResetRepo) GetByToken(ctx context.Context, token string) (*models.ResetToken, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeResetRepo) MarkUsed(ctx context.Context, token string, usedAt time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedToken = token
	f.markedAt = usedAt
	return nil
}

func (f *fakeResetRepo) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	f.purgeArg = olderThan
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	return f.purgeOut, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager

	u  *fakeUsersRepo
	ro *fakeRolesRepo
	se *fakeSettingsRepo
	rt *fakeRefreshRepo
	pt *fakeResetRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) Roles(db dbx.DBTX) rolesrepo.Repository                 { return m.ro }
func (m *fakeRepoManager) Settings(db dbx.DBTX) settingsrepo.Repository           { return m.se }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.rt }
func (m *fakeRepoManager) ResetTokens(db dbx.DBTX) resettokensrepo.Repository     { return m.pt }

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newIdentityService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager, hub *stream.Hub) *IdentityService {
	t.Helper()
	if hub == nil {
		hub = stream.NewHub()
	}
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewIdentityService(db, rm, hub, cfg)
}
