package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/basekit-io/basekit/internal/common"
	"github.com/basekit-io/basekit/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userColumns() []string {
	return []string{"id", "email", "name", "password_hash", "is_active", "verified",
		"role_id", "role_name", "avatar_key", "created_at", "updated_at"}
}

func addUserRow(rows *sqlmock.Rows, u *models.User) *sqlmock.Rows {
	return rows.AddRow(u.ID, u.Email, u.Name, u.PasswordHash, u.IsActive, u.Verified,
		u.RoleID, u.RoleName, u.AvatarKey, u.CreatedAt, u.UpdatedAt)
}

func sampleUser() *models.User {
	return &models.User{
		ID:           "u-1",
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
		Verified:     true,
		RoleID:       "r-user",
		RoleName:     "user",
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*name,\s*password_hash,\s*is_active,\s*verified,\s*role_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+created_at,\s*updated_at\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now)
	mock.ExpectQuery(q).
		WithArgs("u-1", "alice@example.com", "Alice", "$2a$10$hash", true, false, "r-user").
		WillReturnRows(rows)

	u := &models.User{ID: "u-1", Email: "alice@example.com", Name: "Alice",
		PasswordHash: "$2a$10$hash", IsActive: true, Verified: false, RoleID: "r-user"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), sampleUser())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+users\s+u\s+JOIN\s+roles\s+r\s+ON\s+r\.id\s*=\s*u\.role_id\s+WHERE\s+u\.id\s*=\s*\$1\s*$`

	u := sampleUser()
	mock.ExpectQuery(q).
		WithArgs("u-1").
		WillReturnRows(addUserRow(sqlmock.NewRows(userColumns()), u))

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "alice@example.com" || got.RoleName != "user" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*WHERE\s+u\.id\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+users\s+u\s+JOIN\s+roles\s+r\s+ON\s+r\.id\s*=\s*u\.role_id\s+WHERE\s+u\.email\s*=\s*\$1\s*$`

	u := sampleUser()
	mock.ExpectQuery(q).
		WithArgs("alice@example.com").
		WillReturnRows(addUserRow(sqlmock.NewRows(userColumns()), u))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*WHERE\s+u\.email\s*=\s*\$1`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList_AppliesFilterAndPaging(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+users\s+u\s+JOIN\s+roles.*ILIKE.*ORDER\s+BY\s+u\.created_at\s+DESC\s+LIMIT\s+\$2\s+OFFSET\s+\$3\s*$`

	rows := sqlmock.NewRows(userColumns())
	addUserRow(rows, sampleUser())
	second := sampleUser()
	second.ID = "u-2"
	second.Email = "bob@example.com"
	addUserRow(rows, second)

	mock.ExpectQuery(q).
		WithArgs("ali", 20, 40).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), ListFilter{Query: "ali", Limit: 20, Offset: 40})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "u-1" || got[1].ID != "u-2" {
		t.Fatalf("unexpected users: %+v", got)
	}
}

func TestCount_WithQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+users\s+u\s+WHERE\s+\(\$1\s*=\s*''.*ILIKE.*\)\s*$`

	mock.ExpectQuery(q).
		WithArgs("ali").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	got, err := repo.Count(context.Background(), ListFilter{Query: "ali"})
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if got != 7 {
		t.Fatalf("unexpected count: %d", got)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+name\s*=\s*\$2,\s*is_active\s*=\s*\$3,\s*verified\s*=\s*\$4,\s*role_id\s*=\s*\$5,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("u-1", "Alice", false, true, "r-user").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := sampleUser()
	u.IsActive = false
	if err := repo.Update(context.Background(), u); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+name`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), sampleUser())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdatePassword_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("u-1", "$2a$10$newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), "u-1", "$2a$10$newhash"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
}

func TestUpdatePassword_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+password_hash`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "ghost", "hash")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSetAvatarKey_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+avatar_key\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("u-1", "avatars/u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetAvatarKey(context.Background(), "u-1", "avatars/u-1"); err != nil {
		t.Fatalf("SetAvatarKey error: %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+users`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
