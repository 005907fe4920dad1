package resettokens

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

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+password_reset_tokens\s*\(id,\s*token,\s*user_id,\s*email,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at\s*$`

	now := time.Now()
	expires := now.Add(time.Hour)
	mock.ExpectQuery(q).
		WithArgs("tok-id", "aabbcc", "u-1", "alice@example.com", expires).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	token := &models.ResetToken{ID: "tok-id", Token: "aabbcc", UserID: "u-1",
		Email: "alice@example.com", ExpiresAt: expires}
	got, err := repo.Create(context.Background(), token)
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

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+password_reset_tokens`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.ResetToken{ID: "x", Token: "y"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByToken_Found_Unused(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*token,\s*user_id,\s*email,\s*expires_at,\s*used_at,\s*created_at\s+FROM\s+password_reset_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "token", "user_id", "email", "expires_at", "used_at", "created_at"}).
		AddRow("tok-id", "aabbcc", "u-1", "alice@example.com", now.Add(time.Hour), nil, now)
	mock.ExpectQuery(q).
		WithArgs("aabbcc").
		WillReturnRows(rows)

	got, err := repo.GetByToken(context.Background(), "aabbcc")
	if err != nil {
		t.Fatalf("GetByToken error: %v", err)
	}
	if got.UsedAt != nil {
		t.Fatalf("expected nil UsedAt, got %v", got.UsedAt)
	}
	if got.UserID != "u-1" || got.Email != "alice@example.com" {
		t.Fatalf("unexpected token: %+v", got)
	}
}

func TestGetByToken_Found_Used(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	used := now.Add(-time.Minute)
	rows := sqlmock.NewRows([]string{"id", "token", "user_id", "email", "expires_at", "used_at", "created_at"}).
		AddRow("tok-id", "aabbcc", "u-1", "alice@example.com", now.Add(time.Hour), used, now)
	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+password_reset_tokens`).
		WithArgs("aabbcc").
		WillReturnRows(rows)

	got, err := repo.GetByToken(context.Background(), "aabbcc")
	if err != nil {
		t.Fatalf("GetByToken error: %v", err)
	}
	if got.UsedAt == nil || !got.UsedAt.Equal(used) {
		t.Fatalf("expected UsedAt=%v, got %v", used, got.UsedAt)
	}
}

func TestGetByToken_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+password_reset_tokens`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByToken(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestMarkUsed_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+password_reset_tokens\s+SET\s+used_at\s*=\s*\$2\s+WHERE\s+token\s*=\s*\$1\s+AND\s+used_at\s+IS\s+NULL\s*$`

	usedAt := time.Now()
	mock.ExpectExec(q).
		WithArgs("aabbcc", usedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkUsed(context.Background(), "aabbcc", usedAt); err != nil {
		t.Fatalf("MarkUsed error: %v", err)
	}
}

func TestMarkUsed_AlreadyClaimed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// 0 affected rows means another redemption already set used_at.
	mock.ExpectExec(`(?s)^UPDATE\s+password_reset_tokens\s+SET\s+used_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkUsed(context.Background(), "aabbcc", time.Now())
	if !errors.Is(err, common.ErrTokenUsed) {
		t.Fatalf("want common.ErrTokenUsed, got %v", err)
	}
}

func TestPurge_ReturnsAffected(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+password_reset_tokens\s+WHERE\s+used_at\s+IS\s+NOT\s+NULL\s+OR\s+expires_at\s*<\s*\$1\s*$`

	cutoff := time.Now().Add(-24 * time.Hour)
	mock.ExpectExec(q).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	got, err := repo.Purge(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("Purge error: %v", err)
	}
	if got != 12 {
		t.Fatalf("expected 12 rows purged, got %d", got)
	}
}

func TestPurge_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+password_reset_tokens`).
		WillReturnError(errors.New("db err"))

	_, err := repo.Purge(context.Background(), time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
