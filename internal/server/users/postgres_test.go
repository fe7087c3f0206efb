package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/llave/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash,\s*two_factor_secret,\s*two_factor_enabled\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at,\s*updated_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now)
	mock.ExpectQuery(insertQ).
		WithArgs("u-1", "alice@example.com", "hash", sql.NullString{}, false).
		WillReturnRows(rows)

	u := &User{ID: "u-1", Email: "alice@example.com", PasswordHash: "hash"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("u-1", "alice@example.com", "hash", sql.NullString{}, false).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &User{ID: "u-1", Email: "alice@example.com", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("u-1", "alice@example.com", "hash", sql.NullString{}, false).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &User{ID: "u-1", Email: "alice@example.com", PasswordHash: "hash"})
	if err == nil || errors.Is(err, common.ErrDuplicateUser) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const selectByEmailQ = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*two_factor_secret,\s*two_factor_enabled,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "two_factor_secret", "two_factor_enabled", "created_at", "updated_at"}).
		AddRow("u-1", "alice@example.com", "hash", "SECRET", true, now, now)
	mock.ExpectQuery(selectByEmailQ).WithArgs("alice@example.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.TwoFactorSecret != "SECRET" || !got.TwoFactorEnabled {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NullSecret(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "two_factor_secret", "two_factor_enabled", "created_at", "updated_at"}).
		AddRow("u-1", "alice@example.com", "hash", nil, false, now, now)
	mock.ExpectQuery(selectByEmailQ).WithArgs("alice@example.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.TwoFactorSecret != "" || got.TwoFactorEnabled {
		t.Fatalf("expected empty secret and disabled 2FA: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmailQ).WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

const selectByIDQ = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*two_factor_secret,\s*two_factor_enabled,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "two_factor_secret", "two_factor_enabled", "created_at", "updated_at"}).
		AddRow("u-1", "alice@example.com", "hash", nil, false, now, now)
	mock.ExpectQuery(selectByIDQ).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

const updateQ = `(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$1,\s*password_hash\s*=\s*\$2,\s*two_factor_secret\s*=\s*\$3,\s*two_factor_enabled\s*=\s*\$4,\s*updated_at\s*=\s*CURRENT_TIMESTAMP\s+WHERE\s+id\s*=\s*\$5\s*$`

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).
		WithArgs("alice@example.com", "hash", sql.NullString{String: "SECRET", Valid: true}, true, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &User{ID: "u-1", Email: "alice@example.com", PasswordHash: "hash", TwoFactorSecret: "SECRET", TwoFactorEnabled: true}
	if err := repo.Update(context.Background(), u); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_MissingRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).
		WithArgs("alice@example.com", "hash", sql.NullString{}, false, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	u := &User{ID: "ghost", Email: "alice@example.com", PasswordHash: "hash"}
	if err := repo.Update(context.Background(), u); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
