package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobile-auth/internal/domain"
	"mobile-auth/internal/repository"
)

const (
	insertQuery   = `(?s)^\s*INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash,\s*full_name,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`
	selectByID    = `(?s)^\s*SELECT\s+id,\s*email,\s*password_hash,\s*full_name,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	selectByEmail = `(?s)^\s*SELECT\s+id,\s*email,\s*password_hash,\s*full_name,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	existsQuery   = `(?s)^\s*SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s+AND\s+id\s*<>\s*\$2\)\s*$`
	updateProfile = `(?s)^\s*UPDATE\s+users\s+SET\s+email\s*=\s*\$1,\s*full_name\s*=\s*\$2,\s*updated_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$4\s*$`
	updatePass    = `(?s)^\s*UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$1,\s*updated_at\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s*$`
)

var userColumns = []string{"id", "email", "password_hash", "full_name", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewUserRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertQuery).
		WithArgs("u-1", "ann@example.com", "hash", "Ann", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &domain.User{ID: "u-1", Email: "ann@example.com", PasswordHash: "hash", FullName: "Ann"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), &domain.User{ID: "u-1", Email: "ann@example.com"})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertQuery).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.User{ID: "u-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert user: db down")
	assert.NotErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestGetByID_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(selectByID).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "ann@example.com", "hash", "Ann", created, created))

	got, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, created, got.CreatedAt)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByEmail).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEmailTaken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(existsQuery).
		WithArgs("ann@example.com", "u-2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.EmailTaken(context.Background(), "ann@example.com", "u-2")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUpdateProfile_NoRows(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(updateProfile).
		WithArgs("ann@example.com", "Ann", sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfile(context.Background(), &domain.User{ID: "ghost", Email: "ann@example.com", FullName: "Ann"})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateProfile_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(updateProfile).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.UpdateProfile(context.Background(), &domain.User{ID: "u-1", Email: "taken@example.com"})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUpdatePassword_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(updatePass).
		WithArgs("new-hash", sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), "u-1", "new-hash"))
}
