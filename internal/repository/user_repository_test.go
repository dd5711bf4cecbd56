package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nrb-complaints-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role"}).
		AddRow(int64(1), "admin@nrb.gov", "hash", string(models.RoleAdmin))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, role FROM users WHERE email = ? LIMIT 1")).
		WithArgs("admin@nrb.gov").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "admin@nrb.gov")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT id, email, password_hash, role FROM users").
		WithArgs("nobody@nrb.gov").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@nrb.gov")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?) RETURNING id")).
		WithArgs("citizen@example.com", "hash", models.RoleCitizen).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	user := &models.User{Email: "citizen@example.com", PasswordHash: "hash", Role: models.RoleCitizen}
	id, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int64(42), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	cases := map[string]error{
		"postgres": &pq.Error{Code: "23505"},
		"sqlite":   sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
	}
	for name, driverErr := range cases {
		t.Run(name, func(t *testing.T) {
			db, mock, cleanup := newMock(t)
			defer cleanup()
			repo := NewUserRepository(db)

			mock.ExpectQuery("INSERT INTO users").WillReturnError(driverErr)

			_, err := repo.Create(context.Background(), &models.User{Email: "dup@example.com", PasswordHash: "h", Role: models.RoleCitizen})
			assert.ErrorIs(t, err, ErrDuplicateEmail)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateUserOtherFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("disk I/O error"))

	_, err := repo.Create(context.Background(), &models.User{Email: "a@example.com", PasswordHash: "h", Role: models.RoleCitizen})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	_, err := repo.Create(context.Background(), &models.User{Email: "x@nrb.gov", PasswordHash: "hash", Role: "superuser"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "superuser")
	assert.NoError(t, mock.ExpectationsWereMet())
}
