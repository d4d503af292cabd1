package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condo-care/backend/internal/domain"
)

func newUserRepo(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresUserRepository(db, nil), mock
}

func TestUserCreateFillsGeneratedFields(t *testing.T) {
	repo, mock := newUserRepo(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "alice@example.com", "hash", "Alice", "Smith", domain.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	user := &domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		FirstName:    "Alice",
		LastName:     "Smith",
		Role:         domain.RoleUser,
	}
	require.NoError(t, repo.Create(user))
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateMapsUniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"duplicate username", "users_username_key", domain.ErrDuplicateUsername},
		{"duplicate email", "users_email_key", domain.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newUserRepo(t)

			mock.ExpectQuery("INSERT INTO users").
				WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: tt.constraint})

			err := repo.Create(&domain.User{Username: "alice", Email: "a@b.c", Role: domain.RoleUser})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestUserGetByUsernameNotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT .* FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByUsername("ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserDeleteNotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("DELETE FROM users").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(99), domain.ErrNotFound)
}

func TestUserListExcludesPasswordHash(t *testing.T) {
	repo, mock := newUserRepo(t)

	now := time.Now()
	mock.ExpectQuery("SELECT id, username, email, first_name").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "first_name", "last_name", "role", "created_at", "updated_at",
		}).
			AddRow(1, "admin", "admin@condocare.local", "", "", domain.RoleAdmin, now, now).
			AddRow(2, "resident", "resident@condocare.local", "", "", domain.RoleUser, now, now))

	users, err := repo.List()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Empty(t, users[0].PasswordHash)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
}
