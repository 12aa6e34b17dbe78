package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

func TestUserCreateNormalizesEmailAndHashes(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ana", "ana@example.com", sqlmock.AnyArg(), model.RoleUser, nil).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	repo := NewUserRepo(db)
	u := &model.User{Name: "Ana", Email: "  Ana@Example.COM ", Role: model.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u, "s3cret", bcrypt.MinCost))
	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))

	err := repo.Create(context.Background(), &model.User{Name: "Ana", Email: "ana@example.com", Role: model.RoleUser}, "x", bcrypt.MinCost)
	assert.Equal(t, ErrEmailExists, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAdminsWithPushToken(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "name", "email", "password_hash", "role", "push_token", "created_at"}

	mock.ExpectQuery("FROM users WHERE role").
		WithArgs(model.RoleAdmin).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "Root", "root@example.com", "hash", model.RoleAdmin, "ExponentPushToken[a]", time.Now()))

	got, err := NewUserRepo(db).ListAdminsWithPushToken(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].PushToken)
	assert.Equal(t, "ExponentPushToken[a]", *got[0].PushToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewUserRepo(db).GetByEmail(context.Background(), "Ghost@example.com")
	assert.Equal(t, ErrUserNotFound, err)
}
