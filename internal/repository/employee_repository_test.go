package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

func TestEmployeeCreate(t *testing.T) {
	db, mock := newMock(t)
	hired, err := model.ParseDate("2024-01-01")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO employees").
		WithArgs("Ana", int64(7), "2024-01-01").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO employees").
		WithArgs("Luis", int64(7), "2024-01-01").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7'"})

	repo := NewEmployeeRepo(db)
	e := &model.Employee{Name: "Ana", Number: 7, HireDate: hired}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, int64(1), e.ID)

	err = repo.Create(context.Background(), &model.Employee{Name: "Luis", Number: 7, HireDate: hired})
	assert.Equal(t, ErrEmployeeNumberExists, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeDeleteWithReportsIsConflict(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("DELETE FROM employees").
		WithArgs(int64(1)).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})
	mock.ExpectExec("DELETE FROM employees").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewEmployeeRepo(db)
	err := repo.Delete(context.Background(), 1)
	assert.Equal(t, ErrEmployeeHasReports, err)
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, ErrEmployeeNotFound, repo.Delete(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeGetAndExists(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "name", "number", "hire_date"}

	mock.ExpectQuery("FROM employees WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Ana", 7, "2024-01-01"))
	mock.ExpectQuery("SELECT 1 FROM employees").
		WithArgs(int64(9999)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewEmployeeRepo(db)
	e, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", e.Name)
	assert.Equal(t, "2024-01-01", e.HireDate.String())

	ok, err := repo.Exists(context.Background(), 9999)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
