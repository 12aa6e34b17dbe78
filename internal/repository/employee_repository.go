package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// EmployeeRepo encapsulates all database queries related to employees.
type EmployeeRepo struct {
	db *sql.DB
}

// NewEmployeeRepo constructs an EmployeeRepo with the provided DB handle.
func NewEmployeeRepo(db *sql.DB) *EmployeeRepo {
	return &EmployeeRepo{db: db}
}

const employeeColumns = "id, name, number, hire_date"

// Create inserts a new employee and populates its ID.  A duplicate number
// yields ErrEmployeeNumberExists.
func (r *EmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	const q = "INSERT INTO employees (name, number, hire_date) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Number, e.HireDate)
	if err != nil {
		return employeeWriteErr("create employee", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("create employee", err)
	}
	e.ID = id
	return nil
}

// GetByID fetches an employee or returns ErrEmployeeNotFound.
func (r *EmployeeRepo) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	const q = "SELECT " + employeeColumns + " FROM employees WHERE id = ?"
	var e model.Employee
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Name, &e.Number, &e.HireDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, classify("get employee", err)
	}
	return &e, nil
}

// Exists reports whether an employee with the given id exists.
func (r *EmployeeRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM employees WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("check employee", err)
	}
	return true, nil
}

// List returns all employees ordered by id.
func (r *EmployeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	const q = "SELECT " + employeeColumns + " FROM employees ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify("list employees", err)
	}
	defer rows.Close()

	out := []model.Employee{}
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Number, &e.HireDate); err != nil {
			return nil, classify("list employees", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list employees", err)
	}
	return out, nil
}

// Update overwrites every field of the employee.
func (r *EmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	const q = "UPDATE employees SET name = ?, number = ?, hire_date = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Number, e.HireDate, e.ID)
	if err != nil {
		return employeeWriteErr("update employee", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// Delete removes an employee.  The foreign key from reports rejects the
// delete while any report references the employee; nothing is removed in
// that case and ErrEmployeeHasReports is returned.
func (r *EmployeeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		err = classify("delete employee", err)
		if errors.Is(err, ErrConflict) {
			return ErrEmployeeHasReports
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func employeeWriteErr(op string, err error) error {
	err = classify(op, err)
	if errors.Is(err, ErrConflict) {
		return ErrEmployeeNumberExists
	}
	return err
}
