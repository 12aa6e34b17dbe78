package service

import (
	"context"
	"strings"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// EmployeeStore is the storage behind employee management.
type EmployeeStore interface {
	EmployeeChecker
	Create(ctx context.Context, e *model.Employee) error
	GetByID(ctx context.Context, id int64) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	Update(ctx context.Context, e *model.Employee) error
	Delete(ctx context.Context, id int64) error
}

// EmployeeInput carries the writable employee fields.  HireDate is
// "YYYY-MM-DD".
type EmployeeInput struct {
	Name     string
	Number   int64
	HireDate string
}

type EmployeeService struct {
	employees EmployeeStore
}

func NewEmployeeService(employees EmployeeStore) *EmployeeService {
	return &EmployeeService{employees: employees}
}

// Create stores a new employee.  A duplicate number is a Conflict.
func (s *EmployeeService) Create(ctx context.Context, in EmployeeInput) (*model.Employee, error) {
	e, err := employeeFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.employees.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (*model.Employee, error) {
	if id <= 0 {
		return nil, invalid("id", "must be a positive integer")
	}
	return s.employees.GetByID(ctx, id)
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	return s.employees.List(ctx)
}

// Update overwrites every field of an existing employee.
func (s *EmployeeService) Update(ctx context.Context, id int64, in EmployeeInput) (*model.Employee, error) {
	if id <= 0 {
		return nil, invalid("id", "must be a positive integer")
	}
	e, err := employeeFromInput(in)
	if err != nil {
		return nil, err
	}
	e.ID = id
	if err := s.employees.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an employee that no report references; otherwise it
// fails with Conflict and nothing is removed.
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("id", "must be a positive integer")
	}
	return s.employees.Delete(ctx, id)
}

func employeeFromInput(in EmployeeInput) (*model.Employee, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if err := maxLen("name", name, model.MaxLabelLen); err != nil {
		return nil, err
	}
	if in.Number <= 0 {
		return nil, invalid("number", "must be a positive integer")
	}
	if strings.TrimSpace(in.HireDate) == "" {
		return nil, invalid("hire_date", "is required")
	}
	hired, err := model.ParseDate(in.HireDate)
	if err != nil {
		return nil, invalid("hire_date", "must be a date in YYYY-MM-DD format")
	}
	return &model.Employee{Name: name, Number: in.Number, HireDate: hired}, nil
}
