package model

// Employee is a row of the `employees` table.  Reports reference employees;
// an employee with reports cannot be deleted.
type Employee struct {
	ID       int64  `json:"id"`        // employees.id
	Name     string `json:"name"`      // employees.name
	Number   int64  `json:"number"`    // employees.number (unique)
	HireDate Date   `json:"hire_date"` // employees.hire_date
}
