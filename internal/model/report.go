package model

import "time"

// DefaultReportStatus is the status a report receives when none is given.
const DefaultReportStatus = "Sin Revision"

// Column widths, in characters, of the bounded text fields.
const (
	MaxStatusLen = 64  // reports.status, report_log.status
	MaxLabelLen  = 255 // reports.area, employees.name, users.name, users.email
)

// Report represents an incident report filed against an employee.  Its
// Status is never empty and every value it takes is mirrored in the
// report_log table.
//
// Fields:
//
//	ID          – primary key identifier.
//	EmployeeID  – employee the report is about.
//	Description – free-text description of the incident.
//	Area        – area or category of the incident.
//	Status      – current lifecycle stage (e.g. "Sin Revision", "Resuelto").
//	CreatedAt   – server timestamp set once at insert.
type Report struct {
	ID          int64     `json:"id"`
	EmployeeID  int64     `json:"employee_id"`
	Description string    `json:"description"`
	Area        string    `json:"area"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportDetail is a Report joined with the name of its employee.
type ReportDetail struct {
	Report
	EmployeeName string `json:"employee_name"`
}
