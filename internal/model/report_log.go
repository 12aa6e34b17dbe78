package model

import "time"

// ReportLogEntry is one immutable record of a status a report held.
// Entries are ordered by CreatedAt with ties broken by ID.
type ReportLogEntry struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportLogDetail adds the report description and employee name for audit
// display.
type ReportLogDetail struct {
	ReportLogEntry
	ReportDescription string `json:"report_description"`
	EmployeeName      string `json:"employee_name,omitempty"`
}
