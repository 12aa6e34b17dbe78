package model

import "time"

// Report event types.
const (
	EventReportCreated       = "report.created"
	EventReportStatusChanged = "report.status_changed"
)

// ReportEvent describes a committed report write that administrators are
// told about.  It carries enough context to build a notification without
// reading the database again.
type ReportEvent struct {
	Type         string    `json:"type"`
	ReportID     int64     `json:"report_id"`
	EmployeeID   int64     `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Description  string    `json:"description"`
	Area         string    `json:"area"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewReportEvent builds an event of the given type from a report.
func NewReportEvent(eventType string, d ReportDetail) ReportEvent {
	return ReportEvent{
		Type:         eventType,
		ReportID:     d.ID,
		EmployeeID:   d.EmployeeID,
		EmployeeName: d.EmployeeName,
		Description:  d.Description,
		Area:         d.Area,
		Status:       d.Status,
		OccurredAt:   time.Now().UTC(),
	}
}
