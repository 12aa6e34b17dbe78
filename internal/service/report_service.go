package service

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/incident-report-tracker/internal/metrics"
	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/repository"
)

// ReportStore is the storage the report lifecycle runs on.  Create,
// RecordStatusChange and Update write a report's status and its log entry
// as one commit.
type ReportStore interface {
	Create(ctx context.Context, rep *model.Report) error
	RecordStatusChange(ctx context.Context, reportID int64, status string) error
	Update(ctx context.Context, rep *model.Report) (statusChanged bool, err error)
	GetByID(ctx context.Context, id int64) (*model.ReportDetail, error)
	List(ctx context.Context) ([]model.ReportDetail, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]model.ReportDetail, error)
	ListByStatus(ctx context.Context, status string) ([]model.ReportDetail, error)
	Delete(ctx context.Context, id int64) error
}

// EmployeeChecker answers whether an employee exists.
type EmployeeChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Notifier is told about committed report writes.  Implementations must not
// block the caller on delivery and have no way to fail the write.
type Notifier interface {
	Notify(ctx context.Context, ev model.ReportEvent)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, model.ReportEvent) {}

// CreateReportInput carries the fields of a new report.  Status is optional.
type CreateReportInput struct {
	EmployeeID  int64
	Description string
	Area        string
	Status      string
}

// UpdateReportInput carries every field of a full report update.
type UpdateReportInput struct {
	EmployeeID  int64
	Description string
	Area        string
	Status      string
}

// ReportService implements the report lifecycle.
type ReportService struct {
	reports   ReportStore
	employees EmployeeChecker
	notifier  Notifier
}

// NewReportService wires the lifecycle to its stores.  A nil notifier
// disables notifications.
func NewReportService(reports ReportStore, employees EmployeeChecker, notifier Notifier) *ReportService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ReportService{reports: reports, employees: employees, notifier: notifier}
}

// Create validates in, checks the employee and stores the report together
// with its first log entry.  The status defaults to "Sin Revision".
func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (*model.ReportDetail, error) {
	rep := model.Report{
		EmployeeID:  in.EmployeeID,
		Description: strings.TrimSpace(in.Description),
		Area:        strings.TrimSpace(in.Area),
		Status:      strings.TrimSpace(in.Status),
	}
	if rep.Status == "" {
		rep.Status = model.DefaultReportStatus
	}
	if err := validateReport(rep); err != nil {
		return nil, err
	}
	if err := s.requireEmployee(ctx, rep.EmployeeID); err != nil {
		return nil, err
	}

	if err := s.reports.Create(ctx, &rep); err != nil {
		return nil, err
	}
	metrics.StatusChanges.WithLabelValues("create").Inc()

	detail := s.reload(ctx, rep)
	s.notifier.Notify(ctx, model.NewReportEvent(model.EventReportCreated, *detail))
	return detail, nil
}

// Get returns one report with its employee's name.
func (s *ReportService) Get(ctx context.Context, id int64) (*model.ReportDetail, error) {
	if id <= 0 {
		return nil, invalid("id", "must be a positive integer")
	}
	return s.reports.GetByID(ctx, id)
}

// List returns every report.
func (s *ReportService) List(ctx context.Context) ([]model.ReportDetail, error) {
	return s.reports.List(ctx)
}

// ListByEmployee returns the reports filed against an employee.
func (s *ReportService) ListByEmployee(ctx context.Context, employeeID int64) ([]model.ReportDetail, error) {
	if employeeID <= 0 {
		return nil, invalid("employee_id", "must be a positive integer")
	}
	return s.reports.ListByEmployee(ctx, employeeID)
}

// ListByStatus returns the reports currently holding status.
func (s *ReportService) ListByStatus(ctx context.Context, status string) ([]model.ReportDetail, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, invalid("status", "is required")
	}
	return s.reports.ListByStatus(ctx, status)
}

// Update overwrites every field.  A log entry is appended only when the
// status value differs from the stored one.
func (s *ReportService) Update(ctx context.Context, id int64, in UpdateReportInput) (*model.ReportDetail, error) {
	if id <= 0 {
		return nil, invalid("id", "must be a positive integer")
	}
	rep := model.Report{
		ID:          id,
		EmployeeID:  in.EmployeeID,
		Description: strings.TrimSpace(in.Description),
		Area:        strings.TrimSpace(in.Area),
		Status:      strings.TrimSpace(in.Status),
	}
	if err := validateReport(rep); err != nil {
		return nil, err
	}
	if err := s.requireEmployee(ctx, rep.EmployeeID); err != nil {
		return nil, err
	}

	changed, err := s.reports.Update(ctx, &rep)
	if err != nil {
		return nil, err
	}
	detail := s.reload(ctx, rep)
	if changed {
		metrics.StatusChanges.WithLabelValues("update").Inc()
		s.notifier.Notify(ctx, model.NewReportEvent(model.EventReportStatusChanged, *detail))
	}
	return detail, nil
}

// PatchStatus moves the report to status and appends the log entry in the
// same commit.  Setting the current value again still records an entry.
func (s *ReportService) PatchStatus(ctx context.Context, id int64, status string) (*model.ReportDetail, error) {
	if id <= 0 {
		return nil, invalid("id", "must be a positive integer")
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, invalid("status", "is required")
	}
	if err := maxLen("status", status, model.MaxStatusLen); err != nil {
		return nil, err
	}
	if err := s.reports.RecordStatusChange(ctx, id, status); err != nil {
		return nil, err
	}
	metrics.StatusChanges.WithLabelValues("patch").Inc()

	detail := s.reload(ctx, model.Report{ID: id, Status: status})
	s.notifier.Notify(ctx, model.NewReportEvent(model.EventReportStatusChanged, *detail))
	return detail, nil
}

// Delete removes the report and its whole log.
func (s *ReportService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("id", "must be a positive integer")
	}
	return s.reports.Delete(ctx, id)
}

func (s *ReportService) requireEmployee(ctx context.Context, id int64) error {
	ok, err := s.employees.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrEmployeeNotFound
	}
	return nil
}

// reload reads the committed report back for the response.  The write has
// already succeeded, so a failed read falls back to what was written.
func (s *ReportService) reload(ctx context.Context, rep model.Report) *model.ReportDetail {
	d, err := s.reports.GetByID(ctx, rep.ID)
	if err != nil {
		log.WithError(err).WithField("report_id", rep.ID).Warn("report written but could not be read back")
		return &model.ReportDetail{Report: rep}
	}
	return d
}

func validateReport(rep model.Report) error {
	switch {
	case rep.EmployeeID <= 0:
		return invalid("employee_id", "must be a positive integer")
	case rep.Description == "":
		return invalid("description", "is required")
	case rep.Area == "":
		return invalid("area", "is required")
	case rep.Status == "":
		return invalid("status", "is required")
	}
	if err := maxLen("area", rep.Area, model.MaxLabelLen); err != nil {
		return err
	}
	return maxLen("status", rep.Status, model.MaxStatusLen)
}
