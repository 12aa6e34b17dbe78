package service

import (
	"context"
	"strings"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// ReportLogStore reads and purges the report status log.
type ReportLogStore interface {
	GetByID(ctx context.Context, id int64) (*model.ReportLogDetail, error)
	ListAll(ctx context.Context) ([]model.ReportLogDetail, error)
	ListByStatus(ctx context.Context, status string) ([]model.ReportLogDetail, error)
	History(ctx context.Context, reportID int64) ([]model.ReportLogDetail, error)
	ListByReport(ctx context.Context, reportID int64) ([]model.ReportLogEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	PurgeReport(ctx context.Context, reportID int64) (int64, error)
}

// ReportLogService exposes the audit trail.  New entries are only ever
// written through ReportService so the log and the report move together.
type ReportLogService struct {
	logs    ReportLogStore
	reports *ReportService
}

func NewReportLogService(logs ReportLogStore, reports *ReportService) *ReportLogService {
	return &ReportLogService{logs: logs, reports: reports}
}

func (s *ReportLogService) Get(ctx context.Context, id int64) (*model.ReportLogDetail, error) {
	if id <= 0 {
		return nil, invalid("id", "must be a positive integer")
	}
	return s.logs.GetByID(ctx, id)
}

func (s *ReportLogService) ListAll(ctx context.Context) ([]model.ReportLogDetail, error) {
	return s.logs.ListAll(ctx)
}

func (s *ReportLogService) ListByStatus(ctx context.Context, status string) ([]model.ReportLogDetail, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, invalid("status", "is required")
	}
	return s.logs.ListByStatus(ctx, status)
}

func (s *ReportLogService) ListByReport(ctx context.Context, reportID int64) ([]model.ReportLogEntry, error) {
	if reportID <= 0 {
		return nil, invalid("report_id", "must be a positive integer")
	}
	return s.logs.ListByReport(ctx, reportID)
}

// History returns the report's entries oldest first; an empty history is
// NotFound.
func (s *ReportLogService) History(ctx context.Context, reportID int64) ([]model.ReportLogDetail, error) {
	if reportID <= 0 {
		return nil, invalid("report_id", "must be a positive integer")
	}
	return s.logs.History(ctx, reportID)
}

// Append records status for the report.  The report's own status moves
// with it, so the newest entry keeps matching the report.
func (s *ReportLogService) Append(ctx context.Context, reportID int64, status string) (*model.ReportLogEntry, error) {
	if reportID <= 0 {
		return nil, invalid("report_id", "must be a positive integer")
	}
	if _, err := s.reports.PatchStatus(ctx, reportID, status); err != nil {
		return nil, err
	}
	entries, err := s.logs.ListByReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	latest := entries[len(entries)-1]
	return &latest, nil
}

// DeleteEntry removes a superseded entry.  The entry holding the current
// status is a Conflict.
func (s *ReportLogService) DeleteEntry(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("id", "must be a positive integer")
	}
	return s.logs.DeleteEntry(ctx, id)
}

// PurgeReport drops every entry but the latest of a report.
func (s *ReportLogService) PurgeReport(ctx context.Context, reportID int64) (int64, error) {
	if reportID <= 0 {
		return 0, invalid("report_id", "must be a positive integer")
	}
	return s.logs.PurgeReport(ctx, reportID)
}
