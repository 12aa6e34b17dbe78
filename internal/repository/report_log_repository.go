package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// ReportLogRepo reads the append-only report status log.  Entries are
// written only by ReportRepo; the two purge operations here never remove
// the entry that records a report's current status.
type ReportLogRepo struct {
	db *sql.DB
}

// NewReportLogRepo returns a ReportLogRepo bound to the given database.
func NewReportLogRepo(db *sql.DB) *ReportLogRepo { return &ReportLogRepo{db: db} }

const logDetailSelect = `SELECT l.id, l.report_id, l.status, l.created_at, r.description, e.name
	FROM report_log l
	JOIN reports r ON r.id = l.report_id
	JOIN employees e ON e.id = r.employee_id`

const (
	orderOldestFirst = " ORDER BY l.created_at ASC, l.id ASC"
	orderNewestFirst = " ORDER BY l.created_at DESC, l.id DESC"
)

// GetByID returns one entry with its report description and employee name.
func (r *ReportLogRepo) GetByID(ctx context.Context, id int64) (*model.ReportLogDetail, error) {
	var d model.ReportLogDetail
	err := r.db.QueryRowContext(ctx, logDetailSelect+" WHERE l.id = ?", id).Scan(
		&d.ID, &d.ReportID, &d.Status, &d.CreatedAt, &d.ReportDescription, &d.EmployeeName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLogEntryNotFound
	}
	if err != nil {
		return nil, classify("get log entry", err)
	}
	return &d, nil
}

// ListAll returns the full audit trail, newest first.
func (r *ReportLogRepo) ListAll(ctx context.Context) ([]model.ReportLogDetail, error) {
	return r.listDetails(ctx, "list report log", logDetailSelect+orderNewestFirst)
}

// ListByStatus returns every entry that recorded status, newest first.
func (r *ReportLogRepo) ListByStatus(ctx context.Context, status string) ([]model.ReportLogDetail, error) {
	return r.listDetails(ctx, "list report log by status", logDetailSelect+" WHERE l.status = ?"+orderNewestFirst, status)
}

// History returns a report's entries oldest first, joined for display.  A
// report without entries yields ErrHistoryNotFound.
func (r *ReportLogRepo) History(ctx context.Context, reportID int64) ([]model.ReportLogDetail, error) {
	out, err := r.listDetails(ctx, "report history", logDetailSelect+" WHERE l.report_id = ?"+orderOldestFirst, reportID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrHistoryNotFound
	}
	return out, nil
}

// ListByReport returns a report's entries oldest first.
func (r *ReportLogRepo) ListByReport(ctx context.Context, reportID int64) ([]model.ReportLogEntry, error) {
	const q = `SELECT l.id, l.report_id, l.status, l.created_at FROM report_log l WHERE l.report_id = ?` + orderOldestFirst
	rows, err := r.db.QueryContext(ctx, q, reportID)
	if err != nil {
		return nil, classify("list report log by report", err)
	}
	defer rows.Close()

	out := []model.ReportLogEntry{}
	for rows.Next() {
		var e model.ReportLogEntry
		if err := rows.Scan(&e.ID, &e.ReportID, &e.Status, &e.CreatedAt); err != nil {
			return nil, classify("list report log by report", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list report log by report", err)
	}
	return out, nil
}

func (r *ReportLogRepo) listDetails(ctx context.Context, op, q string, args ...any) ([]model.ReportLogDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := []model.ReportLogDetail{}
	for rows.Next() {
		var d model.ReportLogDetail
		if err := rows.Scan(&d.ID, &d.ReportID, &d.Status, &d.CreatedAt, &d.ReportDescription, &d.EmployeeName); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

// DeleteEntry removes a single entry.  The latest entry of a report records
// its current status and is refused with ErrLatestLogEntry.
func (r *ReportLogRepo) DeleteEntry(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, "delete log entry", func(tx *sql.Tx) error {
		var reportID int64
		err := tx.QueryRowContext(ctx, "SELECT report_id FROM report_log WHERE id = ? FOR UPDATE", id).Scan(&reportID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLogEntryNotFound
		}
		if err != nil {
			return classify("delete log entry", err)
		}
		latest, err := latestEntryTx(ctx, tx, reportID)
		if err != nil {
			return err
		}
		if latest == id {
			return ErrLatestLogEntry
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM report_log WHERE id = ?", id); err != nil {
			return classify("delete log entry", err)
		}
		return nil
	})
}

// PurgeReport deletes every entry of a report except the latest one and
// returns how many were removed.
func (r *ReportLogRepo) PurgeReport(ctx context.Context, reportID int64) (int64, error) {
	var removed int64
	err := withTx(ctx, r.db, "purge report log", func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM reports WHERE id = ? FOR UPDATE", reportID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReportNotFound
		}
		if err != nil {
			return classify("purge report log", err)
		}
		latest, err := latestEntryTx(ctx, tx, reportID)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM report_log WHERE report_id = ? AND id <> ?", reportID, latest)
		if err != nil {
			return classify("purge report log", err)
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func latestEntryTx(ctx context.Context, tx *sql.Tx, reportID int64) (int64, error) {
	const q = `SELECT id FROM report_log WHERE report_id = ? ORDER BY created_at DESC, id DESC LIMIT 1 FOR UPDATE`
	var id int64
	err := tx.QueryRowContext(ctx, q, reportID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrHistoryNotFound
	}
	if err != nil {
		return 0, classify("latest log entry", err)
	}
	return id, nil
}
