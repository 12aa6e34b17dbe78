package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// ReportRepo provides CRUD operations for reports.  Every write that sets a
// report's status appends the matching report_log row in the same
// transaction, so the log never disagrees with the report.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

const reportDetailSelect = `SELECT r.id, r.employee_id, r.description, r.area, r.status, r.created_at, e.name
	FROM reports r
	JOIN employees e ON e.id = r.employee_id`

// Create inserts the report and its first log entry atomically.  ID and
// CreatedAt are populated on success.  A missing employee yields
// ErrEmployeeNotFound and nothing is written.
func (r *ReportRepo) Create(ctx context.Context, rep *model.Report) error {
	return withTx(ctx, r.db, "create report", func(tx *sql.Tx) error {
		const q = `INSERT INTO reports (employee_id, description, area, status) VALUES (?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, q, rep.EmployeeID, rep.Description, rep.Area, rep.Status)
		if err != nil {
			err = classify("create report", err)
			if errors.Is(err, ErrNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return classify("create report", err)
		}
		if err := recordStatusChangeTx(ctx, tx, id, rep.Status); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, "SELECT created_at FROM reports WHERE id = ?", id).Scan(&rep.CreatedAt); err != nil {
			return classify("create report", err)
		}
		rep.ID = id
		return nil
	})
}

// RecordStatusChange sets the report's status and appends one log entry
// with the same value, as a single commit.  It is the only path through
// which an existing report's status changes.
func (r *ReportRepo) RecordStatusChange(ctx context.Context, reportID int64, status string) error {
	return withTx(ctx, r.db, "record status change", func(tx *sql.Tx) error {
		return recordStatusChangeTx(ctx, tx, reportID, status)
	})
}

// recordStatusChangeTx writes the status and then the log row.  The update
// relies on clientFoundRows so an unchanged value still counts as matched.
func recordStatusChangeTx(ctx context.Context, tx *sql.Tx, reportID int64, status string) error {
	res, err := tx.ExecContext(ctx, "UPDATE reports SET status = ? WHERE id = ?", status, reportID)
	if err != nil {
		return classify("update report status", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return classify("update report status", err)
	} else if n == 0 {
		return ErrReportNotFound
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO report_log (report_id, status) VALUES (?, ?)", reportID, status); err != nil {
		return classify("append report log", err)
	}
	return nil
}

// Update overwrites employee, description and area, and moves the status
// through recordStatusChangeTx only when its value differs from the stored
// one.  The row is locked for the duration so the comparison holds.
func (r *ReportRepo) Update(ctx context.Context, rep *model.Report) (statusChanged bool, err error) {
	err = withTx(ctx, r.db, "update report", func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, "SELECT status FROM reports WHERE id = ? FOR UPDATE", rep.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReportNotFound
		}
		if err != nil {
			return classify("update report", err)
		}

		const q = `UPDATE reports SET employee_id = ?, description = ?, area = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, q, rep.EmployeeID, rep.Description, rep.Area, rep.ID); err != nil {
			err = classify("update report", err)
			if errors.Is(err, ErrNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}

		if current == rep.Status {
			return nil
		}
		statusChanged = true
		return recordStatusChangeTx(ctx, tx, rep.ID, rep.Status)
	})
	if err != nil {
		return false, err
	}
	return statusChanged, nil
}

// GetByID returns the report joined with its employee's name, or
// ErrReportNotFound.
func (r *ReportRepo) GetByID(ctx context.Context, id int64) (*model.ReportDetail, error) {
	var d model.ReportDetail
	err := r.db.QueryRowContext(ctx, reportDetailSelect+" WHERE r.id = ?", id).Scan(
		&d.ID, &d.EmployeeID, &d.Description, &d.Area, &d.Status, &d.CreatedAt, &d.EmployeeName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, classify("get report", err)
	}
	return &d, nil
}

// List returns every report ordered by id.
func (r *ReportRepo) List(ctx context.Context) ([]model.ReportDetail, error) {
	return r.list(ctx, "list reports", reportDetailSelect+" ORDER BY r.id")
}

// ListByEmployee returns the reports filed against one employee.
func (r *ReportRepo) ListByEmployee(ctx context.Context, employeeID int64) ([]model.ReportDetail, error) {
	return r.list(ctx, "list reports by employee", reportDetailSelect+" WHERE r.employee_id = ? ORDER BY r.id", employeeID)
}

// ListByStatus returns the reports whose current status equals status.
func (r *ReportRepo) ListByStatus(ctx context.Context, status string) ([]model.ReportDetail, error) {
	return r.list(ctx, "list reports by status", reportDetailSelect+" WHERE r.status = ? ORDER BY r.id", status)
}

func (r *ReportRepo) list(ctx context.Context, op, q string, args ...any) ([]model.ReportDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := []model.ReportDetail{}
	for rows.Next() {
		var d model.ReportDetail
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.Description, &d.Area, &d.Status, &d.CreatedAt, &d.EmployeeName); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

// Delete removes the report's log entries and then the report in one
// transaction.  The report_log foreign key cascades as well; deleting the
// entries explicitly keeps the behaviour independent of that setting.
func (r *ReportRepo) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, "delete report", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM report_log WHERE report_id = ?", id); err != nil {
			return classify("delete report log", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
		if err != nil {
			return classify("delete report", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrReportNotFound
		}
		return nil
	})
}
