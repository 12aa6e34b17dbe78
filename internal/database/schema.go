package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var createTables = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id        BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name      VARCHAR(255) NOT NULL,
		number    BIGINT       NOT NULL,
		hire_date DATE         NOT NULL,
		UNIQUE KEY uq_employees_number (number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reports (
		id          BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		employee_id BIGINT       NOT NULL,
		description TEXT         NOT NULL,
		area        VARCHAR(255) NOT NULL,
		status      VARCHAR(64)  NOT NULL DEFAULT 'Sin Revision',
		created_at  DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_reports_employee (employee_id),
		KEY idx_reports_status (status),
		CONSTRAINT fk_reports_employee FOREIGN KEY (employee_id) REFERENCES employees (id) ON DELETE RESTRICT,
		CONSTRAINT chk_reports_status CHECK (status <> '')
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS report_log (
		id         BIGINT      NOT NULL AUTO_INCREMENT PRIMARY KEY,
		report_id  BIGINT      NOT NULL,
		status     VARCHAR(64) NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_report_log_report (report_id, created_at, id),
		KEY idx_report_log_status (status, created_at),
		CONSTRAINT fk_report_log_report FOREIGN KEY (report_id) REFERENCES reports (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'user',
		push_token    VARCHAR(255) NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email),
		KEY idx_users_role (role)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// userColumns lists columns added after the users table was first released,
// with the DDL that adds each one.
var userColumns = []struct {
	name string
	ddl  string
}{
	{"role", "ALTER TABLE users ADD COLUMN role VARCHAR(16) NOT NULL DEFAULT 'user'"},
	{"push_token", "ALTER TABLE users ADD COLUMN push_token VARCHAR(255) NULL"},
}

// EnsureSchema creates missing tables and backfills missing user columns.
// It is safe to run on every start.  Status changes are logged by the
// application in the same transaction as the report write, so no triggers
// are installed.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range createTables {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "create table")
		}
	}

	existing, err := tableColumns(ctx, db, "users")
	if err != nil {
		return err
	}
	for _, col := range userColumns {
		if existing[col.name] {
			continue
		}
		if _, err := db.ExecContext(ctx, col.ddl); err != nil {
			return errors.Wrapf(err, "add users.%s", col.name)
		}
		log.WithField("column", col.name).Info("schema: added column to users")
	}
	log.Debug("schema: up to date")
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT COLUMN_NAME FROM information_schema.COLUMNS
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`, table)
	if err != nil {
		return nil, errors.Wrapf(err, "read columns of %s", table)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrapf(err, "scan columns of %s", table)
		}
		cols[name] = true
	}
	return cols, errors.Wrapf(rows.Err(), "read columns of %s", table)
}
