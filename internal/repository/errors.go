// Package repository defines the SQL access layer and the error values
// shared by every repository.  Higher layers distinguish failures with
// errors.Is against ErrNotFound and ErrConflict, and errors.As against
// *StorageError for infrastructure failures.
package repository

import (
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// ErrNotFound is the kind of every "referenced entity is absent" error.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is the kind of every unique-key or referential conflict.
// Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

var (
	ErrEmployeeNotFound     = kindError(ErrNotFound, "employee not found")
	ErrReportNotFound       = kindError(ErrNotFound, "report not found")
	ErrLogEntryNotFound     = kindError(ErrNotFound, "log entry not found")
	ErrHistoryNotFound      = kindError(ErrNotFound, "no history found for report")
	ErrUserNotFound         = kindError(ErrNotFound, "user not found")
	ErrEmailExists          = kindError(ErrConflict, "email already registered")
	ErrEmployeeNumberExists = kindError(ErrConflict, "employee number already exists")
	ErrEmployeeHasReports   = kindError(ErrConflict, "employee has reports and cannot be deleted")
	ErrLatestLogEntry       = kindError(ErrConflict, "log entry records the current status of its report")
)

// KindError pairs a client-facing message with its kind.
type KindError struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) *KindError { return &KindError{kind: kind, msg: msg} }

func (e *KindError) Error() string { return e.msg }
func (e *KindError) Unwrap() error { return e.kind }

// StorageError reports that the store was unreachable or rejected a
// statement.  It is never user-correctable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// MySQL server error numbers the repositories translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// classify converts a driver error into ErrConflict / ErrNotFound or wraps it
// as a StorageError.  sql.ErrNoRows is passed through for the caller to map.
func classify(op string, err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var kind *KindError
	if errors.As(err, &kind) {
		return err
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry, mysqlRowIsReferenced:
			return errors.Wrap(ErrConflict, myErr.Message)
		case mysqlNoReferencedRow:
			return errors.Wrap(ErrNotFound, myErr.Message)
		}
	}
	return &StorageError{Op: op, Err: err}
}
