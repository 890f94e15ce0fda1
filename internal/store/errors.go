package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// ErrorCode categorizes storage failures.
type ErrorCode string

const (
	// CodeConnection indicates the shared connection could not be obtained or used.
	CodeConnection ErrorCode = "CONNECTION"

	// CodeQuery indicates malformed SQL, a bad constraint or a failed statement.
	CodeQuery ErrorCode = "QUERY"

	// CodeIntegrity indicates a foreign-key, uniqueness or check violation.
	CodeIntegrity ErrorCode = "INTEGRITY_VIOLATION"

	// CodeNotFound indicates no row exists for a requested id.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// DatabaseError is the single error type surfaced by the store.
type DatabaseError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the store operation that failed, e.g. "add" or "get by id".
	Op string

	// Err is the underlying driver or validation error. May be nil.
	Err error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// errCursorExhausted signals the end of the flattened join to the stitching
// reader. It never leaves this package.
var errCursorExhausted = errors.New("cursor exhausted")

// IsNotFound returns true if no row matched a requested id.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsIntegrityViolation returns true for foreign-key, uniqueness and check faults.
func IsIntegrityViolation(err error) bool {
	return hasCode(err, CodeIntegrity)
}

// IsConnectionError returns true if the shared connection was unusable.
func IsConnectionError(err error) bool {
	return hasCode(err, CodeConnection)
}

// IsQueryError returns true for statement and constraint faults.
func IsQueryError(err error) bool {
	return hasCode(err, CodeQuery)
}

func hasCode(err error, code ErrorCode) bool {
	var de *DatabaseError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// newError wraps err under op, classifying it from the driver error.
// An err that already is a *DatabaseError keeps its code.
func newError(op string, err error) *DatabaseError {
	var de *DatabaseError
	if errors.As(err, &de) {
		return &DatabaseError{Code: de.Code, Op: op, Err: err}
	}
	return &DatabaseError{Code: classify(err), Op: op, Err: err}
}

// notFound builds a CodeNotFound error.
func notFound(op string, format string, args ...any) *DatabaseError {
	return &DatabaseError{Code: CodeNotFound, Op: op, Err: fmt.Errorf(format, args...)}
}

// classify maps driver errors onto ErrorCode. Both the cgo (mattn) and the
// pure-Go (modernc) drivers are recognized.
func classify(err error) ErrorCode {
	if err == nil {
		return CodeQuery
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return CodeConnection
	}

	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		switch mattnErr.Code {
		case sqlite3.ErrConstraint:
			return CodeIntegrity
		case sqlite3.ErrCantOpen, sqlite3.ErrNotADB, sqlite3.ErrIoErr:
			return CodeConnection
		}
		return CodeQuery
	}

	var moderncErr *sqlite.Error
	if errors.As(err, &moderncErr) {
		switch moderncErr.Code() & 0xff {
		case sqlitelib.SQLITE_CONSTRAINT:
			return CodeIntegrity
		case sqlitelib.SQLITE_CANTOPEN, sqlitelib.SQLITE_NOTADB, sqlitelib.SQLITE_IOERR:
			return CodeConnection
		}
		return CodeQuery
	}

	return CodeQuery
}
