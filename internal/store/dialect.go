package store

import (
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	// DriverSQLite3 is the cgo driver (github.com/mattn/go-sqlite3).
	DriverSQLite3 = "sqlite3"

	// DriverSQLite is the pure-Go driver (modernc.org/sqlite).
	DriverSQLite = "sqlite"
)

// dialect captures the driver differences the store cares about.
type dialect struct {
	driver string

	// multiStatement is true when one Exec may carry several
	// semicolon-separated statements with their combined arguments.
	multiStatement bool
}

// Connection settings applied by the driver to every pooled connection.
// Write transactions begin IMMEDIATE and concurrent writers wait on
// busy_timeout.
const (
	sqlite3Params = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"
	sqliteParams  = "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
)

// dsn appends the connection settings to path.
func (d dialect) dsn(path string) string {
	params := sqlite3Params
	if d.driver == DriverSQLite {
		params = sqliteParams
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "", DriverSQLite3:
		return dialect{driver: DriverSQLite3, multiStatement: true}, nil
	case DriverSQLite:
		return dialect{driver: DriverSQLite}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported driver %q (want %q or %q)", driver, DriverSQLite3, DriverSQLite)
	}
}
