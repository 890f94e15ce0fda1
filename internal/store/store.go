package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema
// 1 - Lookup indexes on fingerprint locationId and measurementId, and on the
// junction's (readingClassName, readingId)
const currentSchemaVersion = 1

// WritePolicy selects how concurrent Add calls are serialized.
type WritePolicy int

const (
	// SingleWriter serializes Add behind a process-wide mutex.
	SingleWriter WritePolicy = iota

	// TxIsolation relies on the transaction alone.
	TxIsolation
)

// String returns the flag spelling of the policy.
func (p WritePolicy) String() string {
	switch p {
	case SingleWriter:
		return "single-writer"
	case TxIsolation:
		return "tx-isolation"
	default:
		return fmt.Sprintf("WritePolicy(%d)", int(p))
	}
}

// ParseWritePolicy parses "single-writer" or "tx-isolation".
// The empty string selects SingleWriter.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch s {
	case "", "single-writer":
		return SingleWriter, nil
	case "tx-isolation":
		return TxIsolation, nil
	default:
		return 0, fmt.Errorf("unknown write policy %q (want single-writer or tx-isolation)", s)
	}
}

// Options customizes OpenWith. The zero value is valid.
type Options struct {
	// Driver is DriverSQLite3 (default) or DriverSQLite.
	Driver string

	// WritePolicy defaults to SingleWriter.
	WritePolicy WritePolicy

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Tables defaults to DefaultTables().
	Tables Tables

	// OpIDs defaults to UUIDv7Generator.
	OpIDs OpIDGenerator
}

// Store persists fingerprints in SQLite.
//
// Reads may run concurrently, including while a Query reader is still open.
// Add is serialized according to the configured WritePolicy. Remove always
// runs in its own transaction.
type Store struct {
	db      *sql.DB
	dialect dialect
	tables  Tables
	plan    *joinPlan
	policy  WritePolicy
	writeMu sync.Mutex
	logger  *slog.Logger
	opIDs   OpIDGenerator
}

// Open creates or opens a SQLite database at the given path with default
// options. Applies required pragmas and migrations automatically.
func Open(path string) (*Store, error) {
	return OpenWith(path, Options{})
}

// OpenWith creates or opens a SQLite database at the given path.
//
// Every pooled connection is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//   - IMMEDIATE write transactions
//
// path must name a file; ":memory:" would give each pooled connection its
// own database. Safe to call repeatedly on the same file.
func OpenWith(path string, opts Options) (*Store, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, &DatabaseError{Code: CodeConnection, Op: "open", Err: err}
	}
	if opts.WritePolicy != SingleWriter && opts.WritePolicy != TxIsolation {
		return nil, &DatabaseError{Code: CodeQuery, Op: "open", Err: fmt.Errorf("invalid write policy %s", opts.WritePolicy)}
	}

	tables := opts.Tables
	if tables.Location == nil && tables.Measurement == nil && tables.Readings == nil {
		tables = DefaultTables()
	}
	if err := tables.validate(); err != nil {
		return nil, &DatabaseError{Code: CodeQuery, Op: "open", Err: err}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opIDs := opts.OpIDs
	if opIDs == nil {
		opIDs = UUIDv7Generator{}
	}

	// Pragmas travel in the DSN because they are per connection and the pool
	// opens more than one: an open AggregateReader pins its connection.
	db, err := sql.Open(d.driver, d.dsn(path))
	if err != nil {
		return nil, &DatabaseError{Code: CodeConnection, Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &DatabaseError{Code: CodeConnection, Op: "open", Err: fmt.Errorf("connect: %w", err)}
	}
	db.SetMaxIdleConns(4)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, newError("open", fmt.Errorf("apply schema: %w", err))
	}

	return &Store{
		db:      db,
		dialect: d,
		tables:  tables,
		plan:    newJoinPlan(tables),
		policy:  opts.WritePolicy,
		logger:  logger,
		opIDs:   opIDs,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.dialect.driver
}

// WritePolicy returns the configured write policy.
func (s *Store) WritePolicy() WritePolicy {
	return s.policy
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the indexes the constrained reads and the deleter use.
func migrateToV1(db *sql.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_fingerprint_location ON fingerprint(locationId)",
		"CREATE INDEX IF NOT EXISTS idx_fingerprint_measurement ON fingerprint(measurementId)",
		"CREATE INDEX IF NOT EXISTS idx_reading_kind ON readinginmeasurement(readingClassName, readingId)",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRowContext(context.Background(), fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
