package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/fpstore/internal/model"
	"github.com/roach88/fpstore/internal/testutil"
)

// testDrivers lists every driver the store supports.
var testDrivers = []string{DriverSQLite3, DriverSQLite}

// forEachDriver runs fn as a subtest once per supported driver.
func forEachDriver(t *testing.T, fn func(t *testing.T, driver string)) {
	t.Helper()
	for _, driver := range testDrivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, driver)
		})
	}
}

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	return createTestStoreWith(t, Options{Driver: driver})
}

// createTestStoreWith fills in a silent logger and deterministic op ids
// unless opts sets them.
func createTestStoreWith(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.OpIDs == nil {
		opts.OpIDs = testutil.NewSequenceOpIDs("")
	}
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenWith(path, opts)
	if err != nil {
		t.Fatalf("OpenWith() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustAdd adds fp and fails the test on error.
func mustAdd(t *testing.T, s *Store, fp *model.Fingerprint) *model.Fingerprint {
	t.Helper()
	got, err := s.Add(context.Background(), fp)
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	return got
}

// rowCount returns the number of rows in table.
func rowCount(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// tableCounts snapshots the row count of every table in the schema.
func tableCounts(t *testing.T, s *Store) map[string]int {
	t.Helper()
	tables := []string{
		"map", "location", "measurement", "wifireading", "gsmreading",
		"bluetoothreading", "readinginmeasurement", "fingerprint",
	}
	out := make(map[string]int, len(tables))
	for _, table := range tables {
		out[table] = rowCount(t, s, table)
	}
	return out
}
