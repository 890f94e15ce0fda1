// Package store provides SQLite-backed storage for positioning fingerprints.
//
// A fingerprint is a composite aggregate spread across eight tables:
//   - fingerprint: the association row (locationId, measurementId)
//   - location, map: where the fingerprint was taken; shared, never cascaded
//   - measurement: the snapshot, exclusively owned by one fingerprint
//   - wifireading, gsmreading, bluetoothreading: the readings
//   - readinginmeasurement: junction rows carrying the reading discriminator
//
// # Reads
//
// Every read is one flattened LEFT OUTER JOIN ordered by fingerprint id,
// measurement id, discriminator and reading id. AggregateReader walks that
// forward-only cursor with a single row of lookahead and stitches the rows of
// each fingerprint back into one model.Fingerprint.
//
// # Writes
//
// Add inserts measurement → readings + junction rows → location (unless it
// already has an id) → fingerprint in one transaction, then re-reads the new
// fingerprint. Under the SingleWriter policy Add is serialized process-wide.
//
// Remove resolves the target fingerprints once and deletes readings →
// junction rows → fingerprints → measurements in one transaction. Locations
// and maps are never deleted.
//
// # Database Configuration
//
// Set through the DSN so every pooled connection carries them:
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - IMMEDIATE write transactions: writers queue on busy_timeout
//
// The pool is not limited to one connection, so a caller may keep a Query
// reader open while it calls other Store methods.
package store
