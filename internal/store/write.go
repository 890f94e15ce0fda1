package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/fpstore/internal/model"
	"github.com/roach88/fpstore/internal/querysql"
)

// Add persists a fingerprint graph atomically and returns it as re-read from
// storage.
//
// Insert order inside one transaction:
//  1. measurement row
//  2. readings per kind, each followed by its junction rows
//  3. location row, unless fp.Location already has an id (reused as is)
//  4. fingerprint row
//
// Generated ids are copied onto fp only after commit. On any fault the
// transaction is rolled back, fp is left untouched and storage is unchanged.
func (s *Store) Add(ctx context.Context, fp *model.Fingerprint) (*model.Fingerprint, error) {
	const op = "add"
	if fp == nil || fp.Location == nil || fp.Measurement == nil {
		return nil, &DatabaseError{Code: CodeQuery, Op: op, Err: errors.New("fingerprint requires a location and a measurement")}
	}
	for _, kind := range model.ReadingKinds {
		if len(fp.Measurement.ReadingsOf(kind)) == 0 {
			continue
		}
		if _, ok := s.tables.reading(kind); !ok {
			return nil, &DatabaseError{Code: CodeQuery, Op: op, Err: fmt.Errorf("no table registered for %s readings", kind)}
		}
	}

	if s.policy == SingleWriter {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}

	log := s.logger.With("op", op, "op_id", s.opIDs.Generate())
	log.Debug("add fingerprint",
		"location_id", fp.Location.ID,
		"readings", fp.Measurement.Len(),
		"policy", s.policy.String())

	staged := fp.Clone()
	if err := s.insertGraph(ctx, log, staged); err != nil {
		log.Debug("add rolled back", "error", err)
		return nil, newError(op, err)
	}

	fp.ID = staged.ID
	fp.Location.ID = staged.Location.ID
	if fp.Location.Map != nil && staged.Location.Map != nil {
		fp.Location.Map.ID = staged.Location.Map.ID
	}
	fp.Measurement.ID = staged.Measurement.ID
	for _, kind := range model.ReadingKinds {
		fp.Measurement.SetReadingIDs(kind, staged.Measurement.ReadingIDs(kind))
	}
	log.Debug("add committed",
		"fingerprint_id", fp.ID,
		"location_id", fp.Location.ID,
		"measurement_id", fp.Measurement.ID)

	return s.GetByID(ctx, fp.ID)
}

// insertGraph writes fp inside one transaction, assigning generated ids onto
// fp as it goes.
func (s *Store) insertGraph(ctx context.Context, log *slog.Logger, fp *model.Fingerprint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Warn("rollback failed", "error", err)
		}
	}()

	m := fp.Measurement
	measID, err := s.tables.Measurement.Insert(ctx, tx, m)
	if err != nil {
		return err
	}
	m.ID = measID

	if err := s.insertReadings(ctx, tx, log, m); err != nil {
		return err
	}

	if !fp.Location.Persisted() {
		locID, err := s.tables.Location.Insert(ctx, tx, fp.Location)
		if err != nil {
			return err
		}
		fp.Location.ID = locID
	}

	res, err := tx.ExecContext(ctx,
		querysql.Insert(querysql.FingerprintTable, []string{querysql.ColumnLocationID, querysql.ColumnMeasurementID}),
		fp.Location.ID,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("insert fingerprint: %w", err)
	}
	if fp.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert fingerprint: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// insertReadings batch-inserts each kind's readings and links them to m
// through the junction table.
func (s *Store) insertReadings(ctx context.Context, tx *sql.Tx, log *slog.Logger, m *model.Measurement) error {
	if m.Len() == 0 {
		return nil
	}
	link, err := tx.PrepareContext(ctx,
		querysql.Insert(junctionTable, []string{junctionMeasurement, junctionReading, junctionKind}))
	if err != nil {
		return fmt.Errorf("prepare junction insert: %w", err)
	}
	defer func() {
		if err := link.Close(); err != nil {
			log.Warn("close junction statement failed", "error", err)
		}
	}()

	for _, rt := range s.tables.Readings {
		kind := rt.Kind()
		readings := m.ReadingsOf(kind)
		if len(readings) == 0 {
			continue
		}
		ids, err := rt.InsertBatch(ctx, tx, readings)
		if err != nil {
			return err
		}
		if len(ids) != len(readings) {
			return fmt.Errorf("insert %s readings: got %d ids for %d readings", kind, len(ids), len(readings))
		}
		for _, id := range ids {
			if _, err := link.ExecContext(ctx, m.ID, id, string(kind)); err != nil {
				return fmt.Errorf("link %s reading %d: %w", kind, id, err)
			}
		}
		m.SetReadingIDs(kind, ids)
	}
	return nil
}
