package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/fpstore/internal/querysql"
)

// deleteChunkSize bounds the ids bound into one DELETE statement.
const deleteChunkSize = 400

// deleteStatement is one parameterized DELETE of the cascade.
type deleteStatement struct {
	table string
	sql   string
	args  []any
}

// Remove deletes the fingerprints matching c together with their
// measurements, readings and junction rows. Locations and maps are never
// deleted. Returns true if at least one fingerprint was removed.
//
// Target fingerprints and their measurements are resolved once inside the
// transaction; every dependent delete is derived from that resolved set.
// Delete order: readings per kind, junction rows, fingerprints, measurements.
func (s *Store) Remove(ctx context.Context, c querysql.Constraint) (bool, error) {
	const op = "remove"
	where, args, err := c.Compile(querysql.FingerprintTable)
	if err != nil {
		return false, &DatabaseError{Code: CodeQuery, Op: op, Err: err}
	}

	log := s.logger.With("op", op, "op_id", s.opIDs.Generate())
	log.Debug("remove fingerprints", "constraint", c.String(), "batched", s.dialect.multiStatement)

	removed, err := s.removeTx(ctx, log, where, args)
	if err != nil {
		log.Debug("remove rolled back", "error", err)
		return false, newError(op, err)
	}
	log.Debug("remove committed", "removed", removed)
	return removed > 0, nil
}

func (s *Store) removeTx(ctx context.Context, log *slog.Logger, where string, args []any) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
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

	fpIDs, measIDs, err := resolveTargets(ctx, tx, where, args)
	if err != nil {
		return 0, err
	}
	if len(fpIDs) == 0 {
		return 0, nil
	}

	var removed int64
	for start := 0; start < len(fpIDs); start += deleteChunkSize {
		end := min(start+deleteChunkSize, len(fpIDs))
		stmts, err := s.deleteStatements(fpIDs[start:end], measIDs[start:end])
		if err != nil {
			return 0, err
		}
		var n int64
		if s.dialect.multiStatement {
			n, err = execBatch(ctx, tx, stmts)
		} else {
			n, err = execSequential(ctx, tx, stmts)
		}
		if err != nil {
			return 0, err
		}
		removed += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return removed, nil
}

// resolveTargets returns the matching fingerprint ids and, index for index,
// their measurement ids.
func resolveTargets(ctx context.Context, tx *sql.Tx, where string, args []any) (fpIDs, measIDs []int64, err error) {
	query, err := querysql.Select{
		Columns: querysql.Qualify(querysql.FingerprintTable, querysql.ColumnFingerprintID, querysql.ColumnMeasurementID),
		From:    querysql.FingerprintTable,
		Where:   where,
		OrderBy: []string{querysql.FingerprintTable + "." + querysql.ColumnFingerprintID},
	}.Compile()
	if err != nil {
		return nil, nil, err
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve targets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fpID, measID int64
		if err := rows.Scan(&fpID, &measID); err != nil {
			return nil, nil, fmt.Errorf("resolve targets: scan: %w", err)
		}
		fpIDs = append(fpIDs, fpID)
		measIDs = append(measIDs, measID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("resolve targets: %w", err)
	}
	return fpIDs, measIDs, nil
}

// deleteStatements builds the cascade for one chunk of targets.
func (s *Store) deleteStatements(fpIDs, measIDs []int64) ([]deleteStatement, error) {
	measArgs := int64Args(measIDs)
	stmts := make([]deleteStatement, 0, len(s.tables.Readings)+3)

	for _, rt := range s.tables.Readings {
		where := rt.IDColumn() + " IN (SELECT " + junctionReading + " FROM " + junctionTable +
			" WHERE " + junctionKind + " = ? AND " + querysql.In(junctionMeasurement, len(measIDs)) + ")"
		sqlText, err := querysql.Delete(rt.Table(), where)
		if err != nil {
			return nil, err
		}
		args := append([]any{string(rt.Kind())}, measArgs...)
		stmts = append(stmts, deleteStatement{table: rt.Table(), sql: sqlText, args: args})
	}

	cascade := []struct {
		table, column string
		args          []any
	}{
		{junctionTable, junctionMeasurement, measArgs},
		{querysql.FingerprintTable, querysql.ColumnFingerprintID, int64Args(fpIDs)},
		{s.tables.Measurement.Table(), s.tables.Measurement.IDColumn(), measArgs},
	}
	for _, d := range cascade {
		sqlText, err := querysql.Delete(d.table, querysql.In(d.column, len(d.args)))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, deleteStatement{table: d.table, sql: sqlText, args: d.args})
	}
	return stmts, nil
}

// execSequential runs each statement on its own and returns the number of
// fingerprint rows deleted.
func execSequential(ctx context.Context, tx *sql.Tx, stmts []deleteStatement) (int64, error) {
	var removed int64
	for _, st := range stmts {
		res, err := tx.ExecContext(ctx, st.sql, st.args...)
		if err != nil {
			return 0, fmt.Errorf("delete from %s: %w", st.table, err)
		}
		if st.table != querysql.FingerprintTable {
			continue
		}
		if removed, err = res.RowsAffected(); err != nil {
			return 0, fmt.Errorf("delete from %s: rows affected: %w", st.table, err)
		}
	}
	return removed, nil
}

// execBatch sends every statement in one Exec. The driver reports the rows
// affected by the last statement, the measurement delete, which matches the
// fingerprint count while each measurement belongs to one fingerprint.
func execBatch(ctx context.Context, tx *sql.Tx, stmts []deleteStatement) (int64, error) {
	texts := make([]string, len(stmts))
	var args []any
	for i, st := range stmts {
		texts[i] = st.sql
		args = append(args, st.args...)
	}
	res, err := tx.ExecContext(ctx, strings.Join(texts, ";\n"), args...)
	if err != nil {
		return 0, fmt.Errorf("delete batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete batch: rows affected: %w", err)
	}
	return n, nil
}

func int64Args(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
