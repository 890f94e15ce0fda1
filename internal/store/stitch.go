package store

import (
	"errors"

	"github.com/roach88/fpstore/internal/model"
)

// AggregateReader stitches the flattened fingerprint join back into
// Fingerprint aggregates, one per distinct (fingerprintId, measurementId)
// group, in cursor order.
//
// The cursor is forward-only. The reader holds exactly one row of lookahead:
// the first row of the next group, read while finishing the current one.
//
// Usage:
//
//	for r.Next() {
//		fp := r.Fingerprint()
//	}
//	if err := r.Err(); err != nil { ... }
type AggregateReader struct {
	cur    Cursor
	tables Tables
	plan   *joinPlan
	closer func() error

	buf     Row // lookahead; nil when empty
	done    bool
	current *model.Fingerprint
	err     error
}

// NewAggregateReader returns a reader over cur, which must produce the column
// layout of the store's flattened join for tables, ordered so every group's
// rows are contiguous.
func NewAggregateReader(cur Cursor, tables Tables) *AggregateReader {
	return &AggregateReader{cur: cur, tables: tables, plan: newJoinPlan(tables)}
}

// Next builds the next aggregate. It returns false at the end of the cursor
// or on the first fault; Err distinguishes the two.
func (r *AggregateReader) Next() bool {
	r.current = nil
	if r.done {
		return false
	}

	if r.buf == nil {
		row, err := r.advance()
		if err != nil {
			r.fail(err)
			return false
		}
		r.buf = row
	}

	fp, err := r.parseHead(r.buf)
	if err != nil {
		r.fail(err)
		return false
	}
	fpID, measID, err := r.key(r.buf)
	if err != nil {
		r.fail(err)
		return false
	}

	for {
		if err := r.appendReading(fp.Measurement, r.buf); err != nil {
			r.fail(err)
			return false
		}
		row, err := r.advance()
		if errors.Is(err, errCursorExhausted) {
			r.buf = nil
			r.done = true
			break
		}
		if err != nil {
			r.fail(err)
			return false
		}
		nextFP, nextMeas, err := r.key(row)
		if err != nil {
			r.fail(err)
			return false
		}
		r.buf = row
		if nextFP != fpID || nextMeas != measID {
			break
		}
	}

	r.current = fp
	return true
}

// Fingerprint returns the aggregate built by the last successful Next.
func (r *AggregateReader) Fingerprint() *model.Fingerprint {
	return r.current
}

// Err returns the fault that stopped iteration, if any. The end of the cursor
// is not an error.
func (r *AggregateReader) Err() error {
	return r.err
}

// Close releases the underlying cursor. Safe to call more than once.
func (r *AggregateReader) Close() error {
	r.done = true
	r.buf = nil
	if r.closer == nil {
		return nil
	}
	closer := r.closer
	r.closer = nil
	return closer()
}

// advance moves the cursor one row. It returns errCursorExhausted when the
// cursor ends cleanly.
func (r *AggregateReader) advance() (Row, error) {
	if !r.cur.Next() {
		if err := r.cur.Err(); err != nil {
			return nil, err
		}
		return nil, errCursorExhausted
	}
	return scanRow(r.cur, r.plan.width())
}

// fail stops iteration. The aggregate under construction is dropped.
func (r *AggregateReader) fail(err error) {
	r.done = true
	r.buf = nil
	r.current = nil
	if errors.Is(err, errCursorExhausted) {
		return
	}
	r.err = newError("read fingerprints", err)
}

func (r *AggregateReader) key(row Row) (fingerprintID, measurementID int64, err error) {
	if fingerprintID, err = row.Int64(0); err != nil {
		return 0, 0, err
	}
	if measurementID, err = row.Int64(r.plan.measurementOffset); err != nil {
		return 0, 0, err
	}
	return fingerprintID, measurementID, nil
}

// parseHead parses the scalar fingerprint, location and measurement columns.
func (r *AggregateReader) parseHead(row Row) (*model.Fingerprint, error) {
	id, err := row.Int64(0)
	if err != nil {
		return nil, err
	}
	loc, err := r.tables.Location.ParseRow(row, r.plan.locationOffset)
	if err != nil {
		return nil, err
	}
	meas, err := r.tables.Measurement.ParseRow(row, r.plan.measurementOffset)
	if err != nil {
		return nil, err
	}
	return &model.Fingerprint{ID: id, Location: loc, Measurement: meas}, nil
}

// appendReading adds the row's reading to m. A NULL or unknown discriminator,
// a kind without a registered table, or a NULL reading id appends nothing.
func (r *AggregateReader) appendReading(m *model.Measurement, row Row) error {
	if row.IsNull(r.plan.kindOffset) {
		return nil
	}
	name, err := row.String(r.plan.kindOffset)
	if err != nil {
		return err
	}
	kind, ok := model.ParseReadingKind(name)
	if !ok {
		return nil
	}
	rt, ok := r.tables.reading(kind)
	if !ok {
		return nil
	}
	offset := r.plan.readingOffsets[kind]
	if row.IsNull(offset) {
		return nil
	}
	reading, err := rt.ParseRow(row, offset)
	if err != nil {
		return err
	}
	m.Add(reading)
	return nil
}
