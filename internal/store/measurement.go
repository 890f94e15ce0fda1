package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/fpstore/internal/model"
	"github.com/roach88/fpstore/internal/querysql"
)

// MeasurementTable stores the scalar measurement row. Readings are owned by
// the measurement but stored through the ReadingTable collaborators.
type MeasurementTable struct{}

var _ EntityTable[*model.Measurement] = MeasurementTable{}

var measurementColumns = []string{"measurementId", "timestamp"}

func (MeasurementTable) Table() string    { return "measurement" }
func (MeasurementTable) IDColumn() string { return "measurementId" }

func (MeasurementTable) Columns() []string {
	return querysql.Qualify("measurement", measurementColumns...)
}

// ParseRow parses the scalar columns. The returned measurement has empty,
// non-nil reading collections.
func (MeasurementTable) ParseRow(r Row, offset int) (*model.Measurement, error) {
	id, err := r.Int64(offset)
	if err != nil {
		return nil, fmt.Errorf("measurement id: %w", err)
	}
	millis, _, err := r.NullInt64(offset + 1)
	if err != nil {
		return nil, fmt.Errorf("measurement timestamp: %w", err)
	}
	m := model.NewMeasurement(time.UnixMilli(millis).UTC())
	m.ID = id
	return m, nil
}

// Insert stores the timestamp with millisecond precision.
func (MeasurementTable) Insert(ctx context.Context, tx Execer, m *model.Measurement) (int64, error) {
	res, err := tx.ExecContext(ctx, querysql.Insert("measurement", measurementColumns[1:]), m.Timestamp.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert measurement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert measurement: last insert id: %w", err)
	}
	return id, nil
}
