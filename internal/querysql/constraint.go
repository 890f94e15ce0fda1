package querysql

import (
	"errors"
	"fmt"
)

// Fingerprint table and the columns a Constraint can filter on.
const (
	FingerprintTable    = "fingerprint"
	ColumnFingerprintID = "fingerprintId"
	ColumnLocationID    = "locationId"
	ColumnMeasurementID = "measurementId"
)

// ErrInvalidConstraint is returned when a constraint carries a negative id.
var ErrInvalidConstraint = errors.New("invalid constraint")

// Constraint selects a set of fingerprints. A zero id means "not set" and the
// zero Constraint matches every fingerprint.
//
// Callers are expected to set a single id. When several are set the priority
// is FingerprintID, then LocationID, then MeasurementID; the others are ignored.
type Constraint struct {
	FingerprintID int64
	LocationID    int64
	MeasurementID int64
}

// All returns the unconstrained Constraint.
func All() Constraint { return Constraint{} }

// ByFingerprint selects one fingerprint by primary key.
func ByFingerprint(id int64) Constraint { return Constraint{FingerprintID: id} }

// ByLocation selects every fingerprint recorded at a location.
func ByLocation(id int64) Constraint { return Constraint{LocationID: id} }

// ByMeasurement selects the fingerprint owning a measurement.
func ByMeasurement(id int64) Constraint { return Constraint{MeasurementID: id} }

// IsAll reports whether the constraint matches every fingerprint.
func (c Constraint) IsAll() bool {
	return c.FingerprintID == 0 && c.LocationID == 0 && c.MeasurementID == 0
}

// Validate rejects negative ids.
func (c Constraint) Validate() error {
	if c.FingerprintID < 0 || c.LocationID < 0 || c.MeasurementID < 0 {
		return fmt.Errorf("%w: negative id in %s", ErrInvalidConstraint, c)
	}
	return nil
}

// effective returns the column and id that win under the priority order.
// ok is false for the unconstrained case.
func (c Constraint) effective() (column string, id int64, ok bool) {
	switch {
	case c.FingerprintID != 0:
		return ColumnFingerprintID, c.FingerprintID, true
	case c.LocationID != 0:
		return ColumnLocationID, c.LocationID, true
	case c.MeasurementID != 0:
		return ColumnMeasurementID, c.MeasurementID, true
	default:
		return "", 0, false
	}
}

// Compile returns the WHERE fragment (without the keyword) and its parameters,
// with the column qualified by table. The fragment is empty for an
// unconstrained Constraint.
func (c Constraint) Compile(table string) (string, []any, error) {
	if err := c.Validate(); err != nil {
		return "", nil, err
	}
	column, id, ok := c.effective()
	if !ok {
		return "", nil, nil
	}
	return qualify(table, column) + " = ?", []any{id}, nil
}

// String renders the effective filter for logs and error messages.
func (c Constraint) String() string {
	column, id, ok := c.effective()
	if !ok {
		return "all"
	}
	return fmt.Sprintf("%s=%d", column, id)
}

func qualify(table, column string) string {
	if table == "" {
		return column
	}
	return table + "." + column
}
