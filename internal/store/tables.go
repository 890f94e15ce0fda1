package store

import (
	"context"
	"fmt"

	"github.com/roach88/fpstore/internal/model"
	"github.com/roach88/fpstore/internal/querysql"
)

// EntityTable maps one entity onto its columns in the flattened join and
// inserts it inside a caller-owned transaction.
//
// Columns()[0] must be the entity's id column.
type EntityTable[T any] interface {
	Table() string
	IDColumn() string
	Columns() []string
	ParseRow(r Row, offset int) (T, error)
	Insert(ctx context.Context, tx Execer, v T) (int64, error)
}

// ReadingTable is the collaborator for one reading kind.
//
// Columns()[0] must be the reading id column. InsertBatch returns one
// generated id per reading, in input order.
type ReadingTable interface {
	Kind() model.ReadingKind
	Table() string
	IDColumn() string
	Columns() []string
	ParseRow(r Row, offset int) (model.Reading, error)
	InsertBatch(ctx context.Context, tx Execer, readings []model.Reading) ([]int64, error)
}

// Joiner is implemented by tables whose columns span additional joined
// tables, e.g. a location that carries its map.
type Joiner interface {
	Joins() []string
}

// Tables bundles the collaborators the reader, writer and deleter work with.
type Tables struct {
	Location    EntityTable[*model.Location]
	Measurement EntityTable[*model.Measurement]
	Readings    []ReadingTable
}

// DefaultTables returns the SQLite collaborators for the bundled schema.
func DefaultTables() Tables {
	return Tables{
		Location:    LocationTable{},
		Measurement: MeasurementTable{},
		Readings:    []ReadingTable{BluetoothTable{}, GSMTable{}, WiFiTable{}},
	}
}

func (t Tables) validate() error {
	if t.Location == nil {
		return fmt.Errorf("tables: location table is nil")
	}
	if t.Measurement == nil {
		return fmt.Errorf("tables: measurement table is nil")
	}
	seen := make(map[model.ReadingKind]bool, len(t.Readings))
	for _, rt := range t.Readings {
		if rt == nil {
			return fmt.Errorf("tables: nil reading table")
		}
		if seen[rt.Kind()] {
			return fmt.Errorf("tables: duplicate reading table for kind %q", rt.Kind())
		}
		seen[rt.Kind()] = true
	}
	return nil
}

// reading returns the collaborator registered for kind.
func (t Tables) reading(kind model.ReadingKind) (ReadingTable, bool) {
	for _, rt := range t.Readings {
		if rt.Kind() == kind {
			return rt, true
		}
	}
	return nil, false
}

// Junction and fingerprint table columns.
const (
	junctionTable       = "readinginmeasurement"
	junctionMeasurement = "measurementId"
	junctionReading     = "readingId"
	junctionKind        = "readingClassName"
)

// joinPlan is the column layout of the flattened fingerprint join:
//
//	fingerprintId | location… | measurement… | readingClassName | reading kind 1… | kind 2… | …
type joinPlan struct {
	columns           []string
	from              string
	joinArgs          []any
	locationOffset    int
	measurementOffset int
	kindOffset        int
	readingOffsets    map[model.ReadingKind]int
}

func newJoinPlan(t Tables) *joinPlan {
	p := &joinPlan{readingOffsets: make(map[model.ReadingKind]int, len(t.Readings))}

	p.columns = append(p.columns, querysql.FingerprintTable+"."+querysql.ColumnFingerprintID)

	p.locationOffset = len(p.columns)
	p.columns = append(p.columns, t.Location.Columns()...)

	p.measurementOffset = len(p.columns)
	p.columns = append(p.columns, t.Measurement.Columns()...)

	p.kindOffset = len(p.columns)
	p.columns = append(p.columns, junctionTable+"."+junctionKind)

	for _, rt := range t.Readings {
		p.readingOffsets[rt.Kind()] = len(p.columns)
		p.columns = append(p.columns, rt.Columns()...)
	}

	fp := querysql.FingerprintTable
	from := fp +
		" INNER JOIN " + t.Location.Table() + " ON " + fp + "." + querysql.ColumnLocationID + " = " + t.Location.Table() + "." + t.Location.IDColumn()
	if j, ok := t.Location.(Joiner); ok {
		for _, clause := range j.Joins() {
			from += " " + clause
		}
	}
	from += " INNER JOIN " + t.Measurement.Table() + " ON " + fp + "." + querysql.ColumnMeasurementID + " = " + t.Measurement.Table() + "." + t.Measurement.IDColumn()
	if j, ok := t.Measurement.(Joiner); ok {
		for _, clause := range j.Joins() {
			from += " " + clause
		}
	}
	from += " LEFT OUTER JOIN " + junctionTable + " ON " + junctionTable + "." + junctionMeasurement + " = " + t.Measurement.Table() + "." + t.Measurement.IDColumn()
	for _, rt := range t.Readings {
		from += " LEFT OUTER JOIN " + rt.Table() + " ON " + rt.Table() + "." + rt.IDColumn() + " = " + junctionTable + "." + junctionReading +
			" AND " + junctionTable + "." + junctionKind + " = ?"
		p.joinArgs = append(p.joinArgs, string(rt.Kind()))
	}
	p.from = from
	return p
}

// width is the number of columns in one joined row.
func (p *joinPlan) width() int {
	return len(p.columns)
}

// selectSQL compiles the flattened join for a constraint. The ORDER BY keeps
// every fingerprint's rows contiguous, which the stitching reader relies on.
func (p *joinPlan) selectSQL(c querysql.Constraint) (string, []any, error) {
	where, whereArgs, err := c.Compile(querysql.FingerprintTable)
	if err != nil {
		return "", nil, err
	}
	sql, err := querysql.Select{
		Columns: p.columns,
		From:    p.from,
		Where:   where,
		OrderBy: []string{
			querysql.FingerprintTable + "." + querysql.ColumnFingerprintID,
			querysql.FingerprintTable + "." + querysql.ColumnMeasurementID,
			junctionTable + "." + junctionKind,
			junctionTable + "." + junctionReading,
		},
	}.Compile()
	if err != nil {
		return "", nil, err
	}
	args := make([]any, 0, len(p.joinArgs)+len(whereArgs))
	args = append(args, p.joinArgs...)
	args = append(args, whereArgs...)
	return sql, args, nil
}
