package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// Cursor is a forward-only result cursor. *sql.Rows satisfies it.
// There is no rewind and no peek.
type Cursor interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// Execer is the transaction handle collaborator tables insert through.
// *sql.Tx satisfies it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Row is one scanned cursor row. Collaborator tables parse their columns out
// of it by index, so parsing never moves the cursor.
//
// Values are whatever the driver produced for a *any destination: int64,
// float64, bool, string, []byte, time.Time or nil. The accessors accept every
// representation the two supported sqlite drivers return.
type Row []any

// scanRow reads the cursor's current row into a Row of width columns.
func scanRow(cur Cursor, width int) (Row, error) {
	row := make(Row, width)
	dest := make([]any, width)
	for i := range row {
		dest[i] = &row[i]
	}
	if err := cur.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}
	return row, nil
}

// IsNull reports whether column i is NULL.
func (r Row) IsNull(i int) bool {
	return i >= len(r) || r[i] == nil
}

// Int64 returns column i as an int64. NULL is an error.
func (r Row) Int64(i int) (int64, error) {
	v, ok, err := r.NullInt64(i)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("column %d: unexpected NULL", i)
	}
	return v, nil
}

// NullInt64 returns column i as an int64; ok is false for NULL.
func (r Row) NullInt64(i int) (v int64, ok bool, err error) {
	if i >= len(r) {
		return 0, false, fmt.Errorf("column %d out of range (%d columns)", i, len(r))
	}
	switch x := r[i].(type) {
	case nil:
		return 0, false, nil
	case int64:
		return x, true, nil
	case int:
		return int64(x), true, nil
	case int32:
		return int64(x), true, nil
	case float64:
		return int64(x), true, nil
	case bool:
		if x {
			return 1, true, nil
		}
		return 0, true, nil
	case []byte:
		n, err := strconv.ParseInt(string(x), 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("column %d: %w", i, err)
		}
		return n, true, nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("column %d: %w", i, err)
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("column %d: cannot convert %T to int64", i, x)
	}
}

// String returns column i as a string. NULL reads as "".
func (r Row) String(i int) (string, error) {
	if i >= len(r) {
		return "", fmt.Errorf("column %d out of range (%d columns)", i, len(r))
	}
	switch x := r[i].(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	default:
		return fmt.Sprint(x), nil
	}
}

// Bool returns column i as a bool. NULL reads as false.
func (r Row) Bool(i int) (bool, error) {
	if i < len(r) {
		if b, ok := r[i].(bool); ok {
			return b, nil
		}
	}
	v, _, err := r.NullInt64(i)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
