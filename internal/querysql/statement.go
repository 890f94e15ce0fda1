package querysql

import (
	"fmt"
	"strings"
)

// Select is a SELECT statement over a (possibly joined) source.
type Select struct {
	Columns []string
	From    string // table name, optionally followed by JOIN clauses
	Where   string // fragment without the WHERE keyword; empty for none
	OrderBy []string
}

// Compile renders the statement.
// MANDATORY: OrderBy must be non-empty; an unordered select is an error.
func (s Select) Compile() (string, error) {
	if len(s.Columns) == 0 {
		return "", fmt.Errorf("select from %q: no columns", s.From)
	}
	if s.From == "" {
		return "", fmt.Errorf("select: empty FROM")
	}
	if len(s.OrderBy) == 0 {
		return "", fmt.Errorf("select from %q: ORDER BY is mandatory", s.From)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(s.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(s.From)
	if s.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(s.OrderBy, ", "))
	return b.String(), nil
}

// Count renders "SELECT COUNT(*) FROM table [WHERE where]".
func Count(table, where string) string {
	sql := "SELECT COUNT(*) FROM " + table
	if where != "" {
		sql += " WHERE " + where
	}
	return sql
}

// Delete renders "DELETE FROM table WHERE where".
// An empty where is rejected so a missing filter can never wipe a table.
func Delete(table, where string) (string, error) {
	if where == "" {
		return "", fmt.Errorf("delete from %q: empty WHERE", table)
	}
	return "DELETE FROM " + table + " WHERE " + where, nil
}

// Insert renders "INSERT INTO table (c1, c2) VALUES (?, ?)".
func Insert(table string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), Placeholders(len(columns)))
}

// In renders "column IN (?, ?, ...)" for n parameters.
func In(column string, n int) string {
	return column + " IN (" + Placeholders(n) + ")"
}

// Placeholders returns n comma-separated ? markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Qualify returns the table-qualified names of columns.
func Qualify(table string, columns ...string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = qualify(table, c)
	}
	return out
}
