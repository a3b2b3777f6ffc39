package coltab

import "fmt"

// Table is a column-major in-memory table.
type Table struct {
	names   []string
	index   map[string]int
	columns [][]Value
	rows    int
}

// New creates an empty table with the given column names.
func New(names ...string) (*Table, error) {
	t := &Table{
		names:   append([]string(nil), names...),
		index:   make(map[string]int, len(names)),
		columns: make([][]Value, len(names)),
	}
	for i, n := range names {
		if _, ok := t.index[n]; ok {
			return nil, fmt.Errorf("duplicate column %q", n)
		}
		t.index[n] = i
	}
	return t, nil
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Rows returns the row count.
func (t *Table) Rows() int {
	return t.rows
}

// Append adds a row. Short rows are padded with nulls.
func (t *Table) Append(row ...Value) error {
	if len(row) > len(t.names) {
		return fmt.Errorf("row width %d exceeds %d columns", len(row), len(t.names))
	}
	for i := range t.columns {
		v := Null()
		if i < len(row) {
			v = row[i]
		}
		t.columns[i] = append(t.columns[i], v)
	}
	t.rows++
	return nil
}

// Column returns a column's cells by name.
func (t *Table) Column(name string) ([]Value, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Value returns one cell, null when out of range or unknown.
func (t *Table) Value(row int, name string) Value {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= t.rows {
		return Null()
	}
	return t.columns[i][row]
}
