// Package dataset provides the in-memory tabular representation shared by the
// pipeline stages and the database adapters.
//
// A Dataset is an ordered list of uniquely named columns and an ordered list of
// rows. Cells keep the exact text read from the source file; numeric meaning is
// only assigned when a dataset is written to a database (see Kind).
package dataset

import (
	"fmt"
	"strconv"
)

// Cell is a single dataset value. The zero value is null.
type Cell struct {
	Text  string
	Valid bool
}

// Value returns a non-null cell holding s.
func Value(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// Null returns a null cell.
func Null() Cell {
	return Cell{}
}

// IsNull reports whether the cell is null.
func (c Cell) IsNull() bool {
	return !c.Valid
}

// String returns the cell text, or the empty string for null.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Text
}

// Dataset is an ordered table of cells.
type Dataset struct {
	Columns []string
	Rows    [][]Cell
}

// New creates an empty dataset with the given columns.
func New(columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Columns: cols}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Width returns the number of columns.
func (d *Dataset) Width() int {
	return len(d.Columns)
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the dataset has a column with the given name.
func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// Column returns the cells of the named column in row order.
func (d *Dataset) Column(name string) ([]Cell, bool) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	cells := make([]Cell, len(d.Rows))
	for i, row := range d.Rows {
		cells[i] = row[idx]
	}
	return cells, true
}

// Append adds a row. The row must have exactly one cell per column.
func (d *Dataset) Append(row []Cell) error {
	if len(row) != len(d.Columns) {
		return fmt.Errorf("row has %d cells, dataset has %d columns", len(row), len(d.Columns))
	}
	d.Rows = append(d.Rows, row)
	return nil
}

// Head returns a dataset holding at most the first n rows, in order.
// A negative n returns every row. Rows are shared with the receiver.
func (d *Dataset) Head(n int) *Dataset {
	out := New(d.Columns)
	if n < 0 || n > len(d.Rows) {
		n = len(d.Rows)
	}
	out.Rows = d.Rows[:n:n]
	return out
}

// RenameColumn renames column from to to. It reports whether a column was
// renamed; a missing source column is not an error. Renaming onto another
// existing column fails, since column names must stay unique.
func (d *Dataset) RenameColumn(from, to string) (bool, error) {
	idx := d.ColumnIndex(from)
	if idx < 0 {
		return false, nil
	}
	if from == to {
		return true, nil
	}
	if d.HasColumn(to) {
		return false, &ColumnConflictError{From: from, To: to}
	}
	d.Columns[idx] = to
	return true, nil
}

// ColumnConflictError is returned when a rename targets an existing column.
type ColumnConflictError struct {
	From string
	To   string
}

func (e *ColumnConflictError) Error() string {
	return fmt.Sprintf("cannot rename column %q to %q: column already exists", e.From, e.To)
}

// uniqueColumns makes header names unique the way spreadsheet tools do:
// repeated names get a ".N" suffix and blank names become "Unnamed: <index>".
func uniqueColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))

	for i, name := range header {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if !taken[name] {
			seen[name] = 1
			taken[name] = true
			out[i] = name
			continue
		}
		n := max(seen[name], 1)
		candidate := name + "." + strconv.Itoa(n)
		for taken[candidate] {
			n++
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[name] = n + 1
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}
