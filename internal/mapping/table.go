// Package mapping turns arbitrary spreadsheet tables into canonical permit
// records.
//
// A Table is built from a raw cell grid using caller-supplied offsets
// (BuildTable), optionally enriched with extracted columns
// (ApplyExtractions), then projected onto the fixed canonical schema
// (Standardize). Multi-month results accumulate in a Stack value.
package mapping

import (
	"fmt"
	"strings"
)

// Table is a header row plus data rows. Rows may be shorter than Columns;
// missing cells read as empty.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the index of the first column named name, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row, col or "" when out of range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// HeaderSpec locates the table inside a sheet. All offsets are zero-based;
// header rows are relative to StartRow.
type HeaderSpec struct {
	StartRow  int  `json:"start_row"`
	StartCol  int  `json:"start_col"`
	HeaderRow int  `json:"header_row"`
	Nested    bool `json:"nested"`
	ParentRow int  `json:"parent_row"`
	ChildRow  int  `json:"child_row"`
}

// Validate rejects negative offsets.
func (s HeaderSpec) Validate() error {
	var errs []string
	if s.StartRow < 0 {
		errs = append(errs, "start_row must be non-negative")
	}
	if s.StartCol < 0 {
		errs = append(errs, "start_col must be non-negative")
	}
	if s.Nested {
		if s.ParentRow < 0 || s.ChildRow < 0 {
			errs = append(errs, "parent_row and child_row must be non-negative")
		}
	} else if s.HeaderRow < 0 {
		errs = append(errs, "header_row must be non-negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid header spec: %s", strings.Join(errs, "; "))
	}
	return nil
}

// BuildTable crops grid at (StartRow, StartCol), reads the header row(s)
// and returns the rows below the last header row. Entirely empty rows are
// skipped.
func BuildTable(grid [][]string, spec HeaderSpec) (Table, error) {
	if err := spec.Validate(); err != nil {
		return Table{}, err
	}
	window := Window(grid, spec.StartRow, spec.StartCol)

	lastHeader := spec.HeaderRow
	if spec.Nested {
		lastHeader = max(spec.ParentRow, spec.ChildRow)
	}
	if lastHeader >= len(window) {
		return Table{}, fmt.Errorf("header row %d is past the end of the data (%d rows from start)", lastHeader, len(window))
	}

	var columns []string
	if spec.Nested {
		columns = CombineHeaders(window[spec.ParentRow], window[spec.ChildRow])
	} else {
		columns = SingleHeader(window[spec.HeaderRow])
	}

	dataStart := spec.HeaderRow + 1
	if spec.Nested {
		dataStart = spec.ChildRow + 1
	}
	rows := make([][]string, 0, len(window)-min(dataStart, len(window)))
	for _, r := range window[min(dataStart, len(window)):] {
		if isEmptyRow(r) {
			continue
		}
		rows = append(rows, r)
	}
	return Table{Columns: columns, Rows: rows}, nil
}

// Window returns the grid cropped to start at (row, col), with every row
// padded to the same width.
func Window(grid [][]string, row, col int) [][]string {
	if row >= len(grid) {
		return nil
	}
	width := 0
	for _, r := range grid[row:] {
		width = max(width, len(r)-col)
	}
	out := make([][]string, 0, len(grid)-row)
	for _, r := range grid[row:] {
		cells := make([]string, width)
		if col < len(r) {
			copy(cells, r[col:])
		}
		out = append(out, cells)
	}
	return out
}

func isEmptyRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
