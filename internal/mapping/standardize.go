package mapping

import (
	"fmt"
	"sort"
	"strings"
)

// FieldMap assigns a source column to each canonical field. An empty
// column name, or a missing key, leaves the field intentionally unmapped.
type FieldMap map[Field]string

// MappingError reports a field map entry that names a column the table
// does not have.
type MappingError struct {
	Field  Field
	Column string
}

func (e *MappingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("mapping: source column %q does not exist", e.Column)
	}
	return fmt.Sprintf("mapping: source column %q for field %s does not exist", e.Column, e.Field)
}

// Standardize projects every table row onto the canonical schema.
// Unmapped fields and null, blank or "nan" values become Placeholder.
// The result is sorted by name with placeholder names last.
func Standardize(t Table, fm FieldMap) ([]Record, error) {
	cols := make(map[Field]string, len(fm))
	for f, col := range fm {
		cf, err := ParseField(string(f))
		if err != nil {
			return nil, err
		}
		cols[cf] = col
	}

	index := make(map[Field]int, len(cols))
	for _, f := range CanonicalFields {
		col := cols[f]
		if col == "" {
			continue
		}
		i := t.ColumnIndex(col)
		if i < 0 {
			return nil, &MappingError{Field: f, Column: col}
		}
		index[f] = i
	}

	records := make([]Record, len(t.Rows))
	for row := range t.Rows {
		for _, f := range CanonicalFields {
			v := Placeholder
			if col, ok := index[f]; ok {
				v = fillPlaceholder(t.Cell(row, col))
			}
			records[row].Set(f, v)
		}
	}

	SortByName(records)
	return records, nil
}

func fillPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" || v == "nan" {
		return Placeholder
	}
	return v
}

// SortByName orders records by name, keeping placeholder names last.
// Records with equal names keep their relative order.
func SortByName(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Nama, records[j].Nama
		if pa, pb := a == Placeholder, b == Placeholder; pa != pb {
			return pb
		}
		return a < b
	})
}

// DisplayView returns a copy of records in which a name repeating the
// previous kept name is blanked, so each name shows once per group.
// Placeholder and empty names are never blanked or used for comparison.
// The input is not modified.
func DisplayView(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	prev := ""
	for i := range out {
		name := out[i].Nama
		if name == Placeholder || name == "" {
			continue
		}
		if name == prev {
			out[i].Nama = ""
			continue
		}
		prev = name
	}
	return out
}
