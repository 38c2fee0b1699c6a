// Package sheet reads spreadsheet sources into raw cell grids and writes
// tables back out as xlsx.
//
// xlsx workbooks are read with excelize; merged ranges yield their value in
// the top-left cell and empty strings elsewhere. A CSV source is exposed as
// a workbook with a single sheet named CSVSheet.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// CSVSheet is the only sheet of a CSV workbook.
const CSVSheet = "Sheet1"

// ErrUnsupportedFormat is returned for files that are neither xlsx nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Workbook is an opened spreadsheet source.
type Workbook struct {
	name   string
	file   *excelize.File
	csv    [][]string
	sheets []string
}

// Open reads the file at path. The format is chosen by extension.
func Open(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// Read parses r as the file called name.
func Read(r io.Reader, name string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, NewReadError(CSVSheet, "read", err)
		}
		rows, err := parseCSV(data)
		if err != nil {
			return nil, NewReadError(CSVSheet, "csv", err)
		}
		return &Workbook{name: name, csv: rows, sheets: []string{CSVSheet}}, nil
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, NewReadError("", "workbook", err)
		}
		return &Workbook{name: name, file: f, sheets: f.GetSheetList()}, nil
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}

// Name returns the source file name.
func (w *Workbook) Name() string { return w.name }

// Sheets returns sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return append([]string(nil), w.sheets...)
}

// DefaultSheet returns the first sheet whose name contains keyword
// (case-insensitive), or the first sheet.
func (w *Workbook) DefaultSheet(keyword string) string {
	if len(w.sheets) == 0 {
		return ""
	}
	kw := strings.ToUpper(keyword)
	if kw != "" {
		for _, s := range w.sheets {
			if strings.Contains(strings.ToUpper(s), kw) {
				return s
			}
		}
	}
	return w.sheets[0]
}

// Rows returns the raw cell grid of sheet. Rows are not padded.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	if !w.hasSheet(sheet) {
		return nil, NewReadError(sheet, "rows", fmt.Errorf("no such sheet"))
	}
	if w.file == nil {
		out := make([][]string, len(w.csv))
		for i, r := range w.csv {
			out[i] = append([]string(nil), r...)
		}
		return out, nil
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, NewReadError(sheet, "rows", err)
	}
	return rows, nil
}

// Preview returns at most n rows of sheet.
func (w *Workbook) Preview(sheet string, n int) ([][]string, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// Close releases the underlying workbook.
func (w *Workbook) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

func (w *Workbook) hasSheet(sheet string) bool {
	for _, s := range w.sheets {
		if s == sheet {
			return true
		}
	}
	return false
}

func parseCSV(data []byte) ([][]string, error) {
	data, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// decodeText passes valid UTF-8 through and decodes anything else as
// Windows-1252.
func decodeText(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	return charmap.Windows1252.NewDecoder().Bytes(data)
}
